// Package cli implements the billfold command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billfold-cli/billfold/internal/config"
	"github.com/billfold-cli/billfold/internal/infra/apiclient"
	"github.com/billfold-cli/billfold/internal/infra/realm"
)

var rootCmd = &cobra.Command{
	Use:   "billfold",
	Short: "Create and sync invoices from the command line",
	Long: `billfold is a client for the invoicing backend. It creates and lists
invoices and, when a QuickBooks account is linked, surfaces the outcome of
the best-effort QuickBooks sync alongside each create.

Configuration lives at ~/.billfold/config.toml (override the directory with
BILLFOLD_HOME, or the backend URL with BILLFOLD_API_URL).`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// billfoldHome returns the billfold home directory.
func billfoldHome() string {
	if env := os.Getenv("BILLFOLD_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".billfold")
}

func loadConfig() (config.Config, error) {
	return config.Load(filepath.Join(billfoldHome(), "config.toml"))
}

func openStore() (*realm.Store, error) {
	return realm.Open(filepath.Join(billfoldHome(), "billfold.db"))
}

func newClient(cfg config.Config) (*apiclient.Client, error) {
	return apiclient.New(cfg.API.BaseURL, cfg.API.Timeout())
}
