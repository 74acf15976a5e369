package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold-cli/billfold/internal/infra/callback"
)

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(statusCmd)

	connectCmd.Flags().Duration("wait", 5*time.Minute, "How long to wait for the QuickBooks redirect")
}

// ─── connect ────────────────────────────────────────────────────────────────

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Link a QuickBooks account",
	Long: `Start the QuickBooks OAuth handshake. billfold asks the backend for the
provider URL, runs a local callback server, and waits for QuickBooks to
redirect back with the realm id. The id is stored until 'billfold
disconnect'.`,
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if id, ok := store.CurrentID(); ok {
		fmt.Fprintf(os.Stdout, "Already connected to realm %s.\n", id)
		fmt.Fprintln(os.Stdout, "Run 'billfold disconnect' first to link a different account.")
		return nil
	}

	redirect := "http://" + cfg.Callback.Addr + "/callback"
	authURL, err := client.StartQuickBooksAuth(cmd.Context(), redirect)
	if err != nil {
		return fmt.Errorf("start QuickBooks auth: %w", err)
	}

	wait, _ := cmd.Flags().GetDuration("wait")
	ctx, cancel := context.WithTimeout(cmd.Context(), wait)
	defer cancel()

	srv := callback.New(store)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}
	go func() {
		if err := srv.Serve(ctx, cfg.Callback.Addr); err != nil {
			log.Printf("[connect] callback server: %v", err)
		}
	}()

	fmt.Fprintln(os.Stdout, "Open this URL in your browser to authorize QuickBooks:")
	fmt.Fprintf(os.Stdout, "  %s\n\n", authURL)
	fmt.Fprintf(os.Stdout, "Waiting for the redirect on %s ...\n", redirect)

	select {
	case id := <-srv.Done():
		fmt.Fprintf(os.Stdout, "✅ QuickBooks connected (realm %s).\n", id)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for the QuickBooks redirect")
	}
}

// ─── disconnect ─────────────────────────────────────────────────────────────

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Unlink the QuickBooks account",
	RunE:  runDisconnect,
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, ok := store.CurrentID(); !ok {
		fmt.Fprintln(os.Stdout, "No QuickBooks account linked.")
		return nil
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "✅ QuickBooks disconnected.")
	return nil
}

// ─── status ─────────────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the QuickBooks link status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if id, ok := store.CurrentID(); ok {
		fmt.Fprintf(os.Stdout, "Connected to QuickBooks realm %s.\n", id)
	} else {
		fmt.Fprintln(os.Stdout, "Not linked. Run 'billfold connect' to link a QuickBooks account.")
	}
	return nil
}
