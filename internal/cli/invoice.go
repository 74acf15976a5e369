package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold-cli/billfold/internal/app/listing"
	"github.com/billfold-cli/billfold/internal/app/submit"
	"github.com/billfold-cli/billfold/internal/domain"
)

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd)
	invoiceCmd.AddCommand(invoiceListCmd)

	f := invoiceCreateCmd.Flags()
	f.String("client", "", "Client name")
	f.String("email", "", "Billing email")
	f.String("amount", "", "Invoice amount, e.g. 125.50")
	f.String("status", "DRAFT", "Invoice status (DRAFT or PAID)")
	f.String("description", "", "Optional notes")
	f.String("due", "", "Due date (RFC 3339), empty for no due date")

	lf := invoiceListCmd.Flags()
	lf.StringP("query", "q", "", "Match client name, email or id")
	lf.String("status", "", "Filter by status (DRAFT or PAID)")
	lf.Int("page", 0, "Page number, starting at 0")
	lf.Int("per-page", 10, "Rows per page")
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create and list invoices",
}

// ─── invoice create ─────────────────────────────────────────────────────────

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice",
	Long: `Validate and submit a new invoice. When a QuickBooks account is linked
(see 'billfold connect'), the backend also syncs the invoice to QuickBooks
and the sync outcome is reported separately — a failed sync never undoes a
successful create.`,
	RunE: runInvoiceCreate,
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
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

	flags := cmd.Flags()
	clientName, _ := flags.GetString("client")
	email, _ := flags.GetString("email")
	amount, _ := flags.GetString("amount")
	status, _ := flags.GetString("status")
	description, _ := flags.GetString("description")
	due, _ := flags.GetString("due")

	draft := domain.DraftInvoice{
		ClientName:  clientName,
		Email:       email,
		Amount:      amount,
		Status:      domain.InvoiceStatus(status),
		Description: description,
		DueDate:     due,
	}

	sub := submit.New(client, store)
	st := sub.Submit(cmd.Context(), draft)

	switch st.Phase {
	case submit.PhaseSuccess:
		fmt.Fprintf(os.Stdout, "✅ Invoice #%s created successfully.\n", st.InvoiceID)
		if st.SyncMessage != "" {
			fmt.Fprintln(os.Stdout, st.SyncMessage)
		}
		if st.SyncError != "" {
			fmt.Fprintf(os.Stdout, "⚠️  %s\n", st.SyncError)
		}
		return nil

	case submit.PhaseError:
		// Field errors first, each next to its field name; the form-level
		// message once at the end.
		fields := make([]string, 0, len(st.FieldErrors))
		for field := range st.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, st.FieldErrors[field])
		}
		if st.FormError != "" {
			fmt.Fprintln(os.Stderr, st.FormError)
		}
		return fmt.Errorf("invoice not created")

	default:
		return fmt.Errorf("submission ended in unexpected phase %q", st.Phase)
	}
}

// ─── invoice list ───────────────────────────────────────────────────────────

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	Long:  `Fetch all invoices and filter/page them locally.`,
	RunE:  runInvoiceList,
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	invoices, err := client.ListInvoices(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch invoices: %w", err)
	}

	flags := cmd.Flags()
	query, _ := flags.GetString("query")
	status, _ := flags.GetString("status")
	page, _ := flags.GetInt("page")
	perPage, _ := flags.GetInt("per-page")

	result := listing.Apply(invoices, listing.Filter{
		Query:   query,
		Status:  domain.InvoiceStatus(status),
		Page:    page,
		PerPage: perPage,
	})

	if result.Total == 0 {
		fmt.Fprintln(os.Stdout, "No invoices found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCLIENT\tEMAIL\tAMOUNT\tSTATUS\tCREATED\tQB ID")
	for _, inv := range result.Invoices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			inv.ID, inv.ClientName, inv.Email, inv.Amount, inv.Status,
			shortDate(inv.CreatedAt), orDash(inv.QuickBooksID))
	}
	w.Flush()
	fmt.Fprintf(os.Stdout, "%d total\n", result.Total)
	return nil
}

// shortDate trims a server timestamp to its date part for display.
func shortDate(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Format(time.DateOnly)
	}
	return ts
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
