package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// InvoiceAPI abstracts the invoicing backend.
type InvoiceAPI interface {
	// CreateInvoice posts a validated record and returns the created id
	// plus the optional sync outcome.
	CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*CreateInvoiceResponse, error)

	// ListInvoices fetches the full invoice collection.
	ListInvoices(ctx context.Context) ([]Invoice, error)

	// StartQuickBooksAuth begins the OAuth handshake and returns the
	// provider URL the user must open.
	StartQuickBooksAuth(ctx context.Context, redirect string) (string, error)
}

// RealmSource exposes the currently linked QuickBooks realm, if any.
// The submitter reads it at submit time only — it is not watched.
type RealmSource interface {
	CurrentID() (string, bool)
}
