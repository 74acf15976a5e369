// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "encoding/json"

// ─── Invoice Types ──────────────────────────────────────────────────────────

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusDraft InvoiceStatus = "DRAFT"
	StatusPaid  InvoiceStatus = "PAID"
)

// Invoice is a persisted record as returned by the backend.
type Invoice struct {
	ID           int64         `json:"id"`
	ClientName   string        `json:"clientName"`
	Email        string        `json:"email"`
	Amount       float64       `json:"amount"`
	Status       InvoiceStatus `json:"status"`
	Description  string        `json:"description,omitempty"`
	DueDate      string        `json:"dueDate,omitempty"`
	QuickBooksID string        `json:"quickbooksId,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
}

// DraftInvoice is a partial candidate record under edit. Amount is the raw
// user input, pre-coercion. Status always carries a value; callers default
// it to StatusDraft before validation.
type DraftInvoice struct {
	ClientName  string        `json:"clientName,omitempty"`
	Email       string        `json:"email,omitempty"`
	Amount      string        `json:"amount,omitempty"`
	Status      InvoiceStatus `json:"status"`
	Description string        `json:"description,omitempty"`
	DueDate     string        `json:"dueDate,omitempty"`
}

// CreateInvoiceInput is a validated, normalized record safe to transmit.
// RealmID is attached at submit time when a QuickBooks account is linked;
// the raw draft is never sent.
type CreateInvoiceInput struct {
	ClientName  string        `json:"clientName"`
	Email       string        `json:"email"`
	Amount      float64       `json:"amount"`
	Status      InvoiceStatus `json:"status"`
	Description string        `json:"description,omitempty"`
	DueDate     string        `json:"dueDate,omitempty"`
	RealmID     string        `json:"realmId,omitempty"`
}

// ─── Sync Types ─────────────────────────────────────────────────────────────

// SyncResult is the server-reported outcome of the best-effort QuickBooks
// sync that may accompany a successful create.
type SyncResult struct {
	Success      bool   `json:"success"`
	QuickBooksID string `json:"quickbooksId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// InvoiceID tolerates both numeric and string ids, which the backend is
// known to emit interchangeably.
type InvoiceID string

func (id *InvoiceID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = InvoiceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = InvoiceID(n.String())
	return nil
}

func (id InvoiceID) String() string { return string(id) }

// CreateInvoiceResponse is the body of a successful create. Sync is nil
// when the server performed no sync (or reported none — the two are not
// distinguishable on the wire).
type CreateInvoiceResponse struct {
	ID   InvoiceID   `json:"id"`
	Sync *SyncResult `json:"sync,omitempty"`
}

// ─── Field Errors ───────────────────────────────────────────────────────────

// FieldErrors maps a field name to the first violation message recorded
// for it. A nil map means no violations.
type FieldErrors map[string]string
