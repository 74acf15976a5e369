// Package submit orchestrates invoice creation: validate, supersede any
// in-flight attempt, issue the create request, and fold the two-phase
// outcome (local create + optional QuickBooks sync) into one state.
package submit

import "github.com/billfold-cli/billfold/internal/domain"

// Phase is a named state of the submission machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// State is a snapshot of the submission machine.
//
// FieldErrors and FormError are only populated in PhaseError. SyncMessage
// and SyncError are only populated in PhaseSuccess — a failed sync never
// downgrades a successful create.
type State struct {
	Phase       Phase
	Draft       domain.DraftInvoice
	FieldErrors domain.FieldErrors
	FormError   string
	InvoiceID   string
	SyncMessage string
	SyncError   string
}

// defaultDraft is the post-success / post-reset draft: everything cleared,
// status back to DRAFT.
func defaultDraft() domain.DraftInvoice {
	return domain.DraftInvoice{Status: domain.StatusDraft}
}
