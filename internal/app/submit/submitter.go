package submit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/billfold-cli/billfold/internal/domain"
	"github.com/billfold-cli/billfold/internal/infra/observability"
)

// Submitter drives the submission state machine.
//
// Only one submission may be live at a time: each Submit supersedes any
// earlier attempt still outstanding by cancelling its context and bumping a
// generation counter. A superseded attempt's resolution — success or
// failure — writes no state, so a slow first response can never overwrite
// a faster second one.
type Submitter struct {
	api    domain.InvoiceAPI
	realms domain.RealmSource

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// New creates a submitter in the idle phase.
func New(api domain.InvoiceAPI, realms domain.RealmSource) *Submitter {
	return &Submitter{
		api:    api,
		realms: realms,
		state:  State{Phase: PhaseIdle, Draft: defaultDraft()},
	}
}

// State returns the current machine snapshot.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset cancels any in-flight attempt and returns the machine to idle with
// an empty field-error mapping and no sync fields.
func (s *Submitter) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.state = State{Phase: PhaseIdle, Draft: defaultDraft()}
	return s.state
}

// Submit runs one full submission: validate the draft, attach the realm id
// known at this moment, post the create request, and reconcile the result.
// It returns the state as of this attempt's resolution; if the attempt was
// superseded meanwhile, the newer attempt's state is returned untouched.
func (s *Submitter) Submit(ctx context.Context, draft domain.DraftInvoice) State {
	if draft.Status == "" {
		draft.Status = domain.StatusDraft
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel() // supersede the previous attempt
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.state = State{Phase: PhaseValidating, Draft: draft}
	s.mu.Unlock()

	input, fieldErrs := domain.Validate(draft)
	if fieldErrs != nil {
		observability.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return s.commit(gen, State{Phase: PhaseError, Draft: draft, FieldErrors: fieldErrs})
	}

	s.commit(gen, State{Phase: PhaseSubmitting, Draft: draft})

	// The realm id is read once, here. A realm linked or cleared after this
	// point does not affect this attempt.
	realmID, linked := "", false
	if s.realms != nil {
		realmID, linked = s.realms.CurrentID()
	}
	if linked {
		input.RealmID = realmID
	}

	resp, err := s.api.CreateInvoice(ctx, input)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Superseded (or the caller gave up). Not an error condition:
			// leave fieldErrors/formError untouched and drop this outcome.
			observability.SubmissionsTotal.WithLabelValues("superseded").Inc()
			return s.State()
		}
		c := Classify(err)
		observability.SubmissionsTotal.WithLabelValues("error").Inc()
		log.Printf("[submit] create failed: %s", c.FormError)
		return s.commit(gen, State{
			Phase:       PhaseError,
			Draft:       draft,
			FormError:   c.FormError,
			FieldErrors: c.FieldErrors,
		})
	}

	next := State{Phase: PhaseSuccess, Draft: defaultDraft(), InvoiceID: resp.ID.String()}
	next.Draft.Status = draft.Status
	next.SyncMessage, next.SyncError = reconcileSync(resp.Sync, linked)

	observability.SubmissionsTotal.WithLabelValues("success").Inc()
	observability.SyncOutcomesTotal.WithLabelValues(syncLabel(resp.Sync, linked)).Inc()

	return s.commit(gen, next)
}

// commit installs the next state unless a newer submission owns the machine.
func (s *Submitter) commit(gen uint64, next State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return s.state
	}
	s.state = next
	return next
}

// ─── Sync Reconciliation ────────────────────────────────────────────────────

// reconcileSync folds the optional sync object and the realm id known
// before the call into a user-facing message or warning:
//
//	realm absent, sync absent  → nothing
//	realm present, sync absent → sync-result-missing warning
//	sync success with id       → success message carrying the id
//	sync failure               → warning with the server reason, or generic
func reconcileSync(sync *domain.SyncResult, linked bool) (message, warning string) {
	switch {
	case sync == nil && !linked:
		return "", ""
	case sync == nil:
		return "", "QuickBooks sync did not return a result."
	case sync.Success && sync.QuickBooksID != "":
		return fmt.Sprintf("QuickBooks synced (ID %s)", sync.QuickBooksID), ""
	case sync.Success:
		// Success without an id: nothing to show.
		return "", ""
	case sync.Error != "":
		return "", "QuickBooks sync failed: " + sync.Error
	default:
		return "", "QuickBooks sync failed."
	}
}

func syncLabel(sync *domain.SyncResult, linked bool) string {
	switch {
	case sync == nil && !linked:
		return "none"
	case sync == nil:
		return "missing"
	case sync.Success:
		return "synced"
	default:
		return "failed"
	}
}
