package submit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/billfold-cli/billfold/internal/domain"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeAPI struct {
	create func(ctx context.Context, in domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error)
}

func (f *fakeAPI) CreateInvoice(ctx context.Context, in domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
	return f.create(ctx, in)
}

func (f *fakeAPI) ListInvoices(ctx context.Context) ([]domain.Invoice, error) { return nil, nil }

func (f *fakeAPI) StartQuickBooksAuth(ctx context.Context, redirect string) (string, error) {
	return "", nil
}

type fakeRealms struct{ id string }

func (f fakeRealms) CurrentID() (string, bool) { return f.id, f.id != "" }

func goodDraft() domain.DraftInvoice {
	return domain.DraftInvoice{
		ClientName: "Acme Corp",
		Email:      "billing@acme.com",
		Amount:     "125.50",
		Status:     domain.StatusDraft,
	}
}

func respond(id string, sync *domain.SyncResult) func(context.Context, domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
	return func(context.Context, domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
		return &domain.CreateInvoiceResponse{ID: domain.InvoiceID(id), Sync: sync}, nil
	}
}

// ─── Sync Reconciliation ────────────────────────────────────────────────────

func TestSubmit_SuccessWithSync(t *testing.T) {
	var sent domain.CreateInvoiceInput
	api := &fakeAPI{create: func(ctx context.Context, in domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
		sent = in
		return &domain.CreateInvoiceResponse{
			ID:   domain.InvoiceID("7"),
			Sync: &domain.SyncResult{Success: true, QuickBooksID: "Q1"},
		}, nil
	}}
	sub := New(api, fakeRealms{id: "realm-9"})

	st := sub.Submit(context.Background(), goodDraft())

	if st.Phase != PhaseSuccess {
		t.Fatalf("Phase = %s, want success", st.Phase)
	}
	if !strings.Contains(st.SyncMessage, "Q1") {
		t.Errorf("SyncMessage = %q, want it to contain Q1", st.SyncMessage)
	}
	if st.SyncError != "" || st.FormError != "" {
		t.Errorf("unexpected errors: sync=%q form=%q", st.SyncError, st.FormError)
	}
	if st.InvoiceID != "7" {
		t.Errorf("InvoiceID = %q, want 7", st.InvoiceID)
	}
	if sent.RealmID != "realm-9" {
		t.Errorf("payload RealmID = %q, want realm-9", sent.RealmID)
	}
	if sent.Amount != 125.5 {
		t.Errorf("payload Amount = %v, want coerced 125.5", sent.Amount)
	}
	// Success resets the draft to defaults.
	if st.Draft.ClientName != "" || st.Draft.Status != domain.StatusDraft {
		t.Errorf("Draft not reset: %+v", st.Draft)
	}
}

func TestSubmit_RealmSetButSyncMissing(t *testing.T) {
	sub := New(&fakeAPI{create: respond("8", nil)}, fakeRealms{id: "realm-9"})

	st := sub.Submit(context.Background(), goodDraft())

	if st.Phase != PhaseSuccess {
		t.Fatalf("Phase = %s, want success; a missing sync result is a warning, not a form error", st.Phase)
	}
	if st.FormError != "" {
		t.Errorf("FormError = %q, want empty", st.FormError)
	}
	if st.SyncError == "" {
		t.Error("expected a sync-missing warning")
	}
}

func TestSubmit_NoRealmNoSync(t *testing.T) {
	sub := New(&fakeAPI{create: respond("9", nil)}, fakeRealms{})

	st := sub.Submit(context.Background(), goodDraft())

	if st.Phase != PhaseSuccess {
		t.Fatalf("Phase = %s, want success", st.Phase)
	}
	if st.SyncMessage != "" || st.SyncError != "" {
		t.Errorf("expected no sync fields, got message=%q error=%q", st.SyncMessage, st.SyncError)
	}
}

func TestSubmit_SyncFailure(t *testing.T) {
	tests := []struct {
		name   string
		sync   *domain.SyncResult
		wantIn string
	}{
		{"with reason", &domain.SyncResult{Success: false, Error: "account closed"}, "account closed"},
		{"without reason", &domain.SyncResult{Success: false}, "QuickBooks sync failed."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := New(&fakeAPI{create: respond("3", tt.sync)}, fakeRealms{id: "realm-1"})
			st := sub.Submit(context.Background(), goodDraft())

			if st.Phase != PhaseSuccess {
				t.Fatalf("Phase = %s; sync failure must not downgrade a successful create", st.Phase)
			}
			if !strings.Contains(st.SyncError, tt.wantIn) {
				t.Errorf("SyncError = %q, want it to contain %q", st.SyncError, tt.wantIn)
			}
		})
	}
}

// ─── Validation & Classification ────────────────────────────────────────────

func TestSubmit_LocalValidationFailure(t *testing.T) {
	called := false
	api := &fakeAPI{create: func(context.Context, domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
		called = true
		return nil, nil
	}}
	sub := New(api, fakeRealms{})

	st := sub.Submit(context.Background(), domain.DraftInvoice{Amount: "abc", Status: domain.StatusDraft})

	if st.Phase != PhaseError {
		t.Fatalf("Phase = %s, want error", st.Phase)
	}
	if st.FormError != "" {
		t.Errorf("FormError = %q, want empty for local validation failure", st.FormError)
	}
	if len(st.FieldErrors) == 0 {
		t.Error("expected field errors")
	}
	if called {
		t.Error("create must not be called when validation fails")
	}
}

func TestSubmit_ServerValidationFailure(t *testing.T) {
	api := &fakeAPI{create: func(context.Context, domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
		return nil, &domain.APIError{
			Status: 400,
			URL:    "http://api/api/invoices",
			Body:   []byte(`{"errors":{"fieldErrors":{"email":["Invalid email"]}}}`),
		}
	}}
	sub := New(api, fakeRealms{})

	st := sub.Submit(context.Background(), goodDraft())

	if st.Phase != PhaseError {
		t.Fatalf("Phase = %s, want error", st.Phase)
	}
	if st.FieldErrors["email"] != "Invalid email" {
		t.Errorf("FieldErrors[email] = %q, want %q", st.FieldErrors["email"], "Invalid email")
	}
	if st.FormError == "" {
		t.Error("expected a generic form error alongside server field errors")
	}
}

// ─── Single-Flight ──────────────────────────────────────────────────────────

// A slow first submission that resolves successfully after being superseded
// must not overwrite the second submission's outcome.
func TestSubmit_SlowFirstResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{create: func(ctx context.Context, in domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
		if in.Description == "first" {
			close(started)
			<-release
			// Resolve successfully even though superseded.
			return &domain.CreateInvoiceResponse{ID: domain.InvoiceID("1")}, nil
		}
		return nil, &domain.APIError{Status: 500, URL: "http://api/api/invoices", Body: []byte(`{"error":"boom"}`)}
	}}
	sub := New(api, fakeRealms{})

	first := goodDraft()
	first.Description = "first"
	done := make(chan State, 1)
	go func() { done <- sub.Submit(context.Background(), first) }()
	<-started

	second := goodDraft()
	second.Description = "second"
	st := sub.Submit(context.Background(), second)
	if st.Phase != PhaseError || st.FormError != "boom" {
		t.Fatalf("second outcome = %+v, want error boom", st)
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never returned")
	}

	final := sub.State()
	if final.Phase != PhaseError || final.FormError != "boom" {
		t.Errorf("final state = %+v; the stale success overwrote the live outcome", final)
	}
}

// The superseded attempt's cancellation is not an error and must not touch
// fieldErrors/formError.
func TestSubmit_SupersededCancellationIsSilent(t *testing.T) {
	started := make(chan struct{})

	api := &fakeAPI{create: func(ctx context.Context, in domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
		if in.Description == "first" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &domain.CreateInvoiceResponse{
			ID:   domain.InvoiceID("2"),
			Sync: &domain.SyncResult{Success: true, QuickBooksID: "Q2"},
		}, nil
	}}
	sub := New(api, fakeRealms{id: "realm-1"})

	first := goodDraft()
	first.Description = "first"
	done := make(chan State, 1)
	go func() { done <- sub.Submit(context.Background(), first) }()
	<-started

	second := goodDraft()
	second.Description = "second"
	sub.Submit(context.Background(), second)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never returned")
	}

	final := sub.State()
	if final.Phase != PhaseSuccess {
		t.Fatalf("Phase = %s, want success from the second submission", final.Phase)
	}
	if final.FormError != "" || len(final.FieldErrors) != 0 {
		t.Errorf("cancellation leaked into errors: form=%q fields=%v", final.FormError, final.FieldErrors)
	}
	if !strings.Contains(final.SyncMessage, "Q2") {
		t.Errorf("SyncMessage = %q, want the second submission's sync id", final.SyncMessage)
	}
}

// ─── Reset & Re-Entry ───────────────────────────────────────────────────────

func TestReset(t *testing.T) {
	sub := New(&fakeAPI{create: respond("5", &domain.SyncResult{Success: true, QuickBooksID: "Q5"})}, fakeRealms{id: "r"})

	if st := sub.Submit(context.Background(), goodDraft()); st.Phase != PhaseSuccess {
		t.Fatalf("setup: Phase = %s", st.Phase)
	}

	st := sub.Reset()
	if st.Phase != PhaseIdle {
		t.Errorf("Phase = %s, want idle", st.Phase)
	}
	if len(st.FieldErrors) != 0 || st.FormError != "" {
		t.Errorf("errors not cleared: %+v", st)
	}
	if st.SyncMessage != "" || st.SyncError != "" {
		t.Errorf("sync fields not cleared: %+v", st)
	}
	if st.Draft.Status != domain.StatusDraft {
		t.Errorf("Draft.Status = %s, want DRAFT", st.Draft.Status)
	}
}

func TestSubmit_ReentrantAfterError(t *testing.T) {
	calls := 0
	api := &fakeAPI{create: func(context.Context, domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
		calls++
		if calls == 1 {
			return nil, &domain.APIError{Status: 503, URL: "http://api/x", Body: []byte(`{"error":"down"}`)}
		}
		return &domain.CreateInvoiceResponse{ID: domain.InvoiceID("6")}, nil
	}}
	sub := New(api, fakeRealms{})

	if st := sub.Submit(context.Background(), goodDraft()); st.Phase != PhaseError {
		t.Fatalf("first attempt Phase = %s, want error", st.Phase)
	}
	st := sub.Submit(context.Background(), goodDraft())
	if st.Phase != PhaseSuccess {
		t.Fatalf("second attempt Phase = %s, want success", st.Phase)
	}
	if st.FormError != "" {
		t.Errorf("FormError = %q, want cleared on re-entry", st.FormError)
	}
}
