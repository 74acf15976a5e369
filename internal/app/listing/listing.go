// Package listing filters and pages an already-fetched invoice collection.
// The backend has no search parameters; the collection is small enough to
// slice client-side.
package listing

import (
	"strconv"
	"strings"

	"github.com/billfold-cli/billfold/internal/domain"
)

const defaultPerPage = 10

// Filter narrows and pages the collection. Zero values mean "no filter",
// first page, default page size.
type Filter struct {
	Query   string
	Status  domain.InvoiceStatus
	Page    int
	PerPage int
}

// Page is one slice of the filtered collection. Total counts all matches,
// not just the returned slice.
type Page struct {
	Invoices []domain.Invoice
	Total    int
}

// Apply filters by query (case-insensitive over client name, email and id)
// and status, then slices out the requested page.
func Apply(invoices []domain.Invoice, f Filter) Page {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	filtered := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if q != "" && !matches(inv, q) {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		filtered = append(filtered, inv)
	}

	per := f.PerPage
	if per <= 0 {
		per = defaultPerPage
	}
	page := f.Page
	if page < 0 {
		page = 0
	}

	start := page * per
	if start >= len(filtered) {
		return Page{Total: len(filtered)}
	}
	end := start + per
	if end > len(filtered) {
		end = len(filtered)
	}
	return Page{Invoices: filtered[start:end], Total: len(filtered)}
}

func matches(inv domain.Invoice, q string) bool {
	return strings.Contains(strings.ToLower(inv.ClientName), q) ||
		strings.Contains(strings.ToLower(inv.Email), q) ||
		strings.Contains(strconv.FormatInt(inv.ID, 10), q)
}
