// Package apiclient is the JSON transport for the invoicing backend.
// It resolves the base URL, injects headers, and maps non-2xx responses to
// domain.APIError so callers can classify them.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billfold-cli/billfold/internal/domain"
	"github.com/billfold-cli/billfold/internal/infra/observability"
)

// Error bodies are small; anything larger is truncated.
const maxBodyBytes = 1 << 20

// Client talks to the invoicing backend.
type Client struct {
	base string
	http *http.Client
}

// New validates the base URL and builds a client. The URL must be absolute
// (http or https); a trailing slash is trimmed.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, domain.ErrNoBaseURL
	}
	u, err := url.Parse(trimmed)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: got %q", domain.ErrBaseURLNotAbsolute, baseURL)
	}
	return &Client{
		base: trimmed,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// CreateInvoice posts a validated record. POST /api/invoices.
func (c *Client) CreateInvoice(ctx context.Context, in domain.CreateInvoiceInput) (*domain.CreateInvoiceResponse, error) {
	start := time.Now()
	var out domain.CreateInvoiceResponse
	err := c.do(ctx, http.MethodPost, "/api/invoices", in, &out)
	observability.CreateRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvoices fetches the full collection. GET /api/invoices.
func (c *Client) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	var out []domain.Invoice
	if err := c.do(ctx, http.MethodGet, "/api/invoices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartQuickBooksAuth begins the OAuth handshake and returns the provider
// URL the user must open. GET /api/quickbooks/start.
func (c *Client) StartQuickBooksAuth(ctx context.Context, redirect string) (string, error) {
	path := "/api/quickbooks/start?redirect=" + url.QueryEscape(redirect)
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", domain.ErrAuthURLMissing
	}
	return out.URL, nil
}

// do performs one JSON round trip. out may be nil to discard the body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.base + path

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response from %s: %w", fullURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.APIError{Status: resp.StatusCode, URL: fullURL, Body: raw}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", fullURL, err)
	}
	return nil
}
