package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Transport configuration errors
	ErrNoBaseURL          = errors.New("API base URL not configured — set api.base_url or BILLFOLD_API_URL")
	ErrBaseURLNotAbsolute = errors.New("API base URL must be absolute, including http:// or https://")

	// QuickBooks linking errors
	ErrNotLinked      = errors.New("no QuickBooks account linked")
	ErrAuthURLMissing = errors.New("auth start response did not include a URL")
)

// APIError is a non-2xx response from the backend. The raw body is kept so
// callers can classify structured error payloads.
type APIError struct {
	Status int
	URL    string
	Body   []byte
}

// Error prefers the message encoded in the body; otherwise it reports the
// status and URL.
func (e *APIError) Error() string {
	if msg := BodyMessage(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("request failed %d for %s", e.Status, e.URL)
}

// BodyMessage extracts the "error" or "message" string from a JSON error
// body. Returns "" when the body carries neither (or is not JSON).
func BodyMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
