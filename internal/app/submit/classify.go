package submit

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/billfold-cli/billfold/internal/domain"
)

// ─── Error Classifier ───────────────────────────────────────────────────────

// Classification is the normalized, renderable form of a create failure:
// one form-level message, plus per-field messages when the server reported
// a validation failure.
type Classification struct {
	FormError   string
	FieldErrors domain.FieldErrors
}

const (
	validationFailedMsg = "Validation failed"
	genericFailureMsg   = "Request failed. Please try again."
)

// Classify maps any error from the create call into a Classification.
// It is total: classification itself never fails.
func Classify(err error) Classification {
	if err == nil {
		return Classification{}
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusBadRequest {
			if fields := decodeFieldErrors(apiErr.Body); len(fields) > 0 {
				return Classification{FormError: validationFailedMsg, FieldErrors: fields}
			}
		}
		// APIError.Error() already prefers the body's error/message field.
		return Classification{FormError: apiErr.Error()}
	}

	if msg := err.Error(); msg != "" {
		return Classification{FormError: msg}
	}
	return Classification{FormError: genericFailureMsg}
}

// decodeFieldErrors extracts the first message per field from a 400 body
// shaped {"errors":{"fieldErrors":{"email":["Invalid email"], ...}}}.
func decodeFieldErrors(body []byte) domain.FieldErrors {
	var payload struct {
		Errors struct {
			FieldErrors map[string][]string `json:"fieldErrors"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return nil
	}

	out := domain.FieldErrors{}
	for field, msgs := range payload.Errors.FieldErrors {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
