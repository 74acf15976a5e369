package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ─── Draft Validation ───────────────────────────────────────────────────────
// Every rule is evaluated independently so all violations surface together;
// only the first message per field is kept. Validate never panics — it
// always returns a structured result.

var validate = validator.New(validator.WithRequiredStructEnabled())

// draftRules covers the fields validator can check declaratively. Amount is
// handled by hand because the draft carries it as a raw string that needs
// coercion before the positivity check.
type draftRules struct {
	ClientName string        `validate:"required"`
	Email      string        `validate:"required,email"`
	Status     InvoiceStatus `validate:"required,oneof=DRAFT PAID"`
}

// Validate checks a draft against the field rules and returns either the
// normalized input the server will receive, or the per-field messages.
func Validate(d DraftInvoice) (CreateInvoiceInput, FieldErrors) {
	errs := FieldErrors{}

	if err := validate.Struct(draftRules{
		ClientName: d.ClientName,
		Email:      d.Email,
		Status:     d.Status,
	}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				field := jsonField(fe.StructField())
				if _, seen := errs[field]; !seen {
					errs[field] = fieldMessage(field)
				}
			}
		}
	}

	amount, amountMsg := coerceAmount(d.Amount)
	if amountMsg != "" {
		errs["amount"] = amountMsg
	}

	// An empty due date means "no due date", never an error.
	due := strings.TrimSpace(d.DueDate)
	if due != "" {
		if _, err := time.Parse(time.RFC3339, due); err != nil {
			errs["dueDate"] = "Invalid due date"
		}
	}

	if len(errs) > 0 {
		return CreateInvoiceInput{}, errs
	}

	return CreateInvoiceInput{
		ClientName:  d.ClientName,
		Email:       d.Email,
		Amount:      amount,
		Status:      d.Status,
		Description: d.Description,
		DueDate:     due,
	}, nil
}

// coerceAmount turns the raw amount string into a number, distinguishing
// "not a number" from "not positive".
func coerceAmount(raw string) (float64, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, "Amount must be a number"
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, "Amount must be a number"
	}
	if !dec.IsPositive() {
		return 0, "Must be positive"
	}
	f, _ := dec.Float64()
	return f, ""
}

// jsonField maps a rules struct field to its wire name.
func jsonField(structField string) string {
	switch structField {
	case "ClientName":
		return "clientName"
	case "Email":
		return "email"
	case "Status":
		return "status"
	default:
		return structField
	}
}

func fieldMessage(field string) string {
	switch field {
	case "clientName":
		return "Client name required"
	case "email":
		return "Invalid email"
	case "status":
		return "Status must be DRAFT or PAID"
	default:
		return "Invalid value"
	}
}
