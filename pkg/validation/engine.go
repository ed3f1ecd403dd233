// Package validation checks a FormData snapshot against a form schema's
// per-field rules and produces a field id -> message map. It runs at submit
// time (or on an explicit preview), never on keystrokes, and never mutates
// the data it inspects.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
)

// Errors maps field ids to a single human-readable message each. A field
// absent from the map is valid. The UI uses the full map to mark every
// invalid field at once, but each field carries only its first failure.
type Errors map[string]string

// Valid reports whether the whole snapshot passed.
func (e Errors) Valid() bool { return len(e) == 0 }

// Engine walks fields in schema order and applies the rule table for each
// field type. The zero value is ready to use.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Validate produces the error map for one form and data snapshot. For each
// field the checks run in a fixed order and the first failure wins.
func (e *Engine) Validate(form schema.Form, data session.FormData) Errors {
	errs := make(Errors)
	for _, field := range form.Fields {
		if field.IsDerived() {
			// Derived fields are read-only and always considered valid.
			continue
		}
		if message := e.validateField(field, data[field.ID]); message != "" {
			errs[field.ID] = message
		}
	}
	return errs
}

func (e *Engine) validateField(field schema.Field, value any) string {
	rules := field.Rules()

	if rules.Required && isEmpty(field, value) {
		return fmt.Sprintf("%s is required", field.Label)
	}
	if isEmpty(field, value) {
		// Optional and empty: remaining checks only apply to present values.
		return ""
	}

	switch field.Type {
	case schema.FieldTypeNumber:
		if message := checkRange(field, rules, value); message != "" {
			return message
		}
	case schema.FieldTypeText:
		if message := checkLength(field, rules, value); message != "" {
			return message
		}
	case schema.FieldTypePassword:
		if message := checkLength(field, rules, value); message != "" {
			return message
		}
		if rules.Password && !IsStrongPassword(asString(value)) {
			return "Password must contain uppercase, lowercase, number, and special character"
		}
	}

	if field.Type == schema.FieldTypeText && (rules.Email || LabelLooksLikeEmail(field.Label)) {
		if !IsEmailAddress(asString(value)) {
			return "Please enter a valid email address"
		}
	}

	switch field.Type {
	case schema.FieldTypeText, schema.FieldTypeMobile, schema.FieldTypeNumber:
		if field.Type == schema.FieldTypeMobile || LabelLooksLikeMobile(field.Label) {
			if !IsMobileNumber(asString(value)) {
				return "Please enter a valid mobile number 10-15 digits"
			}
		}
	}

	return ""
}

func checkRange(field schema.Field, rules schema.ValidationRule, value any) string {
	number, ok := asNumber(value)
	if !ok {
		return ""
	}
	if rules.Min != nil && number < *rules.Min {
		return fmt.Sprintf("%s must be at least %s", field.Label, formatNumber(*rules.Min))
	}
	if rules.Max != nil && number > *rules.Max {
		return fmt.Sprintf("%s must be at most %s", field.Label, formatNumber(*rules.Max))
	}
	return ""
}

func checkLength(field schema.Field, rules schema.ValidationRule, value any) string {
	// Characters, not bytes: multi-byte input must not trip length limits.
	length := utf8.RuneCountInString(asString(value))
	if rules.MinLength != nil && length < *rules.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", field.Label, *rules.MinLength)
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", field.Label, *rules.MaxLength)
	}
	return ""
}

// isEmpty treats a nil entry, a blank or whitespace-only scalar, and an empty
// checkbox selection as absent.
func isEmpty(field schema.Field, value any) bool {
	if value == nil {
		return true
	}
	if field.Type == schema.FieldTypeCheckbox {
		selected, ok := value.([]string)
		return !ok || len(selected) == 0
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
