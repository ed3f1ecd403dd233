// Package session owns the mutable state of a single fill session: the
// FormData map, default seeding, user edits, and the derived-field
// recomputation that runs after every change.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formfill/pkg/formula"
	"github.com/goliatone/go-formfill/pkg/schema"
)

// FormulaErrorValue is the sentinel stored in a derived field's FormData
// entry when its formula fails to evaluate. It renders inline in the
// read-only derived input instead of aborting the recompute pass.
const FormulaErrorValue = "Error in formula"

var (
	// ErrUnknownField signals a write to a field id the schema does not define.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrDerivedFieldReadOnly signals a direct write to a derived field; its
	// value is always the live output of its formula.
	ErrDerivedFieldReadOnly = errors.New("session: derived field is read-only")
)

// FormData maps field ids to their current values. Scalars are strings or
// numbers; checkbox fields hold a []string of selected options.
type FormData map[string]any

// Clone returns a deep copy; checkbox slices are copied, scalars are values.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	for id, value := range d {
		if slice, ok := value.([]string); ok {
			out[id] = append([]string(nil), slice...)
			continue
		}
		out[id] = value
	}
	return out
}

// Option configures a Session.
type Option func(*Session)

// WithEvaluator injects a custom formula evaluator.
func WithEvaluator(eval *formula.Evaluator) Option {
	return func(s *Session) {
		if eval != nil {
			s.eval = eval
		}
	}
}

// WithDeclaredParentsOnly restricts each derived formula's bindings to the
// field's declared parentFields. By default the binding is the full FormData
// snapshot and a formula may reference any field id present in the data.
func WithDeclaredParentsOnly() Option {
	return func(s *Session) {
		s.parentScopeOnly = true
	}
}

// Session pairs one form schema with one FormData instance for the duration
// of a fill. It is not safe for concurrent use; a session belongs to exactly
// one caller at a time.
type Session struct {
	form            schema.Form
	data            FormData
	eval            *formula.Evaluator
	parentScopeOnly bool
}

// New seeds a session with the schema's default values and runs an initial
// derived-field pass so computed fields are populated before the first edit.
func New(form schema.Form, options ...Option) *Session {
	s := &Session{
		form: form,
		data: make(FormData, len(form.Fields)),
		eval: formula.New(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.Reset()
	return s
}

// Form returns the schema this session fills. The session never mutates it.
func (s *Session) Form() schema.Form { return s.form }

// Reset discards all entered values and reseeds defaults. Checkbox fields
// always start with an empty selection regardless of any stored default.
func (s *Session) Reset() {
	s.data = make(FormData, len(s.form.Fields))
	for _, field := range s.form.Fields {
		if field.Type == schema.FieldTypeCheckbox {
			s.data[field.ID] = []string{}
			continue
		}
		if field.DefaultValue != nil {
			s.data[field.ID] = field.DefaultValue
			continue
		}
		s.data[field.ID] = ""
	}
	s.Recompute()
}

// SetValue records a scalar value for a field and recomputes derived fields.
func (s *Session) SetValue(fieldID string, value any) error {
	field, ok := s.form.FieldByID(fieldID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, fieldID)
	}
	if field.IsDerived() {
		return fmt.Errorf("%w: %q", ErrDerivedFieldReadOnly, fieldID)
	}
	s.data[fieldID] = value
	s.Recompute()
	return nil
}

// ToggleOption adds or removes one checkbox option from the field's
// selection set and recomputes derived fields.
func (s *Session) ToggleOption(fieldID, option string, checked bool) error {
	field, ok := s.form.FieldByID(fieldID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, fieldID)
	}
	if field.Type != schema.FieldTypeCheckbox {
		return fmt.Errorf("session: field %q is not a checkbox", fieldID)
	}

	current, _ := s.data[fieldID].([]string)
	if checked {
		for _, existing := range current {
			if existing == option {
				s.Recompute()
				return nil
			}
		}
		s.data[fieldID] = append(current, option)
		s.Recompute()
		return nil
	}

	next := current[:0]
	for _, existing := range current {
		if existing != option {
			next = append(next, existing)
		}
	}
	s.data[fieldID] = next
	s.Recompute()
	return nil
}

// Value returns the current value for a field id.
func (s *Session) Value(fieldID string) (any, bool) {
	value, ok := s.data[fieldID]
	return value, ok
}

// Data returns a snapshot copy of the current FormData. Callers cannot reach
// the session's live map through it.
func (s *Session) Data() FormData {
	return s.data.Clone()
}

// Recompute runs a single pass over the derived fields in schema order,
// evaluating each formula against the current data and storing the result or
// the formula-error sentinel. A derived formula referencing another derived
// field observes the value that field holds when its own turn comes: fresh if
// it appears earlier in schema order, stale otherwise. Chained derived fields
// are not a supported authoring pattern.
func (s *Session) Recompute() {
	for _, field := range s.form.Fields {
		if !field.IsDerived() || field.Derived == nil {
			continue
		}
		if strings.TrimSpace(field.Derived.Formula) == "" {
			continue
		}
		result, err := s.eval.EvalString(field.Derived.Formula, s.bindingsFor(field))
		if err != nil {
			s.data[field.ID] = FormulaErrorValue
			continue
		}
		s.data[field.ID] = result
	}
}

// bindingsFor builds the variable binding for one derived field: the full
// FormData snapshot by default, or only the declared parents when the session
// was built with WithDeclaredParentsOnly.
func (s *Session) bindingsFor(field schema.Field) map[string]any {
	if s.parentScopeOnly {
		bindings := make(map[string]any, len(field.Derived.ParentFields))
		for _, parent := range field.Derived.ParentFields {
			if value, ok := s.data[parent]; ok {
				bindings[parent] = value
			}
		}
		return bindings
	}
	bindings := make(map[string]any, len(s.data))
	for id, value := range s.data {
		bindings[id] = value
	}
	return bindings
}
