package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errFormIDMissing   = errors.New("schema: form id is required")
	errFormNameMissing = errors.New("schema: form name is required")
	errNoFields        = errors.New("schema: form has no fields")
)

// Validate checks the authoring-time invariants of the form: identity fields
// are present, field ids are unique, option-bearing types carry usable
// options, and derived specs reference fields that exist.
func (f Form) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return errFormIDMissing
	}
	if strings.TrimSpace(f.Name) == "" {
		return errFormNameMissing
	}
	if len(f.Fields) == 0 {
		return errNoFields
	}

	ids := make(map[string]struct{}, len(f.Fields))
	for _, field := range f.Fields {
		if strings.TrimSpace(field.ID) == "" {
			return fmt.Errorf("schema: field %q: id is required", field.Label)
		}
		if _, dup := ids[field.ID]; dup {
			return fmt.Errorf("schema: duplicate field id %q", field.ID)
		}
		ids[field.ID] = struct{}{}

		if !field.Type.Valid() {
			return fmt.Errorf("schema: field %q: unknown type %q", field.ID, field.Type)
		}
		if err := validateOptions(field); err != nil {
			return err
		}
	}

	for _, field := range f.Fields {
		if err := validateDerived(field, ids); err != nil {
			return err
		}
	}
	return nil
}

func validateOptions(field Field) error {
	if !field.Type.HasOptions() {
		return nil
	}
	if len(field.Options) == 0 {
		return fmt.Errorf("schema: field %q: type %q requires options", field.ID, field.Type)
	}
	for i, option := range field.Options {
		if strings.TrimSpace(option) == "" {
			return fmt.Errorf("schema: field %q: option %d is blank", field.ID, i)
		}
	}
	return nil
}

func validateDerived(field Field, ids map[string]struct{}) error {
	if !field.IsDerived() {
		if field.Derived != nil {
			return fmt.Errorf("schema: field %q: derived spec on non-derived type %q", field.ID, field.Type)
		}
		return nil
	}
	if field.Derived == nil || strings.TrimSpace(field.Derived.Formula) == "" {
		return fmt.Errorf("schema: derived field %q: formula is required", field.ID)
	}
	if len(field.Derived.ParentFields) == 0 {
		return fmt.Errorf("schema: derived field %q: at least one parent field is required", field.ID)
	}
	for _, parent := range field.Derived.ParentFields {
		if _, ok := ids[parent]; !ok {
			return fmt.Errorf("schema: derived field %q: unknown parent field %q", field.ID, parent)
		}
		if parent == field.ID {
			return fmt.Errorf("schema: derived field %q: cannot list itself as a parent", field.ID)
		}
	}
	return nil
}
