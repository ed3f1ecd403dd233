// Package tui walks a form session through interactive terminal prompts.
// Derived fields recompute after every answer so the user sees fresh values,
// and answers that fail validation are re-asked.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
	"github.com/goliatone/go-formfill/pkg/validation"
)

const defaultMaxAttempts = 3

// Option configures the filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver used by the filler.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithMaxAttempts bounds how many times a single field is re-asked after
// validation failures before the fill aborts.
func WithMaxAttempts(attempts int) Option {
	return func(f *Filler) {
		if attempts > 0 {
			f.maxAttempts = attempts
		}
	}
}

// Filler runs the interactive fill loop over a form session.
type Filler struct {
	driver      PromptDriver
	engine      *validation.Engine
	maxAttempts int
}

// New constructs a filler with defaults (survey driver, three attempts).
func New(options ...Option) *Filler {
	f := &Filler{
		driver:      newSurveyDriver(),
		engine:      validation.New(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Fill prompts for every editable field in schema order and returns the final
// data snapshot. Derived fields are displayed, not asked.
func (f *Filler) Fill(ctx context.Context, sess *session.Session) (session.FormData, error) {
	if sess == nil {
		return nil, errors.New("tui: session is required")
	}

	form := sess.Form()
	for _, field := range form.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if field.IsDerived() {
			value, _ := sess.Value(field.ID)
			if err := f.driver.Info(ctx, fmt.Sprintf("%s: %v", field.Label, value)); err != nil {
				return nil, err
			}
			continue
		}
		if err := f.askField(ctx, sess, form, field); err != nil {
			return nil, err
		}
	}

	if errs := f.engine.Validate(form, sess.Data()); !errs.Valid() {
		return nil, fmt.Errorf("tui: form still invalid after fill: %d error(s)", len(errs))
	}
	return sess.Data(), nil
}

func (f *Filler) askField(ctx context.Context, sess *session.Session, form schema.Form, field schema.Field) error {
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		answer, err := f.prompt(ctx, sess, field)
		if err != nil {
			return err
		}
		if err := sess.SetValue(field.ID, answer); err != nil {
			return fmt.Errorf("tui: apply answer for %q: %w", field.ID, err)
		}

		errs := f.engine.Validate(form, sess.Data())
		message, failed := errs[field.ID]
		if !failed {
			return nil
		}
		if err := f.driver.Info(ctx, message); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: field %q", ErrTooManyAttempts, field.ID)
}

func (f *Filler) prompt(ctx context.Context, sess *session.Session, field schema.Field) (any, error) {
	current, _ := sess.Value(field.ID)

	switch field.Type {
	case schema.FieldTypePassword:
		return f.driver.Password(ctx, InputConfig{Message: field.Label})
	case schema.FieldTypeTextarea:
		return f.driver.TextArea(ctx, TextAreaConfig{
			Message: field.Label,
			Default: asString(current),
		})
	case schema.FieldTypeSelect, schema.FieldTypeRadio:
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, asString(current)),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil
	case schema.FieldTypeCheckbox:
		selected, _ := current.([]string)
		indices, err := f.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.Label,
			Options:  field.Options,
			Defaults: indicesOf(field.Options, selected),
		})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				out = append(out, field.Options[idx])
			}
		}
		return out, nil
	default:
		return f.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: asString(current),
			Help:    inputHelp(field),
		})
	}
}

func inputHelp(field schema.Field) string {
	switch field.Type {
	case schema.FieldTypeNumber:
		return "Enter a number."
	case schema.FieldTypeDate:
		return "Enter a date (YYYY-MM-DD)."
	case schema.FieldTypeMobile:
		return "Enter a mobile number, 10-15 digits."
	default:
		return ""
	}
}

func asString(value any) string {
	if value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	if parts, ok := value.([]string); ok {
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(value)
}
