// Package formfill ties the form toolkit together: schema storage, live fill
// sessions with derived fields, validation, and submission assembly behind a
// single engine with swappable stores.
package formfill

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
	"github.com/goliatone/go-formfill/pkg/store"
	"github.com/goliatone/go-formfill/pkg/store/memory"
	"github.com/goliatone/go-formfill/pkg/submission"
	"github.com/goliatone/go-formfill/pkg/validation"
)

// Form aliases the schema form type for convenience at the module root.
type Form = schema.Form

// Field aliases the schema field type.
type Field = schema.Field

// FormData aliases the session data snapshot.
type FormData = session.FormData

// Submission aliases the immutable submission record.
type Submission = submission.Submission

// Errors aliases the field-id-to-message validation result.
type Errors = validation.Errors

// InvalidFormError is returned by Submit when the session data fails
// validation. It carries the per-field messages.
type InvalidFormError struct {
	Errors Errors
}

func (e *InvalidFormError) Error() string {
	return fmt.Sprintf("formfill: submission rejected, %d invalid field(s)", len(e.Errors))
}

// Option configures the engine before construction.
type Option func(*Engine)

// WithStore uses one backend for both schemas and submissions.
func WithStore(backend store.Store) Option {
	return func(e *Engine) {
		if backend != nil {
			e.schemas = backend
			e.submissions = backend
		}
	}
}

// WithSchemaStore overrides only the schema backend.
func WithSchemaStore(backend store.SchemaStore) Option {
	return func(e *Engine) {
		if backend != nil {
			e.schemas = backend
		}
	}
}

// WithSubmissionStore overrides only the submission backend.
func WithSubmissionStore(backend store.SubmissionStore) Option {
	return func(e *Engine) {
		if backend != nil {
			e.submissions = backend
		}
	}
}

// WithClock injects the timestamp source used for submissions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.assemblerOpts = append(e.assemblerOpts, submission.WithClock(now))
		}
	}
}

// WithIDGenerator injects the submission id source.
func WithIDGenerator(generate func() string) Option {
	return func(e *Engine) {
		if generate != nil {
			e.assemblerOpts = append(e.assemblerOpts, submission.WithIDGenerator(generate))
		}
	}
}

// WithDeclaredParentsOnly restricts formula bindings in new sessions to each
// derived field's declared parents.
func WithDeclaredParentsOnly() Option {
	return func(e *Engine) {
		e.sessionOpts = append(e.sessionOpts, session.WithDeclaredParentsOnly())
	}
}

// Engine is the façade over the toolkit. The zero-config engine keeps
// everything in memory.
type Engine struct {
	schemas       store.SchemaStore
	submissions   store.SubmissionStore
	validator     *validation.Engine
	sessionOpts   []session.Option
	assemblerOpts []submission.Option
	assembler     *submission.Assembler
}

// New constructs an engine applying any provided options.
func New(options ...Option) *Engine {
	e := &Engine{validator: validation.New()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.schemas == nil || e.submissions == nil {
		fallback := memory.New()
		if e.schemas == nil {
			e.schemas = fallback
		}
		if e.submissions == nil {
			e.submissions = fallback
		}
	}
	e.assembler = submission.New(e.submissions, e.assemblerOpts...)
	return e
}

// CreateForm validates the schema and stores it under its id.
func (e *Engine) CreateForm(ctx context.Context, form Form) error {
	if err := form.Validate(); err != nil {
		return fmt.Errorf("formfill: create form: %w", err)
	}
	return e.schemas.Save(ctx, form)
}

// UpdateForm validates the schema and replaces the stored copy.
func (e *Engine) UpdateForm(ctx context.Context, form Form) error {
	if err := form.Validate(); err != nil {
		return fmt.Errorf("formfill: update form: %w", err)
	}
	return e.schemas.Update(ctx, form)
}

// DeleteForm removes the schema and every submission recorded against it.
func (e *Engine) DeleteForm(ctx context.Context, formID string) error {
	return e.schemas.Delete(ctx, formID)
}

// Form fetches a stored schema by id.
func (e *Engine) Form(ctx context.Context, formID string) (Form, error) {
	return e.schemas.GetByID(ctx, formID)
}

// Forms lists every stored schema.
func (e *Engine) Forms(ctx context.Context) ([]Form, error) {
	return e.schemas.List(ctx)
}

// NewSession loads a schema and opens a fill session seeded with defaults.
func (e *Engine) NewSession(ctx context.Context, formID string) (*session.Session, error) {
	form, err := e.schemas.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	return session.New(form, e.sessionOpts...), nil
}

// Validate runs the rule table over a data snapshot.
func (e *Engine) Validate(form Form, data FormData) Errors {
	return e.validator.Validate(form, data)
}

// Submit validates the session and, if clean, appends an immutable submission
// record. A validation failure is reported as *InvalidFormError and nothing is
// stored.
func (e *Engine) Submit(ctx context.Context, sess *session.Session) (Submission, error) {
	form := sess.Form()
	data := sess.Data()
	if errs := e.validator.Validate(form, data); !errs.Valid() {
		return Submission{}, &InvalidFormError{Errors: errs}
	}
	return e.assembler.Submit(ctx, form, data)
}

// Submissions lists the records for one form in append order.
func (e *Engine) Submissions(ctx context.Context, formID string) ([]Submission, error) {
	return e.submissions.ListByFormID(ctx, formID)
}
