// Package submission assembles validated form data into immutable
// submission records and hands them to the persistence collaborator.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
)

// ErrStoreFailure wraps a persistence failure during append. The caller's
// FormData is untouched when this is returned, so the user can retry without
// re-entering anything.
var ErrStoreFailure = errors.New("submission: store append failed")

// Submission is one immutable, timestamped record of a filled form. FormName
// snapshots the schema name at submit time; renaming the schema later does
// not rewrite history.
type Submission struct {
	ID          string           `json:"id"`
	FormID      string           `json:"formId"`
	FormName    string           `json:"formName"`
	Data        session.FormData `json:"data"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

// Appender is the minimal store capability the assembler needs.
type Appender interface {
	Append(ctx context.Context, sub Submission) error
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock injects the timestamp source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDGenerator injects the submission id source, primarily for tests.
func WithIDGenerator(newID func() string) Option {
	return func(a *Assembler) {
		if newID != nil {
			a.newID = newID
		}
	}
}

// Assembler builds submissions from validated data and appends them to the
// store. It performs no validation itself; callers gate on the validation
// engine's error map first.
type Assembler struct {
	store Appender
	now   func() time.Time
	newID func() string
}

// New constructs an Assembler writing to the given store.
func New(store Appender, options ...Option) *Assembler {
	a := &Assembler{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Submit builds an immutable record from the snapshot and appends it. The
// data is deep-copied, so later edits to the live FormData cannot reach a
// stored submission.
func (a *Assembler) Submit(ctx context.Context, form schema.Form, data session.FormData) (Submission, error) {
	if a.store == nil {
		return Submission{}, fmt.Errorf("%w: no store configured", ErrStoreFailure)
	}

	sub := Submission{
		ID:          a.newID(),
		FormID:      form.ID,
		FormName:    form.Name,
		Data:        data.Clone(),
		SubmittedAt: a.now().UTC(),
	}
	if err := a.store.Append(ctx, sub); err != nil {
		return Submission{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return sub, nil
}
