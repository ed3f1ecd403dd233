// Package store defines the persistence contracts the form runtime depends
// on. Implementations live in the subpackages (memory, badgerstore); the
// engine only sees these interfaces so it stays testable with fakes.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
)

var (
	// ErrNotFound signals a lookup for a schema id that does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicateID signals a Save with an id that is already taken.
	ErrDuplicateID = errors.New("store: duplicate id")
)

// SchemaStore persists authored form schemas. Delete cascades to the form's
// submissions; that responsibility belongs to the store, not the engine.
type SchemaStore interface {
	GetByID(ctx context.Context, id string) (schema.Form, error)
	Save(ctx context.Context, form schema.Form) error
	Update(ctx context.Context, form schema.Form) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]schema.Form, error)
}

// SubmissionStore is an append-only log of submissions. Existing records are
// never mutated; the only removal path is the cascade from a schema delete.
type SubmissionStore interface {
	Append(ctx context.Context, sub submission.Submission) error
	ListByFormID(ctx context.Context, formID string) ([]submission.Submission, error)
	DeleteByFormID(ctx context.Context, formID string) error
}

// Store combines both contracts; the bundled implementations satisfy it with
// a single backing instance so the delete cascade stays atomic.
type Store interface {
	SchemaStore
	SubmissionStore
}
