// Package memory provides in-memory schema and submission stores. It is the
// default wiring for previews and the reference implementation the engine
// tests run against.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/store"
	"github.com/goliatone/go-formfill/pkg/submission"
)

// Store keeps schemas and submissions in maps guarded by one mutex so the
// schema-delete cascade is atomic.
type Store struct {
	mu          sync.RWMutex
	schemas     map[string]schema.Form
	order       []string
	submissions map[string][]submission.Submission
}

var _ store.Store = (*Store)(nil)

// New constructs an empty store.
func New() *Store {
	return &Store{
		schemas:     make(map[string]schema.Form),
		submissions: make(map[string][]submission.Submission),
	}
}

// GetByID returns the stored schema or store.ErrNotFound.
func (s *Store) GetByID(_ context.Context, id string) (schema.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	form, ok := s.schemas[id]
	if !ok {
		return schema.Form{}, fmt.Errorf("%w: schema %q", store.ErrNotFound, id)
	}
	return form, nil
}

// Save stores a new schema; an existing id is rejected.
func (s *Store) Save(_ context.Context, form schema.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schemas[form.ID]; exists {
		return fmt.Errorf("%w: schema %q", store.ErrDuplicateID, form.ID)
	}
	s.schemas[form.ID] = form
	s.order = append(s.order, form.ID)
	return nil
}

// Update replaces an existing schema in place.
func (s *Store) Update(_ context.Context, form schema.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schemas[form.ID]; !exists {
		return fmt.Errorf("%w: schema %q", store.ErrNotFound, form.ID)
	}
	s.schemas[form.ID] = form
	return nil
}

// Delete removes the schema and cascades to its submissions, and no others.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schemas[id]; !exists {
		return fmt.Errorf("%w: schema %q", store.ErrNotFound, id)
	}
	delete(s.schemas, id)
	delete(s.submissions, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns schemas in insertion order.
func (s *Store) List(_ context.Context) ([]schema.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]schema.Form, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.schemas[id])
	}
	return out, nil
}

// Append records one submission. Records are never mutated afterwards.
func (s *Store) Append(_ context.Context, sub submission.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions[sub.FormID] = append(s.submissions[sub.FormID], sub)
	return nil
}

// ListByFormID returns the form's submissions in append order.
func (s *Store) ListByFormID(_ context.Context, formID string) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]submission.Submission(nil), s.submissions[formID]...), nil
}

// DeleteByFormID drops every submission for one form id.
func (s *Store) DeleteByFormID(_ context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.submissions, formID)
	return nil
}
