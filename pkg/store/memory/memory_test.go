package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
	"github.com/goliatone/go-formfill/pkg/store"
	"github.com/goliatone/go-formfill/pkg/submission"
)

func sampleForm(id, name string) schema.Form {
	return schema.Form{
		ID:        id,
		Name:      name,
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeText, Label: "Name"},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	if err := s.Save(ctx, sampleForm("f1", "First")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := s.Save(ctx, sampleForm("f1", "Again")); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("duplicate Save error = %v, want ErrDuplicateID", err)
	}

	form, err := s.GetByID(ctx, "f1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if form.Name != "First" {
		t.Fatalf("form name = %q, want %q", form.Name, "First")
	}

	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing GetByID error = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	if err := s.Update(ctx, sampleForm("f1", "First")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Update of absent schema error = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, sampleForm("f1", "First")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := s.Update(ctx, sampleForm("f1", "Renamed")); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	form, err := s.GetByID(ctx, "f1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if form.Name != "Renamed" {
		t.Fatalf("form name = %q, want %q", form.Name, "Renamed")
	}
}

func TestDeleteCascadesToOwnSubmissionsOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	for _, form := range []schema.Form{sampleForm("f1", "First"), sampleForm("f2", "Second")} {
		if err := s.Save(ctx, form); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
	for i, formID := range []string{"f1", "f1", "f2"} {
		err := s.Append(ctx, submission.Submission{
			ID:     string(rune('a' + i)),
			FormID: formID,
			Data:   session.FormData{"name": "x"},
		})
		if err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	if err := s.Delete(ctx, "f1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	gone, err := s.ListByFormID(ctx, "f1")
	if err != nil {
		t.Fatalf("ListByFormID returned error: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("expected f1 submissions gone, got %d", len(gone))
	}

	kept, err := s.ListByFormID(ctx, "f2")
	if err != nil {
		t.Fatalf("ListByFormID returned error: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("expected 1 f2 submission, got %d", len(kept))
	}

	forms, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(forms) != 1 || forms[0].ID != "f2" {
		t.Fatalf("unexpected schema list after delete: %+v", forms)
	}
}
