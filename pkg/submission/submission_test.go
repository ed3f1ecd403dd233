package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
)

type recordingStore struct {
	appended []Submission
	fail     error
}

func (r *recordingStore) Append(_ context.Context, sub Submission) error {
	if r.fail != nil {
		return r.fail
	}
	r.appended = append(r.appended, sub)
	return nil
}

func testForm() schema.Form {
	return schema.Form{ID: "form-1", Name: "Contact"}
}

func TestSubmitBuildsImmutableRecord(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	now := time.Date(2024, 6, 2, 10, 30, 0, 0, time.UTC)
	asm := New(store,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "sub-1" }),
	)

	data := session.FormData{"name": "Ada", "tags": []string{"a"}}
	sub, err := asm.Submit(context.Background(), testForm(), data)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	want := Submission{
		ID:          "sub-1",
		FormID:      "form-1",
		FormName:    "Contact",
		Data:        session.FormData{"name": "Ada", "tags": []string{"a"}},
		SubmittedAt: now,
	}
	if diff := cmp.Diff(want, sub); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}

	// Later edits to the live data must not reach the stored record.
	data["name"] = "tampered"
	if store.appended[0].Data["name"] != "Ada" {
		t.Fatalf("stored submission observed a post-submit edit")
	}
}

func TestSubmitGeneratesUniqueIDs(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	asm := New(store)

	seen := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		sub, err := asm.Submit(context.Background(), testForm(), session.FormData{})
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if _, dup := seen[sub.ID]; dup {
			t.Fatalf("duplicate submission id %q", sub.ID)
		}
		seen[sub.ID] = struct{}{}
	}
}

func TestSubmitStoreFailurePreservesData(t *testing.T) {
	t.Parallel()

	store := &recordingStore{fail: errors.New("disk full")}
	asm := New(store)

	data := session.FormData{"name": "Ada"}
	_, err := asm.Submit(context.Background(), testForm(), data)
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("Submit error = %v, want ErrStoreFailure", err)
	}
	if data["name"] != "Ada" {
		t.Fatalf("caller data was mutated on store failure")
	}
}
