package openapi

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/schema"
)

const petstoreDoc = `
openapi: 3.0.3
info:
  title: Signup API
  version: 1.0.0
paths:
  /signup:
    post:
      operationId: createAccount
      summary: Create Account
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [email, password]
              properties:
                email:
                  type: string
                  format: email
                password:
                  type: string
                  format: password
                  minLength: 8
                birthYear:
                  type: integer
                  minimum: 1900
                  maximum: 2024
                plan:
                  type: string
                  enum: [free, pro, enterprise]
                interests:
                  type: array
                  items:
                    type: string
                    enum: [sports, music, travel]
                newsletter:
                  type: boolean
                bio:
                  type: string
                  format: textarea
                address:
                  type: object
                  properties:
                    street:
                      type: string
      responses:
        "200":
          description: ok
`

func TestImportConvertsRequestBody(t *testing.T) {
	t.Parallel()

	form, err := Import(context.Background(), []byte(petstoreDoc), "createAccount")
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	if form.ID != "createAccount" || form.Name != "Create Account" {
		t.Fatalf("form identity = %q / %q", form.ID, form.Name)
	}
	if form.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt was not set")
	}
	if err := form.Validate(); err != nil {
		t.Fatalf("imported form failed validation: %v", err)
	}

	// Nested object property is skipped; the rest arrive in name order.
	gotIDs := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		gotIDs = append(gotIDs, field.ID)
	}
	wantIDs := []string{"bio", "birthYear", "email", "interests", "newsletter", "password", "plan"}
	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	cases := []struct {
		id       string
		wantType schema.FieldType
	}{
		{"bio", schema.FieldTypeTextarea},
		{"birthYear", schema.FieldTypeNumber},
		{"email", schema.FieldTypeText},
		{"interests", schema.FieldTypeCheckbox},
		{"newsletter", schema.FieldTypeRadio},
		{"password", schema.FieldTypePassword},
		{"plan", schema.FieldTypeSelect},
	}
	for _, tc := range cases {
		field, ok := form.FieldByID(tc.id)
		if !ok {
			t.Fatalf("field %q missing", tc.id)
		}
		if field.Type != tc.wantType {
			t.Fatalf("field %q type = %q, want %q", tc.id, field.Type, tc.wantType)
		}
	}
}

func TestImportRules(t *testing.T) {
	t.Parallel()

	form, err := Import(context.Background(), []byte(petstoreDoc), "createAccount")
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	email, _ := form.FieldByID("email")
	if email.Validation == nil || !email.Validation.Required || !email.Validation.Email {
		t.Fatalf("email rules = %+v", email.Validation)
	}
	if email.Label != "Email" {
		t.Fatalf("email label = %q", email.Label)
	}

	password, _ := form.FieldByID("password")
	if password.Validation == nil || !password.Validation.Required {
		t.Fatalf("password rules = %+v", password.Validation)
	}
	if password.Validation.MinLength == nil || *password.Validation.MinLength != 8 {
		t.Fatalf("password minLength = %v", password.Validation.MinLength)
	}

	birthYear, _ := form.FieldByID("birthYear")
	if birthYear.Label != "Birth Year" {
		t.Fatalf("birthYear label = %q", birthYear.Label)
	}
	rules := birthYear.Rules()
	if rules.Min == nil || *rules.Min != 1900 || rules.Max == nil || *rules.Max != 2024 {
		t.Fatalf("birthYear range = %v..%v", rules.Min, rules.Max)
	}

	plan, _ := form.FieldByID("plan")
	if diff := cmp.Diff([]string{"free", "pro", "enterprise"}, plan.Options); diff != "" {
		t.Fatalf("plan options mismatch (-want +got):\n%s", diff)
	}

	newsletter, _ := form.FieldByID("newsletter")
	if diff := cmp.Diff([]string{"Yes", "No"}, newsletter.Options); diff != "" {
		t.Fatalf("newsletter options mismatch (-want +got):\n%s", diff)
	}
}

func TestImportFailures(t *testing.T) {
	t.Parallel()

	if _, err := Import(context.Background(), []byte(petstoreDoc), "missingOp"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("unknown operation error = %v, want ErrOperationNotFound", err)
	}

	noBody := `
openapi: 3.0.3
info:
  title: API
  version: 1.0.0
paths:
  /ping:
    get:
      operationId: ping
      responses:
        "200":
          description: ok
`
	if _, err := Import(context.Background(), []byte(noBody), "ping"); !errors.Is(err, ErrNoRequestBody) {
		t.Fatalf("bodyless operation error = %v, want ErrNoRequestBody", err)
	}

	if _, err := Import(context.Background(), nil, "ping"); err == nil {
		t.Fatalf("Import accepted empty payload")
	}
}

func TestLabelFromName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"email":          "Email",
		"birthYear":      "Birth Year",
		"home_address":   "Home Address",
		"zip-code":       "Zip Code",
		"line2":          "Line 2",
		"createAccount":  "Create Account",
		"HTTPSEndpoint":  "Httpsendpoint",
		"":               "",
		"already Spaced": "Already Spaced",
	}
	for input, want := range cases {
		if got := labelFromName(input); got != want {
			t.Fatalf("labelFromName(%q) = %q, want %q", input, got, want)
		}
	}
}
