package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Required",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeText, Label: "Full Name", Validation: &schema.ValidationRule{Required: true}},
			{ID: "tags", Type: schema.FieldTypeCheckbox, Label: "Tags", Options: []string{"a"}, Validation: &schema.ValidationRule{Required: true}},
			{ID: "note", Type: schema.FieldTypeTextarea, Label: "Note"},
		},
	}

	errs := engine.Validate(form, session.FormData{
		"name": "   ",
		"tags": []string{},
		"note": "",
	})

	want := Errors{
		"name": "Full Name is required",
		"tags": "Tags is required",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateNumberRange(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Range",
		Fields: []schema.Field{
			{ID: "qty", Type: schema.FieldTypeNumber, Label: "Quantity",
				Validation: &schema.ValidationRule{Min: floatPtr(1), Max: floatPtr(10)}},
		},
	}

	cases := []struct {
		value any
		want  string
	}{
		{"0", "Quantity must be at least 1"},
		{"11", "Quantity must be at most 10"},
		{"5", ""},
		{"", ""}, // optional and empty
	}
	for _, tc := range cases {
		errs := engine.Validate(form, session.FormData{"qty": tc.value})
		got := errs["qty"]
		if got != tc.want {
			t.Fatalf("value %v: message = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestValidateTextLength(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Length",
		Fields: []schema.Field{
			{ID: "code", Type: schema.FieldTypeText, Label: "Code",
				Validation: &schema.ValidationRule{MinLength: intPtr(3), MaxLength: intPtr(5)}},
		},
	}

	if got := engine.Validate(form, session.FormData{"code": "ab"})["code"]; got != "Code must be at least 3 characters" {
		t.Fatalf("short value message = %q", got)
	}
	if got := engine.Validate(form, session.FormData{"code": "abcdef"})["code"]; got != "Code must be at most 5 characters" {
		t.Fatalf("long value message = %q", got)
	}
	if got := engine.Validate(form, session.FormData{"code": "abcd"})["code"]; got != "" {
		t.Fatalf("valid value message = %q", got)
	}
}

func TestValidateLengthCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Length",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeText, Label: "Name",
				Validation: &schema.ValidationRule{MinLength: intPtr(5), MaxLength: intPtr(5)}},
		},
	}

	// "Renée" is five characters but six bytes; both limits must see five.
	if got := engine.Validate(form, session.FormData{"name": "Renée"})["name"]; got != "" {
		t.Fatalf("accented value message = %q", got)
	}
}

func TestValidateEmailHeuristic(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Email",
		Fields: []schema.Field{
			{ID: "email", Type: schema.FieldTypeText, Label: "Email Address"},
			{ID: "plain", Type: schema.FieldTypeText, Label: "Nickname"},
		},
	}

	errs := engine.Validate(form, session.FormData{
		"email": "not-an-email",
		"plain": "not-an-email",
	})
	if errs["email"] != "Please enter a valid email address" {
		t.Fatalf("email message = %q", errs["email"])
	}
	if _, ok := errs["plain"]; ok {
		t.Fatalf("heuristic fired for a non-email label")
	}

	errs = engine.Validate(form, session.FormData{"email": "a@b.com"})
	if _, ok := errs["email"]; ok {
		t.Fatalf("valid email rejected: %q", errs["email"])
	}
}

func TestValidateMobileHeuristic(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Mobile",
		Fields: []schema.Field{
			{ID: "phone", Type: schema.FieldTypeText, Label: "Phone Number"},
			{ID: "cell", Type: schema.FieldTypeMobile, Label: "Contact"},
		},
	}

	errs := engine.Validate(form, session.FormData{
		"phone": "12345",
		"cell":  "+1 555-000-1234",
	})
	if errs["phone"] != "Please enter a valid mobile number 10-15 digits" {
		t.Fatalf("phone message = %q", errs["phone"])
	}
	if _, ok := errs["cell"]; ok {
		t.Fatalf("valid mobile rejected: %q", errs["cell"])
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Password",
		Fields: []schema.Field{
			{ID: "pwd", Type: schema.FieldTypePassword, Label: "Password",
				Validation: &schema.ValidationRule{MinLength: intPtr(6), Password: true}},
		},
	}

	if got := engine.Validate(form, session.FormData{"pwd": "abcdefg"})["pwd"]; got != "Password must contain uppercase, lowercase, number, and special character" {
		t.Fatalf("weak password message = %q", got)
	}
	// Length failure is checked first and wins.
	if got := engine.Validate(form, session.FormData{"pwd": "ab"})["pwd"]; got != "Password must be at least 6 characters" {
		t.Fatalf("short password message = %q", got)
	}
	if got := engine.Validate(form, session.FormData{"pwd": "Abcdef1!"})["pwd"]; got != "" {
		t.Fatalf("strong password rejected: %q", got)
	}
}

func TestValidateSkipsDerived(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Derived",
		Fields: []schema.Field{
			{ID: "a", Type: schema.FieldTypeNumber, Label: "A"},
			{ID: "sum", Type: schema.FieldTypeDerived, Label: "Sum",
				Derived: &schema.DerivedSpec{ParentFields: []string{"a"}, Formula: "a + 1"},
				Validation: &schema.ValidationRule{Required: true}},
		},
	}

	errs := engine.Validate(form, session.FormData{"a": "1", "sum": session.FormulaErrorValue})
	if _, ok := errs["sum"]; ok {
		t.Fatalf("derived field was validated: %q", errs["sum"])
	}
}

func TestValidateCollectsAllFields(t *testing.T) {
	t.Parallel()

	engine := New()
	form := schema.Form{
		ID:   "f",
		Name: "Multi",
		Fields: []schema.Field{
			{ID: "a", Type: schema.FieldTypeText, Label: "A", Validation: &schema.ValidationRule{Required: true}},
			{ID: "b", Type: schema.FieldTypeText, Label: "B", Validation: &schema.ValidationRule{Required: true}},
		},
	}

	errs := engine.Validate(form, session.FormData{})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
}
