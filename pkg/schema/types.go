package schema

import "time"

// FieldType enumerates the input kinds a form author can place on a form.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeMobile   FieldType = "mobile"
	FieldTypePassword FieldType = "password"
	FieldTypeDerived  FieldType = "derived"
)

// HasOptions reports whether the field type renders a fixed option list and
// therefore requires a non-empty Options slice.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeTextarea, FieldTypeSelect,
		FieldTypeRadio, FieldTypeCheckbox, FieldTypeDate, FieldTypeMobile,
		FieldTypePassword, FieldTypeDerived:
		return true
	default:
		return false
	}
}

// ValidationRule is the optional per-field rule set. Each pointer/flag enables
// the corresponding check for field types where it is meaningful; nil or false
// disables it.
type ValidationRule struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Email     bool     `json:"email,omitempty" yaml:"email,omitempty"`
	Password  bool     `json:"password,omitempty" yaml:"password,omitempty"`
}

// DerivedSpec configures a derived field: the formula text and the parent
// field ids the author declared as inputs. Parent ids are the variables the
// builder UI surfaces as available to the formula.
type DerivedSpec struct {
	ParentFields []string `json:"parentFields" yaml:"parentFields"`
	Formula      string   `json:"formula" yaml:"formula"`
}

// Field models one form element. The id doubles as the formula variable name
// and the FormData key, so it must stay stable for the field's lifetime.
type Field struct {
	ID           string          `json:"id" yaml:"id"`
	Type         FieldType       `json:"type" yaml:"type"`
	Label        string          `json:"label" yaml:"label"`
	DefaultValue any             `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Options      []string        `json:"options,omitempty" yaml:"options,omitempty"`
	Validation   *ValidationRule `json:"validation,omitempty" yaml:"validation,omitempty"`
	Derived      *DerivedSpec    `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// IsDerived reports whether the field's value is computed rather than entered.
func (f Field) IsDerived() bool {
	return f.Type == FieldTypeDerived
}

// Rules returns the field's validation rule set, or the zero value when none
// was configured.
func (f Field) Rules() ValidationRule {
	if f.Validation == nil {
		return ValidationRule{}
	}
	return *f.Validation
}

// Form is the authored structure of a form: its identity and ordered fields.
// Field order is both display order and the order derived fields recompute in.
type Form struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Fields    []Field   `json:"fields" yaml:"fields"`
}

// FieldByID looks up a field by id.
func (f Form) FieldByID(id string) (Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// DerivedFields returns the form's derived fields in schema order.
func (f Form) DerivedFields() []Field {
	var out []Field
	for _, field := range f.Fields {
		if field.IsDerived() {
			out = append(out, field)
		}
	}
	return out
}
