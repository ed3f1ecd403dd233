// Package openapi imports an OpenAPI operation's request body as a form
// schema, so existing API documents can seed the form builder.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formfill/pkg/schema"
)

var (
	// ErrOperationNotFound signals an operation id absent from the document.
	ErrOperationNotFound = errors.New("openapi importer: operation not found")
	// ErrNoRequestBody signals an operation without an object request body.
	ErrNoRequestBody = errors.New("openapi importer: operation has no object request body")
)

// Import parses an OpenAPI document and converts the named operation's JSON
// request body into a form schema. Properties become fields in name order;
// the OpenAPI `required` list drives the required rule.
func Import(ctx context.Context, raw []byte, operationID string) (schema.Form, error) {
	if len(raw) == 0 {
		return schema.Form{}, errors.New("openapi importer: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return schema.Form{}, fmt.Errorf("openapi importer: load document: %w", err)
	}

	operation, ok := findOperation(doc, operationID)
	if !ok {
		return schema.Form{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	body := requestBodySchema(operation)
	if body == nil || len(body.Properties) == 0 {
		return schema.Form{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	required := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	form := schema.Form{
		ID:        operationID,
		Name:      formName(operation, operationID),
		CreatedAt: time.Now().UTC(),
	}
	for _, name := range names {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, isRequired := required[name]
		field, ok := convertProperty(name, ref.Value, isRequired)
		if !ok {
			continue
		}
		form.Fields = append(form.Fields, field)
	}
	if len(form.Fields) == 0 {
		return schema.Form{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}
	return form, nil
}

func findOperation(doc *openapi3.T, operationID string) (*openapi3.Operation, bool) {
	if doc.Paths == nil {
		return nil, false
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Patch,
		} {
			if operation != nil && operation.OperationID == operationID {
				return operation, true
			}
		}
	}
	return nil, false
}

func requestBodySchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func formName(operation *openapi3.Operation, operationID string) string {
	if summary := strings.TrimSpace(operation.Summary); summary != "" {
		return summary
	}
	return labelFromName(operationID)
}

func convertProperty(name string, prop *openapi3.Schema, required bool) (schema.Field, bool) {
	field := schema.Field{
		ID:    name,
		Label: labelFromName(name),
	}
	if title := strings.TrimSpace(prop.Title); title != "" {
		field.Label = title
	}
	if prop.Default != nil {
		field.DefaultValue = prop.Default
	}

	rules := schema.ValidationRule{Required: required}
	hasRules := required

	switch propertyType(prop) {
	case "string":
		field.Type = stringFieldType(prop)
		if field.Type.HasOptions() {
			field.Options = enumOptions(prop.Enum)
			if len(field.Options) == 0 {
				return schema.Field{}, false
			}
		}
		if prop.MinLength != 0 {
			value := int(prop.MinLength)
			rules.MinLength = &value
			hasRules = true
		}
		if prop.MaxLength != nil {
			value := int(*prop.MaxLength)
			rules.MaxLength = &value
			hasRules = true
		}
		if prop.Format == "email" {
			rules.Email = true
			hasRules = true
		}
	case "integer", "number":
		field.Type = schema.FieldTypeNumber
		if prop.Min != nil {
			value := *prop.Min
			rules.Min = &value
			hasRules = true
		}
		if prop.Max != nil {
			value := *prop.Max
			rules.Max = &value
			hasRules = true
		}
	case "array":
		// Only arrays over a closed string enum map cleanly to checkboxes.
		if prop.Items == nil || prop.Items.Value == nil {
			return schema.Field{}, false
		}
		options := enumOptions(prop.Items.Value.Enum)
		if len(options) == 0 {
			return schema.Field{}, false
		}
		field.Type = schema.FieldTypeCheckbox
		field.Options = options
	case "boolean":
		field.Type = schema.FieldTypeRadio
		field.Options = []string{"Yes", "No"}
	default:
		// Nested objects and unsupported types are skipped rather than
		// flattened; the form model is intentionally flat.
		return schema.Field{}, false
	}

	if hasRules {
		field.Validation = &rules
	}
	return field, true
}

func propertyType(prop *openapi3.Schema) string {
	if prop.Type == nil {
		return ""
	}
	values := prop.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func stringFieldType(prop *openapi3.Schema) schema.FieldType {
	if len(prop.Enum) > 0 {
		return schema.FieldTypeSelect
	}
	switch prop.Format {
	case "date", "date-time":
		return schema.FieldTypeDate
	case "password":
		return schema.FieldTypePassword
	case "textarea":
		return schema.FieldTypeTextarea
	case "mobile", "phone":
		return schema.FieldTypeMobile
	default:
		return schema.FieldTypeText
	}
}

func enumOptions(enum []any) []string {
	out := make([]string, 0, len(enum))
	for _, value := range enum {
		text := strings.TrimSpace(fmt.Sprint(value))
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}
