// Package html renders a filled form as a static HTML summary page. It is a
// read-only view over a response, suitable for archiving or emailing.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
	"github.com/goliatone/go-formfill/pkg/validation"
)

const templateName = "templates/form.html"

// Option configures the renderer before construction.
type Option func(*config)

type config struct {
	templateFS fs.FS
	policy     *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must contain templates/form.html.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithPolicy overrides the sanitization policy applied to labels and values.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer produces the summary page from a schema, its data and any
// validation errors.
type Renderer struct {
	template *pongo2.Template
	policy   *bluemonday.Policy
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	set := pongo2.NewSet("formfill-html", pongo2.NewFSLoader(cfg.templateFS))
	template, err := set.FromFile(templateName)
	if err != nil {
		return nil, fmt.Errorf("html renderer: load template: %w", err)
	}
	return &Renderer{template: template, policy: cfg.policy}, nil
}

type row struct {
	Label string
	Value string
	Error string
}

// Render writes the summary page for the given response. Fields appear in
// schema order; all text is sanitized before it reaches the template.
func (r *Renderer) Render(ctx context.Context, form schema.Form, data session.FormData, errs validation.Errors) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]row, 0, len(form.Fields))
	for _, field := range form.Fields {
		rows = append(rows, row{
			Label: r.clean(field.Label),
			Value: r.clean(displayValue(field, data[field.ID])),
			Error: r.clean(errs[field.ID]),
		})
	}

	out, err := r.template.ExecuteBytes(pongo2.Context{
		"title":     r.clean(form.Name),
		"hasErrors": !errs.Valid(),
		"rows":      rows,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: execute template: %w", err)
	}
	return out, nil
}

func (r *Renderer) clean(text string) string {
	return strings.TrimSpace(r.policy.Sanitize(text))
}

func displayValue(field schema.Field, value any) string {
	switch {
	case value == nil:
		return ""
	case field.Type == schema.FieldTypePassword:
		if fmt.Sprint(value) == "" {
			return ""
		}
		return strings.Repeat("*", 8)
	}
	if selected, ok := value.([]string); ok {
		return strings.Join(selected, ", ")
	}
	return fmt.Sprint(value)
}
