package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	formfill "github.com/goliatone/go-formfill"
	"github.com/goliatone/go-formfill/internal/openapi"
	"github.com/goliatone/go-formfill/pkg/renderers/html"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/store"
	"github.com/goliatone/go-formfill/pkg/store/badgerstore"
	"github.com/goliatone/go-formfill/pkg/tui"
)

func main() {
	schemaPath := flag.String("schema", "", "form schema file (JSON or YAML)")
	importPath := flag.String("import", "", "OpenAPI document to import a form from")
	operation := flag.String("operation", "", "operation ID to import (with -import)")
	storeDir := flag.String("store", "", "Badger database directory (in-memory if empty)")
	list := flag.String("list", "", "list submissions for the given form ID and exit")
	output := flag.String("output", "", "write an HTML summary of the submission here")
	flag.Parse()

	ctx := context.Background()

	engine, closeStore, err := openEngine(*storeDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	if *list != "" {
		if err := listSubmissions(ctx, engine, *list); err != nil {
			log.Fatalf("Failed to list submissions: %v", err)
		}
		return
	}

	form, err := loadForm(ctx, *schemaPath, *importPath, *operation)
	if err != nil {
		log.Fatalf("Failed to load form: %v", err)
	}

	if err := engine.CreateForm(ctx, form); err != nil {
		// An existing copy in a persistent store is fine; keep filling.
		if !errors.Is(err, store.ErrDuplicateID) {
			log.Fatalf("Failed to store form: %v", err)
		}
	}

	sess, err := engine.NewSession(ctx, form.ID)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}

	filler := tui.New()
	data, err := filler.Fill(ctx, sess)
	if err != nil {
		log.Fatalf("Fill aborted: %v", err)
	}

	sub, err := engine.Submit(ctx, sess)
	if err != nil {
		log.Fatalf("Failed to submit: %v", err)
	}
	fmt.Printf("Submitted %s for form %q\n", sub.ID, form.Name)

	if *output != "" {
		renderer, err := html.New()
		if err != nil {
			log.Fatalf("Failed to build renderer: %v", err)
		}
		page, err := renderer.Render(ctx, form, data, engine.Validate(form, data))
		if err != nil {
			log.Fatalf("Failed to render summary: %v", err)
		}
		if err := os.WriteFile(*output, page, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Summary written to %s\n", *output)
	}
}

func openEngine(storeDir string) (*formfill.Engine, func(), error) {
	if storeDir == "" {
		return formfill.New(), func() {}, nil
	}
	backend, err := badgerstore.Open(badgerstore.WithPath(storeDir))
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := backend.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}
	return formfill.New(formfill.WithStore(backend)), closeStore, nil
}

func loadForm(ctx context.Context, schemaPath, importPath, operation string) (schema.Form, error) {
	switch {
	case schemaPath != "" && importPath != "":
		return schema.Form{}, fmt.Errorf("use either -schema or -import, not both")
	case schemaPath != "":
		return schema.LoadFile(schemaPath)
	case importPath != "":
		if operation == "" {
			return schema.Form{}, fmt.Errorf("-import requires -operation")
		}
		raw, err := os.ReadFile(importPath)
		if err != nil {
			return schema.Form{}, err
		}
		return openapi.Import(ctx, raw, operation)
	default:
		return schema.Form{}, fmt.Errorf("provide -schema or -import")
	}
}

func listSubmissions(ctx context.Context, engine *formfill.Engine, formID string) error {
	subs, err := engine.Submissions(ctx, formID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Printf("No submissions for form %q\n", formID)
		return nil
	}
	for _, sub := range subs {
		fmt.Printf("%s  %s\n", sub.SubmittedAt.Format("2006-01-02 15:04:05"), sub.ID)
		for key, value := range sub.Data {
			fmt.Printf("    %s: %v\n", key, value)
		}
	}
	return nil
}
