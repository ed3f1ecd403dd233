// Package badgerstore persists schemas and submissions in BadgerDB, an
// embedded key-value store. Values are JSON; keys are prefixed so a schema
// delete can cascade to exactly that form's submissions with one prefix scan.
//
// Key layout:
//
//	schema/<formID>                     -> schema.Form
//	sub/<formID>/<unixnano>-<subID>     -> submission.Submission
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/store"
	"github.com/goliatone/go-formfill/pkg/submission"
)

const (
	schemaPrefix     = "schema/"
	submissionPrefix = "sub/"
)

// Option configures the store before the database opens.
type Option func(*config)

type config struct {
	path     string
	inMemory bool
	logger   *slog.Logger
}

// WithPath stores the database under the given directory.
func WithPath(path string) Option {
	return func(cfg *config) {
		cfg.path = path
	}
}

// WithInMemory keeps everything in memory; data is lost on Close. Useful for
// tests.
func WithInMemory() Option {
	return func(cfg *config) {
		cfg.inMemory = true
	}
}

// WithLogger routes Badger's internal logging through slog. Without it the
// database stays silent.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// Store implements store.Store on top of one Badger database.
type Store struct {
	db *badger.DB
}

var _ store.Store = (*Store)(nil)

// Open creates the store, opening (or creating) the database directory.
func Open(options ...Option) (*Store, error) {
	var cfg config
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if !cfg.inMemory && cfg.path == "" {
		return nil, errors.New("badgerstore: path is required for a persistent store")
	}

	opts := badger.DefaultOptions(cfg.path).WithInMemory(cfg.inMemory)
	if cfg.logger != nil {
		opts = opts.WithLogger(slogAdapter{logger: cfg.logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database. The store is unusable afterwards.
func (s *Store) Close() error {
	return s.db.Close()
}

func schemaKey(id string) []byte {
	return []byte(schemaPrefix + id)
}

func submissionKey(sub submission.Submission) []byte {
	return []byte(submissionPrefix + sub.FormID + "/" +
		strconv.FormatInt(sub.SubmittedAt.UnixNano(), 10) + "-" + sub.ID)
}

// GetByID returns the stored schema or store.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (schema.Form, error) {
	if err := ctx.Err(); err != nil {
		return schema.Form{}, err
	}
	var form schema.Form
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: schema %q", store.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("badgerstore: get schema %q: %w", id, err)
		}
		return item.Value(func(raw []byte) error {
			return json.Unmarshal(raw, &form)
		})
	})
	if err != nil {
		return schema.Form{}, err
	}
	return form, nil
}

// Save stores a new schema; an existing id is rejected.
func (s *Store) Save(ctx context.Context, form schema.Form) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(schemaKey(form.ID)); err == nil {
			return fmt.Errorf("%w: schema %q", store.ErrDuplicateID, form.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("badgerstore: save schema %q: %w", form.ID, err)
		}
		return s.putSchema(txn, form)
	})
}

// Update replaces an existing schema.
func (s *Store) Update(ctx context.Context, form schema.Form) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(schemaKey(form.ID)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: schema %q", store.ErrNotFound, form.ID)
		} else if err != nil {
			return fmt.Errorf("badgerstore: update schema %q: %w", form.ID, err)
		}
		return s.putSchema(txn, form)
	})
}

func (s *Store) putSchema(txn *badger.Txn, form schema.Form) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("badgerstore: encode schema %q: %w", form.ID, err)
	}
	if err := txn.Set(schemaKey(form.ID), raw); err != nil {
		return fmt.Errorf("badgerstore: put schema %q: %w", form.ID, err)
	}
	return nil
}

// Delete removes the schema and cascades to that form's submissions inside
// the same transaction.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(schemaKey(id)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: schema %q", store.ErrNotFound, id)
		} else if err != nil {
			return fmt.Errorf("badgerstore: delete schema %q: %w", id, err)
		}
		if err := txn.Delete(schemaKey(id)); err != nil {
			return fmt.Errorf("badgerstore: delete schema %q: %w", id, err)
		}

		keys, err := collectKeys(txn, []byte(submissionPrefix+id+"/"))
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("badgerstore: cascade delete %q: %w", string(key), err)
			}
		}
		return nil
	})
}

// List returns all stored schemas ordered by id.
func (s *Store) List(ctx context.Context) ([]schema.Form, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []schema.Form
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(schemaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var form schema.Form
			err := it.Item().Value(func(raw []byte) error {
				return json.Unmarshal(raw, &form)
			})
			if err != nil {
				return fmt.Errorf("badgerstore: decode schema: %w", err)
			}
			out = append(out, form)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Append records one submission. Keys embed the submit timestamp so listing
// preserves append order.
func (s *Store) Append(ctx context.Context, sub submission.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("badgerstore: encode submission %q: %w", sub.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(submissionKey(sub), raw); err != nil {
			return fmt.Errorf("badgerstore: append submission %q: %w", sub.ID, err)
		}
		return nil
	})
}

// ListByFormID returns the form's submissions in append order.
func (s *Store) ListByFormID(ctx context.Context, formID string) ([]submission.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []submission.Submission
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(submissionPrefix + formID + "/")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var sub submission.Submission
			err := it.Item().Value(func(raw []byte) error {
				return json.Unmarshal(raw, &sub)
			})
			if err != nil {
				return fmt.Errorf("badgerstore: decode submission: %w", err)
			}
			out = append(out, sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByFormID drops every submission for one form id.
func (s *Store) DeleteByFormID(ctx context.Context, formID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		keys, err := collectKeys(txn, []byte(submissionPrefix+formID+"/"))
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("badgerstore: delete %q: %w", string(key), err)
			}
		}
		return nil
	})
}

func collectKeys(txn *badger.Txn, prefix []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

// slogAdapter bridges slog to Badger's Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (l slogAdapter) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l slogAdapter) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l slogAdapter) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l slogAdapter) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
