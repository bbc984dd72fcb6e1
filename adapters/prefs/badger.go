// Package prefs persists the customization choices in an embedded
// BadgerDB store, one entry per key.
package prefs

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/danarifki/temani/domain/repositories"
)

// BadgerStore implements the preference repository on BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// Options configures the store.
type Options struct {
	// Dir is the data directory. Required unless InMemory is set.
	Dir string

	// InMemory runs the store without disk persistence. Used by tests.
	InMemory bool
}

// NewBadgerStore opens the store.
func NewBadgerStore(opts Options, logger *zap.Logger) (*BadgerStore, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("prefs: data directory is required")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

// Get reads one preference entry.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repositories.ErrPreferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read preference %q: %w", key, err)
	}
	return value, nil
}

// Set writes one preference entry. Called on every change.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("write preference %q: %w", key, err)
	}
	s.logger.Debug("Preference updated", zap.String("key", key))
	return nil
}

// Close releases the store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
