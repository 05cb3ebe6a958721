// Package store persists the Chronicles library in an embedded Badger database.
//
// Values are JSON documents under stable string keys:
//
//	stories:v2              the library, an ordered JSON array of stories
//	bookmark:<storyID>      saved chapter index for one story
//	achievements:ledger     unlocked achievements
//	library:corrupt:<unix>  quarantined library blobs that failed to parse
//	blurhash:<sha1>         cached image placeholders
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Options configures how the database is opened.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM.
	InMemory bool
	// ReadOnly opens an existing database for inspection.
	ReadOnly bool
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens the database described by opts.
func New(opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(opts.Path).
			WithSyncWrites(true).
			WithCompactL0OnClose(true).
			WithReadOnly(opts.ReadOnly)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	logger.Info("Badger database opened", "path", opts.Path, "in_memory", opts.InMemory, "read_only", opts.ReadOnly)

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

// getJSON decodes the value at key into dest. Missing keys return ErrNotFound.
func (s *Store) getJSON(ctx context.Context, key []byte, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, key, dest)
	})
}

// setJSON encodes value and stores it at key.
func (s *Store) setJSON(ctx context.Context, key []byte, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// deleteKey removes a key. Deleting a missing key is not an error.
func (s *Store) deleteKey(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func readJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, dest); err != nil {
			return ErrCorruptValue.WithCause(err)
		}
		return nil
	})
}

func writeJSON(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	// Badger keeps a reference to key until commit; pooled buffers must be copied.
	return txn.Set(append([]byte(nil), key...), data)
}

// deletePrefix removes every key starting with prefix inside txn.
func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	var keys [][]byte
	it := txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
