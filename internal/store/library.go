package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// LoadLibrary reads the ordered story list. A missing blob yields an empty
// library. An unparsable blob yields ErrCorruptLibrary.
func (s *Store) LoadLibrary(ctx context.Context) ([]*domain.Story, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(libraryKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []*domain.Story{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}

	var stories []*domain.Story
	if err := json.Unmarshal(raw, &stories); err != nil {
		return nil, ErrCorruptLibrary.WithCause(err)
	}

	out := stories[:0]
	for _, st := range stories {
		if st != nil {
			out = append(out, st)
		}
	}
	return out, nil
}

// SaveLibrary replaces the library blob.
func (s *Store) SaveLibrary(ctx context.Context, stories []*domain.Story) error {
	return s.setJSON(ctx, []byte(libraryKey), nonNil(stories))
}

// SaveLibraryDropBookmarks replaces the library blob and removes the bookmarks
// of the given stories in one transaction, so a deleted story never leaves an
// orphaned bookmark behind.
func (s *Store) SaveLibraryDropBookmarks(ctx context.Context, stories []*domain.Story, storyIDs ...int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := writeJSON(txn, []byte(libraryKey), nonNil(stories)); err != nil {
			return err
		}
		for _, id := range storyIDs {
			if err := txn.Delete([]byte(bookmarkPrefix + strconv.FormatInt(id, 10))); err != nil {
				return err
			}
		}
		return nil
	})
}

// QuarantineLibrary copies the current library blob to library:corrupt:<unix>
// and removes it from the live key, returning the quarantine key.
// Returns "" when there is no blob.
func (s *Store) QuarantineLibrary(ctx context.Context, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := quarantinePrefix + strconv.FormatInt(at.Unix(), 10)
	moved := false

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(libraryKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(key), raw); err != nil {
			return err
		}
		moved = true
		return txn.Delete([]byte(libraryKey))
	})
	if err != nil {
		return "", fmt.Errorf("quarantine library: %w", err)
	}
	if !moved {
		return "", nil
	}

	s.logger.Warn("Library blob quarantined", "key", key)
	return key, nil
}

// QuarantinedKeys lists the keys of quarantined library blobs, oldest first.
func (s *Store) QuarantinedKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(quarantinePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()))
		}
		return nil
	})
	return keys, err
}

// RestoreSnapshot replaces library, bookmarks and achievement ledger at once.
func (s *Store) RestoreSnapshot(ctx context.Context, stories []*domain.Story, bookmarks []domain.Bookmark, unlocks []domain.Unlock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := writeJSON(txn, []byte(libraryKey), nonNil(stories)); err != nil {
			return err
		}
		if err := deletePrefix(txn, []byte(bookmarkPrefix)); err != nil {
			return err
		}
		for _, b := range bookmarks {
			if err := writeJSON(txn, []byte(bookmarkPrefix+strconv.FormatInt(b.StoryID, 10)), b.Index); err != nil {
				return err
			}
		}
		if unlocks == nil {
			unlocks = []domain.Unlock{}
		}
		return writeJSON(txn, []byte(ledgerKey), unlocks)
	})
}

func nonNil(stories []*domain.Story) []*domain.Story {
	if stories == nil {
		return []*domain.Story{}
	}
	return stories
}
