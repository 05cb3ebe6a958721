package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// GetBookmark returns the saved chapter index for a story.
// ok is false when the story has no bookmark.
func (s *Store) GetBookmark(ctx context.Context, storyID int64) (index int, ok bool, err error) {
	key := buildIDKey(bookmarkPrefix, storyID)
	defer releaseKey(key)

	err = s.getJSON(ctx, key, &index)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get bookmark %d: %w", storyID, err)
	}
	return index, true, nil
}

// SetBookmark saves the chapter index for a story.
func (s *Store) SetBookmark(ctx context.Context, storyID int64, index int) error {
	key := buildIDKey(bookmarkPrefix, storyID)
	defer releaseKey(key)

	if err := s.setJSON(ctx, key, index); err != nil {
		return fmt.Errorf("set bookmark %d: %w", storyID, err)
	}
	return nil
}

// DeleteBookmark removes a story's bookmark. Missing bookmarks are not an error.
func (s *Store) DeleteBookmark(ctx context.Context, storyID int64) error {
	key := buildIDKey(bookmarkPrefix, storyID)
	defer releaseKey(key)

	if err := s.deleteKey(ctx, key); err != nil {
		return fmt.Errorf("delete bookmark %d: %w", storyID, err)
	}
	return nil
}

// ListBookmarks returns every saved bookmark ordered by story id.
// Entries whose value cannot be decoded are skipped.
func (s *Store) ListBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.Bookmark
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookmarkPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			storyID, ok := parseIDKey(bookmarkPrefix, item.Key())
			if !ok {
				continue
			}
			var index int
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &index)
			}); err != nil {
				s.logger.Warn("Skipping unreadable bookmark", "story_id", storyID, "error", err)
				continue
			}
			out = append(out, domain.Bookmark{StoryID: storyID, Index: index})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	// Keys sort lexically; order numerically for stable output.
	slices.SortFunc(out, func(a, b domain.Bookmark) int {
		switch {
		case a.StoryID < b.StoryID:
			return -1
		case a.StoryID > b.StoryID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}
