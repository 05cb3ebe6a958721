package store

import (
	"context"
	"crypto/sha1" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"errors"
	"fmt"
)

type placeholder struct {
	Hash    string `json:"hash"`
	ModTime int64  `json:"mod_time"`
}

func placeholderKey(path string) []byte {
	sum := sha1.Sum([]byte(path)) //nolint:gosec // content addressing, not security
	return buildKey(placeholderPrefix, hex.EncodeToString(sum[:]))
}

// GetPlaceholder returns the cached blurhash for an image path. The cache entry
// is only valid while modTime matches the file's modification time.
func (s *Store) GetPlaceholder(ctx context.Context, path string, modTime int64) (string, bool, error) {
	key := placeholderKey(path)
	defer releaseKey(key)

	var p placeholder
	err := s.getJSON(ctx, key, &p)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get placeholder: %w", err)
	}
	if p.ModTime != modTime {
		return "", false, nil
	}
	return p.Hash, true, nil
}

// SetPlaceholder caches a blurhash for an image path.
func (s *Store) SetPlaceholder(ctx context.Context, path string, modTime int64, hash string) error {
	key := placeholderKey(path)
	defer releaseKey(key)

	if err := s.setJSON(ctx, key, placeholder{Hash: hash, ModTime: modTime}); err != nil {
		return fmt.Errorf("set placeholder: %w", err)
	}
	return nil
}
