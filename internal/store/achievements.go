package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// ListUnlocks returns the achievement ledger in unlock order.
func (s *Store) ListUnlocks(ctx context.Context) ([]domain.Unlock, error) {
	var unlocks []domain.Unlock
	err := s.getJSON(ctx, []byte(ledgerKey), &unlocks)
	if errors.Is(err, ErrNotFound) {
		return []domain.Unlock{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read achievement ledger: %w", err)
	}
	return unlocks, nil
}

// AddUnlock appends u to the ledger unless its id is already present.
// Reports whether the ledger changed. Read and write happen in one
// transaction so concurrent unlocks of the same id record it once.
func (s *Store) AddUnlock(ctx context.Context, u domain.Unlock) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	added := false
	err := s.db.Update(func(txn *badger.Txn) error {
		var unlocks []domain.Unlock
		if err := readJSON(txn, []byte(ledgerKey), &unlocks); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if slices.ContainsFunc(unlocks, func(x domain.Unlock) bool { return x.ID == u.ID }) {
			return nil
		}
		added = true
		return writeJSON(txn, []byte(ledgerKey), append(unlocks, u))
	})
	if err != nil {
		return false, fmt.Errorf("add unlock %s: %w", u.ID, err)
	}
	return added, nil
}
