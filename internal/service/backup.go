package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/backup"
	"github.com/chroniclesapp/chronicles-server/internal/domain"
	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

// BackupService writes and restores full zip archives: the library, every
// bookmark and the achievement ledger.
type BackupService struct {
	store    *store.Store
	library  *LibraryService
	notifier domain.AchievementNotifier
	events   EventEmitter
	logger   *slog.Logger
	now      func() time.Time
}

// NewBackupService creates a new backup service.
func NewBackupService(store *store.Store, library *LibraryService, notifier domain.AchievementNotifier, events EventEmitter, logger *slog.Logger) *BackupService {
	if notifier == nil {
		notifier = domain.NoopNotifier{}
	}
	if events == nil {
		events = NoopEmitter{}
	}
	return &BackupService{
		store:    store,
		library:  library,
		notifier: notifier,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Filename returns the download name for an archive created now.
func (s *BackupService) Filename() string {
	return backup.ArchiveFilename(s.now())
}

// Write streams a backup archive to w.
func (s *BackupService) Write(ctx context.Context, w io.Writer) (*backup.Manifest, error) {
	bookmarks, err := s.store.ListBookmarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	unlocks, err := s.store.ListUnlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	m, err := backup.WriteArchive(w, backup.Contents{
		Stories:   s.library.List(ctx),
		Bookmarks: bookmarks,
		Unlocks:   unlocks,
	}, s.now())
	if err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	s.logger.Info("backup written",
		"stories", m.Counts.Stories,
		"chapters", m.Counts.Chapters,
		"bookmarks", m.Counts.Bookmarks,
		"achievements", m.Counts.Achievements,
	)
	s.notifier.Unlock(ctx, domain.AchievementArchivist)
	return m, nil
}

// Restore verifies an archive and replaces library, bookmarks and ledger
// with its contents. A rejected archive leaves the store untouched.
func (s *BackupService) Restore(ctx context.Context, r io.ReaderAt, size int64) (*backup.Manifest, error) {
	contents, m, err := backup.ReadArchive(r, size)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidManifest) || errors.Is(err, backup.ErrVersionMismatch) ||
			errors.Is(err, backup.ErrCorruptedBackup) {
			return nil, domainerrors.InvalidImport("backup archive rejected", err)
		}
		return nil, fmt.Errorf("read archive: %w", err)
	}

	err = s.library.ReplaceFromStore(ctx, func(ctx context.Context) error {
		if err := s.store.RestoreSnapshot(ctx, contents.Stories, contents.Bookmarks, contents.Unlocks); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("backup restored", "stories", m.Counts.Stories, "created_at", m.CreatedAt)
	s.events.Emit(sse.NewLibraryRestoredEvent(len(contents.Stories)))
	return m, nil
}
