package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chroniclesapp/chronicles-server/internal/backup"
	"github.com/chroniclesapp/chronicles-server/internal/watcher"
)

// maxInboxFile bounds the size of a dropped document.
const maxInboxFile = 32 << 20

// Suffixes appended to processed inbox files. Neither is an accepted
// extension, so renamed files are not picked up again.
const (
	importedSuffix = ".imported"
	failedSuffix   = ".failed"
)

// InboxService imports documents dropped into the inbox directory.
// Processed files are renamed rather than deleted so the user can see what
// happened to each one.
type InboxService struct {
	library *LibraryService
	dir     string
	opts    watcher.Options
	pacer   Pacer
	logger  *slog.Logger
}

// Pacer delays work for a key. *ratelimit.KeyedRateLimiter implements it.
type Pacer interface {
	Wait(ctx context.Context, key string) error
}

// NewInboxService creates an inbox service for dir.
func NewInboxService(library *LibraryService, dir string, opts watcher.Options, logger *slog.Logger) *InboxService {
	return &InboxService{library: library, dir: dir, opts: opts, logger: logger}
}

// WithPacer makes the inbox wait on p before each import, so a burst of
// dropped files is spread out instead of hammering the library lock.
func (s *InboxService) WithPacer(p Pacer) *InboxService {
	s.pacer = p
	return s
}

// Run imports files as the watcher reports them until ctx is done or the
// event channel closes.
func (s *InboxService) Run(ctx context.Context, events <-chan watcher.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("inbox watcher error", "error", err)
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type != watcher.EventAdded {
				continue
			}
			if _, err := s.ImportFile(ctx, ev.Path); err != nil {
				s.logger.Warn("inbox import failed", "path", ev.Path, "error", err)
			}
		}
	}
}

// ScanExisting imports files that were already in the inbox before the
// watcher started. Subdirectories are not descended into.
func (s *InboxService) ScanExisting(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	imported := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		path := filepath.Join(s.dir, e.Name())
		if e.IsDir() || !s.opts.Matches(path) {
			continue
		}
		if _, err := s.ImportFile(ctx, path); err != nil {
			s.logger.Warn("inbox import failed", "path", path, "error", err)
			continue
		}
		imported++
	}
	return imported, nil
}

// ImportFile decodes and imports one file, then renames it with a suffix
// recording the outcome.
func (s *InboxService) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	if s.pacer != nil {
		if err := s.pacer.Wait(ctx, "inbox"); err != nil {
			return ImportResult{}, err
		}
	}

	raw, err := readLimited(path, maxInboxFile)
	if err != nil {
		return ImportResult{}, err
	}

	snap, err := backup.DecodeFile(path, raw)
	if err != nil {
		s.markProcessed(path, failedSuffix)
		return ImportResult{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	result, err := s.library.ImportSnapshot(ctx, "inbox:"+filepath.Base(path), snap)
	if err != nil {
		s.markProcessed(path, failedSuffix)
		return ImportResult{}, err
	}

	s.markProcessed(path, importedSuffix)
	s.logger.Info("inbox file imported", "path", path, "added", len(result.Added), "skipped", result.Skipped)
	return result, nil
}

func (s *InboxService) markProcessed(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to rename inbox file", "path", path, "error", err)
	}
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes", filepath.Base(path), limit)
	}
	return raw, nil
}
