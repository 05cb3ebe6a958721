package backup

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"strings"
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/backup/stream"
	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// Contents is everything a backup archive carries.
type Contents struct {
	Stories   []*domain.Story
	Bookmarks []domain.Bookmark
	Unlocks   []domain.Unlock
}

// WriteArchive writes c as a zip archive to w and returns its manifest.
func WriteArchive(w io.Writer, c Contents, now time.Time) (*Manifest, error) {
	zw := zip.NewWriter(w)
	sum := sha256.New()

	m := &Manifest{Version: FormatVersion, CreatedAt: now.UTC(), App: "chronicles"}

	stories, err := writeEntries(zw, storiesFile, sum, c.Stories)
	if err != nil {
		return nil, err
	}
	m.Counts.Stories = stories
	for _, s := range c.Stories {
		m.Counts.Chapters += s.ChapterCount()
	}

	if m.Counts.Bookmarks, err = writeEntries(zw, bookmarksFile, sum, c.Bookmarks); err != nil {
		return nil, err
	}
	if m.Counts.Achievements, err = writeEntries(zw, achievementsFile, sum, c.Unlocks); err != nil {
		return nil, err
	}

	m.Checksum = "sha256:" + hex.EncodeToString(sum.Sum(nil))

	mw, err := zw.Create(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return m, nil
}

func writeEntries[T any](zw *zip.Writer, name string, sum hash.Hash, items []T) (int, error) {
	sw, err := stream.NewWriter(zw, name, sum)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}
	for _, item := range items {
		if err := sw.Write(item); err != nil {
			return 0, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return sw.Count(), nil
}

// ReadArchive parses and verifies a backup archive. Any malformed line, a
// count mismatch or a checksum mismatch fails with ErrCorruptedBackup.
func ReadArchive(r io.ReaderAt, size int64) (*Contents, *Manifest, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	mf, err := stream.OpenFile(zr, manifestFile)
	if err != nil {
		return nil, nil, ErrInvalidManifest
	}
	var m Manifest
	err = json.NewDecoder(mf).Decode(&m)
	mf.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if major, _, _ := strings.Cut(m.Version, "."); major != "1" {
		return nil, nil, fmt.Errorf("%w: %s", ErrVersionMismatch, m.Version)
	}

	sum := sha256.New()
	c := &Contents{}

	if c.Stories, err = readEntries[*domain.Story](zr, storiesFile, sum); err != nil {
		return nil, nil, err
	}
	if c.Bookmarks, err = readEntries[domain.Bookmark](zr, bookmarksFile, sum); err != nil {
		return nil, nil, err
	}
	if c.Unlocks, err = readEntries[domain.Unlock](zr, achievementsFile, sum); err != nil {
		return nil, nil, err
	}

	if got := "sha256:" + hex.EncodeToString(sum.Sum(nil)); got != m.Checksum {
		return nil, nil, fmt.Errorf("%w: checksum %s, manifest says %s", ErrCorruptedBackup, got, m.Checksum)
	}
	if len(c.Stories) != m.Counts.Stories || len(c.Bookmarks) != m.Counts.Bookmarks || len(c.Unlocks) != m.Counts.Achievements {
		return nil, nil, fmt.Errorf("%w: entity counts do not match manifest", ErrCorruptedBackup)
	}

	for i, s := range c.Stories {
		if s == nil {
			return nil, nil, fmt.Errorf("%w: %s line %d is null", ErrCorruptedBackup, storiesFile, i+1)
		}
		normalizeStory(s)
	}
	return c, &m, nil
}

func readEntries[T any](zr *zip.Reader, name string, sum hash.Hash) ([]T, error) {
	rc, err := stream.OpenFile(zr, name)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %s", ErrCorruptedBackup, name)
	}

	out := []T{}
	for item, err := range stream.NewReader[T](rc, sum).All() {
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedBackup, name, err)
		}
		out = append(out, item)
	}
	return out, nil
}
