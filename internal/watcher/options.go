package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures the inbox watcher.
type Options struct {
	IgnorePatterns []string
	// Extensions limits events to files with these lowercase extensions
	// (including the dot). Empty means every file.
	Extensions   []string
	SettleDelay  time.Duration
	IgnoreHidden bool
}

// DefaultExtensions are the document formats the importer understands.
var DefaultExtensions = []string{".json", ".md", ".markdown", ".txt", ".html", ".htm"}

func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 250 * time.Millisecond
	}

	// nil means "not configured"; an explicit empty slice is respected.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{".DS_Store", "*.tmp", "*.part", "*.crdownload", "Thumbs.db"}
		o.IgnoreHidden = true
	}
	if o.Extensions == nil {
		o.Extensions = DefaultExtensions
	}
}

func (o *Options) shouldIgnore(path string) bool {
	if o.IgnoreHidden {
		for part := range strings.SplitSeq(filepath.Clean(path), string(filepath.Separator)) {
			if strings.HasPrefix(part, ".") && part != "." && part != ".." {
				return true
			}
		}
	}

	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

func (o *Options) accepts(path string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range o.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Matches reports whether path would be reported by a watcher with these
// options. Used to pick up files that were already waiting before the
// watcher started.
func (o Options) Matches(path string) bool {
	o.setDefaults()
	return !o.shouldIgnore(path) && o.accepts(path)
}
