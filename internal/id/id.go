// Package id generates identifiers for stories, chapters and opaque handles.
package id

import (
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed opaque ID using NanoID, e.g. "sse-V1StGXR8_Z5jdHi6B-myT".
// Used for handles that never reach the persisted library (SSE clients, backups).
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Sequence hands out timestamp-based integer ids (Unix milliseconds).
// Two calls within the same millisecond, or a clock that moves backwards,
// still yield strictly increasing values.
type Sequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSequence creates a Sequence reading the wall clock.
func NewSequence() *Sequence {
	return &Sequence{now: time.Now}
}

// NewSequenceWithClock creates a Sequence with a custom clock, for tests.
func NewSequenceWithClock(now func() time.Time) *Sequence {
	return &Sequence{now: now}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.now().UnixMilli()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return n
}

// MaxSkew bounds how far ahead of the clock an observed id may be.
const MaxSkew = 24 * time.Hour

// Plausible reports whether id could have come from a Sequence: positive and
// no more than MaxSkew past the clock.
func (s *Sequence) Plausible(id int64) bool {
	return id > 0 && id <= s.now().Add(MaxSkew).UnixMilli()
}

// Observe advances the sequence past an id that already exists, so ids loaded
// from storage are never handed out again. Implausible ids are ignored; a
// single huge id would otherwise exhaust the int64 range.
func (s *Sequence) Observe(existing int64) {
	if !s.Plausible(existing) {
		return
	}
	s.mu.Lock()
	if existing > s.last {
		s.last = existing
	}
	s.mu.Unlock()
}
