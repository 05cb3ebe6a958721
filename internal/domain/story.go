package domain

import (
	"slices"
	"strings"
)

// CreatedAtLayout is the display format of Story.CreatedAt (day/month/year, no padding).
const CreatedAtLayout = "2/1/2006"

// Story is a titled work made of ordered chapters plus an optional lore archive.
//
// JSON field names follow the import/export snapshot format and must stay stable.
type Story struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre"`
	Cover     string    `json:"cover"`
	CreatedAt string    `json:"createdAt"`
	Chapters  []Chapter `json:"chapters"`
	// Lore is nil on stories saved before lore existed. Use EnsureLore.
	Lore *Lore `json:"lore,omitempty"`
	// OriginID is the id the story carried in the snapshot it was imported from.
	OriginID int64 `json:"originId,omitempty"`
}

// Chapter is one reading unit. Insertion order is reading order.
type Chapter struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// StoryDraft is the user input for creating a story.
type StoryDraft struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
	Genre string `json:"genre" validate:"max=60"`
	Cover string `json:"cover" validate:"max=2048"`
}

// ChapterDraft is the user input for appending a chapter.
type ChapterDraft struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content"`
}

// EnsureLore returns the story's lore, creating an empty one on first access
// and filling nil collections so callers never branch on missing fields.
func (s *Story) EnsureLore() *Lore {
	if s.Lore == nil {
		s.Lore = &Lore{}
	}
	s.Lore.normalize()
	return s.Lore
}

// HasLore reports whether any lore content has been written.
func (s *Story) HasLore() bool {
	return s.Lore != nil && !s.Lore.IsEmpty()
}

// ChapterCount returns the number of chapters.
func (s *Story) ChapterCount() int {
	return len(s.Chapters)
}

// Chapter returns the chapter at index, or false when out of range.
func (s *Story) Chapter(index int) (Chapter, bool) {
	if index < 0 || index >= len(s.Chapters) {
		return Chapter{}, false
	}
	return s.Chapters[index], true
}

// ChapterIndex returns the position of the chapter with the given id, or -1.
func (s *Story) ChapterIndex(chapterID int64) int {
	return slices.IndexFunc(s.Chapters, func(c Chapter) bool { return c.ID == chapterID })
}

// ClampIndex pins index into [0, len-1]. Stories without chapters clamp to 0.
func (s *Story) ClampIndex(index int) int {
	if len(s.Chapters) == 0 || index < 0 {
		return 0
	}
	if index >= len(s.Chapters) {
		return len(s.Chapters) - 1
	}
	return index
}

// Clone returns a deep copy.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	out := *s
	out.Chapters = slices.Clone(s.Chapters)
	if s.Lore != nil {
		out.Lore = s.Lore.Clone()
	}
	return &out
}

// Paragraphs splits chapter content on newlines. Each non-blank line is one
// paragraph; blank lines are dropped rather than kept as spacing.
func (c Chapter) Paragraphs() []string {
	return Paragraphs(c.Content)
}

// Paragraphs splits free text into trimmed non-blank lines.
func Paragraphs(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
