// Package search provides full-text search over stories, chapters and lore
// using Bleve.
package search

import (
	"strconv"
	"strings"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/genre"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeStory   DocType = "story"
	DocTypeChapter DocType = "chapter"
)

// SearchDocument is the unified document structure for the Bleve index.
// Stories and their chapters are indexed as separate documents sharing the
// story key so a story can be dropped with all its chapters.
type SearchDocument struct {
	ID   string
	Type DocType

	// StoryKey is the decimal story id, shared by a story and its chapters.
	StoryKey string

	// Story: title. Chapter: chapter title.
	Name string

	// Chapter only.
	StoryTitle string
	Content    string

	// Story only.
	GenreSlug  string
	Synopsis   string
	WorldRules string
	Characters string

	ChapterID int64
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"type":  string(d.Type),
		"story": d.StoryKey,
		"name":  d.Name,
	}

	if d.StoryTitle != "" {
		m["story_title"] = d.StoryTitle
	}
	if d.Content != "" {
		m["content"] = d.Content
	}
	if d.GenreSlug != "" {
		m["genre_slug"] = d.GenreSlug
	}
	if d.Synopsis != "" {
		m["synopsis"] = d.Synopsis
	}
	if d.WorldRules != "" {
		m["world_rules"] = d.WorldRules
	}
	if d.Characters != "" {
		m["characters"] = d.Characters
	}
	if d.ChapterID != 0 {
		m["chapter_id"] = float64(d.ChapterID)
	}
	return m
}

// StoryKey formats a story id as stored in the "story" field.
func StoryKey(storyID int64) string {
	return strconv.FormatInt(storyID, 10)
}

// StoryDocuments converts a story into its story document followed by one
// document per chapter.
func StoryDocuments(s *domain.Story) []*SearchDocument {
	key := StoryKey(s.ID)
	docs := make([]*SearchDocument, 0, 1+len(s.Chapters))

	doc := &SearchDocument{
		ID:        "story:" + key,
		Type:      DocTypeStory,
		StoryKey:  key,
		Name:      s.Title,
		GenreSlug: genre.Slugify(s.Genre),
	}
	if s.Lore != nil {
		doc.Synopsis = s.Lore.Synopsis
		doc.WorldRules = s.Lore.WorldRules
		doc.Characters = characterText(s.Lore.Characters)
	}
	docs = append(docs, doc)

	for _, ch := range s.Chapters {
		docs = append(docs, &SearchDocument{
			ID:         "chapter:" + key + ":" + strconv.FormatInt(ch.ID, 10),
			Type:       DocTypeChapter,
			StoryKey:   key,
			Name:       ch.Title,
			StoryTitle: s.Title,
			Content:    ch.Content,
			ChapterID:  ch.ID,
		})
	}
	return docs
}

func characterText(chars []domain.Character) string {
	var b strings.Builder
	for _, c := range chars {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.Name)
		if c.Desc != "" {
			b.WriteString(": ")
			b.WriteString(c.Desc)
		}
	}
	return b.String()
}
