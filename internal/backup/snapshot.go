package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/genre"
)

// Snapshot is a decoded import document.
type Snapshot struct {
	// Many is true when the document was an array of stories.
	Many    bool
	Stories []*domain.Story
}

// DecodeSnapshot parses an import document. Accepted shapes are a JSON array
// of story objects, or one object carrying at least "title" and "chapters".
// Anything else fails with ErrInvalidFormat.
//
// Chapter content that looks like HTML is converted to Markdown.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		stories := make([]*domain.Story, 0, len(items))
		for i, item := range items {
			item = bytes.TrimSpace(item)
			if bytes.Equal(item, []byte("null")) {
				continue
			}
			if len(item) == 0 || item[0] != '{' {
				return Snapshot{}, fmt.Errorf("%w: element %d is not an object", ErrInvalidFormat, i)
			}
			var s domain.Story
			if err := json.Unmarshal(item, &s); err != nil {
				return Snapshot{}, fmt.Errorf("%w: element %d: %v", ErrInvalidFormat, i, err)
			}
			stories = append(stories, normalizeStory(&s))
		}
		return Snapshot{Many: true, Stories: stories}, nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if _, ok := fields["title"]; !ok {
			return Snapshot{}, fmt.Errorf("%w: missing title", ErrInvalidFormat)
		}
		if _, ok := fields["chapters"]; !ok {
			return Snapshot{}, fmt.Errorf("%w: missing chapters", ErrInvalidFormat)
		}
		var s domain.Story
		if err := json.Unmarshal(raw, &s); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return Snapshot{Stories: []*domain.Story{normalizeStory(&s)}}, nil

	default:
		return Snapshot{}, fmt.Errorf("%w: expected an array or an object", ErrInvalidFormat)
	}
}

func normalizeStory(s *domain.Story) *domain.Story {
	s.Title = strings.TrimSpace(s.Title)
	if s.Chapters == nil {
		s.Chapters = []domain.Chapter{}
	}
	for i := range s.Chapters {
		s.Chapters[i].Content = NormalizeContent(s.Chapters[i].Content)
	}
	if s.Lore != nil {
		s.EnsureLore()
	}
	return s
}

// EncodeStory serialises one story in the import/export format.
func EncodeStory(s *domain.Story) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// EncodeLibrary serialises the whole library in the import/export format.
func EncodeLibrary(stories []*domain.Story) ([]byte, error) {
	if stories == nil {
		stories = []*domain.Story{}
	}
	return json.MarshalIndent(stories, "", "  ")
}

// StoryFilename is the download name for a single story export.
func StoryFilename(title string) string {
	slug := strings.ReplaceAll(genre.Slugify(title), "-", "_")
	if slug == "" {
		slug = "sin_titulo"
	}
	return "historia_" + slug + ".json"
}

// LibraryFilename is the download name for a full library export.
func LibraryFilename(at time.Time) string {
	return "chronicles_backup_" + at.Format(time.DateOnly) + ".json"
}

// ArchiveFilename is the download name for a zip backup.
func ArchiveFilename(at time.Time) string {
	return "chronicles_backup_" + at.Format(time.DateOnly) + ".zip"
}
