package backup

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// DecodeFile turns a file dropped into the import inbox into a snapshot.
// JSON files use the snapshot format. Markdown, text and HTML files become a
// single story with one chapter: the first "# " heading is the title, falling
// back to the file name.
func DecodeFile(name string, raw []byte) (Snapshot, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json":
		return DecodeSnapshot(raw)
	case ".md", ".markdown", ".txt":
		return Snapshot{Stories: []*domain.Story{textStory(name, string(raw))}}, nil
	case ".html", ".htm":
		return Snapshot{Stories: []*domain.Story{textStory(name, NormalizeContent(string(raw)))}}, nil
	default:
		return Snapshot{}, fmt.Errorf("%w: unsupported file type %q", ErrInvalidFormat, ext)
	}
}

func textStory(name, text string) *domain.Story {
	title := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	title = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(title))

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if heading, ok := strings.CutPrefix(trimmed, "# "); ok {
			title = strings.TrimSpace(heading)
			lines = lines[i+1:]
		}
		break
	}
	if title == "" {
		title = "Sin título"
	}

	return &domain.Story{
		Title: title,
		Chapters: []domain.Chapter{{
			Title:   title,
			Content: strings.TrimSpace(strings.Join(lines, "\n")),
		}},
	}
}
