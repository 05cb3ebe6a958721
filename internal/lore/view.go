package lore

import (
	"context"
	"strings"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// Placeholder texts for empty sections.
const (
	EmptySynopsis   = "Sin sinopsis registrada."
	EmptyWorldRules = "Sin reglas del mundo registradas."
	EmptyCharacters = "No hay personajes registrados."
	EmptyScale      = "Escala de poder sin definir."
	EmptyAlbum      = "El álbum está vacío."
)

// Section is a text panel with its fallback applied.
type Section struct {
	Text  string `json:"text"`
	Empty bool   `json:"empty"`
}

// View is the read-only lore archive of one story.
type View struct {
	StoryID    int64              `json:"storyId"`
	Title      string             `json:"title"`
	Synopsis   Section            `json:"synopsis"`
	WorldRules Section            `json:"worldRules"`
	Scale      []Rank             `json:"scale"`
	ScaleEmpty string             `json:"scaleEmpty,omitempty"`
	Characters []domain.Character `json:"characters"`
	CharsEmpty string             `json:"charsEmpty,omitempty"`
	Gallery    []Card             `json:"gallery"`
	AlbumEmpty string             `json:"albumEmpty,omitempty"`
}

// ViewOptions controls gallery rendering.
type ViewOptions struct {
	AlbumDir     string
	Placeholders PlaceholderSource
}

// Render builds the lore viewer for story. Stories without lore render every
// section with its placeholder. A nil story renders an empty archive.
func Render(ctx context.Context, story *domain.Story, opts ViewOptions) View {
	if story == nil {
		story = &domain.Story{}
	}
	l := story.Clone().EnsureLore()

	v := View{
		StoryID:    story.ID,
		Title:      story.Title,
		Synopsis:   section(l.Synopsis, EmptySynopsis),
		WorldRules: section(l.WorldRules, EmptyWorldRules),
		Scale:      RankScale(l.PowerScale),
		Characters: l.Characters,
		Gallery:    Gallery(ctx, l.Album, opts.AlbumDir, opts.Placeholders),
	}
	if len(v.Scale) == 0 {
		v.ScaleEmpty = EmptyScale
	}
	if len(v.Characters) == 0 {
		v.CharsEmpty = EmptyCharacters
	}
	if len(v.Gallery) == 0 {
		v.AlbumEmpty = EmptyAlbum
	}
	return v
}

func section(text, fallback string) Section {
	if strings.TrimSpace(text) == "" {
		return Section{Text: fallback, Empty: true}
	}
	return Section{Text: text}
}
