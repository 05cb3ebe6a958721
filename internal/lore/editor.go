package lore

import (
	"fmt"
	"slices"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// Tab is one panel of the lore editor.
type Tab string

// Editor tabs in display order.
const (
	TabSynopsis Tab = "synopsis"
	TabWorld    Tab = "world"
	TabChars    Tab = "chars"
	TabAlbum    Tab = "album"
)

// Tabs lists the editor tabs in display order.
var Tabs = []Tab{TabSynopsis, TabWorld, TabChars, TabAlbum}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	t := Tab(s)
	if !slices.Contains(Tabs, t) {
		return "", fmt.Errorf("unknown lore tab %q", s)
	}
	return t, nil
}

// Editor is the form state of the lore archive for one story. Rows may be
// blank while editing; Collect applies the save rules.
//
// Editor is not safe for concurrent use.
type Editor struct {
	StoryID    int64               `json:"storyId"`
	Active     Tab                 `json:"active"`
	Synopsis   string              `json:"synopsis"`
	PowerScale string              `json:"powerScale"`
	WorldRules string              `json:"worldRules"`
	Characters []domain.Character  `json:"characters"`
	Album      []domain.AlbumEntry `json:"album"`
}

// NewEditor loads the story's lore into a fresh editor on the synopsis tab.
// A story with no characters starts with one blank row ready to fill in.
func NewEditor(story *domain.Story) *Editor {
	l := story.Clone().EnsureLore()

	e := &Editor{
		StoryID:    story.ID,
		Active:     TabSynopsis,
		Synopsis:   l.Synopsis,
		PowerScale: l.PowerScale,
		WorldRules: l.WorldRules,
		Characters: l.Characters,
		Album:      l.Album,
	}
	if len(e.Characters) == 0 {
		e.AddCharacter()
	}
	return e
}

// SwitchTab activates tab. It never touches lore data.
func (e *Editor) SwitchTab(tab Tab) error {
	if !slices.Contains(Tabs, tab) {
		return fmt.Errorf("unknown lore tab %q", tab)
	}
	e.Active = tab
	return nil
}

// AddCharacter appends a blank roster row and returns its index.
func (e *Editor) AddCharacter() int {
	e.Characters = append(e.Characters, domain.Character{})
	return len(e.Characters) - 1
}

// UpdateCharacter overwrites the row at i. Reports false when i is out of range.
func (e *Editor) UpdateCharacter(i int, name, desc string) bool {
	if i < 0 || i >= len(e.Characters) {
		return false
	}
	e.Characters[i] = domain.Character{Name: name, Desc: desc}
	return true
}

// RemoveCharacter deletes the row at i. Reports false when i is out of range.
func (e *Editor) RemoveCharacter(i int) bool {
	if i < 0 || i >= len(e.Characters) {
		return false
	}
	e.Characters = slices.Delete(e.Characters, i, i+1)
	return true
}

// AddAlbumEntry appends a blank album row with common rarity and returns its index.
func (e *Editor) AddAlbumEntry() int {
	e.Album = append(e.Album, domain.AlbumEntry{Rarity: domain.RarityCommon})
	return len(e.Album) - 1
}

// UpdateAlbumEntry overwrites the row at i. Reports false when i is out of range.
func (e *Editor) UpdateAlbumEntry(i int, entry domain.AlbumEntry) bool {
	if i < 0 || i >= len(e.Album) {
		return false
	}
	e.Album[i] = entry
	return true
}

// RemoveAlbumEntry deletes the row at i. Reports false when i is out of range.
func (e *Editor) RemoveAlbumEntry(i int) bool {
	if i < 0 || i >= len(e.Album) {
		return false
	}
	e.Album = slices.Delete(e.Album, i, i+1)
	return true
}

// Collect walks every current row and returns the lore to persist: text is
// trimmed, characters without a name and album entries without a url are
// discarded, and rarity defaults to common.
func (e *Editor) Collect() domain.Lore {
	return Collect(domain.Lore{
		Synopsis:   e.Synopsis,
		PowerScale: e.PowerScale,
		WorldRules: e.WorldRules,
		Characters: e.Characters,
		Album:      e.Album,
	})
}

// Collect applies the save rules to submitted lore.
func Collect(l domain.Lore) domain.Lore {
	return l.Sanitized()
}
