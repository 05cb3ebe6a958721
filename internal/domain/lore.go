package domain

import (
	"slices"
	"strings"
)

// Lore is the world-building archive attached to a story.
type Lore struct {
	Synopsis   string       `json:"synopsis"`
	PowerScale string       `json:"powerScale"`
	WorldRules string       `json:"worldRules"`
	Characters []Character  `json:"characters"`
	Album      []AlbumEntry `json:"album"`
}

// Character is one roster entry.
type Character struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// AlbumEntry is one gallery image.
type AlbumEntry struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	Rarity Rarity `json:"rarity"`
}

// Rarity classifies gallery entries for styling.
type Rarity string

// Rarity levels, weakest first.
const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities lists every rarity in ascending order.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// ParseRarity maps free text onto a Rarity, defaulting to common.
func ParseRarity(s string) Rarity {
	r := Rarity(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r
	}
	return RarityCommon
}

// Valid reports whether r is one of the four known levels.
func (r Rarity) Valid() bool {
	return slices.Contains(Rarities, r)
}

// IsEmpty reports whether nothing has been written to the lore.
func (l *Lore) IsEmpty() bool {
	return strings.TrimSpace(l.Synopsis) == "" &&
		strings.TrimSpace(l.PowerScale) == "" &&
		strings.TrimSpace(l.WorldRules) == "" &&
		len(l.Characters) == 0 &&
		len(l.Album) == 0
}

// Clone returns a deep copy.
func (l *Lore) Clone() *Lore {
	out := *l
	out.Characters = slices.Clone(l.Characters)
	out.Album = slices.Clone(l.Album)
	out.normalize()
	return &out
}

// Sanitized returns a copy with the save rules applied: text trimmed,
// characters without a name and album entries without a url dropped,
// unknown rarities reset to common.
func (l Lore) Sanitized() Lore {
	out := Lore{
		Synopsis:   strings.TrimSpace(l.Synopsis),
		PowerScale: strings.TrimSpace(l.PowerScale),
		WorldRules: strings.TrimSpace(l.WorldRules),
		Characters: make([]Character, 0, len(l.Characters)),
		Album:      make([]AlbumEntry, 0, len(l.Album)),
	}
	for _, c := range l.Characters {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		out.Characters = append(out.Characters, Character{Name: name, Desc: strings.TrimSpace(c.Desc)})
	}
	for _, a := range l.Album {
		url := strings.TrimSpace(a.URL)
		if url == "" {
			continue
		}
		out.Album = append(out.Album, AlbumEntry{
			URL:    url,
			Name:   strings.TrimSpace(a.Name),
			Desc:   strings.TrimSpace(a.Desc),
			Rarity: ParseRarity(string(a.Rarity)),
		})
	}
	return out
}

func (l *Lore) normalize() {
	if l.Characters == nil {
		l.Characters = []Character{}
	}
	if l.Album == nil {
		l.Album = []AlbumEntry{}
	}
	for i := range l.Album {
		if !l.Album[i].Rarity.Valid() {
			l.Album[i].Rarity = RarityCommon
		}
	}
}
