package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureLore_LegacyStory(t *testing.T) {
	// Stories saved before lore existed have no lore key at all.
	var s Story
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Vieja","chapters":[]}`), &s))
	require.Nil(t, s.Lore)

	lore := s.EnsureLore()

	require.NotNil(t, lore)
	assert.Same(t, lore, s.Lore)
	assert.NotNil(t, lore.Characters)
	assert.NotNil(t, lore.Album)
	assert.Empty(t, lore.Synopsis)
}

func TestEnsureLore_FillsMissingFields(t *testing.T) {
	var s Story
	raw := `{"id":1,"title":"T","chapters":[],"lore":{"synopsis":"s","album":[{"url":"a.png"}]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	lore := s.EnsureLore()

	assert.Equal(t, "s", lore.Synopsis)
	assert.NotNil(t, lore.Characters)
	assert.Equal(t, RarityCommon, lore.Album[0].Rarity)
}

func TestParagraphs(t *testing.T) {
	content := "Primera línea\n\n   \r\nSegunda línea  \nTercera"

	assert.Equal(t, []string{"Primera línea", "Segunda línea", "Tercera"}, Paragraphs(content))
	assert.Empty(t, Paragraphs(""))
	assert.Empty(t, Paragraphs("\n\n  \n"))
}

func TestClampIndex(t *testing.T) {
	s := &Story{Chapters: []Chapter{{ID: 1}, {ID: 2}, {ID: 3}}}

	assert.Equal(t, 0, s.ClampIndex(-4))
	assert.Equal(t, 1, s.ClampIndex(1))
	assert.Equal(t, 2, s.ClampIndex(7))

	empty := &Story{}
	assert.Equal(t, 0, empty.ClampIndex(3))
}

func TestChapterLookup(t *testing.T) {
	s := &Story{Chapters: []Chapter{{ID: 10, Title: "Uno"}, {ID: 20, Title: "Dos"}}}

	ch, ok := s.Chapter(1)
	assert.True(t, ok)
	assert.Equal(t, "Dos", ch.Title)

	_, ok = s.Chapter(2)
	assert.False(t, ok)

	assert.Equal(t, 0, s.ChapterIndex(10))
	assert.Equal(t, -1, s.ChapterIndex(99))
}

func TestClone_IsDeep(t *testing.T) {
	orig := &Story{
		ID:       1,
		Chapters: []Chapter{{ID: 1, Title: "A"}},
		Lore:     &Lore{Characters: []Character{{Name: "Rai"}}},
	}

	cp := orig.Clone()
	cp.Chapters[0].Title = "changed"
	cp.Lore.Characters[0].Name = "changed"

	assert.Equal(t, "A", orig.Chapters[0].Title)
	assert.Equal(t, "Rai", orig.Lore.Characters[0].Name)
	assert.Nil(t, (*Story)(nil).Clone())
}

func TestLoreSanitized(t *testing.T) {
	l := Lore{
		Synopsis: "  sinopsis  ",
		Characters: []Character{
			{Name: "Rai", Desc: "x"},
			{Name: "  ", Desc: "y"},
		},
		Album: []AlbumEntry{
			{URL: "m1.png", Rarity: "LEGENDARY"},
			{URL: "   ", Name: "sin imagen"},
			{URL: "m2.png", Rarity: "mythic"},
		},
	}

	got := l.Sanitized()

	assert.Equal(t, "sinopsis", got.Synopsis)
	assert.Equal(t, []Character{{Name: "Rai", Desc: "x"}}, got.Characters)
	require.Len(t, got.Album, 2)
	assert.Equal(t, RarityLegendary, got.Album[0].Rarity)
	assert.Equal(t, RarityCommon, got.Album[1].Rarity)
}

func TestParseRarity(t *testing.T) {
	assert.Equal(t, RarityEpic, ParseRarity(" Epic "))
	assert.Equal(t, RarityCommon, ParseRarity(""))
	assert.Equal(t, RarityCommon, ParseRarity("unknown"))
}

func TestHasLore(t *testing.T) {
	s := &Story{}
	assert.False(t, s.HasLore())

	s.EnsureLore()
	assert.False(t, s.HasLore())

	s.Lore.WorldRules = "La magia cuesta sangre."
	assert.True(t, s.HasLore())
}
