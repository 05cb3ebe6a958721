package genre

import "strings"

// Genre is one entry of the catalogue offered by the story form.
type Genre struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// Defaults is the built-in catalogue, in display order.
var Defaults = []Genre{
	{Slug: "fantasia", Label: "Fantasía"},
	{Slug: "ciencia-ficcion", Label: "Ciencia Ficción"},
	{Slug: "terror", Label: "Terror"},
	{Slug: "misterio", Label: "Misterio"},
	{Slug: "romance", Label: "Romance"},
	{Slug: "aventura", Label: "Aventura"},
	{Slug: "drama", Label: "Drama"},
	{Slug: "comedia", Label: "Comedia"},
	{Slug: "accion", Label: "Acción"},
	{Slug: "historica", Label: "Histórica"},
}

var bySlug = func() map[string]Genre {
	m := make(map[string]Genre, len(Defaults))
	for _, g := range Defaults {
		m[g.Slug] = g
	}
	return m
}()

// Lookup finds a catalogue genre by slug or alias.
func Lookup(slug string) (Genre, bool) {
	if canonical, ok := Aliases[slug]; ok {
		slug = canonical
	}
	g, ok := bySlug[slug]
	return g, ok
}

// Normalize maps user input onto the catalogue label when it names a known
// genre or alias. Unknown genres are kept verbatim (trimmed); the label set is
// open-ended.
func Normalize(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if g, ok := Lookup(Slugify(trimmed)); ok {
		return g.Label
	}
	return trimmed
}
