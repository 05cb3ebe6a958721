package lore

import (
	"context"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/media"
)

// PlaceholderSource yields a blurhash for a resolved image source, or "".
type PlaceholderSource interface {
	Placeholder(ctx context.Context, src string) string
}

// Card is one rendered gallery entry.
type Card struct {
	Src         string        `json:"src"`
	Fallback    string        `json:"fallback"`
	Placeholder string        `json:"placeholder,omitempty"`
	Name        string        `json:"name"`
	Desc        string        `json:"desc"`
	Rarity      domain.Rarity `json:"rarity"`
	RarityLabel string        `json:"rarityLabel"`
}

var rarityLabels = map[domain.Rarity]string{
	domain.RarityCommon:    "Común",
	domain.RarityRare:      "Raro",
	domain.RarityEpic:      "Épico",
	domain.RarityLegendary: "Legendario",
}

// Gallery renders album entries into cards. Bare filenames resolve under
// albumDir; every card carries the fallback image for load failures.
// placeholders may be nil.
func Gallery(ctx context.Context, album []domain.AlbumEntry, albumDir string, placeholders PlaceholderSource) []Card {
	cards := make([]Card, 0, len(album))
	for _, entry := range album {
		rarity := domain.ParseRarity(string(entry.Rarity))
		src := media.ResolvePath(entry.URL, albumDir)
		if src == "" {
			src = media.FallbackImage
		}

		card := Card{
			Src:         src,
			Fallback:    media.FallbackImage,
			Name:        entry.Name,
			Desc:        entry.Desc,
			Rarity:      rarity,
			RarityLabel: rarityLabels[rarity],
		}
		if placeholders != nil {
			card.Placeholder = placeholders.Placeholder(ctx, src)
		}
		cards = append(cards, card)
	}
	return cards
}
