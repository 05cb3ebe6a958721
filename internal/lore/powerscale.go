// Package lore implements the lore archive: the tabbed editor, the power-scale
// ranking, and gallery rendering with rarity tags.
package lore

import (
	"strings"

	"github.com/chroniclesapp/chronicles-server/internal/genre"
)

// Tier is a presentational rank bucket.
type Tier string

// Tiers, weakest first.
const (
	TierLow     Tier = "low"
	TierMid     Tier = "mid"
	TierHigh    Tier = "high"
	TierHighest Tier = "highest"
)

// godKeywords force the highest tier regardless of position.
var godKeywords = []string{"god", "dios", "deity", "deidad", "divine", "divino", "omnipotent", "omnipotente"}

// Rank is one label of a power scale with its computed tier.
type Rank struct {
	// Position is 1-based, weakest first.
	Position int    `json:"position"`
	Label    string `json:"label"`
	Tier     Tier   `json:"tier"`
}

// RankScale computes the tiers of a comma-separated scale ordered weakest to
// strongest. Blank labels are ignored. The result is derived on every call
// and never stored, so editing the text re-tiers immediately.
//
// ratio = position/total, where position is 1-based:
//
//	ratio > 0.9 or god keyword  highest
//	ratio > 0.6                 high
//	ratio > 0.3                 mid
//	otherwise                   low
func RankScale(scale string) []Rank {
	labels := splitScale(scale)
	ranks := make([]Rank, 0, len(labels))
	total := float64(len(labels))

	for i, label := range labels {
		ratio := float64(i+1) / total
		ranks = append(ranks, Rank{
			Position: i + 1,
			Label:    label,
			Tier:     tierFor(label, ratio),
		})
	}
	return ranks
}

func tierFor(label string, ratio float64) Tier {
	switch {
	case ratio > 0.9 || hasGodKeyword(label):
		return TierHighest
	case ratio > 0.6:
		return TierHigh
	case ratio > 0.3:
		return TierMid
	default:
		return TierLow
	}
}

func hasGodKeyword(label string) bool {
	// Slugify folds case and accents, so "Semidiós" matches "dios".
	folded := genre.Slugify(label)
	for _, kw := range godKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func splitScale(scale string) []string {
	parts := strings.Split(scale, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
