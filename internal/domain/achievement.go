package domain

import "context"

// Achievement ids reported by the library and reader.
const (
	AchievementWriterBorn   = "writer_born"
	AchievementFirstChapter = "chapter_first"
	AchievementLoreKeeper   = "lore_keeper"
	AchievementBookworm     = "bookworm"
	AchievementBookmark     = "bookmark_set"
	AchievementArchivist    = "archivist"
	AchievementImporter     = "importer"
	AchievementCurator      = "curator"
	AchievementChronicler   = "chronicler"
)

// Achievement is a catalogue entry.
type Achievement struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
}

// Unlock records when an achievement was earned. Date is display-formatted.
type Unlock struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

// AchievementNotifier is the optional port through which the library and
// reader report domain events. Unlock is idempotent and fire-and-forget:
// callers never depend on its outcome.
type AchievementNotifier interface {
	Unlock(ctx context.Context, id string)
}

// NoopNotifier discards every unlock. Used when achievements are disabled.
type NoopNotifier struct{}

// Unlock implements AchievementNotifier.
func (NoopNotifier) Unlock(context.Context, string) {}
