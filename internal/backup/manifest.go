package backup

import "time"

// FormatVersion is the archive format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Archive entry names.
const (
	manifestFile     = "manifest.json"
	storiesFile      = "stories.jsonl"
	bookmarksFile    = "bookmarks.jsonl"
	achievementsFile = "achievements.jsonl"
)

// Manifest describes archive contents.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	App       string    `json:"app"`
	Counts    Counts    `json:"counts"`
	// Checksum is "sha256:<hex>" over the three JSONL entries in the order
	// stories, bookmarks, achievements.
	Checksum string `json:"checksum"`
}

// Counts tracks entity counts for validation and reporting.
type Counts struct {
	Stories      int `json:"stories"`
	Chapters     int `json:"chapters"`
	Bookmarks    int `json:"bookmarks"`
	Achievements int `json:"achievements"`
}
