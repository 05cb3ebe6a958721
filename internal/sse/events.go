// Package sse pushes library, reader and achievement changes to connected
// browsers as Server-Sent Events.
package sse

import (
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventStoryCreated is sent when a story is created or imported.
	EventStoryCreated EventType = "story.created"
	// EventStoryUpdated is sent when chapters or lore of a story change.
	EventStoryUpdated EventType = "story.updated"
	// EventStoryDeleted is sent when a story is deleted.
	EventStoryDeleted EventType = "story.deleted"

	// EventLibraryImported is sent once per completed import batch.
	EventLibraryImported EventType = "library.imported"
	// EventLibraryRestored is sent after a backup archive is restored.
	EventLibraryRestored EventType = "library.restored"

	// EventReaderChanged is sent whenever the reader state changes.
	EventReaderChanged EventType = "reader.changed"

	// EventAchievementUnlocked is the toast trigger.
	EventAchievementUnlocked EventType = "achievement.unlocked"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// StoryEventData is the payload for story created/updated events.
type StoryEventData struct {
	StoryID  int64  `json:"storyId"`
	Title    string `json:"title"`
	Chapters int    `json:"chapters"`
}

// StoryDeletedEventData is the payload for story delete events.
type StoryDeletedEventData struct {
	DeletedAt time.Time `json:"deletedAt"`
	StoryID   int64     `json:"storyId"`
}

// ImportEventData is the payload for library.imported and library.restored.
type ImportEventData struct {
	Source  string `json:"source"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
}

// ReaderEventData is the payload for reader.changed.
type ReaderEventData struct {
	Open      bool   `json:"open"`
	StoryID   int64  `json:"storyId"`
	Index     int    `json:"index"`
	Turning   bool   `json:"turning"`
	Direction string `json:"direction,omitempty"`
}

// AchievementEventData is the toast payload.
type AchievementEventData struct {
	Achievement domain.Achievement `json:"achievement"`
	Date        string             `json:"date"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewStoryCreatedEvent creates a story.created event.
func NewStoryCreatedEvent(s *domain.Story) Event {
	return newEvent(EventStoryCreated, storyData(s))
}

// NewStoryUpdatedEvent creates a story.updated event.
func NewStoryUpdatedEvent(s *domain.Story) Event {
	return newEvent(EventStoryUpdated, storyData(s))
}

// NewStoryDeletedEvent creates a story.deleted event.
func NewStoryDeletedEvent(storyID int64) Event {
	return newEvent(EventStoryDeleted, StoryDeletedEventData{StoryID: storyID, DeletedAt: time.Now()})
}

// NewLibraryImportedEvent creates a library.imported event.
func NewLibraryImportedEvent(source string, added, skipped int) Event {
	return newEvent(EventLibraryImported, ImportEventData{Source: source, Added: added, Skipped: skipped})
}

// NewLibraryRestoredEvent creates a library.restored event.
func NewLibraryRestoredEvent(stories int) Event {
	return newEvent(EventLibraryRestored, ImportEventData{Source: "backup", Added: stories})
}

// NewReaderChangedEvent creates a reader.changed event.
func NewReaderChangedEvent(open bool, storyID int64, index int, turning bool, direction string) Event {
	return newEvent(EventReaderChanged, ReaderEventData{
		Open:      open,
		StoryID:   storyID,
		Index:     index,
		Turning:   turning,
		Direction: direction,
	})
}

// NewAchievementUnlockedEvent creates an achievement.unlocked event.
func NewAchievementUnlockedEvent(a domain.Achievement, date string) Event {
	return newEvent(EventAchievementUnlocked, AchievementEventData{Achievement: a, Date: date})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{Type: EventHeartbeat, Data: HeartbeatEventData{ServerTime: now}, Timestamp: now}
}

func storyData(s *domain.Story) StoryEventData {
	return StoryEventData{StoryID: s.ID, Title: s.Title, Chapters: s.ChapterCount()}
}
