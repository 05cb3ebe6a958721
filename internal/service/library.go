package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/backup"
	"github.com/chroniclesapp/chronicles-server/internal/domain"
	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/genre"
	"github.com/chroniclesapp/chronicles-server/internal/id"
	"github.com/chroniclesapp/chronicles-server/internal/lore"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
	"github.com/chroniclesapp/chronicles-server/internal/store"
	"github.com/chroniclesapp/chronicles-server/internal/validation"
)

// untitled replaces a blank title on imported records.
const untitled = "Sin título"

// LibraryDeps are the collaborators of a LibraryService. Only Store is required.
type LibraryDeps struct {
	Store     *store.Store
	Validator *validation.Validator
	Sequence  *id.Sequence
	Notifier  domain.AchievementNotifier
	Events    EventEmitter
	Index     Indexer
	Logger    *slog.Logger
	Now       func() time.Time
}

// LibraryService owns the ordered story list. The list is held in memory and
// written through to the store on every mutation; a failed write leaves the
// in-memory list untouched.
//
// Stories handed out are copies. Mutations build a new slice and swap it in.
type LibraryService struct {
	store     *store.Store
	validator *validation.Validator
	seq       *id.Sequence
	notifier  domain.AchievementNotifier
	events    EventEmitter
	index     Indexer
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	stories []*domain.Story
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Added   []int64 `json:"added"`
	Skipped int     `json:"skipped"`
}

// NewLibraryService creates an empty library service. Call Load before use.
func NewLibraryService(deps LibraryDeps) *LibraryService {
	s := &LibraryService{
		store:     deps.Store,
		validator: deps.Validator,
		seq:       deps.Sequence,
		notifier:  deps.Notifier,
		events:    deps.Events,
		index:     deps.Index,
		logger:    deps.Logger,
		now:       deps.Now,
		stories:   []*domain.Story{},
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.seq == nil {
		s.seq = id.NewSequence()
	}
	if s.notifier == nil {
		s.notifier = domain.NoopNotifier{}
	}
	if s.events == nil {
		s.events = NoopEmitter{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Load reads the library from the store. A corrupt blob is quarantined and
// the library starts empty; only storage failures are returned.
func (s *LibraryService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

// ReplaceFromStore runs replace against the store and reloads the library
// from what it left there. Both steps hold the library lock, so no mutation
// can persist a stale list over the replaced blob.
func (s *LibraryService) ReplaceFromStore(ctx context.Context, replace func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := replace(ctx); err != nil {
		return err
	}
	return s.reload(ctx)
}

// reload reads the library blob into memory. Callers hold s.mu.
func (s *LibraryService) reload(ctx context.Context) error {
	stories, err := s.store.LoadLibrary(ctx)
	if errors.Is(err, store.ErrCorruptLibrary) {
		s.logger.Warn("library blob unreadable, starting empty", "error", err)
		if _, qerr := s.store.QuarantineLibrary(ctx, s.now()); qerr != nil {
			s.logger.Error("failed to quarantine library blob", "error", qerr)
		}
		stories, err = []*domain.Story{}, nil
	}
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	for _, st := range stories {
		s.seq.Observe(st.ID)
		for _, ch := range st.Chapters {
			s.seq.Observe(ch.ID)
		}
	}
	s.stories = stories

	s.logger.Info("library loaded", "stories", len(stories))

	if s.index != nil {
		if err := s.index.Reindex(ctx, stories); err != nil {
			s.logger.Warn("failed to rebuild search index", "error", err)
		}
	}
	return nil
}

// List returns copies of every story, newest first.
func (s *LibraryService) List(_ context.Context) []*domain.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Story, len(s.stories))
	for i, st := range s.stories {
		out[i] = st.Clone()
	}
	return out
}

// Get returns a copy of one story.
func (s *LibraryService) Get(ctx context.Context, storyID int64) (*domain.Story, error) {
	st, ok := s.Story(ctx, storyID)
	if !ok {
		return nil, domainerrors.NotFoundf("story %d not found", storyID)
	}
	return st, nil
}

// Story implements reader.StoryLookup.
func (s *LibraryService) Story(_ context.Context, storyID int64) (*domain.Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(storyID); i >= 0 {
		return s.stories[i].Clone(), true
	}
	return nil, false
}

// Create adds a new story at the front of the library.
func (s *LibraryService) Create(ctx context.Context, draft domain.StoryDraft) (*domain.Story, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}

	story := &domain.Story{
		ID:        s.seq.Next(),
		Title:     strings.TrimSpace(draft.Title),
		Genre:     genre.Normalize(draft.Genre),
		Cover:     strings.TrimSpace(draft.Cover),
		CreatedAt: s.now().Format(domain.CreatedAtLayout),
		Chapters:  []domain.Chapter{},
	}

	if err := s.update(ctx, func(stories []*domain.Story) ([]*domain.Story, error) {
		return append([]*domain.Story{story}, stories...), nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("story created", "story_id", story.ID, "title", story.Title)
	s.announce(ctx, sse.NewStoryCreatedEvent(story), story)
	s.notifier.Unlock(ctx, domain.AchievementWriterBorn)
	return story.Clone(), nil
}

// Delete removes a story together with its chapters, lore and bookmark.
func (s *LibraryService) Delete(ctx context.Context, storyID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.indexOf(storyID)
	if i < 0 {
		s.mu.Unlock()
		return domainerrors.NotFoundf("story %d not found", storyID)
	}
	next := slices.Delete(slices.Clone(s.stories), i, i+1)
	if err := s.store.SaveLibraryDropBookmarks(ctx, next, storyID); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist library: %w", err)
	}
	s.stories = next
	s.mu.Unlock()

	s.logger.Info("story deleted", "story_id", storyID)
	s.events.Emit(sse.NewStoryDeletedEvent(storyID))
	if s.index != nil {
		if err := s.index.RemoveStory(ctx, storyID); err != nil {
			s.logger.Warn("failed to remove story from search index", "story_id", storyID, "error", err)
		}
	}
	return nil
}

// AddChapter appends a chapter to a story.
func (s *LibraryService) AddChapter(ctx context.Context, storyID int64, draft domain.ChapterDraft) (*domain.Chapter, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}

	chapter := domain.Chapter{
		ID:      s.seq.Next(),
		Title:   strings.TrimSpace(draft.Title),
		Content: backup.NormalizeContent(draft.Content),
	}

	story, err := s.modify(ctx, storyID, func(st *domain.Story) error {
		st.Chapters = append(st.Chapters, chapter)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chapter added", "story_id", storyID, "chapter_id", chapter.ID)
	s.announce(ctx, sse.NewStoryUpdatedEvent(story), story)
	s.notifier.Unlock(ctx, domain.AchievementFirstChapter)
	return &chapter, nil
}

// RemoveChapter deletes one chapter from a story. A bookmark that now points
// past the end is pruned the next time the story is opened.
func (s *LibraryService) RemoveChapter(ctx context.Context, storyID, chapterID int64) error {
	story, err := s.modify(ctx, storyID, func(st *domain.Story) error {
		i := st.ChapterIndex(chapterID)
		if i < 0 {
			return domainerrors.NotFoundf("chapter %d not found in story %d", chapterID, storyID)
		}
		st.Chapters = slices.Delete(st.Chapters, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("chapter removed", "story_id", storyID, "chapter_id", chapterID)
	s.announce(ctx, sse.NewStoryUpdatedEvent(story), story)
	return nil
}

// SaveLore replaces a story's lore. Blank character names and album urls are
// discarded and text fields trimmed before saving.
func (s *LibraryService) SaveLore(ctx context.Context, storyID int64, l domain.Lore) (*domain.Story, error) {
	collected := lore.Collect(l)

	story, err := s.modify(ctx, storyID, func(st *domain.Story) error {
		st.Lore = &collected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lore saved", "story_id", storyID,
		"characters", len(collected.Characters), "album", len(collected.Album))
	s.announce(ctx, sse.NewStoryUpdatedEvent(story), story)
	s.notifier.Unlock(ctx, domain.AchievementLoreKeeper)
	if slices.ContainsFunc(collected.Album, func(a domain.AlbumEntry) bool { return a.Rarity == domain.RarityLegendary }) {
		s.notifier.Unlock(ctx, domain.AchievementCurator)
	}
	return story, nil
}

// ImportOne adds a single imported story at the front. The story always gets
// a fresh id; the id it carried is kept as OriginID.
func (s *LibraryService) ImportOne(ctx context.Context, record *domain.Story) (*domain.Story, error) {
	if record == nil {
		return nil, domainerrors.InvalidImport("empty story record", nil)
	}
	story := s.prepareImport(record)

	if err := s.update(ctx, func(stories []*domain.Story) ([]*domain.Story, error) {
		return append([]*domain.Story{story}, stories...), nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("story imported", "story_id", story.ID, "origin_id", story.OriginID, "title", story.Title)
	s.announce(ctx, sse.NewStoryCreatedEvent(story), story)
	s.notifier.Unlock(ctx, domain.AchievementImporter)
	return story.Clone(), nil
}

// ImportMany merges a batch at the front of the library, keeping the batch's
// order. A record whose id matches an existing story id or origin id, or an
// earlier record of the same batch, is skipped.
func (s *LibraryService) ImportMany(ctx context.Context, records []*domain.Story) (ImportResult, error) {
	result := ImportResult{Added: []int64{}}
	var added []*domain.Story

	err := s.update(ctx, func(stories []*domain.Story) ([]*domain.Story, error) {
		known := make(map[int64]bool, len(stories)*2)
		for _, st := range stories {
			known[st.ID] = true
			if st.OriginID != 0 {
				known[st.OriginID] = true
			}
		}

		for _, rec := range records {
			if rec == nil {
				continue
			}
			if rec.ID != 0 && known[rec.ID] {
				result.Skipped++
				continue
			}
			if rec.ID != 0 {
				known[rec.ID] = true
			}
			added = append(added, s.prepareImport(rec))
		}
		if len(added) == 0 {
			return nil, nil
		}
		return append(slices.Clone(added), stories...), nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	for _, st := range added {
		result.Added = append(result.Added, st.ID)
		s.announce(ctx, sse.NewStoryCreatedEvent(st), st)
	}
	s.logger.Info("library imported", "added", len(added), "skipped", result.Skipped)
	if len(added) > 0 {
		s.notifier.Unlock(ctx, domain.AchievementImporter)
	}
	return result, nil
}

// ImportDocument decodes a JSON document and imports it. An array goes
// through ImportMany, a single object through ImportOne. Any other shape
// fails with an INVALID_IMPORT error and leaves the library unchanged.
func (s *LibraryService) ImportDocument(ctx context.Context, raw []byte) (ImportResult, error) {
	snap, err := backup.DecodeSnapshot(raw)
	if err != nil {
		return ImportResult{}, domainerrors.InvalidImport("not a story or story list", err)
	}
	return s.ImportSnapshot(ctx, "upload", snap)
}

// ImportSnapshot imports an already decoded document. source labels the
// library.imported event.
func (s *LibraryService) ImportSnapshot(ctx context.Context, source string, snap backup.Snapshot) (ImportResult, error) {
	var result ImportResult
	if snap.Many {
		r, err := s.ImportMany(ctx, snap.Stories)
		if err != nil {
			return ImportResult{}, err
		}
		result = r
	} else {
		if len(snap.Stories) != 1 {
			return ImportResult{}, domainerrors.InvalidImport("expected exactly one story", nil)
		}
		st, err := s.ImportOne(ctx, snap.Stories[0])
		if err != nil {
			return ImportResult{}, err
		}
		result = ImportResult{Added: []int64{st.ID}}
	}

	s.events.Emit(sse.NewLibraryImportedEvent(source, len(result.Added), result.Skipped))
	return result, nil
}

// Export serialises one story. The library is not touched.
func (s *LibraryService) Export(ctx context.Context, storyID int64) ([]byte, string, error) {
	st, err := s.Get(ctx, storyID)
	if err != nil {
		return nil, "", err
	}
	raw, err := backup.EncodeStory(st)
	if err != nil {
		return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "encode story")
	}
	return raw, backup.StoryFilename(st.Title), nil
}

// ExportAll serialises the whole library.
func (s *LibraryService) ExportAll(ctx context.Context) ([]byte, string, error) {
	raw, err := backup.EncodeLibrary(s.List(ctx))
	if err != nil {
		return nil, "", domainerrors.Wrap(err, domainerrors.CodeInternal, "encode library")
	}
	s.notifier.Unlock(ctx, domain.AchievementArchivist)
	return raw, backup.LibraryFilename(s.now()), nil
}

// prepareImport copies an imported record and gives it fresh ids.
// Chapter ids are kept unless missing, repeated or out of the clock's range.
func (s *LibraryService) prepareImport(rec *domain.Story) *domain.Story {
	st := rec.Clone()
	if rec.ID != 0 {
		st.OriginID = rec.ID
	}
	st.ID = s.seq.Next()

	st.Title = strings.TrimSpace(st.Title)
	if st.Title == "" {
		st.Title = untitled
	}
	st.Genre = genre.Normalize(st.Genre)
	st.Cover = strings.TrimSpace(st.Cover)
	if strings.TrimSpace(st.CreatedAt) == "" {
		st.CreatedAt = s.now().Format(domain.CreatedAtLayout)
	}
	if st.Chapters == nil {
		st.Chapters = []domain.Chapter{}
	}

	seen := make(map[int64]bool, len(st.Chapters))
	for i := range st.Chapters {
		ch := &st.Chapters[i]
		if seen[ch.ID] || !s.seq.Plausible(ch.ID) {
			ch.ID = s.seq.Next()
		} else {
			s.seq.Observe(ch.ID)
		}
		seen[ch.ID] = true
	}
	if st.Lore != nil {
		st.EnsureLore()
	}
	return st
}

// update applies fn to the current list under the write lock and persists the
// result. fn returning a nil slice means nothing changed.
func (s *LibraryService) update(ctx context.Context, fn func([]*domain.Story) ([]*domain.Story, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.stories)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	if err := s.store.SaveLibrary(ctx, next); err != nil {
		return fmt.Errorf("persist library: %w", err)
	}
	s.stories = next
	return nil
}

// modify applies fn to a copy of one story and swaps the copy in.
func (s *LibraryService) modify(ctx context.Context, storyID int64, fn func(*domain.Story) error) (*domain.Story, error) {
	var updated *domain.Story
	err := s.update(ctx, func(stories []*domain.Story) ([]*domain.Story, error) {
		i := slices.IndexFunc(stories, func(st *domain.Story) bool { return st.ID == storyID })
		if i < 0 {
			return nil, domainerrors.NotFoundf("story %d not found", storyID)
		}
		updated = stories[i].Clone()
		if err := fn(updated); err != nil {
			return nil, err
		}
		next := slices.Clone(stories)
		next[i] = updated
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// announce publishes a story change and refreshes its search documents.
func (s *LibraryService) announce(ctx context.Context, event sse.Event, story *domain.Story) {
	s.events.Emit(event)
	if s.index == nil {
		return
	}
	if err := s.index.IndexStory(ctx, story); err != nil {
		s.logger.Warn("failed to index story", "story_id", story.ID, "error", err)
	}
}

func (s *LibraryService) indexOf(storyID int64) int {
	return slices.IndexFunc(s.stories, func(st *domain.Story) bool { return st.ID == storyID })
}
