package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/sse"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

// Achievement categories.
const (
	CategoryWriting = "escritura"
	CategoryReading = "lectura"
	CategoryArchive = "archivo"
	CategorySecret  = "secreto"
)

var catalogue = []domain.Achievement{
	{ID: domain.AchievementWriterBorn, Title: "Nace un Escritor", Desc: "Crea tu primera historia.", Icon: "fa-solid fa-feather", Category: CategoryWriting},
	{ID: domain.AchievementFirstChapter, Title: "Primeras Páginas", Desc: "Escribe el primer capítulo de una historia.", Icon: "fa-solid fa-file-lines", Category: CategoryWriting},
	{ID: domain.AchievementLoreKeeper, Title: "Guardián del Lore", Desc: "Guarda el archivo de lore de una historia.", Icon: "fa-solid fa-book-atlas", Category: CategoryWriting},
	{ID: domain.AchievementCurator, Title: "Curador Legendario", Desc: "Añade una imagen legendaria al álbum.", Icon: "fa-solid fa-gem", Category: CategoryWriting},
	{ID: domain.AchievementBookworm, Title: "Ratón de Biblioteca", Desc: "Llega al último capítulo de una historia.", Icon: "fa-solid fa-book-open-reader", Category: CategoryReading},
	{ID: domain.AchievementBookmark, Title: "Marcapáginas", Desc: "Guarda tu primer marcapáginas.", Icon: "fa-solid fa-bookmark", Category: CategoryReading},
	{ID: domain.AchievementArchivist, Title: "Archivista", Desc: "Exporta una copia de tu biblioteca.", Icon: "fa-solid fa-box-archive", Category: CategoryArchive},
	{ID: domain.AchievementImporter, Title: "Traductor de Mundos", Desc: "Importa una historia desde un archivo.", Icon: "fa-solid fa-file-import", Category: CategoryArchive},
	{ID: domain.AchievementChronicler, Title: "Cronista de Oro", Desc: "Desbloquea todos los demás logros.", Icon: "fa-solid fa-crown", Category: CategorySecret},
}

// Catalogue returns every known achievement in display order.
func Catalogue() []domain.Achievement {
	return slices.Clone(catalogue)
}

func lookupAchievement(id string) (domain.Achievement, bool) {
	i := slices.IndexFunc(catalogue, func(a domain.Achievement) bool { return a.ID == id })
	if i < 0 {
		return domain.Achievement{}, false
	}
	return catalogue[i], true
}

// AchievementStatus is a catalogue entry with its unlock state.
type AchievementStatus struct {
	domain.Achievement
	Unlocked bool   `json:"unlocked"`
	Date     string `json:"date,omitempty"`
}

// AchievementService records unlocks in the store ledger and announces new
// ones over SSE. It implements domain.AchievementNotifier.
type AchievementService struct {
	store  *store.Store
	events EventEmitter
	logger *slog.Logger
	now    func() time.Time

	// mu serialises unlocks so the chronicler check sees a stable ledger.
	mu sync.Mutex
}

// NewAchievementService creates a new achievement service.
func NewAchievementService(store *store.Store, events EventEmitter, logger *slog.Logger) *AchievementService {
	if events == nil {
		events = NoopEmitter{}
	}
	return &AchievementService{
		store:  store,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Unlock records the achievement once. Unknown ids and repeats are ignored.
// Failures are logged, never returned.
func (s *AchievementService) Unlock(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlockLocked(ctx, id) || id == domain.AchievementChronicler {
		return
	}

	unlocks, err := s.store.ListUnlocks(ctx)
	if err != nil {
		s.logger.Warn("failed to read achievement ledger", "error", err)
		return
	}
	if earnedAllButChronicler(unlocks) {
		s.unlockLocked(ctx, domain.AchievementChronicler)
	}
}

func (s *AchievementService) unlockLocked(ctx context.Context, id string) bool {
	a, ok := lookupAchievement(id)
	if !ok {
		s.logger.Debug("ignoring unknown achievement", "achievement", id)
		return false
	}

	date := s.now().Format(domain.CreatedAtLayout)
	added, err := s.store.AddUnlock(ctx, domain.Unlock{ID: id, Date: date})
	if err != nil {
		s.logger.Error("failed to record achievement", "achievement", id, "error", err)
		return false
	}
	if !added {
		return false
	}

	s.logger.Info("achievement unlocked", "achievement", id, "title", a.Title)
	s.events.Emit(sse.NewAchievementUnlockedEvent(a, date))
	return true
}

func earnedAllButChronicler(unlocks []domain.Unlock) bool {
	have := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		have[u.ID] = true
	}
	for _, a := range catalogue {
		if a.ID != domain.AchievementChronicler && !have[a.ID] {
			return false
		}
	}
	return true
}

// List returns the catalogue with unlock state from the ledger.
func (s *AchievementService) List(ctx context.Context) ([]AchievementStatus, error) {
	unlocks, err := s.store.ListUnlocks(ctx)
	if err != nil {
		return nil, err
	}
	dates := make(map[string]string, len(unlocks))
	for _, u := range unlocks {
		dates[u.ID] = u.Date
	}

	out := make([]AchievementStatus, 0, len(catalogue))
	for _, a := range catalogue {
		date, ok := dates[a.ID]
		out = append(out, AchievementStatus{Achievement: a, Unlocked: ok, Date: date})
	}
	return out, nil
}
