package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/chroniclesapp/chronicles-server/internal/config"
	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/dto"
	"github.com/chroniclesapp/chronicles-server/internal/media"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

// ProvideAchievementService provides the achievement ledger.
func ProvideAchievementService(i do.Injector) (*service.AchievementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewAchievementService(storeHandle.Store, sseHandle.Manager, log), nil
}

// ProvideAchievementNotifier provides the notifier handed to the library,
// reader and backup services. With achievements disabled nothing is unlocked,
// though the ledger stays readable.
func ProvideAchievementNotifier(i do.Injector) (domain.AchievementNotifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if !cfg.Achievements.Enabled {
		log.Info("Achievements disabled by configuration")
		return domain.NoopNotifier{}, nil
	}
	return do.MustInvoke[*service.AchievementService](i), nil
}

// ProvidePlaceholders provides the blurhash placeholder source.
func ProvidePlaceholders(i do.Injector) (*media.Placeholders, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	if cfg.Reader.AssetRoot == "" {
		log.Info("No asset root configured, image placeholders disabled")
	}
	return media.NewPlaceholders(cfg.Reader.AssetRoot, storeHandle.Store, log), nil
}

// ProvideLibraryService provides the library and loads it from the store.
// Loading also rebuilds the search index.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	notifier := do.MustInvoke[domain.AchievementNotifier](i)
	log := do.MustInvoke[*slog.Logger](i)

	svc := service.NewLibraryService(service.LibraryDeps{
		Store:    storeHandle.Store,
		Notifier: notifier,
		Events:   sseHandle.Manager,
		Index:    indexHandle.SearchIndex,
		Logger:   log,
	})
	if err := svc.Load(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}

// ProvideReaderService provides the reader session.
func ProvideReaderService(i do.Injector) (*service.ReaderService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	library := do.MustInvoke[*service.LibraryService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	notifier := do.MustInvoke[domain.AchievementNotifier](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewReaderService(library, storeHandle.Store, notifier, sseHandle.Manager, service.ReaderOptions{
		TurnDelay: cfg.Reader.PageTurnDelay,
		CoverDir:  cfg.Reader.CoverDir,
	}, log), nil
}

// ProvideLoreService provides the lore archive.
func ProvideLoreService(i do.Injector) (*service.LoreService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	library := do.MustInvoke[*service.LibraryService](i)
	placeholders := do.MustInvoke[*media.Placeholders](i)

	return service.NewLoreService(library, cfg.Reader.AlbumDir, placeholders), nil
}

// ProvideBackupService provides backup archives and restore.
func ProvideBackupService(i do.Injector) (*service.BackupService, error) {
	library := do.MustInvoke[*service.LibraryService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	notifier := do.MustInvoke[domain.AchievementNotifier](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewBackupService(storeHandle.Store, library, notifier, sseHandle.Manager, log), nil
}

// ProvideEnricher provides the story card builder.
func ProvideEnricher(i do.Injector) (*dto.Enricher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	placeholders := do.MustInvoke[*media.Placeholders](i)

	return dto.NewEnricher(storeHandle.Store, placeholders, cfg.Reader.CoverDir), nil
}
