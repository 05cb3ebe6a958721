// Package di provides dependency injection configuration for the Chronicles server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/chroniclesapp/chronicles-server/internal/config"
	"github.com/chroniclesapp/chronicles-server/internal/di/providers"
	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/dto"
	"github.com/chroniclesapp/chronicles-server/internal/media"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

// NewContainer creates the DI container for cfg with all providers registered.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)

	// Storage and events
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvidePlaceholders)

	// Business services
	do.Provide(injector, providers.ProvideAchievementService)
	do.Provide(injector, providers.ProvideAchievementNotifier)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideReaderService)
	do.Provide(injector, providers.ProvideLoreService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideBackupService)
	do.Provide(injector, providers.ProvideEnricher)

	// Workers
	do.Provide(injector, providers.ProvideInbox)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes every service in dependency order. The library is
// loaded before the inbox or the HTTP server start accepting work.
func Bootstrap(injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		invoke[*config.Config],
		invoke[*slog.Logger],
		invoke[*providers.SSEManagerHandle],
		invoke[*providers.StoreHandle],
		invoke[*providers.SearchIndexHandle],
		invoke[*media.Placeholders],

		invoke[*service.AchievementService],
		invoke[domain.AchievementNotifier],
		invoke[*service.LibraryService],
		invoke[*service.ReaderService],
		invoke[*service.LoreService],
		invoke[*service.SearchService],
		invoke[*service.BackupService],
		invoke[*dto.Enricher],

		invoke[*providers.InboxHandle],
		invoke[*providers.HTTPServerHandle],
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}
	return nil
}

func invoke[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
