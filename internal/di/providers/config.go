package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/chroniclesapp/chronicles-server/internal/config"
	"github.com/chroniclesapp/chronicles-server/internal/logger"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Chronicles server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Store.DataPath,
		"in_memory", cfg.Store.InMemory,
		"import_inbox", cfg.Library.ImportInbox,
	)

	return log, nil
}
