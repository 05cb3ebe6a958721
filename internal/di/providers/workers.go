package providers

import (
	"context"
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/chroniclesapp/chronicles-server/internal/config"
	"github.com/chroniclesapp/chronicles-server/internal/ratelimit"
	"github.com/chroniclesapp/chronicles-server/internal/service"
	"github.com/chroniclesapp/chronicles-server/internal/watcher"
)

// InboxHandle owns the inbox watcher and the goroutines consuming it.
// Watcher is nil when no inbox directory is configured.
type InboxHandle struct {
	*service.InboxService
	Watcher *watcher.Watcher
	pacer   *ratelimit.KeyedRateLimiter
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	h.pacer.Stop()
	return h.Watcher.Stop()
}

// ProvideInbox provides the import inbox. Files already present are imported
// in the background before live events are consumed.
func ProvideInbox(i do.Injector) (*InboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	library := do.MustInvoke[*service.LibraryService](i)
	log := do.MustInvoke[*slog.Logger](i)

	if cfg.Library.ImportInbox == "" {
		log.Info("No import inbox configured, watcher disabled")
		return &InboxHandle{}, nil
	}

	if err := os.MkdirAll(cfg.Library.ImportInbox, 0o755); err != nil {
		return nil, err
	}

	opts := watcher.Options{IgnoreHidden: true}
	w, err := watcher.New(log, opts)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(cfg.Library.ImportInbox); err != nil {
		_ = w.Stop()
		return nil, err
	}

	pacer := ratelimit.New(inboxPerMinute/60.0, inboxBurst)
	inbox := service.NewInboxService(library, cfg.Library.ImportInbox, opts, log).WithPacer(pacer)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Inbox watcher stopped", "error", err)
		}
	}()
	go func() {
		n, err := inbox.ScanExisting(ctx)
		if err != nil {
			log.Warn("Inbox scan incomplete", "error", err)
		}
		if n > 0 {
			log.Info("Imported files already in inbox", "count", n)
		}
		inbox.Run(ctx, w.Events(), w.Errors())
	}()

	log.Info("Import inbox watching", "path", cfg.Library.ImportInbox)

	return &InboxHandle{
		InboxService: inbox,
		Watcher:      w,
		pacer:        pacer,
		cancel:       cancel,
	}, nil
}
