package api

import (
	"github.com/chroniclesapp/chronicles-server/internal/dto"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

// Services groups the services the handlers call. Any field may be nil in
// tests that do not register the matching routes.
type Services struct {
	Library      *service.LibraryService
	Reader       *service.ReaderService
	Lore         *service.LoreService
	Search       *service.SearchService
	Backup       *service.BackupService
	Achievements *service.AchievementService
	Enricher     *dto.Enricher
}
