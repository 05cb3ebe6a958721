package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/service"
)

func (s *Server) registerAchievementRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAchievements",
		Method:      http.MethodGet,
		Path:        "/api/v1/achievements",
		Summary:     "List achievements",
		Description: "Returns the achievement catalogue with unlock dates",
		Tags:        []string{"Achievements"},
	}, s.handleListAchievements)
}

// AchievementsOutput wraps the catalogue.
type AchievementsOutput struct {
	Body AchievementsResponse
}

// AchievementsResponse is the catalogue with progress.
type AchievementsResponse struct {
	Achievements []service.AchievementStatus `json:"achievements"`
	Unlocked     int                         `json:"unlocked"`
	Total        int                         `json:"total"`
}

func (s *Server) handleListAchievements(ctx context.Context, _ *struct{}) (*AchievementsOutput, error) {
	list, err := s.services.Achievements.List(ctx)
	if err != nil {
		return nil, err
	}
	unlocked := 0
	for _, a := range list {
		if a.Unlocked {
			unlocked++
		}
	}
	return &AchievementsOutput{Body: AchievementsResponse{
		Achievements: list,
		Unlocked:     unlocked,
		Total:        len(list),
	}}, nil
}
