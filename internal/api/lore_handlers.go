package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/lore"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

func (s *Server) registerLoreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLore",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/lore",
		Summary:     "Get lore archive",
		Description: "Returns the rendered lore archive (power scale tiers, gallery cards) and the raw lore record",
		Tags:        []string{"Lore"},
	}, s.handleGetLore)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLoreEditor",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/lore/editor",
		Summary:     "Get lore editor",
		Description: "Returns the editable form of the lore with the requested tab active",
		Tags:        []string{"Lore"},
	}, s.handleGetLoreEditor)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveLore",
		Method:      http.MethodPut,
		Path:        "/api/v1/stories/{id}/lore",
		Summary:     "Save lore",
		Description: "Replaces the lore. Text is trimmed; nameless characters and url-less album entries are dropped",
		Tags:        []string{"Lore"},
	}, s.handleSaveLore)
}

// LoreOutput wraps the lore archive.
type LoreOutput struct {
	Body *service.LoreDetail
}

// LoreEditorInput selects the story and the active tab.
type LoreEditorInput struct {
	ID  int64  `path:"id" doc:"Story ID"`
	Tab string `query:"tab" enum:"synopsis,world,chars,album" doc:"Active editor tab"`
}

// LoreEditorOutput wraps the editor form.
type LoreEditorOutput struct {
	Body *lore.Editor
}

// SaveLoreInput contains the replacement lore.
type SaveLoreInput struct {
	ID   int64 `path:"id" doc:"Story ID"`
	Body SaveLoreRequest
}

// SaveLoreRequest is the lore form. Every field is optional.
type SaveLoreRequest struct {
	Synopsis   string             `json:"synopsis,omitempty"`
	PowerScale string             `json:"powerScale,omitempty" doc:"Comma-separated ranks, weakest first"`
	WorldRules string             `json:"worldRules,omitempty"`
	Characters []CharacterRequest `json:"characters,omitempty"`
	Album      []AlbumRequest     `json:"album,omitempty"`
}

// CharacterRequest is one roster row. Rows with a blank name are dropped.
type CharacterRequest struct {
	Name string `json:"name,omitempty"`
	Desc string `json:"desc,omitempty"`
}

// AlbumRequest is one gallery row. Rows with a blank url are dropped and
// unknown rarities become common.
type AlbumRequest struct {
	URL    string `json:"url,omitempty"`
	Name   string `json:"name,omitempty"`
	Desc   string `json:"desc,omitempty"`
	Rarity string `json:"rarity,omitempty" doc:"common, rare, epic or legendary"`
}

func (r SaveLoreRequest) lore() domain.Lore {
	l := domain.Lore{
		Synopsis:   r.Synopsis,
		PowerScale: r.PowerScale,
		WorldRules: r.WorldRules,
		Characters: make([]domain.Character, 0, len(r.Characters)),
		Album:      make([]domain.AlbumEntry, 0, len(r.Album)),
	}
	for _, c := range r.Characters {
		l.Characters = append(l.Characters, domain.Character{Name: c.Name, Desc: c.Desc})
	}
	for _, a := range r.Album {
		l.Album = append(l.Album, domain.AlbumEntry{URL: a.URL, Name: a.Name, Desc: a.Desc, Rarity: domain.Rarity(a.Rarity)})
	}
	return l
}

func (s *Server) handleGetLore(ctx context.Context, input *StoryIDInput) (*LoreOutput, error) {
	detail, err := s.services.Lore.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &LoreOutput{Body: detail}, nil
}

func (s *Server) handleGetLoreEditor(ctx context.Context, input *LoreEditorInput) (*LoreEditorOutput, error) {
	editor, err := s.services.Lore.Editor(ctx, input.ID, input.Tab)
	if err != nil {
		return nil, err
	}
	return &LoreEditorOutput{Body: editor}, nil
}

func (s *Server) handleSaveLore(ctx context.Context, input *SaveLoreInput) (*LoreOutput, error) {
	detail, err := s.services.Lore.Save(ctx, input.ID, input.Body.lore())
	if err != nil {
		return nil, err
	}
	return &LoreOutput{Body: detail}, nil
}
