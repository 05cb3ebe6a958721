package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chroniclesapp/chronicles-server/internal/backup"
	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
	"github.com/chroniclesapp/chronicles-server/internal/service"
)

// MaxUploadSize bounds import documents and restore archives.
const MaxUploadSize = 32 << 20

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportStory",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/export",
		Summary:     "Export story",
		Description: "Downloads one story as a JSON document",
		Tags:        []string{"Library"},
	}, s.handleExportStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/export",
		Summary:     "Export library",
		Description: "Downloads every story as a JSON array",
		Tags:        []string{"Library"},
	}, s.handleExportLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID:  "importLibrary",
		Method:       http.MethodPost,
		Path:         importPath,
		Summary:      "Import stories",
		Description:  "Imports a story object or an array of stories. Stories get fresh ids; duplicates of existing stories are skipped",
		Tags:         []string{"Library"},
		MaxBodyBytes: MaxUploadSize,
	}, s.handleImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadBackup",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/backup",
		Summary:     "Download backup",
		Description: "Streams a zip archive with stories, bookmarks and achievements",
		Tags:        []string{"Library"},
	}, s.handleDownloadBackup)

	huma.Register(s.api, huma.Operation{
		OperationID:  "restoreBackup",
		Method:       http.MethodPost,
		Path:         restorePath,
		Summary:      "Restore backup",
		Description:  "Replaces the library, bookmarks and achievements with the contents of a backup archive. Requires confirm=true",
		Tags:         []string{"Library"},
		MaxBodyBytes: MaxUploadSize,
	}, s.handleRestore)
}

// DownloadOutput is a file attachment sent without the JSON envelope.
type DownloadOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// ImportInput carries the raw document.
type ImportInput struct {
	Filename string `query:"filename" doc:"Original file name; .md, .txt and .html files become a one-chapter story"`
	RawBody  []byte
}

// ImportOutput reports what was imported.
type ImportOutput struct {
	Body service.ImportResult
}

// RestoreInput carries the archive.
type RestoreInput struct {
	Confirm bool `query:"confirm" doc:"Must be true; the current library is replaced"`
	RawBody []byte
}

// RestoreOutput describes the restored archive.
type RestoreOutput struct {
	Body *backup.Manifest
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func (s *Server) handleExportStory(ctx context.Context, input *StoryIDInput) (*DownloadOutput, error) {
	raw, filename, err := s.services.Library.Export(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DownloadOutput{
		ContentType:        "application/json",
		ContentDisposition: attachment(filename),
		Body:               raw,
	}, nil
}

func (s *Server) handleExportLibrary(ctx context.Context, _ *struct{}) (*DownloadOutput, error) {
	raw, filename, err := s.services.Library.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	return &DownloadOutput{
		ContentType:        "application/json",
		ContentDisposition: attachment(filename),
		Body:               raw,
	}, nil
}

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	if len(input.RawBody) == 0 {
		return nil, domainerrors.InvalidImport("empty document", nil)
	}

	name := filepath.Base(input.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if input.Filename == "" || ext == ".json" {
		result, err := s.services.Library.ImportDocument(ctx, input.RawBody)
		if err != nil {
			return nil, err
		}
		return &ImportOutput{Body: result}, nil
	}

	snap, err := backup.DecodeFile(name, input.RawBody)
	if err != nil {
		return nil, domainerrors.InvalidImport("unsupported document", err)
	}
	result, err := s.services.Library.ImportSnapshot(ctx, "upload:"+name, snap)
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Body: result}, nil
}

func (s *Server) handleDownloadBackup(_ context.Context, _ *struct{}) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			hctx.SetHeader("Content-Type", "application/zip")
			hctx.SetHeader("Content-Disposition", attachment(s.services.Backup.Filename()))

			m, err := s.services.Backup.Write(hctx.Context(), hctx.BodyWriter())
			if err != nil {
				// Headers are gone; the client sees a truncated zip.
				s.logger.ErrorContext(hctx.Context(), "backup stream failed", "error", err)
				return
			}
			s.logger.InfoContext(hctx.Context(), "backup downloaded",
				"stories", m.Counts.Stories,
				"chapters", m.Counts.Chapters,
			)
		},
	}, nil
}

func (s *Server) handleRestore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error) {
	if !input.Confirm {
		return nil, domainerrors.ConfirmationRequired("restoring replaces the whole library; repeat with confirm=true")
	}
	if len(input.RawBody) == 0 {
		return nil, domainerrors.InvalidImport("empty archive", nil)
	}

	m, err := s.services.Backup.Restore(ctx, bytes.NewReader(input.RawBody), int64(len(input.RawBody)))
	if err != nil {
		return nil, err
	}
	return &RestoreOutput{Body: m}, nil
}
