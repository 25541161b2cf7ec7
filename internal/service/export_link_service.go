package service

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/storage"
)

type scheduleExporter interface {
	Export(ctx context.Context, sessionID string, format models.ExportFormat) (*models.ExportFile, error)
}

type exportStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportDownload is an opened stored export. Callers close File.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportLinkService stores rendered exports and hands out signed links to
// them, so calendar apps can fetch an export without a session token.
type ExportLinkService struct {
	planner scheduleExporter
	store   exportStore
	signer  *storage.Signer
	baseURL string
	logger  *zap.Logger
}

// NewExportLinkService constructs the service. baseURL prefixes the download
// route, e.g. "/api/v1/exports".
func NewExportLinkService(planner scheduleExporter, store exportStore, signer *storage.Signer, baseURL string, logger *zap.Logger) *ExportLinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportLinkService{
		planner: planner,
		store:   store,
		signer:  signer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Create renders the session schedule, stores it and returns a signed link.
func (s *ExportLinkService) Create(ctx context.Context, sessionID string, format models.ExportFormat) (*models.ExportLink, error) {
	file, err := s.planner.Export(ctx, sessionID, format)
	if err != nil {
		return nil, err
	}
	name, err := s.store.Save(path.Join(sessionID, file.Filename), file.Body)
	if err != nil {
		s.logger.Error("failed to store export", zap.String("session_id", sessionID), zap.Error(err))
		return nil, appErrors.ErrInternal.With(err, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(sessionID, name)
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to sign export link")
	}
	return &models.ExportLink{
		URL:       s.baseURL + "/" + token,
		Format:    format,
		Filename:  file.Filename,
		ExpiresAt: expiresAt,
	}, nil
}

// Open verifies token and opens the stored export it points to.
func (s *ExportLinkService) Open(token string) (*ExportDownload, error) {
	link, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrLinkExpired) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link not found")
	}
	file, err := s.store.Open(link.Path)
	if err != nil {
		s.logger.Warn("signed export missing", zap.String("path", link.Path), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	filename := path.Base(link.Path)
	return &ExportDownload{
		File:        file,
		Filename:    filename,
		ContentType: models.ExportFormat(strings.TrimPrefix(path.Ext(filename), ".")).ContentType(),
	}, nil
}

// Cleanup deletes stored exports whose links can no longer be valid.
func (s *ExportLinkService) Cleanup(_ context.Context) error {
	deleted, err := s.store.CleanupOlderThan(s.signer.TTL())
	if err != nil {
		return err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
	return nil
}
