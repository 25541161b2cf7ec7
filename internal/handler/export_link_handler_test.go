package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/service"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type exportLinkServiceMock struct {
	link       *models.ExportLink
	download   *service.ExportDownload
	err        error
	lastFormat models.ExportFormat
	lastToken  string
}

func (m *exportLinkServiceMock) Create(ctx context.Context, sessionID string, format models.ExportFormat) (*models.ExportLink, error) {
	m.lastFormat = format
	return m.link, m.err
}

func (m *exportLinkServiceMock) Open(token string) (*service.ExportDownload, error) {
	m.lastToken = token
	return m.download, m.err
}

func TestExportLinkHandlerCreate(t *testing.T) {
	svc := &exportLinkServiceMock{link: &models.ExportLink{
		URL:       "/api/v1/exports/abc",
		Format:    models.ExportFormatICS,
		Filename:  "schedule.ics",
		ExpiresAt: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
	}}
	h := NewExportLinkHandler(svc)

	c, w := newTestContext(t, http.MethodPost, "/schedule/export/link?format=ics", "")
	withSession(c)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.ExportFormatICS, svc.lastFormat)
	var link models.ExportLink
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &link))
	assert.Equal(t, "/api/v1/exports/abc", link.URL)
}

func TestExportLinkHandlerCreateRequiresSession(t *testing.T) {
	h := NewExportLinkHandler(&exportLinkServiceMock{})
	c, w := newTestContext(t, http.MethodPost, "/schedule/export/link", "")
	h.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportLinkHandlerCreateRejectsFormat(t *testing.T) {
	h := NewExportLinkHandler(&exportLinkServiceMock{})
	c, w := newTestContext(t, http.MethodPost, "/schedule/export/link?format=docx", "")
	withSession(c)
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportLinkHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte("day,start\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	svc := &exportLinkServiceMock{download: &service.ExportDownload{
		File:        file,
		Filename:    "schedule.csv",
		ContentType: models.ExportFormatCSV.ContentType(),
	}}
	h := NewExportLinkHandler(svc)

	c, w := newTestContext(t, http.MethodGet, "/exports/tok", "")
	c.Params = append(c.Params, ginParam("token", "tok"))
	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", svc.lastToken)
	assert.Equal(t, "day,start\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="schedule.csv"`)
}

func TestExportLinkHandlerDownloadNotFound(t *testing.T) {
	h := NewExportLinkHandler(&exportLinkServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "download link expired")})
	c, w := newTestContext(t, http.MethodGet, "/exports/tok", "")
	c.Params = append(c.Params, ginParam("token", "tok"))
	h.Download(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
