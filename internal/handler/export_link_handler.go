package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type exportLinkService interface {
	Create(ctx context.Context, sessionID string, format models.ExportFormat) (*models.ExportLink, error)
	Open(token string) (*service.ExportDownload, error)
}

// ExportLinkHandler issues and serves signed export downloads.
type ExportLinkHandler struct {
	links exportLinkService
}

// NewExportLinkHandler builds a new handler.
func NewExportLinkHandler(links exportLinkService) *ExportLinkHandler {
	return &ExportLinkHandler{links: links}
}

// Create godoc
// @Summary Create a signed download link for the schedule
// @Description The link works without a session token, e.g. as a calendar subscription.
// @Tags Schedule
// @Produce json
// @Security SessionToken
// @Param format query string false "csv, xlsx, pdf or ics" default(csv)
// @Success 201 {object} response.Envelope
// @Router /schedule/export/link [post]
func (h *ExportLinkHandler) Create(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.links.Create(c.Request.Context(), sessionID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Download a stored export through a signed link
// @Tags Schedule
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportLinkHandler) Download(c *gin.Context) {
	download, err := h.links.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", download.Filename),
	})
}
