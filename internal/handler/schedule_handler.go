package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/service"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type plannerService interface {
	View(ctx context.Context, sessionID string) (*models.ScheduleView, error)
	Serialized(ctx context.Context, sessionID string) (string, error)
	AddSection(ctx context.Context, sessionID string, req dto.AddSectionRequest) (*models.ScheduleResult, error)
	RemoveSection(ctx context.Context, sessionID, sectionID string) (*models.ScheduleResult, error)
	Clear(ctx context.Context, sessionID string) (*models.ScheduleResult, error)
	Load(ctx context.Context, sessionID string, req dto.LoadScheduleRequest) (*models.ScheduleResult, error)
	Export(ctx context.Context, sessionID string, format models.ExportFormat) (*models.ExportFile, error)
}

// ScheduleHandler exposes the session schedule.
type ScheduleHandler struct {
	planner plannerService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(planner plannerService) *ScheduleHandler {
	return &ScheduleHandler{planner: planner}
}

// View godoc
// @Summary Get the session schedule
// @Tags Schedule
// @Produce json
// @Security SessionToken
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) View(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.planner.View(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AddSection godoc
// @Summary Add a section to the schedule
// @Description Conflicts, duplicates and unknown courses are reported with applied=false.
// @Tags Schedule
// @Accept json
// @Produce json
// @Security SessionToken
// @Param payload body dto.AddSectionRequest true "Section to add"
// @Success 200 {object} response.Envelope
// @Router /schedule/sections [post]
func (h *ScheduleHandler) AddSection(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid section payload"))
		return
	}
	result, err := h.planner.AddSection(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RemoveSection godoc
// @Summary Remove a section from the schedule
// @Tags Schedule
// @Produce json
// @Security SessionToken
// @Param sectionId path string true "Section id, e.g. CMSC131-0101"
// @Success 200 {object} response.Envelope
// @Router /schedule/sections/{sectionId} [delete]
func (h *ScheduleHandler) RemoveSection(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	result, err := h.planner.RemoveSection(c.Request.Context(), sessionID, c.Param("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Clear godoc
// @Summary Remove every section
// @Tags Schedule
// @Produce json
// @Security SessionToken
// @Success 200 {object} response.Envelope
// @Router /schedule [delete]
func (h *ScheduleHandler) Clear(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	result, err := h.planner.Clear(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Serialized godoc
// @Summary Get the shareable serialized schedule
// @Tags Schedule
// @Produce json
// @Security SessionToken
// @Success 200 {object} response.Envelope
// @Router /schedule/serialized [get]
func (h *ScheduleHandler) Serialized(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	serialized, err := h.planner.Serialized(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"serialized": serialized}, nil)
}

// Load godoc
// @Summary Load a serialized schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Security SessionToken
// @Param payload body dto.LoadScheduleRequest true "Serialized schedule"
// @Success 200 {object} response.Envelope
// @Router /schedule/load [post]
func (h *ScheduleHandler) Load(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.LoadScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid load payload"))
		return
	}
	result, err := h.planner.Load(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download the schedule
// @Tags Schedule
// @Produce text/csv,application/pdf,text/calendar,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security SessionToken
// @Param format query string false "csv, xlsx, pdf or ics" default(csv)
// @Success 200 {file} file
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.planner.Export(c.Request.Context(), sessionID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
