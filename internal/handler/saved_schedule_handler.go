package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type savedScheduleService interface {
	Save(ctx context.Context, sessionID string, req dto.SaveScheduleRequest) (*models.SavedSchedule, error)
	List(ctx context.Context, sessionID string, query dto.ListSavedSchedulesQuery) ([]models.SavedSchedule, *models.Pagination, error)
	Restore(ctx context.Context, sessionID, id string) (*models.ScheduleResult, error)
	Delete(ctx context.Context, sessionID, id string) error
}

// SavedScheduleHandler manages named schedule snapshots.
type SavedScheduleHandler struct {
	service savedScheduleService
}

// NewSavedScheduleHandler builds a new handler.
func NewSavedScheduleHandler(svc savedScheduleService) *SavedScheduleHandler {
	return &SavedScheduleHandler{service: svc}
}

// Create godoc
// @Summary Save the current schedule under a name
// @Tags SavedSchedules
// @Accept json
// @Produce json
// @Security SessionToken
// @Param payload body dto.SaveScheduleRequest true "Snapshot name"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /saved-schedules [post]
func (h *SavedScheduleHandler) Create(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid saved schedule payload"))
		return
	}
	saved, err := h.service.Save(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// List godoc
// @Summary List saved schedules of the session
// @Tags SavedSchedules
// @Produce json
// @Security SessionToken
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /saved-schedules [get]
func (h *SavedScheduleHandler) List(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var query dto.ListSavedSchedulesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), sessionID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Restore godoc
// @Summary Replace the session schedule with a saved one
// @Tags SavedSchedules
// @Produce json
// @Security SessionToken
// @Param id path string true "Saved schedule ID"
// @Success 200 {object} response.Envelope
// @Router /saved-schedules/{id}/restore [post]
func (h *SavedScheduleHandler) Restore(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	result, err := h.service.Restore(c.Request.Context(), sessionID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a saved schedule
// @Tags SavedSchedules
// @Security SessionToken
// @Param id path string true "Saved schedule ID"
// @Success 204
// @Router /saved-schedules/{id} [delete]
func (h *SavedScheduleHandler) Delete(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), sessionID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
