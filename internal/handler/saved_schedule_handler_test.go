package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type savedScheduleServiceMock struct {
	saved      *models.SavedSchedule
	items      []models.SavedSchedule
	pagination *models.Pagination
	result     *models.ScheduleResult
	err        error
	lastSave   dto.SaveScheduleRequest
	lastQuery  dto.ListSavedSchedulesQuery
	lastID     string
	deleted    bool
}

func (m *savedScheduleServiceMock) Save(ctx context.Context, sessionID string, req dto.SaveScheduleRequest) (*models.SavedSchedule, error) {
	m.lastSave = req
	return m.saved, m.err
}

func (m *savedScheduleServiceMock) List(ctx context.Context, sessionID string, query dto.ListSavedSchedulesQuery) ([]models.SavedSchedule, *models.Pagination, error) {
	m.lastQuery = query
	return m.items, m.pagination, m.err
}

func (m *savedScheduleServiceMock) Restore(ctx context.Context, sessionID, id string) (*models.ScheduleResult, error) {
	m.lastID = id
	return m.result, m.err
}

func (m *savedScheduleServiceMock) Delete(ctx context.Context, sessionID, id string) error {
	m.lastID = id
	m.deleted = m.err == nil
	return m.err
}

func TestSavedScheduleHandlerCreate(t *testing.T) {
	mock := &savedScheduleServiceMock{saved: &models.SavedSchedule{ID: "saved-1", Name: "Fall plan"}}
	handler := NewSavedScheduleHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/saved-schedules", `{"name":"Fall plan"}`)
	withSession(c)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Fall plan", mock.lastSave.Name)
}

func TestSavedScheduleHandlerCreateFeatureDisabled(t *testing.T) {
	mock := &savedScheduleServiceMock{err: appErrors.ErrFeatureDisabled}
	handler := NewSavedScheduleHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/saved-schedules", `{"name":"Fall plan"}`)
	withSession(c)
	handler.Create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrFeatureDisabled.Code, env.Error.Code)
}

func TestSavedScheduleHandlerList(t *testing.T) {
	mock := &savedScheduleServiceMock{
		items:      []models.SavedSchedule{{ID: "saved-1"}},
		pagination: &models.Pagination{Page: 2, PageSize: 5, TotalCount: 6},
	}
	handler := NewSavedScheduleHandler(mock)

	c, w := newTestContext(t, http.MethodGet, "/saved-schedules?page=2&page_size=5", "")
	withSession(c)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mock.lastQuery.Page)
	assert.Equal(t, 5, mock.lastQuery.PageSize)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 6, env.Pagination.TotalCount)
}

func TestSavedScheduleHandlerRestore(t *testing.T) {
	mock := &savedScheduleServiceMock{result: &models.ScheduleResult{Message: "Loaded 2 sections.", Applied: true}}
	handler := NewSavedScheduleHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/saved-schedules/saved-1/restore", "")
	c.Params = append(c.Params, ginParam("id", "saved-1"))
	withSession(c)
	handler.Restore(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved-1", mock.lastID)
}

func TestSavedScheduleHandlerDelete(t *testing.T) {
	mock := &savedScheduleServiceMock{}
	handler := NewSavedScheduleHandler(mock)

	c, _ := newTestContext(t, http.MethodDelete, "/saved-schedules/saved-1", "")
	c.Params = append(c.Params, ginParam("id", "saved-1"))
	withSession(c)
	handler.Delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.True(t, mock.deleted)
}
