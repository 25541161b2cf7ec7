package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type catalogServiceMock struct {
	course      *models.Course
	courses     []*models.Course
	professor   *models.Professor
	professors  []*models.Professor
	err         error
	lastCode    string
	lastQuery   string
	lastPage    int
	lastDept    string
	lastGenEd   string
	lastName    string
	withReviews bool
}

func (m *catalogServiceMock) ResolveCourse(ctx context.Context, code string) (*models.Course, error) {
	m.lastCode = code
	return m.course, m.err
}

func (m *catalogServiceMock) Search(ctx context.Context, query string) ([]*models.Course, error) {
	m.lastQuery = query
	return m.courses, m.err
}

func (m *catalogServiceMock) Courses(ctx context.Context, page int) ([]*models.Course, error) {
	m.lastPage = page
	return m.courses, m.err
}

func (m *catalogServiceMock) CoursesByGenEd(ctx context.Context, deptID, genEd string) ([]*models.Course, error) {
	m.lastDept = deptID
	m.lastGenEd = genEd
	return m.courses, m.err
}

func (m *catalogServiceMock) Professor(ctx context.Context, name string, withReviews bool) (*models.Professor, error) {
	m.lastName = name
	m.withReviews = withReviews
	return m.professor, m.err
}

func (m *catalogServiceMock) Professors(ctx context.Context, page int) ([]*models.Professor, error) {
	m.lastPage = page
	return m.professors, m.err
}

func TestCatalogHandlerCoursesPagination(t *testing.T) {
	mock := &catalogServiceMock{courses: []*models.Course{{Code: "AASP100"}}}
	handler := NewCatalogHandler(mock)

	c, w := newTestContext(t, http.MethodGet, "/catalog/courses?page=3", "")
	handler.Courses(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, mock.lastPage)
	env := decodeEnvelope(t, w)
	assert.EqualValues(t, 3, env.Meta["page"])
	assert.EqualValues(t, 30, env.Meta["page_size"])
}

func TestCatalogHandlerRejectsBadPage(t *testing.T) {
	for _, raw := range []string{"0", "-2", "abc"} {
		mock := &catalogServiceMock{}
		handler := NewCatalogHandler(mock)

		c, w := newTestContext(t, http.MethodGet, "/catalog/professors?page="+raw, "")
		handler.Professors(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
		assert.Zero(t, mock.lastPage, raw)
	}
}

func TestCatalogHandlerCourseNotFound(t *testing.T) {
	mock := &catalogServiceMock{err: appErrors.Clone(appErrors.ErrCourseNotFound, "CMSC999 not found")}
	handler := NewCatalogHandler(mock)

	c, w := newTestContext(t, http.MethodGet, "/catalog/courses/CMSC999", "")
	c.Params = append(c.Params, ginParam("code", "CMSC999"))
	handler.Course(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CMSC999", mock.lastCode)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrCourseNotFound.Code, env.Error.Code)
}

func TestCatalogHandlerSearch(t *testing.T) {
	mock := &catalogServiceMock{courses: []*models.Course{{Code: "CMSC131", Name: "Object-Oriented Programming I"}}}
	handler := NewCatalogHandler(mock)

	c, w := newTestContext(t, http.MethodGet, "/catalog/search?q=object", "")
	handler.Search(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "object", mock.lastQuery)
	var courses []models.Course
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "CMSC131", courses[0].Code)
}

func TestCatalogHandlerGenEds(t *testing.T) {
	mock := &catalogServiceMock{}
	handler := NewCatalogHandler(mock)

	c, w := newTestContext(t, http.MethodGet, "/catalog/gen-eds?dept_id=CMSC&gen_ed=DSNL", "")
	handler.GenEds(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CMSC", mock.lastDept)
	assert.Equal(t, "DSNL", mock.lastGenEd)
}

func TestCatalogHandlerProfessorWithReviews(t *testing.T) {
	mock := &catalogServiceMock{professor: &models.Professor{Name: "Ada Lovelace"}}
	handler := NewCatalogHandler(mock)

	c, w := newTestContext(t, http.MethodGet, "/catalog/professors/Ada%20Lovelace?reviews=true", "")
	c.Params = append(c.Params, ginParam("name", "Ada Lovelace"))
	handler.Professor(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada Lovelace", mock.lastName)
	assert.True(t, mock.withReviews)
}
