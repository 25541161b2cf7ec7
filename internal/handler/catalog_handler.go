package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/catalog"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type catalogService interface {
	ResolveCourse(ctx context.Context, code string) (*models.Course, error)
	Search(ctx context.Context, query string) ([]*models.Course, error)
	Courses(ctx context.Context, page int) ([]*models.Course, error)
	CoursesByGenEd(ctx context.Context, deptID, genEd string) ([]*models.Course, error)
	Professor(ctx context.Context, name string, withReviews bool) (*models.Professor, error)
	Professors(ctx context.Context, page int) ([]*models.Professor, error)
}

// CatalogHandler exposes course and professor lookups.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler builds a new handler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func pageQuery(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer"))
		return 0, false
	}
	return page, true
}

// Courses godoc
// @Summary List courses alphabetically
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	courses, err := h.catalog.Courses(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil, map[string]interface{}{"page": page, "page_size": catalog.CoursesPerPage})
}

// Course godoc
// @Summary Get a course with sections and professors
// @Tags Catalog
// @Produce json
// @Param code path string true "Course code, e.g. CMSC131"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/courses/{code} [get]
func (h *CatalogHandler) Course(c *gin.Context) {
	course, err := h.catalog.ResolveCourse(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Search godoc
// @Summary Search courses
// @Tags Catalog
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} response.Envelope
// @Router /catalog/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	courses, err := h.catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// GenEds godoc
// @Summary List courses satisfying a general education requirement
// @Tags Catalog
// @Produce json
// @Param gen_ed query string true "Gen-ed code, e.g. DSNL"
// @Param dept_id query string false "Department filter, e.g. CMSC"
// @Success 200 {object} response.Envelope
// @Router /catalog/gen-eds [get]
func (h *CatalogHandler) GenEds(c *gin.Context) {
	courses, err := h.catalog.CoursesByGenEd(c.Request.Context(), c.Query("dept_id"), c.Query("gen_ed"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Professors godoc
// @Summary List professors
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Envelope
// @Router /catalog/professors [get]
func (h *CatalogHandler) Professors(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	profs, err := h.catalog.Professors(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profs, nil, map[string]interface{}{"page": page, "page_size": catalog.ProfessorsPerPage})
}

// Professor godoc
// @Summary Get a professor profile
// @Tags Catalog
// @Produce json
// @Param name path string true "Professor name"
// @Param reviews query bool false "Include reviews"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/professors/{name} [get]
func (h *CatalogHandler) Professor(c *gin.Context) {
	withReviews, _ := strconv.ParseBool(c.DefaultQuery("reviews", "false"))
	prof, err := h.catalog.Professor(c.Request.Context(), c.Param("name"), withReviews)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prof, nil)
}
