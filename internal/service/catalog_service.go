package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

const prefetchJobType = "catalog.prefetch"

type catalogGateway interface {
	ResolveCourse(ctx context.Context, code string) (*models.Course, error)
	SearchCourses(ctx context.Context, query string) ([]*models.Course, error)
	CoursesByPage(ctx context.Context, page int) ([]*models.Course, error)
	CoursesByGenEd(ctx context.Context, deptID, genEd string) ([]*models.Course, error)
	Professor(ctx context.Context, name string, withReviews bool) (*models.Professor, error)
	Professors(ctx context.Context, page int) ([]*models.Professor, error)
}

// CatalogService fronts the catalog gateway for the planner and HTTP layer.
// It satisfies schedule.CourseResolver.
type CatalogService struct {
	gateway catalogGateway
	metrics *MetricsService
	logger  *zap.Logger
	queue   *jobs.Queue
}

// NewCatalogService constructs the service.
func NewCatalogService(gateway catalogGateway, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{gateway: gateway, metrics: metrics, logger: logger}
}

// StartPrefetch starts the background queue that warms full course lookups for
// search hits.
func (s *CatalogService) StartPrefetch(ctx context.Context, cfg jobs.QueueConfig) {
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	s.queue = jobs.NewQueue("catalog-prefetch", s.prefetch, cfg)
	s.metrics.TrackQueue("catalog-prefetch", s.queue.Stats)
	s.queue.Start(ctx)
}

// StopPrefetch stops the prefetch queue.
func (s *CatalogService) StopPrefetch() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

func (s *CatalogService) prefetch(ctx context.Context, job jobs.Job) error {
	code, _ := job.Payload.(string)
	if code == "" {
		return nil
	}
	_, err := s.gateway.ResolveCourse(ctx, code)
	switch {
	case err == nil:
		s.metrics.RecordPrefetch("ok")
		return nil
	case errors.Is(err, appErrors.ErrCourseNotFound):
		s.metrics.RecordPrefetch("not_found")
		return nil
	default:
		s.metrics.RecordPrefetch("error")
		return err
	}
}

func (s *CatalogService) schedulePrefetch(courses []*models.Course) {
	if s.queue == nil {
		return
	}
	for _, course := range courses {
		err := s.queue.TryEnqueue(jobs.Job{Key: course.Code, Kind: prefetchJobType, Payload: course.Code})
		if err != nil {
			s.logger.Debug("prefetch skipped", zap.String("course", course.Code), zap.Error(err))
			return
		}
	}
}

// ResolveCourse returns a complete course with sections.
func (s *CatalogService) ResolveCourse(ctx context.Context, code string) (*models.Course, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course code is required")
	}
	course, err := s.gateway.ResolveCourse(ctx, code)
	s.recordLookup("course", err)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// Search returns course heads matching the query and queues their full lookups.
func (s *CatalogService) Search(ctx context.Context, query string) ([]*models.Course, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "query is required")
	}
	courses, err := s.gateway.SearchCourses(ctx, query)
	s.recordLookup("search", err)
	if err != nil {
		return nil, err
	}
	s.schedulePrefetch(courses)
	return courses, nil
}

// Courses returns one page of the course listing.
func (s *CatalogService) Courses(ctx context.Context, page int) ([]*models.Course, error) {
	courses, err := s.gateway.CoursesByPage(ctx, page)
	s.recordLookup("courses", err)
	return courses, err
}

// CoursesByGenEd returns courses satisfying a gen-ed code.
func (s *CatalogService) CoursesByGenEd(ctx context.Context, deptID, genEd string) ([]*models.Course, error) {
	if strings.TrimSpace(genEd) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gen_ed is required")
	}
	courses, err := s.gateway.CoursesByGenEd(ctx, strings.TrimSpace(deptID), strings.TrimSpace(genEd))
	s.recordLookup("gen_ed", err)
	return courses, err
}

// Professor returns one professor profile.
func (s *CatalogService) Professor(ctx context.Context, name string, withReviews bool) (*models.Professor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "professor name is required")
	}
	prof, err := s.gateway.Professor(ctx, name, withReviews)
	s.recordLookup("professor", err)
	return prof, err
}

// Professors returns one page of professors.
func (s *CatalogService) Professors(ctx context.Context, page int) ([]*models.Professor, error) {
	profs, err := s.gateway.Professors(ctx, page)
	s.recordLookup("professors", err)
	return profs, err
}

func (s *CatalogService) recordLookup(kind string, err error) {
	result := "ok"
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status == http.StatusNotFound {
			result = "not_found"
		} else {
			result = "error"
			s.logger.Warn("catalog lookup failed", zap.String("kind", kind), zap.Error(err))
		}
	}
	s.metrics.RecordCatalogLookup(kind, result)
}
