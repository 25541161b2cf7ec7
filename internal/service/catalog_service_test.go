package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/schedule"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

type stubGateway struct {
	mu        sync.Mutex
	resolved  []string
	resolve   func(code string) (*models.Course, error)
	heads     []*models.Course
	searchErr error
	genEdArgs []string
}

func (g *stubGateway) ResolveCourse(ctx context.Context, code string) (*models.Course, error) {
	g.mu.Lock()
	g.resolved = append(g.resolved, code)
	g.mu.Unlock()
	if g.resolve != nil {
		return g.resolve(code)
	}
	return models.NewCourseHead(code, "", 3, nil), nil
}

func (g *stubGateway) resolvedCodes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.resolved...)
}

func (g *stubGateway) SearchCourses(ctx context.Context, query string) ([]*models.Course, error) {
	return g.heads, g.searchErr
}

func (g *stubGateway) CoursesByPage(ctx context.Context, page int) ([]*models.Course, error) {
	return g.heads, nil
}

func (g *stubGateway) CoursesByGenEd(ctx context.Context, deptID, genEd string) ([]*models.Course, error) {
	g.genEdArgs = []string{deptID, genEd}
	return g.heads, nil
}

func (g *stubGateway) Professor(ctx context.Context, name string, withReviews bool) (*models.Professor, error) {
	return nil, appErrors.Clone(appErrors.ErrProfessorNotFound, name+" not found")
}

func (g *stubGateway) Professors(ctx context.Context, page int) ([]*models.Professor, error) {
	return []*models.Professor{{Name: "Ada Lovelace"}}, nil
}

func TestCatalogServiceResolveRecordsLookups(t *testing.T) {
	gateway := &stubGateway{resolve: func(code string) (*models.Course, error) {
		if code == "CMSC131" {
			return models.NewCourseHead(code, "OOP I", 4, nil), nil
		}
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, code+" is not a valid course code")
	}}
	metrics := NewMetricsService()
	svc := NewCatalogService(gateway, metrics, nil)

	course, err := svc.ResolveCourse(context.Background(), " cmsc131 ")
	require.NoError(t, err)
	assert.Equal(t, "CMSC131", course.Code)

	_, err = svc.ResolveCourse(context.Background(), "NOPE100")
	assert.True(t, errors.Is(err, appErrors.ErrCourseNotFound))

	_, err = svc.ResolveCourse(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.catalogLookups.WithLabelValues("course", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.catalogLookups.WithLabelValues("course", "not_found")))
}

func TestCatalogServiceSearchPrefetchesHits(t *testing.T) {
	gateway := &stubGateway{heads: []*models.Course{
		models.NewCourseHead("CMSC131", "OOP I", 4, nil),
		models.NewCourseHead("CMSC132", "OOP II", 4, nil),
	}}
	metrics := NewMetricsService()
	svc := NewCatalogService(gateway, metrics, nil)
	svc.StartPrefetch(context.Background(), jobs.QueueConfig{Workers: 1, BufferSize: 4, RetryDelay: time.Millisecond})
	defer svc.StopPrefetch()

	courses, err := svc.Search(context.Background(), "cmsc13")
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	require.Eventually(t, func() bool {
		return len(gateway.resolvedCodes()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"CMSC131", "CMSC132"}, gateway.resolvedCodes())
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.prefetchJobs.WithLabelValues("ok")) == 2
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return metrics.Snapshot().Queues["catalog-prefetch"].Succeeded == 2
	}, time.Second, 5*time.Millisecond)
}

func TestCatalogServiceSearchWithoutQueue(t *testing.T) {
	gateway := &stubGateway{heads: []*models.Course{models.NewCourseHead("CMSC131", "OOP I", 4, nil)}}
	svc := NewCatalogService(gateway, nil, nil)

	courses, err := svc.Search(context.Background(), "CMSC")
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Empty(t, gateway.resolvedCodes())

	_, err = svc.Search(context.Background(), "  ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	gateway.searchErr = appErrors.Clone(appErrors.ErrCatalogUnavailable, "timeout")
	_, err = svc.Search(context.Background(), "CMSC")
	assert.True(t, errors.Is(err, appErrors.ErrCatalogUnavailable))
}

func TestCatalogServiceListings(t *testing.T) {
	gateway := &stubGateway{heads: []*models.Course{models.NewCourseHead("ENGL101", "Academic Writing", 3, nil)}}
	svc := NewCatalogService(gateway, nil, nil)

	courses, err := svc.CoursesByGenEd(context.Background(), " engl ", " FSAW ")
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, []string{"engl", "FSAW"}, gateway.genEdArgs)

	_, err = svc.CoursesByGenEd(context.Background(), "ENGL", "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	courses, err = svc.Courses(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, courses, 1)

	profs, err := svc.Professors(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, profs, 1)

	_, err = svc.Professor(context.Background(), "Nobody", false)
	assert.True(t, errors.Is(err, appErrors.ErrProfessorNotFound))
	_, err = svc.Professor(context.Background(), "", false)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCatalogServiceLoadSkipsEmptyCourseCode(t *testing.T) {
	gateway := &stubGateway{resolve: func(code string) (*models.Course, error) {
		return models.NewCourseHead(code, "OOP I", 4, nil), nil
	}}
	sched := schedule.New()

	err := sched.LoadSerializedSchedule(context.Background(), "-0101,CMSC131-0101", NewCatalogService(gateway, nil, nil))

	require.NoError(t, err)
	var kinds []models.WarningKind
	for _, w := range sched.Warnings() {
		kinds = append(kinds, w.Kind())
	}
	assert.Equal(t, []models.WarningKind{models.WarningCourseNotFound, models.WarningSectionNotFound}, kinds)
	assert.Equal(t, []string{"CMSC131"}, gateway.resolvedCodes())
}
