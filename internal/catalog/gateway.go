package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

// Page sizes used by the upstream listings.
const (
	CoursesPerPage    = 30
	ProfessorsPerPage = 100
)

// Gateway assembles domain courses and professors from raw catalog payloads.
type Gateway struct {
	client *Client
	logger *zap.Logger
}

// NewGateway constructs a gateway over the client.
func NewGateway(client *Client, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{client: client, logger: logger}
}

// CourseHead returns a course without sections.
func (g *Gateway) CourseHead(ctx context.Context, code string) (*models.Course, error) {
	raw, err := g.client.Course(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	return CourseHeadFromPlanetTerp(*raw), nil
}

// ResolveCourse returns a complete course: head, sections, per-professor GPA and
// professors ordered by rating.
func (g *Gateway) ResolveCourse(ctx context.Context, code string) (*models.Course, error) {
	course, err := g.CourseHead(ctx, code)
	if err != nil {
		return nil, err
	}
	sections, err := g.client.Sections(ctx, course.Code)
	if err != nil {
		return nil, err
	}
	if err := AttachSections(course, sections); err != nil {
		return nil, err
	}

	rows, err := g.client.Grades(ctx, course.Code)
	if err != nil {
		g.logger.Warn("grade distribution unavailable", zap.String("course", course.Code), zap.Error(err))
	} else {
		course.ProfessorGPA = ProfessorGPA(rows)
	}

	course.Professors = g.sortProfessorsByRating(ctx, course.ProfessorSections)
	return course, nil
}

// sortProfessorsByRating orders instructors by PlanetTerp rating, highest first.
// Unrated professors and failed lookups go last in name order.
func (g *Gateway) sortProfessorsByRating(ctx context.Context, bySection map[string][]*models.Section) []string {
	type rated struct {
		name   string
		rating *float64
	}
	items := make([]rated, 0, len(bySection))
	for name := range bySection {
		item := rated{name: name}
		prof, err := g.client.Professor(ctx, name, false)
		if err == nil {
			item.rating = prof.AverageRating
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].rating, items[j].rating
		switch {
		case a != nil && b != nil && *a != *b:
			return *a > *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		default:
			return items[i].name < items[j].name
		}
	})
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.name)
	}
	return out
}

// SearchCourses returns course heads for every course-type search hit.
func (g *Gateway) SearchCourses(ctx context.Context, query string) ([]*models.Course, error) {
	hits, err := g.client.Search(ctx, strings.ToUpper(strings.TrimSpace(query)))
	if err != nil {
		return nil, err
	}
	out := make([]*models.Course, 0, len(hits))
	for _, hit := range hits {
		if hit.Type != "course" {
			continue
		}
		head, err := g.CourseHead(ctx, hit.Name)
		if err != nil {
			if errors.Is(err, appErrors.ErrCourseNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, head)
	}
	return out, nil
}

// CoursesByPage returns one alphabetical page of courses with their sections.
func (g *Gateway) CoursesByPage(ctx context.Context, page int) ([]*models.Course, error) {
	if page < 1 {
		page = 1
	}
	raw, err := g.client.Courses(ctx, CoursesPerPage, (page-1)*CoursesPerPage)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Course, 0, len(raw))
	for _, item := range raw {
		course := CourseHeadFromPlanetTerp(item)
		sections, err := g.client.Sections(ctx, course.Code)
		if err != nil {
			return nil, err
		}
		if err := AttachSections(course, sections); err != nil {
			return nil, err
		}
		out = append(out, course)
	}
	return out, nil
}

// CoursesByGenEd lists course heads satisfying a gen-ed code, with the
// PlanetTerp average GPA filled in when PlanetTerp knows the course.
func (g *Gateway) CoursesByGenEd(ctx context.Context, deptID, genEd string) ([]*models.Course, error) {
	raw, err := g.client.CoursesByGenEd(ctx, strings.ToUpper(deptID), strings.ToUpper(genEd))
	if err != nil {
		return nil, err
	}
	out := make([]*models.Course, 0, len(raw))
	for _, item := range raw {
		course := CourseHeadFromUMDIO(item)
		if head, err := g.client.Course(ctx, course.Code); err == nil {
			course.AvgGPA = head.AverageGPA
		}
		out = append(out, course)
	}
	return out, nil
}

// Professor returns one professor profile.
func (g *Gateway) Professor(ctx context.Context, name string, withReviews bool) (*models.Professor, error) {
	raw, err := g.client.Professor(ctx, strings.TrimSpace(name), withReviews)
	if err != nil {
		return nil, err
	}
	return ProfessorFromPlanetTerp(*raw), nil
}

// Professors returns one page of the professor directory.
func (g *Gateway) Professors(ctx context.Context, page int) ([]*models.Professor, error) {
	if page < 1 {
		page = 1
	}
	raw, err := g.client.Professors(ctx, (page-1)*ProfessorsPerPage)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Professor, 0, len(raw))
	for _, item := range raw {
		out = append(out, ProfessorFromPlanetTerp(item))
	}
	return out, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
