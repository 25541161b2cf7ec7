package schedule

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

// CourseResolver supplies fully populated courses by course code. A course the
// catalog does not know must be reported with an error matching
// appErrors.ErrCourseNotFound.
type CourseResolver interface {
	ResolveCourse(ctx context.Context, courseCode string) (*models.Course, error)
}

// SerializedSchedule joins the placed section ids with commas.
func (s *Schedule) SerializedSchedule() string {
	ids := make([]string, 0, len(s.sections))
	for _, section := range s.sections {
		ids = append(ids, section.ID)
	}
	return strings.Join(ids, ",")
}

// LoadSerializedSchedule adds every section named in a serialized schedule.
// Unknown courses, unknown sections and malformed tokens become warnings and
// loading continues with the next token. Any other resolver failure stops the
// load and is returned; sections added before it stay on the schedule.
func (s *Schedule) LoadSerializedSchedule(ctx context.Context, raw string, resolver CourseResolver) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		courseCode, sectionNumber, ok := strings.Cut(token, "-")
		if !ok {
			s.warnings.Add(models.MalformedEntryWarning{Token: token})
			continue
		}
		if courseCode == "" {
			s.warnings.Add(models.CourseNotFoundWarning{CourseCode: courseCode})
			continue
		}

		course, err := resolver.ResolveCourse(ctx, courseCode)
		if err != nil {
			if errors.Is(err, appErrors.ErrCourseNotFound) {
				s.warnings.Add(models.CourseNotFoundWarning{CourseCode: courseCode})
				continue
			}
			return err
		}
		section, ok := course.Sections[sectionNumber]
		if !ok || section == nil {
			s.warnings.Add(models.SectionNotFoundWarning{CourseCode: courseCode, SectionNumber: sectionNumber})
			continue
		}
		s.AddClass(section)
	}
	return nil
}
