package schedule

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type sectionFixture struct {
	number    string
	openSeats int
	meetings  []models.RawMeeting
}

type courseFixture struct {
	code     string
	name     string
	credits  int
	gpa      *float64
	sections []sectionFixture
}

func gpa(v float64) *float64 { return &v }

func meeting(days, start, end string) models.RawMeeting {
	return models.RawMeeting{Days: days, StartTime: start, EndTime: end, Room: "0100", Building: "IRB", ClassType: "Lecture"}
}

var catalogFixtures = []courseFixture{
	{code: "CMSC250", name: "Discrete Structures", credits: 4, gpa: gpa(2.8), sections: []sectionFixture{
		{number: "0101", openSeats: 12, meetings: []models.RawMeeting{meeting("TuTh", "2:00pm", "3:15pm"), meeting("MW", "4:00pm", "4:50pm")}},
		{number: "0306", openSeats: 3, meetings: []models.RawMeeting{meeting("TuTh", "3:30pm", "4:45pm"), meeting("MW", "5:00pm", "5:50pm")}},
		{number: "0307", openSeats: 5, meetings: []models.RawMeeting{meeting("TuTh", "3:30pm", "4:45pm"), meeting("MW", "8:00am", "8:50am")}},
	}},
	{code: "COMM107", name: "Oral Communication", credits: 3, gpa: gpa(3.4), sections: []sectionFixture{
		{number: "0101", openSeats: 4, meetings: []models.RawMeeting{meeting("MWF", "8:00am", "8:50am")}},
		{number: "0201", openSeats: 0, meetings: []models.RawMeeting{meeting("Tu", "9:30am", "10:45am")}},
		{number: "FC04", openSeats: 8, meetings: []models.RawMeeting{meeting("MW", "4:30pm", "5:45pm")}},
	}},
	{code: "ANTH221", name: "Introduction to Physical Anthropology", credits: 3, gpa: gpa(3.1), sections: []sectionFixture{
		{number: "FC01", openSeats: 20, meetings: []models.RawMeeting{meeting("MW", "10:00am", "11:15am")}},
		{number: "0101", openSeats: 0, meetings: []models.RawMeeting{meeting("Th", "1:00pm", "1:50pm")}},
	}},
	{code: "CHEM271", name: "General Chemistry and Energetics", credits: 2, sections: []sectionFixture{
		{number: "2222", openSeats: 6, meetings: []models.RawMeeting{meeting("F", "9:00am", "9:50am")}},
		{number: "2247", openSeats: 6, meetings: []models.RawMeeting{meeting("MW", "8:50am", "9:40am")}},
	}},
}

func buildCatalog(t *testing.T) map[string]*models.Course {
	t.Helper()
	courses := map[string]*models.Course{}
	for _, fx := range catalogFixtures {
		course := models.NewCourseHead(fx.code, fx.name, fx.credits, fx.gpa)
		for _, sfx := range fx.sections {
			id := fx.code + "-" + sfx.number
			meetings, err := BuildWeeklyMeetings(sfx.meetings, id)
			require.NoError(t, err)
			course.Sections[sfx.number] = models.NewSection(course, id, sfx.number, 30, sfx.openSeats, meetings, []string{"Staff"})
		}
		courses[fx.code] = course
	}
	return courses
}

func section(t *testing.T, courses map[string]*models.Course, id string) *models.Section {
	t.Helper()
	code, number, ok := strings.Cut(id, "-")
	require.True(t, ok)
	course, ok := courses[code]
	require.True(t, ok, "unknown course %s", code)
	sec, ok := course.Sections[number]
	require.True(t, ok, "unknown section %s", id)
	return sec
}

type resolverStub struct {
	courses map[string]*models.Course
	err     error
	calls   []string
}

func (r *resolverStub) ResolveCourse(ctx context.Context, code string) (*models.Course, error) {
	r.calls = append(r.calls, code)
	if r.err != nil {
		return nil, r.err
	}
	course, ok := r.courses[code]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, code+" not found")
	}
	return course, nil
}

func warningKinds(s *Schedule) []models.WarningKind {
	var kinds []models.WarningKind
	for _, w := range s.Warnings() {
		kinds = append(kinds, w.Kind())
	}
	return kinds
}
