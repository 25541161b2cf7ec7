package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/schedule"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type sectionSpec struct {
	number    string
	openSeats int
	meetings  []models.RawMeeting
}

type courseSpec struct {
	code     string
	name     string
	credits  int
	gpa      float64
	sections []sectionSpec
}

func lecture(days, start, end string) models.RawMeeting {
	return models.RawMeeting{Days: days, StartTime: start, EndTime: end, Room: "1115", Building: "ESJ", ClassType: "Lecture"}
}

var plannerCatalog = []courseSpec{
	{code: "CMSC131", name: "Object-Oriented Programming I", credits: 4, gpa: 2.9, sections: []sectionSpec{
		{number: "0101", openSeats: 12, meetings: []models.RawMeeting{lecture("MWF", "10:00am", "10:50am")}},
		{number: "0201", openSeats: 0, meetings: []models.RawMeeting{lecture("TuTh", "2:00pm", "3:15pm")}},
	}},
	{code: "MATH140", name: "Calculus I", credits: 4, gpa: 2.4, sections: []sectionSpec{
		{number: "0111", openSeats: 4, meetings: []models.RawMeeting{lecture("MWF", "10:50am", "11:40am")}},
		{number: "0221", openSeats: 9, meetings: []models.RawMeeting{lecture("MW", "1:00pm", "1:50pm")}},
	}},
	{code: "ENGL101", name: "Academic Writing", credits: 3, gpa: 3.5, sections: []sectionSpec{
		{number: "0301", openSeats: 2, meetings: []models.RawMeeting{lecture("TuTh", "9:30am", "10:45am")}},
		{number: "ESG1", openSeats: 10},
	}},
}

func buildCourse(t *testing.T, spec courseSpec) *models.Course {
	t.Helper()
	gpa := spec.gpa
	course := models.NewCourseHead(spec.code, spec.name, spec.credits, &gpa)
	for _, s := range spec.sections {
		id := spec.code + "-" + s.number
		meetings, err := schedule.BuildWeeklyMeetings(s.meetings, id)
		require.NoError(t, err)
		course.Sections[s.number] = models.NewSection(course, id, s.number, 30, s.openSeats, meetings, []string{"Ada Lovelace"})
	}
	return course
}

// fakeCatalog builds fresh course objects per lookup, as the live gateway does.
type fakeCatalog struct {
	t     *testing.T
	err   error
	mu    sync.Mutex
	calls []string
}

func (f *fakeCatalog) ResolveCourse(ctx context.Context, code string) (*models.Course, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, spec := range plannerCatalog {
		if spec.code == code {
			return buildCourse(f.t, spec), nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrCourseNotFound, code+" is not a valid course code")
}

type memorySessions struct {
	states  map[string]models.SessionState
	loadErr error
	saveErr error
	saves   int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{states: map[string]models.SessionState{}}
}

func (m *memorySessions) Load(ctx context.Context, sessionID string) (*models.SessionState, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	state, ok := m.states[sessionID]
	if !ok {
		return &models.SessionState{Colors: map[string]string{}}, nil
	}
	colors := make(map[string]string, len(state.Colors))
	for k, v := range state.Colors {
		colors[k] = v
	}
	state.Colors = colors
	return &state, nil
}

func (m *memorySessions) Save(ctx context.Context, sessionID string, state *models.SessionState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.states[sessionID] = *state
	return nil
}
