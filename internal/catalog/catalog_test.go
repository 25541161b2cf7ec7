package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type fakeUpstream struct {
	mu    sync.Mutex
	hits  map[string]int
	fails map[string]int
}

func newFakeUpstream(t *testing.T) (*httptest.Server, *fakeUpstream) {
	t.Helper()
	state := &fakeUpstream{hits: map[string]int{}, fails: map[string]int{}}
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	count := func(r *http.Request) {
		state.mu.Lock()
		state.hits[r.URL.Path]++
		state.mu.Unlock()
	}

	mux.HandleFunc("/pt/course", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		switch r.URL.Query().Get("name") {
		case "MATH140":
			writeJSON(w, map[string]interface{}{
				"department": "MATH", "course_number": "140", "title": "Calculus I",
				"description": "Limits and derivatives.", "credits": 4, "average_gpa": 3.17244,
			})
		case "CMSC131":
			writeJSON(w, map[string]interface{}{
				"department": "CMSC", "course_number": "131", "title": "Object-Oriented Programming I",
				"credits": 4, "average_gpa": nil,
			})
		default:
			http.Error(w, `{"error":"course not found"}`, http.StatusNotFound)
		}
	})
	mux.HandleFunc("/pt/search", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		writeJSON(w, []map[string]string{
			{"name": "MATH140", "slug": "MATH140", "type": "course"},
			{"name": "Jon Snow", "slug": "snow", "type": "professor"},
			{"name": "MATH999", "slug": "MATH999", "type": "course"},
		})
	})
	mux.HandleFunc("/pt/courses", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		assert.Equal(t, "30", r.URL.Query().Get("limit"))
		assert.Equal(t, "30", r.URL.Query().Get("offset"))
		writeJSON(w, []map[string]interface{}{
			{"department": "MATH", "course_number": "140", "title": "Calculus I", "credits": 4, "average_gpa": 3.1},
		})
	})
	mux.HandleFunc("/pt/grades", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		if r.URL.Query().Get("course") != "MATH140" {
			http.Error(w, "no grades", http.StatusNotFound)
			return
		}
		writeJSON(w, []map[string]interface{}{
			{"professor": "Jon Snow", "A": 2, "B": 2, "Other": 5},
			{"professor": "Tyrion Lannister", "A+": 1, "F": 1},
		})
	})
	mux.HandleFunc("/pt/professor", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		switch r.URL.Query().Get("name") {
		case "Jon Snow":
			payload := map[string]interface{}{
				"name": "Jon Snow", "slug": "snow", "type": "professor",
				"courses": []string{"MATH140"}, "average_rating": 4.125,
			}
			if r.URL.Query().Get("reviews") == "true" {
				payload["reviews"] = []map[string]interface{}{
					{"professor": "Jon Snow", "course": "MATH140", "review": "Knows nothing.", "rating": 4, "expected_grade": "A", "created": "2020-01-01T00:00:00"},
				}
			}
			writeJSON(w, payload)
		case "Tyrion Lannister":
			writeJSON(w, map[string]interface{}{
				"name": "Tyrion Lannister", "slug": "lannister", "type": "professor",
				"courses": []string{"MATH140"}, "average_rating": 4.9,
			})
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})
	mux.HandleFunc("/pt/professors", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		assert.Equal(t, "100", r.URL.Query().Get("offset"))
		writeJSON(w, []map[string]interface{}{
			{"name": "Jon Snow", "slug": "snow", "type": "professor", "courses": []string{"MATH140"}, "average_rating": 4.125},
			{"name": "Arya Stark", "slug": "stark", "type": "ta", "courses": []string{}, "average_rating": nil},
		})
	})
	mux.HandleFunc("/io/courses/MATH140/sections", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		writeJSON(w, []map[string]interface{}{
			{
				"course": "MATH140", "section_id": "MATH140-0101", "number": "0101", "seats": "30", "open_seats": "0",
				"meetings": []map[string]string{
					{"days": "MWF", "room": "0101", "building": "MTH", "classtype": "", "start_time": "9:00am", "end_time": "9:50am"},
					{"days": "Tu", "room": "0102", "building": "MTH", "classtype": "Discussion", "start_time": "9:00am", "end_time": "9:50am"},
				},
				"instructors": []string{"Jon Snow", "Tyrion Lannister"},
			},
			{
				"course": "MATH140", "section_id": "MATH140-0201", "number": 201, "seats": 25, "open_seats": 4,
				"meetings": []map[string]string{}, "instructors": []string{"Jon Snow"},
			},
		})
	})
	mux.HandleFunc("/io/courses", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		if r.URL.Query().Get("gen_ed") != "FSMA" {
			http.Error(w, "none", http.StatusNotFound)
			return
		}
		writeJSON(w, []map[string]interface{}{
			{"course_id": "MATH140", "name": "Calculus I", "dept_id": "MATH", "credits": "4", "gen_ed": [][]string{{"FSAR", "FSMA"}}},
			{"course_id": "MATH107", "name": "Introduction to Math Modeling", "dept_id": "MATH", "credits": "3", "gen_ed": [][]string{{"FSMA"}}},
		})
	})
	mux.HandleFunc("/io/courses/", func(w http.ResponseWriter, r *http.Request) {
		count(r)
		http.Error(w, "no sections", http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, state
}

func (f *fakeUpstream) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

type observation struct {
	source   string
	endpoint string
	status   int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveCatalogRequest(source, endpoint string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{source: source, endpoint: endpoint, status: status})
}

func newTestGateway(t *testing.T, cache ResponseCache, observer RequestObserver) (*Gateway, *fakeUpstream) {
	t.Helper()
	server, state := newFakeUpstream(t)
	client := NewClient(Config{
		PlanetTerpBaseURL: server.URL + "/pt",
		UMDIOBaseURL:      server.URL + "/io/",
		Timeout:           time.Second,
		Cache:             cache,
		Observer:          observer,
	})
	return NewGateway(client, nil), state
}

func TestResolveCourse(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	course, err := gw.ResolveCourse(context.Background(), " math140 ")
	require.NoError(t, err)

	assert.Equal(t, "MATH140", course.Code)
	assert.Equal(t, "Calculus I", course.Name)
	assert.Equal(t, 4, course.Credits)
	require.NotNil(t, course.AvgGPA)
	assert.InDelta(t, 3.17244, *course.AvgGPA, 1e-9)

	require.Len(t, course.Sections, 2)
	first := course.Sections["0101"]
	require.NotNil(t, first)
	assert.Equal(t, "MATH140-0101", first.ID)
	assert.Equal(t, 30, first.TotalSeats)
	assert.Equal(t, 0, first.OpenSeats)
	assert.True(t, first.Synchronous)
	assert.Same(t, course, first.Course())
	assert.Len(t, first.Meetings[models.Monday], 1)
	assert.Len(t, first.Meetings[models.Tuesday], 1)
	assert.Empty(t, first.Meetings[models.Thursday])

	online := course.Sections["201"]
	require.NotNil(t, online)
	assert.False(t, online.Synchronous)
	assert.Equal(t, 25, online.TotalSeats)

	assert.Len(t, course.ProfessorSections["Jon Snow"], 2)
	assert.Len(t, course.ProfessorSections["Tyrion Lannister"], 1)
	assert.Equal(t, []string{"Tyrion Lannister", "Jon Snow"}, course.Professors)

	assert.InDelta(t, 3.5, course.ProfessorGPA["Jon Snow"], 1e-9)
	assert.InDelta(t, 2.0, course.ProfessorGPA["Tyrion Lannister"], 1e-9)
}

func TestResolveCourseNotFound(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	_, err := gw.ResolveCourse(context.Background(), "ZZZZ999")

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCourseNotFound))
}

func TestResolveCourseWithoutSectionsOrGrades(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	course, err := gw.ResolveCourse(context.Background(), "CMSC131")

	require.NoError(t, err)
	assert.Empty(t, course.Sections)
	assert.Empty(t, course.ProfessorGPA)
	assert.Empty(t, course.Professors)
	assert.Nil(t, course.AvgGPA)
	assert.Equal(t, 0.0, course.GPA())
}

func TestSearchCoursesKeepsCourseHits(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	courses, err := gw.SearchCourses(context.Background(), "math")

	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "MATH140", courses[0].Code)
	assert.Empty(t, courses[0].Sections)
}

func TestCoursesByPage(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	courses, err := gw.CoursesByPage(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Len(t, courses[0].Sections, 2)
}

func TestCoursesByGenEd(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	courses, err := gw.CoursesByGenEd(context.Background(), "math", "fsma")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, []string{"FSAR", "FSMA"}, courses[0].GenEds)
	require.NotNil(t, courses[0].AvgGPA)
	assert.Nil(t, courses[1].AvgGPA)
	assert.Equal(t, 3, courses[1].Credits)

	none, err := gw.CoursesByGenEd(context.Background(), "", "XXXX")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProfessor(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	prof, err := gw.Professor(context.Background(), "Jon Snow", true)
	require.NoError(t, err)
	assert.Equal(t, "snow", prof.Slug)
	require.Len(t, prof.Reviews, 1)
	assert.Equal(t, models.ProfessorReview{Course: "MATH140", Review: "Knows nothing.", Rating: 4, ExpectedGrade: "A"}, prof.Reviews[0])

	_, err = gw.Professor(context.Background(), "Nobody", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrProfessorNotFound))
}

func TestProfessorsPage(t *testing.T) {
	gw, _ := newTestGateway(t, nil, nil)

	profs, err := gw.Professors(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, profs, 2)
	assert.Nil(t, profs[1].AverageRating)
	assert.Equal(t, []string{}, profs[1].Courses)
}

func TestClientCachesSuccessfulResponses(t *testing.T) {
	cache := &memoryCache{items: map[string][]byte{}}
	observer := &recordingObserver{}
	gw, state := newTestGateway(t, cache, observer)

	_, err := gw.CourseHead(context.Background(), "MATH140")
	require.NoError(t, err)
	head, err := gw.CourseHead(context.Background(), "MATH140")
	require.NoError(t, err)

	assert.Equal(t, "Calculus I", head.Name)
	assert.Equal(t, 1, state.count("/pt/course"))
	assert.Contains(t, cache.items, "planetterp:/course?name=MATH140")
	require.Len(t, observer.seen, 1)
	assert.Equal(t, observation{source: SourcePlanetTerp, endpoint: "/course", status: http.StatusOK}, observer.seen[0])

	_, err = gw.CourseHead(context.Background(), "ZZZZ999")
	require.Error(t, err)
	assert.NotContains(t, cache.items, "planetterp:/course?name=ZZZZ999")
}

func TestClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	gw := NewGateway(NewClient(Config{PlanetTerpBaseURL: base, UMDIOBaseURL: base, Timeout: time.Second}), nil)

	_, err := gw.ResolveCourse(context.Background(), "MATH140")

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCatalogUnavailable))
	assert.False(t, errors.Is(err, appErrors.ErrCourseNotFound))
}

func TestProfessorGPA(t *testing.T) {
	rows := []GradeRow{
		{Professor: "Jon Snow", APlus: 1, A: 1, AMinus: 1, BPlus: 1, B: 1, BMinus: 1, CPlus: 1, C: 1, CMinus: 1, DPlus: 1, D: 1, DMinus: 1, F: 1, W: 1, Other: 1},
		{Professor: "Nobody", Other: 3},
	}

	gpa := ProfessorGPA(rows)

	assert.InDelta(t, (4+4+3.7+3.3+3+2.7+2.3+2+1.7+1.3+1+0.7)/14.0, gpa["Jon Snow"], 1e-9)
	_, ok := gpa["Nobody"]
	assert.False(t, ok)
}
