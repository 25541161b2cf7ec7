package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/schedule"
)

// SearchHit is one PlanetTerp search result.
type SearchHit struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Type string `json:"type"`
}

// PlanetTerpCourse is the PlanetTerp course payload.
type PlanetTerpCourse struct {
	Department   string   `json:"department"`
	CourseNumber string   `json:"course_number"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Credits      flexInt  `json:"credits"`
	AverageGPA   *float64 `json:"average_gpa"`
}

// PlanetTerpProfessor is the PlanetTerp professor payload.
type PlanetTerpProfessor struct {
	Name          string                   `json:"name"`
	Slug          string                   `json:"slug"`
	Type          string                   `json:"type"`
	Courses       []string                 `json:"courses"`
	AverageRating *float64                 `json:"average_rating"`
	Reviews       []PlanetTerpReviewRecord `json:"reviews"`
}

// PlanetTerpReviewRecord is a raw review. Author and timestamp are dropped when
// converted to models.ProfessorReview.
type PlanetTerpReviewRecord struct {
	Professor     string     `json:"professor"`
	Course        string     `json:"course"`
	Review        string     `json:"review"`
	Rating        int        `json:"rating"`
	ExpectedGrade string     `json:"expected_grade"`
	Created       flexString `json:"created"`
}

// UMDIOSection is the umd.io section payload.
type UMDIOSection struct {
	Course      string              `json:"course"`
	SectionID   string              `json:"section_id"`
	Number      flexString          `json:"number"`
	Seats       flexInt             `json:"seats"`
	OpenSeats   flexInt             `json:"open_seats"`
	Waitlist    flexInt             `json:"waitlist"`
	Meetings    []models.RawMeeting `json:"meetings"`
	Instructors []string            `json:"instructors"`
}

// UMDIOCourse is the umd.io course payload.
type UMDIOCourse struct {
	CourseID    string     `json:"course_id"`
	Name        string     `json:"name"`
	DeptID      string     `json:"dept_id"`
	Credits     flexInt    `json:"credits"`
	Description string     `json:"description"`
	GenEd       [][]string `json:"gen_ed"`
	Sections    []string   `json:"sections"`
}

// flexInt accepts JSON numbers and numeric strings ("4").
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse integer %s: %w", string(data), err)
	}
	*f = flexInt(n)
	return nil
}

// flexString accepts JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// CourseHeadFromPlanetTerp converts a PlanetTerp course into a course without
// sections.
func CourseHeadFromPlanetTerp(raw PlanetTerpCourse) *models.Course {
	course := models.NewCourseHead(raw.Department+raw.CourseNumber, raw.Title, int(raw.Credits), raw.AverageGPA)
	course.Description = raw.Description
	return course
}

// CourseHeadFromUMDIO converts a umd.io course into a course without sections.
// Only the first gen-ed group is kept.
func CourseHeadFromUMDIO(raw UMDIOCourse) *models.Course {
	course := models.NewCourseHead(raw.CourseID, raw.Name, int(raw.Credits), nil)
	course.Description = raw.Description
	if len(raw.GenEd) > 0 {
		course.GenEds = append([]string(nil), raw.GenEd[0]...)
	}
	return course
}

// AttachSections builds the sections of a course and indexes them by
// instructor. A co-taught section is listed under every instructor.
func AttachSections(course *models.Course, raw []UMDIOSection) error {
	for _, item := range raw {
		number := string(item.Number)
		if number == "" {
			if _, after, ok := strings.Cut(item.SectionID, "-"); ok {
				number = after
			}
		}
		meetings, err := schedule.BuildWeeklyMeetings(item.Meetings, item.SectionID)
		if err != nil {
			return err
		}
		instructors := item.Instructors
		if instructors == nil {
			instructors = []string{}
		}
		section := models.NewSection(course, item.SectionID, number, int(item.Seats), int(item.OpenSeats), meetings, instructors)
		course.Sections[number] = section
		for _, name := range instructors {
			course.ProfessorSections[name] = append(course.ProfessorSections[name], section)
		}
	}
	return nil
}

// ProfessorFromPlanetTerp converts a PlanetTerp professor payload.
func ProfessorFromPlanetTerp(raw PlanetTerpProfessor) *models.Professor {
	prof := &models.Professor{
		Name:          raw.Name,
		Slug:          raw.Slug,
		Type:          raw.Type,
		Courses:       raw.Courses,
		AverageRating: raw.AverageRating,
	}
	if prof.Courses == nil {
		prof.Courses = []string{}
	}
	if raw.Reviews != nil {
		prof.Reviews = make([]models.ProfessorReview, 0, len(raw.Reviews))
		for _, r := range raw.Reviews {
			prof.Reviews = append(prof.Reviews, models.ProfessorReview{
				Course:        r.Course,
				Review:        r.Review,
				Rating:        r.Rating,
				ExpectedGrade: r.ExpectedGrade,
			})
		}
	}
	return prof
}
