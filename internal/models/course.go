package models

import (
	"fmt"
	"strings"
)

// Weekday identifies one of the five teaching days.
type Weekday string

// Teaching weekdays as they appear in catalog day strings ("MWF", "TuTh").
const (
	Monday    Weekday = "M"
	Tuesday   Weekday = "Tu"
	Wednesday Weekday = "W"
	Thursday  Weekday = "Th"
	Friday    Weekday = "F"
)

// Weekdays lists the teaching days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// Valid reports whether d is one of the five teaching days.
func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday:
		return true
	}
	return false
}

// ClockTime is a time of day expressed in minutes since midnight.
type ClockTime int

// ParseClockTime parses catalog times such as "8:00am" or "3:30PM".
func ParseClockTime(raw string) (ClockTime, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if len(value) < 6 {
		return 0, fmt.Errorf("time %q: too short", raw)
	}
	meridiem := value[len(value)-2:]
	if meridiem != "am" && meridiem != "pm" {
		return 0, fmt.Errorf("time %q: missing am/pm", raw)
	}
	clock := value[:len(value)-2]
	hourPart, minutePart, ok := strings.Cut(clock, ":")
	if !ok || len(minutePart) != 2 || hourPart == "" || len(hourPart) > 2 {
		return 0, fmt.Errorf("time %q: expected h:mm", raw)
	}
	hour, err := parseDigits(hourPart)
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("time %q: invalid hour", raw)
	}
	minute, err := parseDigits(minutePart)
	if err != nil || minute > 59 {
		return 0, fmt.Errorf("time %q: invalid minute", raw)
	}
	hour %= 12
	if meridiem == "pm" {
		hour += 12
	}
	return ClockTime(hour*60 + minute), nil
}

func parseDigits(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// String renders the time as "8:05am".
func (t ClockTime) String() string {
	hour := int(t) / 60
	minute := int(t) % 60
	meridiem := "am"
	if hour >= 12 {
		meridiem = "pm"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d%s", hour, minute, meridiem)
}

// RawMeeting is a weekly meeting descriptor as published by umd.io.
type RawMeeting struct {
	Days      string `json:"days"`
	Room      string `json:"room"`
	Building  string `json:"building"`
	ClassType string `json:"classtype"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// MeetingTime is one contiguous span on one weekday for one section.
type MeetingTime struct {
	SectionID      string    `json:"section_id"`
	Start          ClockTime `json:"-"`
	End            ClockTime `json:"-"`
	FormattedStart string    `json:"start_time"`
	FormattedEnd   string    `json:"end_time"`
	Room           string    `json:"room"`
	Building       string    `json:"building"`
	ClassType      string    `json:"class_type"`
	Color          string    `json:"color,omitempty"`
}

// SameSlot reports whether both meeting times belong to the same section and
// share exact start and end times.
func (m *MeetingTime) SameSlot(other *MeetingTime) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Start == other.Start && m.End == other.End && m.SectionID == other.SectionID
}

// WeeklyMeetings maps each teaching day to the meetings held that day.
type WeeklyMeetings map[Weekday][]*MeetingTime

// NewWeeklyMeetings returns an empty mapping with all five days present.
func NewWeeklyMeetings() WeeklyMeetings {
	out := make(WeeklyMeetings, len(Weekdays))
	for _, day := range Weekdays {
		out[day] = []*MeetingTime{}
	}
	return out
}

// Course is a catalog course. It owns its sections.
type Course struct {
	Code              string                `json:"course_code"`
	Name              string                `json:"name"`
	Description       string                `json:"description,omitempty"`
	Credits           int                   `json:"credits"`
	AvgGPA            *float64              `json:"avg_gpa"`
	GenEds            []string              `json:"gen_eds,omitempty"`
	Sections          map[string]*Section   `json:"sections,omitempty"`
	ProfessorSections map[string][]*Section `json:"-"`
	ProfessorGPA      map[string]float64    `json:"professor_gpa,omitempty"`
	Professors        []string              `json:"professors,omitempty"`
}

// NewCourseHead returns a course without sections.
func NewCourseHead(code, name string, credits int, avgGPA *float64) *Course {
	if credits < 0 {
		credits = 0
	}
	return &Course{
		Code:              code,
		Name:              name,
		Credits:           credits,
		AvgGPA:            avgGPA,
		Sections:          map[string]*Section{},
		ProfessorSections: map[string][]*Section{},
		ProfessorGPA:      map[string]float64{},
	}
}

// GPA returns the course average GPA, treating an unknown value as zero.
func (c *Course) GPA() float64 {
	if c == nil || c.AvgGPA == nil {
		return 0
	}
	return *c.AvgGPA
}

// Section is one offering of a course.
type Section struct {
	ID          string         `json:"section_id"`
	Number      string         `json:"number"`
	CourseCode  string         `json:"course_code"`
	TotalSeats  int            `json:"total_seats"`
	OpenSeats   int            `json:"open_seats"`
	Meetings    WeeklyMeetings `json:"meetings"`
	Instructors []string       `json:"instructors"`
	Color       string         `json:"color,omitempty"`
	Synchronous bool           `json:"is_synchronous"`

	course *Course
}

// NewSection builds a section attached to its parent course.
func NewSection(course *Course, id, number string, totalSeats, openSeats int, meetings WeeklyMeetings, instructors []string) *Section {
	if meetings == nil {
		meetings = NewWeeklyMeetings()
	}
	section := &Section{
		ID:          id,
		Number:      number,
		TotalSeats:  totalSeats,
		OpenSeats:   openSeats,
		Meetings:    meetings,
		Instructors: instructors,
		course:      course,
	}
	if course != nil {
		section.CourseCode = course.Code
	}
	for _, day := range Weekdays {
		if len(meetings[day]) > 0 {
			section.Synchronous = true
			break
		}
	}
	return section
}

// Course returns the owning course. The reference is non-owning.
func (s *Section) Course() *Course {
	if s == nil {
		return nil
	}
	return s.course
}

// Credits returns the owning course credit count.
func (s *Section) Credits() int {
	if c := s.Course(); c != nil {
		return c.Credits
	}
	return 0
}

// SetColor sets the display color on the section and all of its meetings.
func (s *Section) SetColor(color string) {
	s.Color = color
	for _, day := range Weekdays {
		for _, meeting := range s.Meetings[day] {
			meeting.Color = color
		}
	}
}

// FormattedWeeklySchedule groups meeting spans by time range, e.g.
// {"8:00am-8:50am": "MW", "3:30pm-4:45pm": "TuTh"}.
func (s *Section) FormattedWeeklySchedule() map[string]string {
	out := map[string]string{}
	for _, day := range Weekdays {
		seen := map[string]bool{}
		for _, meeting := range s.Meetings[day] {
			key := meeting.FormattedStart + "-" + meeting.FormattedEnd
			if seen[key] {
				continue
			}
			seen[key] = true
			out[key] += string(day)
		}
	}
	return out
}

// Professor is a PlanetTerp professor profile.
type Professor struct {
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Type          string            `json:"type"`
	Courses       []string          `json:"courses"`
	AverageRating *float64          `json:"average_rating"`
	Reviews       []ProfessorReview `json:"reviews,omitempty"`
}

// ProfessorReview is a student review with identifying fields removed.
type ProfessorReview struct {
	Course        string `json:"course"`
	Review        string `json:"review"`
	Rating        int    `json:"rating"`
	ExpectedGrade string `json:"expected_grade"`
}
