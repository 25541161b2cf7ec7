package export

import (
	"fmt"
	"sort"
	"time"
)

// Timetable is the format-neutral content of a weekly schedule export.
type Timetable struct {
	Title        string
	TotalCredits int
	AverageGPA   float64
	Entries      []TimetableEntry
	Warnings     []string
}

// TimetableEntry is one weekly meeting of a section.
type TimetableEntry struct {
	Day         string
	DayIndex    int // 0 = Monday
	Start       string
	End         string
	StartMinute int
	EndMinute   int
	SectionID   string
	CourseCode  string
	CourseName  string
	Room        string
	Building    string
	ClassType   string
	Instructors string
}

// Location joins building and room, e.g. "IRB 0318".
func (e TimetableEntry) Location() string {
	switch {
	case e.Building == "":
		return e.Room
	case e.Room == "":
		return e.Building
	default:
		return e.Building + " " + e.Room
	}
}

// Term anchors recurring calendar events. Start is the Monday of the first
// teaching week.
type Term struct {
	Start    time.Time
	Weeks    int
	Location *time.Location
	Stamp    time.Time
}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DayName returns the full weekday name for a day index.
func DayName(idx int) string {
	if idx < 0 || idx >= len(dayNames) {
		return ""
	}
	return dayNames[idx]
}

// sortedEntries orders entries by start, end, then weekday.
func sortedEntries(entries []TimetableEntry) []TimetableEntry {
	out := append([]TimetableEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		if a.EndMinute != b.EndMinute {
			return a.EndMinute < b.EndMinute
		}
		return a.DayIndex < b.DayIndex
	})
	return out
}

// NewTerm anchors a term at midnight of start in the named timezone.
func NewTerm(start time.Time, weeks int, timezone string) (Term, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Term{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return Term{
		Start:    time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc),
		Weeks:    weeks,
		Location: loc,
	}, nil
}
