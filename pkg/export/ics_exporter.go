package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ICSExporter renders a timetable as an iCalendar feed with one weekly
// recurring event per meeting.
type ICSExporter struct {
	term Term
}

// NewICSExporter constructs an ICS exporter for the term.
func NewICSExporter(term Term) *ICSExporter {
	if term.Weeks <= 0 {
		term.Weeks = 15
	}
	if term.Location == nil {
		term.Location = time.UTC
	}
	return &ICSExporter{term: term}
}

// Render produces the serialized calendar.
func (e *ICSExporter) Render(data Timetable) ([]byte, error) {
	if e.term.Start.IsZero() {
		return nil, fmt.Errorf("ics export requires a term start date")
	}
	stamp := e.term.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//course-planner//schedule export//EN")
	cal.SetXWRTimezone(e.term.Location.String())
	if data.Title != "" {
		cal.SetXWRCalName(data.Title)
	}

	y, m, d := e.term.Start.Date()
	monday := time.Date(y, m, d, 0, 0, 0, 0, e.term.Location)
	rrule := fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", e.term.Weeks)

	for _, entry := range data.Entries {
		day := monday.AddDate(0, 0, entry.DayIndex)
		start := day.Add(time.Duration(entry.StartMinute) * time.Minute)
		end := day.Add(time.Duration(entry.EndMinute) * time.Minute)

		uid := fmt.Sprintf("%s-%s-%d@course-planner", entry.SectionID, DayName(entry.DayIndex), entry.StartMinute)
		event := cal.AddEvent(strings.ToLower(uid))
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		summary := entry.SectionID
		if entry.CourseName != "" {
			summary += " " + entry.CourseName
		}
		event.SetSummary(summary)
		if loc := entry.Location(); loc != "" {
			event.SetLocation(loc)
		}
		if entry.Instructors != "" || entry.ClassType != "" {
			event.SetDescription(strings.TrimSpace(entry.ClassType + " " + entry.Instructors))
		}
		event.AddRrule(rrule)
	}
	return []byte(cal.Serialize()), nil
}
