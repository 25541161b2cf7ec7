// Package schedule holds the weekly schedule engine: the per-day timeline,
// conflict detection, add/remove lifecycle, warning ledger and the
// comma-separated serialized form.
//
// A Schedule is not safe for concurrent use. Each session owns its own instance.
package schedule

import (
	"sort"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// Schedule is a user's weekly class schedule.
type Schedule struct {
	days         map[models.Weekday][]*models.MeetingTime
	sections     []*models.Section
	totalCredits int
	warnings     Ledger
}

// New returns an empty schedule.
func New() *Schedule {
	s := &Schedule{}
	s.RemoveAllClasses()
	return s
}

// CheckSectionNoTimeConflicts reports whether every meeting of the candidate fits
// the current timeline. Touching spans (one ends when the other starts) conflict.
func (s *Schedule) CheckSectionNoTimeConflicts(candidate *models.Section) bool {
	for _, day := range models.Weekdays {
		for _, slot := range candidate.Meetings[day] {
			if conflictsWithDay(s.days[day], slot) {
				return false
			}
		}
	}
	return true
}

// conflictsWithDay walks an ascending timeline to the first entry starting after
// the slot and compares the slot against it and its predecessor.
func conflictsWithDay(timeline []*models.MeetingTime, slot *models.MeetingTime) bool {
	for i, existing := range timeline {
		if existing.Start <= slot.Start {
			continue
		}
		if slot.End >= existing.Start {
			return true
		}
		if i > 0 && timeline[i-1].End >= slot.Start {
			return true
		}
		return false
	}
	if n := len(timeline); n > 0 && slot.Start <= timeline[n-1].End {
		return true
	}
	return false
}

// AddClass places a section on the schedule and returns a status message.
// Duplicates and time conflicts leave the schedule unchanged.
func (s *Schedule) AddClass(section *models.Section) string {
	if s.HasSection(section.ID) {
		return section.ID + " already present in schedule."
	}
	if !s.CheckSectionNoTimeConflicts(section) {
		return section.ID + " has time conflicts with an existing class."
	}
	if section.OpenSeats <= 0 {
		s.warnings.Add(models.SectionFullWarning{Section: section})
	}

	s.totalCredits += section.Credits()
	for _, day := range models.Weekdays {
		for _, slot := range section.Meetings[day] {
			s.days[day] = insertOrdered(s.days[day], slot)
		}
	}
	s.sections = append(s.sections, section)
	return section.ID + " added."
}

// insertOrdered inserts after every entry starting at or before the slot, so
// equal start times keep arrival order.
func insertOrdered(timeline []*models.MeetingTime, slot *models.MeetingTime) []*models.MeetingTime {
	idx := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].Start > slot.Start
	})
	timeline = append(timeline, nil)
	copy(timeline[idx+1:], timeline[idx:])
	timeline[idx] = slot
	return timeline
}

// RemoveClass takes a section off the schedule and returns a status message.
func (s *Schedule) RemoveClass(section *models.Section) string {
	found := false
	for _, day := range models.Weekdays {
		kept := make([]*models.MeetingTime, 0, len(s.days[day]))
		for _, slot := range s.days[day] {
			if slot.SectionID == section.ID {
				found = true
				continue
			}
			kept = append(kept, slot)
		}
		s.days[day] = kept
	}
	if !found {
		return section.ID + " not in schedule."
	}

	for i, existing := range s.sections {
		if existing.ID == section.ID {
			s.sections = append(s.sections[:i:i], s.sections[i+1:]...)
			break
		}
	}
	s.totalCredits -= section.Credits()
	s.warnings.RetractSection(section.ID)
	return section.ID + " removed."
}

// RemoveAllClasses resets the schedule to empty.
func (s *Schedule) RemoveAllClasses() {
	s.days = make(map[models.Weekday][]*models.MeetingTime, len(models.Weekdays))
	for _, day := range models.Weekdays {
		s.days[day] = []*models.MeetingTime{}
	}
	s.totalCredits = 0
	s.sections = nil
	s.warnings.Clear()
}

// AverageGPA returns the credit-weighted average GPA of the placed sections, or
// 0 for an empty schedule. Sections are summed individually, so a course placed
// through two sections is weighted twice.
func (s *Schedule) AverageGPA() float64 {
	if len(s.sections) == 0 || s.totalCredits == 0 {
		return 0
	}
	var sum float64
	for _, section := range s.sections {
		course := section.Course()
		sum += course.GPA() * float64(section.Credits())
	}
	return sum / float64(s.totalCredits)
}

// HasSection reports whether a section id is on the schedule.
func (s *Schedule) HasSection(id string) bool {
	return s.FindSection(id) != nil
}

// FindSection returns the placed section with the given id.
func (s *Schedule) FindSection(id string) *models.Section {
	for _, section := range s.sections {
		if section.ID == id {
			return section
		}
	}
	return nil
}

// TotalCredits returns the running credit total.
func (s *Schedule) TotalCredits() int {
	return s.totalCredits
}

// Sections returns the placed sections in insertion order.
func (s *Schedule) Sections() []*models.Section {
	out := make([]*models.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// Day returns the timeline of one weekday in ascending start order.
func (s *Schedule) Day(day models.Weekday) []*models.MeetingTime {
	out := make([]*models.MeetingTime, len(s.days[day]))
	copy(out, s.days[day])
	return out
}

// Warnings returns the active warnings.
func (s *Schedule) Warnings() []models.ScheduleWarning {
	return s.warnings.List()
}

// AddWarning records a warning raised outside the add/remove lifecycle.
func (s *Schedule) AddWarning(w models.ScheduleWarning) {
	s.warnings.Add(w)
}

// View projects the schedule for presentation.
func (s *Schedule) View() *models.ScheduleView {
	view := &models.ScheduleView{
		Days:         make([]models.DayView, 0, len(models.Weekdays)),
		Sections:     make([]models.SectionView, 0, len(s.sections)),
		TotalCredits: s.totalCredits,
		AverageGPA:   s.AverageGPA(),
		Serialized:   s.SerializedSchedule(),
		Warnings:     s.warnings.Views(),
	}
	for _, day := range models.Weekdays {
		view.Days = append(view.Days, models.DayView{Day: day, Meetings: s.Day(day)})
	}
	for _, section := range s.sections {
		item := models.SectionView{
			SectionID:      section.ID,
			CourseCode:     section.CourseCode,
			Credits:        section.Credits(),
			OpenSeats:      section.OpenSeats,
			TotalSeats:     section.TotalSeats,
			Instructors:    section.Instructors,
			Color:          section.Color,
			WeeklySchedule: section.FormattedWeeklySchedule(),
		}
		if course := section.Course(); course != nil {
			item.CourseName = course.Name
		}
		view.Sections = append(view.Sections, item)
	}
	return view
}
