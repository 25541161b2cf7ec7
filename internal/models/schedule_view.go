package models

// DayView lists the meetings of one weekday in timeline order.
type DayView struct {
	Day      Weekday        `json:"day"`
	Meetings []*MeetingTime `json:"meetings"`
}

// SectionView summarises a section placed on the schedule.
type SectionView struct {
	SectionID      string            `json:"section_id"`
	CourseCode     string            `json:"course_code"`
	CourseName     string            `json:"course_name"`
	Credits        int               `json:"credits"`
	OpenSeats      int               `json:"open_seats"`
	TotalSeats     int               `json:"total_seats"`
	Instructors    []string          `json:"instructors"`
	Color          string            `json:"color,omitempty"`
	WeeklySchedule map[string]string `json:"weekly_schedule"`
}

// ScheduleView is the read-only projection of a session schedule.
type ScheduleView struct {
	Days         []DayView     `json:"days"`
	Sections     []SectionView `json:"sections"`
	TotalCredits int           `json:"total_credits"`
	AverageGPA   float64       `json:"average_gpa"`
	Serialized   string        `json:"serialized"`
	Warnings     []WarningView `json:"warnings"`
}

// ScheduleResult pairs an operation message with the resulting schedule.
type ScheduleResult struct {
	Message  string        `json:"message,omitempty"`
	Applied  bool          `json:"applied"`
	Schedule *ScheduleView `json:"schedule"`
}
