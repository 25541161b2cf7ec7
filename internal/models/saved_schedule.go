package models

import "time"

// SavedSchedule is a named snapshot of a session schedule.
type SavedSchedule struct {
	ID           string    `db:"id" json:"id"`
	SessionID    string    `db:"session_id" json:"-"`
	Name         string    `db:"name" json:"name"`
	Serialized   string    `db:"serialized" json:"serialized"`
	TotalCredits int       `db:"total_credits" json:"total_credits"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SavedScheduleFilter describes query params for listing saved schedules.
type SavedScheduleFilter struct {
	SessionID string
	Page      int
	PageSize  int
}
