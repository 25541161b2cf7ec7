package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// SavedScheduleRepository persists named schedule snapshots in Postgres.
type SavedScheduleRepository struct {
	db       *sqlx.DB
	observer queryObserver
}

// NewSavedScheduleRepository constructs the repository. observer may be nil.
func NewSavedScheduleRepository(db *sqlx.DB, observer queryObserver) *SavedScheduleRepository {
	return &SavedScheduleRepository{db: db, observer: observer}
}

func (r *SavedScheduleRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// Create inserts a saved schedule, assigning id and timestamps when missing.
func (r *SavedScheduleRepository) Create(ctx context.Context, saved *models.SavedSchedule) error {
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	const query = `INSERT INTO saved_schedules (id, session_id, name, serialized, total_credits, created_at, updated_at)
VALUES (:id, :session_id, :name, :serialized, :total_credits, :created_at, :updated_at)`
	defer r.observe("saved_schedules.create", time.Now())
	if _, err := r.db.NamedExecContext(ctx, query, saved); err != nil {
		return fmt.Errorf("insert saved schedule: %w", err)
	}
	return nil
}

// List returns the saved schedules of a session, newest first, with the total count.
func (r *SavedScheduleRepository) List(ctx context.Context, filter models.SavedScheduleFilter) ([]models.SavedSchedule, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	defer r.observe("saved_schedules.list", time.Now())
	var total int
	const countQuery = `SELECT COUNT(*) FROM saved_schedules WHERE session_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, filter.SessionID); err != nil {
		return nil, 0, fmt.Errorf("count saved schedules: %w", err)
	}

	const listQuery = `SELECT id, session_id, name, serialized, total_credits, created_at, updated_at
FROM saved_schedules
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	items := []models.SavedSchedule{}
	if err := r.db.SelectContext(ctx, &items, listQuery, filter.SessionID, size, (page-1)*size); err != nil {
		return nil, 0, fmt.Errorf("list saved schedules: %w", err)
	}
	return items, total, nil
}

// FindByID returns one saved schedule owned by the session.
func (r *SavedScheduleRepository) FindByID(ctx context.Context, sessionID, id string) (*models.SavedSchedule, error) {
	const query = `SELECT id, session_id, name, serialized, total_credits, created_at, updated_at
FROM saved_schedules
WHERE id = $1 AND session_id = $2`
	defer r.observe("saved_schedules.find", time.Now())
	var saved models.SavedSchedule
	if err := r.db.GetContext(ctx, &saved, query, id, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "saved schedule not found")
		}
		return nil, fmt.Errorf("get saved schedule: %w", err)
	}
	return &saved, nil
}

// Delete removes a saved schedule owned by the session.
func (r *SavedScheduleRepository) Delete(ctx context.Context, sessionID, id string) error {
	const query = `DELETE FROM saved_schedules WHERE id = $1 AND session_id = $2`
	defer r.observe("saved_schedules.delete", time.Now())
	res, err := r.db.ExecContext(ctx, query, id, sessionID)
	if err != nil {
		return fmt.Errorf("delete saved schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete saved schedule rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "saved schedule not found")
	}
	return nil
}
