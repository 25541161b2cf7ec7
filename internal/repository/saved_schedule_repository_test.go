package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type queryLabels struct {
	labels []string
}

func (q *queryLabels) ObserveDBQuery(label string, _ time.Duration) {
	q.labels = append(q.labels, label)
}

func newSavedScheduleRepoMock(t *testing.T) (*SavedScheduleRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	cleanup := func() {
		_ = sqlxDB.Close()
	}
	return NewSavedScheduleRepository(sqlxDB, nil), mock, cleanup
}

var savedScheduleColumns = []string{"id", "session_id", "name", "serialized", "total_credits", "created_at", "updated_at"}

func TestSavedScheduleRepositoryCreate(t *testing.T) {
	repo, mock, cleanup := newSavedScheduleRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saved_schedules")).
		WithArgs(sqlmock.AnyArg(), "sess-1", "Fall plan", "CMSC250-0307,COMM107-FC04", 7, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	observer := &queryLabels{}
	repo.observer = observer
	saved := &models.SavedSchedule{SessionID: "sess-1", Name: "Fall plan", Serialized: "CMSC250-0307,COMM107-FC04", TotalCredits: 7}
	require.NoError(t, repo.Create(context.Background(), saved))

	assert.Equal(t, []string{"saved_schedules.create"}, observer.labels)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedScheduleRepositoryList(t *testing.T) {
	repo, mock, cleanup := newSavedScheduleRepoMock(t)
	defer cleanup()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM saved_schedules WHERE session_id = $1")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(regexp.QuoteMeta("FROM saved_schedules")).
		WithArgs("sess-1", 20, 20).
		WillReturnRows(sqlmock.NewRows(savedScheduleColumns).
			AddRow("saved-21", "sess-1", "Oldest", "ANTH221-FC01", 3, now, now))

	items, total, err := repo.List(context.Background(), models.SavedScheduleFilter{SessionID: "sess-1", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 21, total)
	require.Len(t, items, 1)
	assert.Equal(t, "ANTH221-FC01", items[0].Serialized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedScheduleRepositoryFindByID(t *testing.T) {
	repo, mock, cleanup := newSavedScheduleRepoMock(t)
	defer cleanup()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND session_id = $2")).
		WithArgs("saved-1", "sess-1").
		WillReturnRows(sqlmock.NewRows(savedScheduleColumns).
			AddRow("saved-1", "sess-1", "Fall plan", "CMSC250-0307", 4, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND session_id = $2")).
		WithArgs("saved-2", "sess-1").
		WillReturnError(sql.ErrNoRows)

	saved, err := repo.FindByID(context.Background(), "sess-1", "saved-1")
	require.NoError(t, err)
	assert.Equal(t, 4, saved.TotalCredits)

	_, err = repo.FindByID(context.Background(), "sess-1", "saved-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedScheduleRepositoryDelete(t *testing.T) {
	repo, mock, cleanup := newSavedScheduleRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_schedules")).
		WithArgs("saved-1", "sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_schedules")).
		WithArgs("saved-1", "sess-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "sess-1", "saved-1"))
	err := repo.Delete(context.Background(), "sess-2", "saved-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
