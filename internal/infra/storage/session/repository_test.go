package session

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Repository, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), db, mock
}

func sessionRow() *sqlmock.Rows {
	now := time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		int64(5), int64(7), int64(100), int64(1), int64(2), int64(9), testDate, int64(600), int64(840),
		now, nil, "in_progress", nil, nil, nil, int64(3), int64(3), nil, now, now,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(int64(7), int64(100), int64(1), testDate, 600, 840, domain.SessionNotStarted, nil, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	created, err := repo.Create(context.Background(), &domain.Session{
		AppointmentID: 7,
		PatientID:     100,
		CenterID:      1,
		SessionDate:   testDate,
		Scheduled:     domain.TimeRange{StartMinute: 600, EndMinute: 840},
		Status:        domain.SessionNotStarted,
		CreatedBy:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_Duplicate(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: appointmentUniqueConstraint})

	_, err := repo.Create(context.Background(), &domain.Session{AppointmentID: 7, Status: domain.SessionNotStarted})
	assert.ErrorIs(t, err, ErrSessionExists)
	assert.Equal(t, domain.KindAlreadyExists, domain.KindOf(err))
}

func TestRepository_GetByID(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, appointment_id")).
		WithArgs(int64(5)).
		WillReturnRows(sessionRow())

	s, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, s.Status)
	assert.Equal(t, domain.TimeRange{StartMinute: 600, EndMinute: 840}, s.Scheduled)
	require.NotNil(t, s.AssetID)
	assert.Equal(t, int64(2), *s.AssetID)
	assert.Nil(t, s.ActualEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_LocksRowInTransaction(t *testing.T) {
	repo, db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM sessions WHERE appointment_id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(sessionRow())
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	s, err := repo.GetByAppointmentID(dbmetrics.WithTx(context.Background(), tx), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.AppointmentID)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, appointment_id")).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestRepository_MarkStarted(t *testing.T) {
	repo, _, mock := newMock(t)
	startedAt := time.Date(2025, 10, 15, 9, 58, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET actual_start = $1, started_by = $2, status = $3, updated_at = NOW() WHERE id = $4")).
		WithArgs(startedAt, int64(3), domain.SessionInProgress, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkStarted(context.Background(), 5, startedAt, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_MissingRow(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetMachine(context.Background(), 404, 2, 9)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRepository_ListByCenterAndDate_QueryCanceled(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, appointment_id")).
		WithArgs(int64(1), testDate).
		WillReturnError(&pq.Error{Code: "57014"})

	_, err := repo.ListByCenterAndDate(context.Background(), 1, testDate)
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.Equal(t, domain.KindDatabase, domain.KindOf(err))
}
