package appointment

import (
	"context"
	"errors"
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

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func appointmentRow() *sqlmock.Rows {
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		int64(7), int64(100), int64(1), int64(10), testDate, 540, 600,
		"scheduled", 0, nil, nil, nil, int64(55), now, now,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(int64(100), int64(1), int64(10), testDate, 540, 600, domain.AppointmentScheduled, 0, int64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	created, err := repo.Create(context.Background(), &domain.Appointment{
		PatientID: 100,
		CenterID:  1,
		CompanyID: 10,
		Date:      testDate,
		Slot:      domain.TimeRange{StartMinute: 540, EndMinute: 600},
		Status:    domain.AppointmentScheduled,
		CreatedBy: 55,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_SerializationFailure(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: "40001"})

	_, err := repo.Create(context.Background(), &domain.Appointment{Status: domain.AppointmentScheduled})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.ErrorIs(t, err, ErrExecQuery)
}

func TestRepository_Create_PatientDateTaken(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: patientDateConstraint})

	_, err := repo.Create(context.Background(), &domain.Appointment{PatientID: 100, Status: domain.AppointmentScheduled})
	assert.ErrorIs(t, err, ErrPatientDateTaken)
	assert.Equal(t, domain.KindAlreadyExists, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, patient_id")).
		WithArgs(int64(7)).
		WillReturnRows(appointmentRow())

	a, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentScheduled, a.Status)
	assert.Equal(t, domain.TimeRange{StartMinute: 540, EndMinute: 600}, a.Slot)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, patient_id")).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveByCenterAndDate_LocksInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE .+status NOT IN .+ ORDER BY start_minute ASC, id ASC FOR UPDATE`).
		WithArgs(testDate, int64(1), "cancelled").
		WillReturnRows(appointmentRow())
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	list, err := repo.ListActiveByCenterAndDate(dbmetrics.WithTx(context.Background(), tx), 1, testDate)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Reschedule(t *testing.T) {
	repo, mock := newMock(t)
	reason := "patient request"
	newDate := testDate.AddDate(0, 0, 1)

	mock.ExpectExec(`UPDATE appointments SET appointment_date = \$1, end_minute = \$2, reschedule_reason = \$3, revision = revision \+ 1, start_minute = \$4, updated_at = NOW\(\) WHERE id = \$5`).
		WithArgs(newDate, 720, &reason, 660, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Reschedule(context.Background(), 7, newDate, domain.TimeRange{StartMinute: 660, EndMinute: 720}, &reason)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Cancel_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), 99, nil)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepository_HasDependents(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasDependents(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, has)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.HasDependents(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrDatabase)
}

func TestRepository_HasSession(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM sessions WHERE appointment_id = $1)")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	has, err := repo.HasSession(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}
