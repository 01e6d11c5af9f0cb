package assignment

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

func TestRepository_ListActiveByAsset_LocksRowsInTransaction(t *testing.T) {
	repo, db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM asset_assignments WHERE asset_id = $1 AND assigned_date = $2 AND status = $3 ORDER BY start_minute ASC, id ASC FOR UPDATE")).
		WithArgs(int64(2), testDate, domain.AssignmentActive).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), int64(2), int64(7), nil, testDate, int64(600), int64(240), "active", int64(3), nil, now).
			AddRow(int64(4), int64(2), int64(8), int64(11), testDate, int64(840), int64(240), "active", int64(3), nil, now))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	got, err := repo.ListActiveByAsset(dbmetrics.WithTx(context.Background(), tx), 2, testDate)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].SessionID)
	require.NotNil(t, got[1].SessionID)
	assert.Equal(t, int64(11), *got[1].SessionID)
	assert.Equal(t, domain.TimeRange{StartMinute: 840, EndMinute: 1080}, got[1].Range())
}

func TestRepository_Release(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "active assignment", affected: 1, want: true},
		{name: "already released", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, mock := newMock(t)

			mock.ExpectExec(regexp.QuoteMeta(
				"UPDATE asset_assignments SET status = $1, released_at = NOW() WHERE id = $2 AND status = $3")).
				WithArgs(domain.AssignmentCompleted, int64(1), domain.AssignmentActive).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			released, err := repo.Release(context.Background(), 1, domain.AssignmentCompleted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, released)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM asset_assignments WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestRepository_Create_Overlap(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO asset_assignments")).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: overlapConstraint})

	_, err := repo.Create(context.Background(), &domain.AssetAssignment{
		AssetID:         2,
		AppointmentID:   7,
		Date:            testDate,
		StartMinute:     600,
		DurationMinutes: 240,
		Status:          domain.AssignmentActive,
	})
	assert.ErrorIs(t, err, ErrAssignmentOverlap)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRepository_Create_SerializationFailure(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO asset_assignments")).
		WillReturnError(&pq.Error{Code: "40001"})

	_, err := repo.Create(context.Background(), &domain.AssetAssignment{
		AssetID:         2,
		AppointmentID:   7,
		Date:            testDate,
		StartMinute:     600,
		DurationMinutes: 240,
		Status:          domain.AssignmentActive,
		CreatedBy:       3,
	})
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}
