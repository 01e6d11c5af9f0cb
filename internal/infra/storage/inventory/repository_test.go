package inventory

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

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func TestRepository_CreateUnits_SingleStatement(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	batch := &domain.StockBatch{ID: 9, ItemID: 3, CenterID: 1}

	rows := sqlmock.NewRows(unitColumns)
	for id := int64(1); id <= 3; id++ {
		rows.AddRow(id, int64(9), int64(3), int64(1), 0, 5, "available", true, now, now)
	}

	mock.ExpectQuery(`INSERT INTO individual_units .+ VALUES \(.+\),\(.+\),\(.+\) RETURNING`).
		WithArgs(
			int64(9), int64(3), int64(1), 0, 5, domain.UnitAvailable, true,
			int64(9), int64(3), int64(1), 0, 5, domain.UnitAvailable, true,
			int64(9), int64(3), int64(1), 0, 5, domain.UnitAvailable, true,
		).
		WillReturnRows(rows)

	units, err := repo.CreateUnits(context.Background(), batch, 5, 3)
	require.NoError(t, err)
	require.Len(t, units, 3)
	for _, u := range units {
		assert.Equal(t, 0, u.CurrentUsage)
		assert.Equal(t, 5, u.MaxUsage)
		assert.Equal(t, domain.UnitAvailable, u.Status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateUnits_Failure(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO individual_units`).
		WillReturnError(&pq.Error{Code: "57014"})

	_, err := repo.CreateUnits(context.Background(), &domain.StockBatch{ID: 9}, 5, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDatabase))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DecrementBatchAvailable(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "reserved", affected: 1},
		{name: "insufficient", affected: 0, wantErr: ErrInsufficientQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE stock_batches SET available_quantity = available_quantity - $1")).
				WithArgs(4, int64(2), 4).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.DecrementBatchAvailable(context.Background(), 2, 4)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_CreateSelection_Duplicate(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO inventory_selections")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: selectionUniqueConstraint})

	_, err := repo.CreateSelection(context.Background(), &domain.InventorySelection{SessionID: 1, ItemID: 2, BatchID: 3, Quantity: 1})
	assert.ErrorIs(t, err, ErrDuplicateSelection)
	assert.Equal(t, domain.KindAlreadyExists, domain.KindOf(err))
}

func TestRepository_CreateDiscardRequest_AlreadyPending(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO discard_requests")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: pendingDiscardConstraint})

	_, err := repo.CreateDiscardRequest(context.Background(), &domain.DiscardRequest{
		UnitID: 4, Type: domain.DiscardEarly, RequestedBy: 1, Reason: "leak", Status: domain.DiscardPending,
	})
	assert.ErrorIs(t, err, ErrPendingRequestExists)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRepository_GetUnit_LocksInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM individual_units WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(unitColumns).AddRow(int64(4), int64(9), int64(3), int64(1), 2, 5, "in_use", false, now, now))

	tx, err := db.Begin()
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	unit, err := repo.GetUnit(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitInUse, unit.Status)
	assert.Equal(t, 2, unit.CurrentUsage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
