package dbmetrics

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/pkg/metrics"
)

func TestOperationName(t *testing.T) {
	assert.Equal(t, "select", operationName("  SELECT id FROM assets"))
	assert.Equal(t, "insert", operationName("INSERT\nINTO x"))
	assert.Equal(t, "begin", operationName("BEGIN"))
}

func TestDB_ExecRecordsMetrics(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	collector := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	db := Wrap(sqlDB, collector)

	mock.ExpectExec("UPDATE assets").WillReturnResult(sqlmock.NewResult(0, 1))

	_, err = db.ExecContext(context.Background(), "UPDATE assets SET is_active = false")
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(collector.DBQueryDuration))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExecutor_PrefersTransaction(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := Wrap(sqlDB, nil)
	mock.ExpectBegin()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	ctx := WithTx(context.Background(), tx)
	assert.True(t, IsInTransaction(ctx))
	assert.Equal(t, tx, GetExecutor(ctx, db))
	assert.Equal(t, DBExecutor(db), GetExecutor(context.Background(), db))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
}
