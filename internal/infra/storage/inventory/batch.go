package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DialysisService/pkg/psqlbuilder"
)

var batchColumns = []string{
	"id",
	"item_id",
	"center_id",
	"quantity",
	"available_quantity",
	"batch_number",
	"expiry_date",
	"received_by",
	"received_at",
}

// CreateBatch сохраняет поступление партии
func (r *Repository) CreateBatch(ctx context.Context, batch *domain.StockBatch) (*domain.StockBatch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("stock_batches").
		Columns("item_id", "center_id", "quantity", "available_quantity", "batch_number", "expiry_date", "received_by").
		Values(
			batch.ItemID,
			batch.CenterID,
			batch.Quantity,
			batch.AvailableQuantity,
			batch.BatchNumber,
			batch.ExpiryDate,
			batch.ReceivedBy,
		).
		Suffix("RETURNING id, received_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&batch.ID, &batch.ReceivedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateBatch - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return batch, nil
}

// GetBatch получает партию (в транзакции с блокировкой строки)
func (r *Repository) GetBatch(ctx context.Context, id int64) (*domain.StockBatch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(batchColumns...).
		From("stock_batches").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBatch - build select query: %v", ErrBuildQuery, err)
	}

	var batch domain.StockBatch
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&batch.ID,
		&batch.ItemID,
		&batch.CenterID,
		&batch.Quantity,
		&batch.AvailableQuantity,
		&batch.BatchNumber,
		&batch.ExpiryDate,
		&batch.ReceivedBy,
		&batch.ReceivedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBatch - scan batch: %w", ErrScanRow, pgerr.Classify(err))
	}

	return &batch, nil
}

// DecrementBatchAvailable резервирует qty из свободного остатка партии
// Условие available_quantity >= qty не дает уйти в минус при гонке
func (r *Repository) DecrementBatchAvailable(ctx context.Context, batchID int64, qty int) error {
	rows, err := r.exec(ctx, "DecrementBatchAvailable", psqlbuilder.Update("stock_batches").
		Set("available_quantity", squirrel.Expr("available_quantity - ?", qty)).
		Where(squirrel.Eq{"id": batchID}).
		Where(squirrel.GtOrEq{"available_quantity": qty}))
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientQuantity
	}
	return nil
}
