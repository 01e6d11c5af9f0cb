package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DialysisService/pkg/psqlbuilder"
)

const selectionUniqueConstraint = "inventory_selections_session_id_item_id_key"

var selectionColumns = []string{
	"id",
	"session_id",
	"item_id",
	"unit_id",
	"batch_id",
	"quantity",
	"usage_sequence",
	"condition",
	"selected_by",
	"selected_at",
	"consumed_at",
}

// CreateSelection сохраняет выбор позиции на сеанс
// Уникальный индекс (session_id, item_id) запрещает повторный выбор
func (r *Repository) CreateSelection(ctx context.Context, sel *domain.InventorySelection) (*domain.InventorySelection, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("inventory_selections").
		Columns("session_id", "item_id", "unit_id", "batch_id", "quantity", "usage_sequence", "condition", "selected_by").
		Values(
			sel.SessionID,
			sel.ItemID,
			sel.UnitID,
			sel.BatchID,
			sel.Quantity,
			sel.UsageSequence,
			sel.Condition,
			sel.SelectedBy,
		).
		Suffix("RETURNING id, selected_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateSelection - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sel.ID, &sel.SelectedAt); err != nil {
		if pgerr.IsUniqueViolation(err, selectionUniqueConstraint) {
			return nil, ErrDuplicateSelection
		}
		return nil, fmt.Errorf("%w: CreateSelection - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return sel, nil
}

// ListSelections выбор материалов сеанса в порядке добавления
func (r *Repository) ListSelections(ctx context.Context, sessionID int64) ([]*domain.InventorySelection, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(selectionColumns...).
		From("inventory_selections").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("id ASC")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListSelections - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSelections - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	selections := make([]*domain.InventorySelection, 0)
	for rows.Next() {
		var sel domain.InventorySelection
		err := rows.Scan(
			&sel.ID,
			&sel.SessionID,
			&sel.ItemID,
			&sel.UnitID,
			&sel.BatchID,
			&sel.Quantity,
			&sel.UsageSequence,
			&sel.Condition,
			&sel.SelectedBy,
			&sel.SelectedAt,
			&sel.ConsumedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListSelections - scan row: %v", ErrScanRow, err)
		}
		selections = append(selections, &sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListSelections - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return selections, nil
}

// MarkSelectionConsumed проставляет время фактического расхода
func (r *Repository) MarkSelectionConsumed(ctx context.Context, id int64, usageSequence int, at time.Time) error {
	_, err := r.exec(ctx, "MarkSelectionConsumed", psqlbuilder.Update("inventory_selections").
		Set("consumed_at", at).
		Set("usage_sequence", usageSequence).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"consumed_at": nil}))
	return err
}
