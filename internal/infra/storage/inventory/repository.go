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

// Repository склад расходных материалов: каталог, партии, единицы, выбор на сеанс, списания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория склада
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var itemColumns = []string{
	"id",
	"name",
	"min_usage",
	"max_usage",
	"is_individually_tracked",
	"requires_approval_early_discard",
	"requires_approval_overuse",
	"is_mandatory",
}

// CreateItem добавляет позицию каталога
func (r *Repository) CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("inventory_items").
		Columns(itemColumns[1:]...).
		Values(
			item.Name,
			item.MinUsage,
			item.MaxUsage,
			item.IsIndividuallyTracked,
			item.RequiresApprovalForEarlyDiscard,
			item.RequiresApprovalForOveruse,
			item.IsMandatory,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateItem - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&item.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateItem - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return item, nil
}

// GetItem получает позицию каталога
func (r *Repository) GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(itemColumns...).
		From("inventory_items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetItem - build select query: %v", ErrBuildQuery, err)
	}

	item, err := scanItem(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetItem - scan item: %w", ErrScanRow, pgerr.Classify(err))
	}

	return item, nil
}

// ListMandatoryItems позиции, обязательные для каждого сеанса
func (r *Repository) ListMandatoryItems(ctx context.Context) ([]*domain.InventoryItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(itemColumns...).
		From("inventory_items").
		Where(squirrel.Eq{"is_mandatory": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListMandatoryItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListMandatoryItems - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	items := make([]*domain.InventoryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListMandatoryItems - scan row: %v", ErrScanRow, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListMandatoryItems - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return items, nil
}

func scanItem(row rowScanner) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.MinUsage,
		&item.MaxUsage,
		&item.IsIndividuallyTracked,
		&item.RequiresApprovalForEarlyDiscard,
		&item.RequiresApprovalForOveruse,
		&item.IsMandatory,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// exec выполняет UPDATE/DELETE и возвращает количество затронутых строк
func (r *Repository) exec(ctx context.Context, op string, builder squirrel.Sqlizer) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - build query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s - execute: %w", ErrExecQuery, op, pgerr.Classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	return rowsAffected, nil
}
