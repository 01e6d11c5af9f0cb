package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DialysisService/pkg/psqlbuilder"
)

var unitColumns = []string{
	"id",
	"batch_id",
	"item_id",
	"center_id",
	"current_usage",
	"max_usage",
	"status",
	"is_available",
	"created_at",
	"updated_at",
}

// CreateUnits создает count единиц партии одним INSERT
// Либо создаются все единицы, либо ни одной
func (r *Repository) CreateUnits(ctx context.Context, batch *domain.StockBatch, maxUsage, count int) ([]*domain.IndividualUnit, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("individual_units").
		Columns("batch_id", "item_id", "center_id", "current_usage", "max_usage", "status", "is_available")
	for i := 0; i < count; i++ {
		builder = builder.Values(batch.ID, batch.ItemID, batch.CenterID, 0, maxUsage, domain.UnitAvailable, true)
	}

	query, args, err := builder.Suffix("RETURNING " + strings.Join(unitColumns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateUnits - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateUnits - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	units := make([]*domain.IndividualUnit, 0, count)
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: CreateUnits - scan row: %v", ErrScanRow, err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CreateUnits - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	if len(units) != count {
		return nil, fmt.Errorf("%w: CreateUnits - created %d of %d", ErrUnitsNotCreated, len(units), count)
	}

	return units, nil
}

// GetUnit получает единицу (в транзакции с блокировкой строки)
func (r *Repository) GetUnit(ctx context.Context, id int64) (*domain.IndividualUnit, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(unitColumns...).
		From("individual_units").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetUnit - build select query: %v", ErrBuildQuery, err)
	}

	unit, err := scanUnit(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetUnit - scan unit: %w", ErrScanRow, pgerr.Classify(err))
	}

	return unit, nil
}

// ListSelectableUnits единицы позиции в центре, доступные для выбора
// Порядок выдачи стабильный (по id), ранжирование делает сервис
func (r *Repository) ListSelectableUnits(ctx context.Context, itemID, centerID int64) ([]domain.IndividualUnit, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(unitColumns...).
		From("individual_units").
		Where(squirrel.Eq{
			"item_id":   itemID,
			"center_id": centerID,
			"status":    domain.UnitAvailable,
		}).
		Where("current_usage < max_usage").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListSelectableUnits - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSelectableUnits - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	units := make([]domain.IndividualUnit, 0)
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListSelectableUnits - scan row: %v", ErrScanRow, err)
		}
		units = append(units, *unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListSelectableUnits - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return units, nil
}

// UpdateUnitStatus меняет статус единицы
// Discarded терминален: такие строки не обновляются
func (r *Repository) UpdateUnitStatus(ctx context.Context, id int64, status domain.UnitStatus) error {
	var isAvailable any = false
	if status == domain.UnitAvailable {
		isAvailable = squirrel.Expr("current_usage < max_usage")
	}

	rows, err := r.exec(ctx, "UpdateUnitStatus", psqlbuilder.Update("individual_units").
		Set("status", status).
		Set("is_available", isAvailable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": domain.UnitDiscarded}))
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUnitNotFound
	}
	return nil
}

// ConsumeUnit фиксирует одно использование единицы и возвращает ее в Available
// current_usage не превышает max_usage; исчерпанная единица становится недоступной
func (r *Repository) ConsumeUnit(ctx context.Context, id int64) (*domain.IndividualUnit, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("individual_units").
		Set("current_usage", squirrel.Expr("LEAST(current_usage + 1, max_usage)")).
		Set("is_available", squirrel.Expr("LEAST(current_usage + 1, max_usage) < max_usage")).
		Set("status", domain.UnitAvailable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": domain.UnitDiscarded}).
		Suffix("RETURNING " + strings.Join(unitColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ConsumeUnit - build update query: %v", ErrBuildQuery, err)
	}

	unit, err := scanUnit(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ConsumeUnit - scan unit: %w", ErrScanRow, pgerr.Classify(err))
	}

	return unit, nil
}

// CreateUsageEvent записывает событие использования единицы
func (r *Repository) CreateUsageEvent(ctx context.Context, event *domain.UnitUsageEvent) (*domain.UnitUsageEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("unit_usage_events").
		Columns("unit_id", "session_id", "usage_sequence").
		Values(event.UnitID, event.SessionID, event.UsageSequence).
		Suffix("RETURNING id, recorded_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateUsageEvent - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &event.RecordedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateUsageEvent - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return event, nil
}

func scanUnit(row rowScanner) (*domain.IndividualUnit, error) {
	var (
		unit   domain.IndividualUnit
		status string
	)
	err := row.Scan(
		&unit.ID,
		&unit.BatchID,
		&unit.ItemID,
		&unit.CenterID,
		&unit.CurrentUsage,
		&unit.MaxUsage,
		&status,
		&unit.IsAvailable,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	unit.Status = domain.UnitStatus(status)
	if !unit.Status.Valid() {
		return nil, fmt.Errorf("unknown unit status %q", status)
	}

	return &unit, nil
}
