package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DialysisService/pkg/psqlbuilder"
)

// overlapConstraint exclusion constraint: активные диапазоны аппарата на дату не пересекаются
const overlapConstraint = "asset_assignments_active_overlap_excl"

// Repository назначения аппаратов
// Активные назначения ищутся по индексу (asset_id, assigned_date) WHERE status = 'active'
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория назначений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var columns = []string{
	"id",
	"asset_id",
	"appointment_id",
	"session_id",
	"assigned_date",
	"start_minute",
	"duration_minutes",
	"status",
	"created_by",
	"released_at",
	"created_at",
}

// Create создает активное назначение
func (r *Repository) Create(ctx context.Context, a *domain.AssetAssignment) (*domain.AssetAssignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("asset_assignments").
		Columns(
			"asset_id",
			"appointment_id",
			"session_id",
			"assigned_date",
			"start_minute",
			"duration_minutes",
			"status",
			"created_by",
		).
		Values(
			a.AssetID,
			a.AppointmentID,
			a.SessionID,
			a.Date,
			a.StartMinute,
			a.DurationMinutes,
			a.Status,
			a.CreatedBy,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt)
	if pgerr.IsExclusionViolation(err, overlapConstraint) {
		return nil, fmt.Errorf("%w: asset id=%d", ErrAssignmentOverlap, a.AssetID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return a, nil
}

// GetByID получает назначение по ID (FOR UPDATE внутри транзакции)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.AssetAssignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("asset_assignments").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAssignment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan assignment: %w", ErrScanRow, pgerr.Classify(err))
	}

	return a, nil
}

// ListActiveByAsset активные назначения аппарата на дату
func (r *Repository) ListActiveByAsset(ctx context.Context, assetID int64, date time.Time) ([]*domain.AssetAssignment, error) {
	return r.list(ctx, "ListActiveByAsset", squirrel.Eq{
		"asset_id":      assetID,
		"assigned_date": date,
		"status":        domain.AssignmentActive,
	})
}

// ListActiveByAppointment активные назначения записи
func (r *Repository) ListActiveByAppointment(ctx context.Context, appointmentID int64) ([]*domain.AssetAssignment, error) {
	return r.list(ctx, "ListActiveByAppointment", squirrel.Eq{
		"appointment_id": appointmentID,
		"status":         domain.AssignmentActive,
	})
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Eq) ([]*domain.AssetAssignment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("asset_assignments").
		Where(where).
		OrderBy("start_minute ASC, id ASC")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, pgerr.Classify(err))
	}
	defer rows.Close()

	assignments := make([]*domain.AssetAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, pgerr.Classify(err))
	}

	return assignments, nil
}

// Release переводит активное назначение в status
// Возвращает false, если назначение уже было завершено
func (r *Repository) Release(ctx context.Context, id int64, status domain.AssignmentStatus) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("asset_assignments").
		Set("status", status).
		Set("released_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.AssignmentActive}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Release - execute update: %w", ErrExecQuery, pgerr.Classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// AttachSession привязывает назначение к сеансу
func (r *Repository) AttachSession(ctx context.Context, id, sessionID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("asset_assignments").
		Set("session_id", sessionID).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AttachSession - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AttachSession - execute update: %w", ErrExecQuery, pgerr.Classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AttachSession - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

func scanAssignment(row rowScanner) (*domain.AssetAssignment, error) {
	var a domain.AssetAssignment
	err := row.Scan(
		&a.ID,
		&a.AssetID,
		&a.AppointmentID,
		&a.SessionID,
		&a.Date,
		&a.StartMinute,
		&a.DurationMinutes,
		&a.Status,
		&a.CreatedBy,
		&a.ReleasedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
