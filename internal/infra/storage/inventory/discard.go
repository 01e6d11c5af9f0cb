package inventory

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

const pendingDiscardConstraint = "discard_requests_pending_unit_key"

var discardColumns = []string{
	"dr.id",
	"dr.unit_id",
	"dr.discard_type",
	"dr.requested_by",
	"dr.reason",
	"dr.status",
	"dr.reviewed_by",
	"dr.review_comments",
	"dr.reviewed_at",
	"dr.created_at",
}

// CreateDiscardRequest создает заявку на списание в статусе pending
// Частичный уникальный индекс допускает одну pending заявку на единицу
func (r *Repository) CreateDiscardRequest(ctx context.Context, req *domain.DiscardRequest) (*domain.DiscardRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("discard_requests").
		Columns("unit_id", "discard_type", "requested_by", "reason", "status").
		Values(req.UnitID, req.Type, req.RequestedBy, req.Reason, req.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateDiscardRequest - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		if pgerr.IsUniqueViolation(err, pendingDiscardConstraint) {
			return nil, ErrPendingRequestExists
		}
		return nil, fmt.Errorf("%w: CreateDiscardRequest - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return req, nil
}

// GetDiscardRequest получает заявку (в транзакции с блокировкой строки)
func (r *Repository) GetDiscardRequest(ctx context.Context, id int64) (*domain.DiscardRequest, error) {
	return r.getDiscard(ctx, "GetDiscardRequest", squirrel.Eq{"dr.id": id})
}

// GetPendingDiscardByUnit получает необработанную заявку по единице
func (r *Repository) GetPendingDiscardByUnit(ctx context.Context, unitID int64) (*domain.DiscardRequest, error) {
	return r.getDiscard(ctx, "GetPendingDiscardByUnit", squirrel.Eq{
		"dr.unit_id": unitID,
		"dr.status":  domain.DiscardPending,
	})
}

func (r *Repository) getDiscard(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.DiscardRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(discardColumns...).
		From("discard_requests dr").
		Where(where)
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	req, err := scanDiscard(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscardRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan request: %w", ErrScanRow, op, pgerr.Classify(err))
	}

	return req, nil
}

// ResolveDiscardRequest фиксирует решение по заявке
// Обновляется только pending заявка
func (r *Repository) ResolveDiscardRequest(ctx context.Context, id int64, status domain.DiscardStatus, reviewedBy int64, comments *string, at time.Time) error {
	rows, err := r.exec(ctx, "ResolveDiscardRequest", psqlbuilder.Update("discard_requests").
		Set("status", status).
		Set("reviewed_by", reviewedBy).
		Set("review_comments", comments).
		Set("reviewed_at", at).
		Where(squirrel.Eq{"id": id, "status": domain.DiscardPending}))
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDiscardRequestNotFound
	}
	return nil
}

// ListPendingDiscards необработанные заявки центра, старые первыми
func (r *Repository) ListPendingDiscards(ctx context.Context, centerID int64) ([]*domain.DiscardRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(discardColumns...).
		From("discard_requests dr").
		Join("individual_units u ON u.id = dr.unit_id").
		Where(squirrel.Eq{
			"u.center_id": centerID,
			"dr.status":   domain.DiscardPending,
		}).
		OrderBy("dr.created_at ASC", "dr.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingDiscards - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingDiscards - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	requests := make([]*domain.DiscardRequest, 0)
	for rows.Next() {
		req, err := scanDiscard(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPendingDiscards - scan row: %v", ErrScanRow, err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPendingDiscards - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return requests, nil
}

func scanDiscard(row rowScanner) (*domain.DiscardRequest, error) {
	var (
		req                 domain.DiscardRequest
		discardType, status string
	)
	err := row.Scan(
		&req.ID,
		&req.UnitID,
		&discardType,
		&req.RequestedBy,
		&req.Reason,
		&status,
		&req.ReviewedBy,
		&req.ReviewComments,
		&req.ReviewedAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t, err := domain.ParseDiscardType(discardType)
	if err != nil {
		return nil, err
	}
	req.Type = t
	req.Status = domain.DiscardStatus(status)

	return &req, nil
}
