package session

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

const appointmentUniqueConstraint = "sessions_appointment_id_key"

// Repository репозиторий сеансов диализа
// Сеансы не удаляются: это журнал проведенных процедур
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория сеансов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var columns = []string{
	"id",
	"appointment_id",
	"patient_id",
	"center_id",
	"asset_id",
	"assignment_id",
	"session_date",
	"scheduled_start_minute",
	"scheduled_end_minute",
	"actual_start",
	"actual_end",
	"status",
	"pre_notes",
	"post_notes",
	"termination_reason",
	"created_by",
	"started_by",
	"completed_by",
	"created_at",
	"updated_at",
}

// Create создает сеанс в статусе not_started
// Уникальный индекс по appointment_id гарантирует один сеанс на запись
func (r *Repository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("sessions").
		Columns(
			"appointment_id",
			"patient_id",
			"center_id",
			"session_date",
			"scheduled_start_minute",
			"scheduled_end_minute",
			"status",
			"pre_notes",
			"created_by",
		).
		Values(
			s.AppointmentID,
			s.PatientID,
			s.CenterID,
			s.SessionDate,
			s.Scheduled.StartMinute,
			s.Scheduled.EndMinute,
			s.Status,
			s.PreNotes,
			s.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if pgerr.IsUniqueViolation(err, appointmentUniqueConstraint) {
		return nil, fmt.Errorf("%w: appointment id=%d", ErrSessionExists, s.AppointmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return s, nil
}

// GetByID получает сеанс по ID (FOR UPDATE внутри транзакции)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByAppointmentID получает сеанс записи
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Session, error) {
	return r.getOne(ctx, "GetByAppointmentID", squirrel.Eq{"appointment_id": appointmentID})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("sessions").
		Where(where)
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	s, err := scanSession(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan session: %w", ErrScanRow, op, pgerr.Classify(err))
	}

	return s, nil
}

// ListByCenterAndDate сеансы центра на дату
func (r *Repository) ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("sessions").
		Where(squirrel.Eq{"center_id": centerID, "session_date": date}).
		OrderBy("scheduled_start_minute ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCenterAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCenterAndDate - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByCenterAndDate - scan row: %v", ErrScanRow, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByCenterAndDate - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return sessions, nil
}

// SetMachine сохраняет аппарат и назначение сеанса
func (r *Repository) SetMachine(ctx context.Context, id, assetID, assignmentID int64) error {
	return r.update(ctx, "SetMachine", id, map[string]any{
		"asset_id":      assetID,
		"assignment_id": assignmentID,
		"updated_at":    squirrel.Expr("NOW()"),
	})
}

// MarkStarted переводит сеанс в in_progress
func (r *Repository) MarkStarted(ctx context.Context, id int64, startedAt time.Time, startedBy int64) error {
	return r.update(ctx, "MarkStarted", id, map[string]any{
		"status":       domain.SessionInProgress,
		"actual_start": startedAt,
		"started_by":   startedBy,
		"updated_at":   squirrel.Expr("NOW()"),
	})
}

// MarkFinished переводит сеанс в конечный статус
func (r *Repository) MarkFinished(ctx context.Context, s *domain.Session) error {
	return r.update(ctx, "MarkFinished", s.ID, map[string]any{
		"status":             s.Status,
		"actual_end":         s.ActualEnd,
		"post_notes":         s.PostNotes,
		"termination_reason": s.TerminationReason,
		"completed_by":       s.CompletedBy,
		"updated_at":         squirrel.Expr("NOW()"),
	})
}

func (r *Repository) update(ctx context.Context, op string, id int64, set map[string]any) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("sessions").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, pgerr.Classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID,
		&s.AppointmentID,
		&s.PatientID,
		&s.CenterID,
		&s.AssetID,
		&s.AssignmentID,
		&s.SessionDate,
		&s.Scheduled.StartMinute,
		&s.Scheduled.EndMinute,
		&s.ActualStart,
		&s.ActualEnd,
		&s.Status,
		&s.PreNotes,
		&s.PostNotes,
		&s.TerminationReason,
		&s.CreatedBy,
		&s.StartedBy,
		&s.CompletedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
