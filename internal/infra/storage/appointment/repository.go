package appointment

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

// patientDateConstraint частичный уникальный индекс: одна неотмененная запись пациента на дату
const patientDateConstraint = "appointments_patient_date_active_key"

// Repository репозиторий записей на процедуры
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var columns = []string{
	"id",
	"patient_id",
	"center_id",
	"company_id",
	"appointment_date",
	"start_minute",
	"end_minute",
	"status",
	"revision",
	"reschedule_reason",
	"cancellation_reason",
	"cancelled_at",
	"created_by",
	"created_at",
	"updated_at",
}

// Create создает запись
// Проверки доступности выполняются в usecase внутри той же транзакции
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"patient_id",
			"center_id",
			"company_id",
			"appointment_date",
			"start_minute",
			"end_minute",
			"status",
			"revision",
			"created_by",
		).
		Values(
			a.PatientID,
			a.CenterID,
			a.CompanyID,
			a.Date,
			a.Slot.StartMinute,
			a.Slot.EndMinute,
			a.Status,
			a.Revision,
			a.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if pgerr.IsUniqueViolation(err, patientDateConstraint) {
		return nil, fmt.Errorf("%w: patient id=%d", ErrPatientDateTaken, a.PatientID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return a, nil
}

// GetByID получает запись по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, pgerr.Classify(err))
	}

	return a, nil
}

// ListActiveByCenterAndDate активные (не отмененные) записи центра на дату
// Внутри транзакции строки блокируются (FOR UPDATE) для проверки вместимости
func (r *Repository) ListActiveByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.list(ctx, "ListActiveByCenterAndDate", squirrel.And{
		squirrel.Eq{"center_id": centerID, "appointment_date": date},
		squirrel.NotEq{"status": inactiveStatuses()},
	}, "start_minute ASC, id ASC")
}

// ListByCenterAndDate все записи центра на дату, включая отмененные
func (r *Repository) ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.list(ctx, "ListByCenterAndDate", squirrel.Eq{"center_id": centerID, "appointment_date": date}, "start_minute ASC, id ASC")
}

// ListActiveByPatientAndDate активные записи пациента на дату (не более одной по правилам)
func (r *Repository) ListActiveByPatientAndDate(ctx context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.list(ctx, "ListActiveByPatientAndDate", squirrel.And{
		squirrel.Eq{"patient_id": patientID, "appointment_date": date},
		squirrel.NotEq{"status": inactiveStatuses()},
	}, "id ASC")
}

// ListByPatient история записей пациента, опционально по статусу
func (r *Repository) ListByPatient(ctx context.Context, patientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	where := squirrel.Eq{"patient_id": patientID}
	if status != nil {
		where["status"] = *status
	}
	return r.list(ctx, "ListByPatient", where, "appointment_date DESC, start_minute DESC")
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Sqlizer, orderBy string) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(where).
		OrderBy(orderBy)
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

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, pgerr.Classify(err))
	}

	return appointments, nil
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	return r.update(ctx, "UpdateStatus", id, map[string]any{
		"status":     status,
		"updated_at": squirrel.Expr("NOW()"),
	})
}

// Reschedule переносит запись: дата и время перезаписываются, ревизия увеличивается, статус не меняется
func (r *Repository) Reschedule(ctx context.Context, id int64, date time.Time, slot domain.TimeRange, reason *string) error {
	return r.update(ctx, "Reschedule", id, map[string]any{
		"appointment_date":  date,
		"start_minute":      slot.StartMinute,
		"end_minute":        slot.EndMinute,
		"revision":          squirrel.Expr("revision + 1"),
		"reschedule_reason": reason,
		"updated_at":        squirrel.Expr("NOW()"),
	})
}

// Cancel отменяет запись с указанием причины, слот освобождается
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string) error {
	return r.update(ctx, "Cancel", id, map[string]any{
		"status":              domain.AppointmentCancelled,
		"cancellation_reason": reason,
		"cancelled_at":        squirrel.Expr("NOW()"),
		"updated_at":          squirrel.Expr("NOW()"),
	})
}

func (r *Repository) update(ctx context.Context, op string, id int64, set map[string]any) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if pgerr.IsUniqueViolation(err, patientDateConstraint) {
		return fmt.Errorf("%w: %s - appointment id=%d", ErrPatientDateTaken, op, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, pgerr.Classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// HasSession проверяет, создан ли для записи сеанс лечения
func (r *Repository) HasSession(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var exists bool
	err := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE appointment_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: HasSession - scan: %w", ErrScanRow, pgerr.Classify(err))
	}

	return exists, nil
}

// HasDependents проверяет, ссылаются ли на запись сеансы или назначения аппаратов
func (r *Repository) HasDependents(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM sessions WHERE appointment_id = $1)
		OR EXISTS(SELECT 1 FROM asset_assignments WHERE appointment_id = $1)`

	var exists bool
	if err := executor.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: HasDependents - scan: %w", ErrScanRow, pgerr.Classify(err))
	}

	return exists, nil
}

// Delete физически удаляет запись
// Используется только административно; зависимости проверяются в сервисе
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, pgerr.Classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.CenterID,
		&a.CompanyID,
		&a.Date,
		&a.Slot.StartMinute,
		&a.Slot.EndMinute,
		&a.Status,
		&a.Revision,
		&a.RescheduleReason,
		&a.CancellationReason,
		&a.CancelledAt,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func inactiveStatuses() []string {
	out := make([]string, len(domain.InactiveAppointmentStatuses))
	for i, s := range domain.InactiveAppointmentStatuses {
		out[i] = string(s)
	}
	return out
}
