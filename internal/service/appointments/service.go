package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/appointments/models"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

const metricsComponent = "appointments"

// Service сервис для работы с записями на диализ
type Service struct {
	appointmentRepo AppointmentRepository
	centerRepo      CenterRepository
	machines        MachineReleaser
	cycles          CycleRecorder
	txManager       TransactionManager
	locker          Locker
	metrics         MetricsRecorder
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	centerRepo CenterRepository,
	machines MachineReleaser,
	cycles CycleRecorder,
	txManager TransactionManager,
	locker Locker,
	metrics MetricsRecorder,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		centerRepo:      centerRepo,
		machines:        machines,
		cycles:          cycles,
		txManager:       txManager,
		locker:          locker,
		metrics:         metrics,
		logger:          logger,
	}
}

// LockKey ключ блокировки записи
func LockKey(appointmentID int64) string {
	return locker.Key("appointment", appointmentID)
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("GetByID: appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("GetByID - get appointment: %w", err)
	}
	return models.FromDomainAppointment(appointment), nil
}

// ListByCenterAndDate записи центра на дату, включая отмененные
func (s *Service) ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListByCenterAndDate: center=%d, date=%s", centerID, date.Format(domain.DateFormat))

	if _, err := s.centerRepo.GetByID(ctx, centerID); err != nil {
		return nil, fmt.Errorf("ListByCenterAndDate - get center: %w", err)
	}

	list, err := s.appointmentRepo.ListByCenterAndDate(ctx, centerID, domain.TruncateDate(date))
	if err != nil {
		s.logger.Error("ListByCenterAndDate: center=%d: %v", centerID, err)
		return nil, fmt.Errorf("ListByCenterAndDate - list: %w", err)
	}
	return models.FromDomainAppointmentList(list), nil
}

// ListByPatient история записей пациента, опционально по статусу
func (s *Service) ListByPatient(ctx context.Context, req *models.ListByPatientRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListByPatient: patient=%d, status=%v", req.PatientID, req.Status)

	var status *domain.AppointmentStatus
	if req.Status != nil {
		parsed, err := domain.ParseAppointmentStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	list, err := s.appointmentRepo.ListByPatient(ctx, req.PatientID, status)
	if err != nil {
		s.logger.Error("ListByPatient: patient=%d: %v", req.PatientID, err)
		return nil, fmt.Errorf("ListByPatient - list: %w", err)
	}
	return models.FromDomainAppointmentList(list), nil
}

// UpdateStatus меняет статус записи по таблице переходов
// Только для записей без сеанса: иначе статус ведет сеанс лечения.
// Завершенная запись освобождает аппарат и увеличивает счетчик курса лечения
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.StatusUpdateResponse, error) {
	s.logger.Info("UpdateStatus: appointment=%d -> %s by user=%d", id, req.Status, req.UserID)

	status, err := domain.ParseAppointmentStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var updated *domain.Appointment
	err = s.withLock(ctx, []string{LockKey(id)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			appointment, err := s.appointmentRepo.GetByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("UpdateStatus - get appointment: %w", err)
			}
			if !appointment.Status.CanTransitionTo(status) {
				s.logger.Warn("UpdateStatus: appointment=%d %s -> %s not allowed", id, appointment.Status, status)
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, status)
			}
			if err := s.ensureNoSession(txCtx, "UpdateStatus", id); err != nil {
				return err
			}

			if status == domain.AppointmentCancelled {
				err = s.appointmentRepo.Cancel(txCtx, id, nil)
			} else {
				err = s.appointmentRepo.UpdateStatus(txCtx, id, status)
			}
			if err != nil {
				return fmt.Errorf("UpdateStatus - update: %w", err)
			}

			if status.IsTerminal() {
				release := domain.AssignmentCompleted
				if status == domain.AppointmentCancelled {
					release = domain.AssignmentCancelled
				}
				if _, err := s.machines.ReleaseForAppointment(txCtx, id, release); err != nil {
					return fmt.Errorf("UpdateStatus - release machines: %w", err)
				}
			}

			appointment.Status = status
			updated = appointment
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, string(status))
	resp := &models.StatusUpdateResponse{Appointment: *models.FromDomainAppointment(updated)}

	if status == domain.AppointmentCompleted {
		notice, err := s.cycles.RecordCompletion(ctx, updated.PatientID)
		if err != nil {
			s.logger.Warn("UpdateStatus: appointment=%d completed, treatment cycle not updated: %v", id, err)
		}
		resp.CycleNotice = models.FromDomainCycleNotice(notice)
	}

	return resp, nil
}

// Cancel отменяет запланированную запись без сеанса и ее активные назначения аппаратов
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: appointment=%d by user=%d", id, req.UserID)

	reason := req.Reason
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if utf8.RuneCountInString(trimmed) > domain.MaxReasonLength {
			return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
		}
		reason = &trimmed
	}

	var cancelled *domain.Appointment
	err := s.withLock(ctx, []string{LockKey(id)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			appointment, err := s.appointmentRepo.GetByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("Cancel - get appointment: %w", err)
			}
			if !appointment.CanBeCancelled() {
				s.logger.Warn("Cancel: appointment=%d cannot be cancelled, status=%s", id, appointment.Status)
				return ErrCannotCancel
			}
			if err := s.ensureNoSession(txCtx, "Cancel", id); err != nil {
				return err
			}

			if err := s.appointmentRepo.Cancel(txCtx, id, reason); err != nil {
				s.logger.Error("Cancel: appointment=%d: %v", id, err)
				return fmt.Errorf("Cancel - update: %w", err)
			}

			released, err := s.machines.ReleaseForAppointment(txCtx, id, domain.AssignmentCancelled)
			if err != nil {
				return fmt.Errorf("Cancel - release machines: %w", err)
			}
			if released > 0 {
				s.logger.Info("Cancel: appointment=%d released %d machine assignments", id, released)
			}

			// перечитываем, чтобы вернуть время отмены
			cancelled, err = s.appointmentRepo.GetByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("Cancel - reload: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "cancelled")
	return models.FromDomainAppointment(cancelled), nil
}

// Delete удаляет запись без сеанса и назначений
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: appointment=%d", id)

	return s.withLock(ctx, []string{LockKey(id)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			if _, err := s.appointmentRepo.GetByID(txCtx, id); err != nil {
				return fmt.Errorf("Delete - get appointment: %w", err)
			}

			hasDependents, err := s.appointmentRepo.HasDependents(txCtx, id)
			if err != nil {
				return fmt.Errorf("Delete - check dependents: %w", err)
			}
			if hasDependents {
				return ErrHasDependents
			}

			if err := s.appointmentRepo.Delete(txCtx, id); err != nil {
				return fmt.Errorf("Delete - delete: %w", err)
			}
			return nil
		})
	})
}

func (s *Service) ensureNoSession(ctx context.Context, op string, id int64) error {
	hasSession, err := s.appointmentRepo.HasSession(ctx, id)
	if err != nil {
		return fmt.Errorf("%s - check session: %w", op, err)
	}
	if hasSession {
		s.logger.Warn("%s: appointment=%d has a session", op, id)
		return ErrManagedBySession
	}
	return nil
}

func (s *Service) withLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, keys, fn)
	if errors.Is(err, locker.ErrLockNotAcquired) {
		s.logger.Warn("lock not acquired: %v", err)
		return fmt.Errorf("%w: %v", ErrResourceBusy, err)
	}
	return err
}
