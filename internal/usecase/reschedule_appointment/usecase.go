package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

// UseCase use case переноса записи на другую дату или время
type UseCase struct {
	appointmentRepo AppointmentRepository
	centerRepo      CenterRepository
	sessions        SessionFinder
	slots           SlotChecker
	machines        MachineReleaser
	txManager       TransactionManager
	locker          Locker
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	centerRepo CenterRepository,
	sessions SessionFinder,
	slots SlotChecker,
	machines MachineReleaser,
	txManager TransactionManager,
	locker Locker,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		centerRepo:      centerRepo,
		sessions:        sessions,
		slots:           slots,
		machines:        machines,
		txManager:       txManager,
		locker:          locker,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет перенос
// Статус записи не меняется, ревизия увеличивается на единицу
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: id=%d, date=%s, time=%s-%s",
		req.AppointmentID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	rng, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}
	date := domain.TruncateDate(req.Date)

	// 2. Новая дата не в прошлом
	if domain.IsDateInPast(date, uc.timeProvider.Now()) {
		return nil, ErrDateInPast
	}

	// 3. Запись
	current, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("RescheduleAppointment - get appointment: %w", err)
	}
	if !current.CanBeRescheduled() {
		return nil, fmt.Errorf("%w: status %s", ErrCannotReschedule, current.Status)
	}

	// 4. Центр и его часы работы
	center, err := uc.centerRepo.GetByID(ctx, current.CenterID)
	if err != nil {
		return nil, fmt.Errorf("RescheduleAppointment - get center: %w", err)
	}
	if !center.IsActive {
		return nil, ErrCenterInactive
	}
	rng = rng.ResolveIn(center.Config.Window())
	if !rng.Within(center.Config.Window()) {
		uc.logger.Warn("RescheduleAppointment: %s outside window %s", rng, center.Config.Window())
		return nil, ErrOutsideWorkingHours
	}

	reason := trimReason(req.Reason)
	var result *Response

	// 5. Под блокировками старой и новой дат в сериализуемой транзакции
	err = uc.locker.WithLock(ctx, LockKeys(current, date), func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 5.1. Перечитываем запись: могла измениться до захвата блокировок
			a, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
			if err != nil {
				return fmt.Errorf("RescheduleAppointment - reload appointment: %w", err)
			}
			if a.Revision != current.Revision || (req.ExpectedRevision != nil && *req.ExpectedRevision != a.Revision) {
				uc.logger.Warn("RescheduleAppointment: id=%d revision changed to %d", a.ID, a.Revision)
				return fmt.Errorf("%w: revision %d", ErrRevisionMismatch, a.Revision)
			}
			if !a.CanBeRescheduled() {
				return fmt.Errorf("%w: status %s", ErrCannotReschedule, a.Status)
			}

			// 5.2. По записи еще нет сеанса
			sess, err := uc.sessions.GetByAppointmentID(txCtx, a.ID)
			switch {
			case err == nil:
				uc.logger.Warn("RescheduleAppointment: id=%d has session id=%d", a.ID, sess.ID)
				return ErrSessionStarted
			case domain.KindOf(err) != domain.KindNotFound:
				return fmt.Errorf("RescheduleAppointment - find session: %w", err)
			}

			// 5.3. Одна активная запись пациента на новую дату
			if !a.Date.Equal(date) {
				existing, err := uc.appointmentRepo.ListActiveByPatientAndDate(txCtx, a.PatientID, date)
				if err != nil {
					return fmt.Errorf("RescheduleAppointment - list patient appointments: %w", err)
				}
				for _, other := range existing {
					if other.ID != a.ID {
						return ErrPatientAlreadyBooked
					}
				}
			}

			// 5.4. Вместимость нового интервала без учета самой записи
			check, err := uc.slots.IsSlotAvailable(txCtx, a.CenterID, date, rng, a.ID)
			if err != nil {
				return fmt.Errorf("RescheduleAppointment - check capacity: %w", err)
			}
			if !check.IsAvailable {
				uc.logger.Warn("RescheduleAppointment: slot %s not available, %d/%d machines booked",
					rng, check.BookedCount, check.TotalMachines)
				return ErrSlotNotAvailable
			}

			// 5.5. Назначения аппаратов на старый интервал больше не действуют
			released, err := uc.machines.ReleaseForAppointment(txCtx, a.ID, domain.AssignmentCancelled)
			if err != nil {
				return fmt.Errorf("RescheduleAppointment - release machines: %w", err)
			}

			// 5.6. Переносим
			if err := uc.appointmentRepo.Reschedule(txCtx, a.ID, date, rng, reason); err != nil {
				if errors.Is(err, appointmentRepo.ErrPatientDateTaken) {
					return ErrPatientAlreadyBooked
				}
				uc.logger.Error("RescheduleAppointment: failed to update id=%d: %v", a.ID, err)
				return fmt.Errorf("RescheduleAppointment - update appointment: %w", err)
			}

			updated, err := uc.appointmentRepo.GetByID(txCtx, a.ID)
			if err != nil {
				return fmt.Errorf("RescheduleAppointment - get updated appointment: %w", err)
			}

			result = &Response{
				Appointment:       updated,
				ReleasedMachines:  released,
				AvailableMachines: check.AvailableMachines - 1,
			}
			return nil
		})
	})
	if errors.Is(err, locker.ErrLockNotAcquired) {
		uc.logger.Warn("RescheduleAppointment: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrResourceBusy, err)
	}
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveDomainEvent("appointments", "rescheduled")
	uc.logger.Info("RescheduleAppointment: id=%d moved to %s %s, revision=%d",
		result.Appointment.ID, date.Format(domain.DateFormat), rng, result.Appointment.Revision)
	return result, nil
}

func trimReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	r := strings.TrimSpace(*reason)
	if r == "" {
		return nil
	}
	return &r
}
