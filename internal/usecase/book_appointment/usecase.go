package book_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

// UseCase use case записи пациента на сеанс
type UseCase struct {
	appointmentRepo AppointmentRepository
	centerRepo      CenterRepository
	patients        PatientRegistry
	slots           SlotChecker
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
	patients PatientRegistry,
	slots SlotChecker,
	txManager TransactionManager,
	locker Locker,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		centerRepo:      centerRepo,
		patients:        patients,
		slots:           slots,
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

// Execute выполняет use case записи
// Проверка вместимости и вставка идут под блокировками пациента и центра в сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: patient=%d, center=%d, date=%s, time=%s-%s",
		req.PatientID, req.CenterID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	rng, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}
	date := domain.TruncateDate(req.Date)

	// 2. Дата не в прошлом
	if domain.IsDateInPast(date, uc.timeProvider.Now()) {
		uc.logger.Warn("BookAppointment: date %s is in the past", date.Format(domain.DateFormat))
		return nil, ErrDateInPast
	}

	// 3. Центр
	center, err := uc.centerRepo.GetByID(ctx, req.CenterID)
	if err != nil {
		uc.logger.Warn("BookAppointment: center id=%d: %v", req.CenterID, err)
		return nil, fmt.Errorf("BookAppointment - get center: %w", err)
	}
	if !center.IsActive {
		return nil, ErrCenterInactive
	}

	// 4. Пациент в реестре
	patient, err := uc.patients.GetPatient(ctx, req.PatientID)
	if err != nil {
		uc.logger.Warn("BookAppointment: patient id=%d: %v", req.PatientID, err)
		return nil, fmt.Errorf("BookAppointment - get patient: %w", err)
	}
	if !patient.IsActive {
		return nil, ErrPatientInactive
	}

	// 5. Интервал в часах работы центра
	rng = rng.ResolveIn(center.Config.Window())
	if !rng.Within(center.Config.Window()) {
		uc.logger.Warn("BookAppointment: %s outside window %s", rng, center.Config.Window())
		return nil, ErrOutsideWorkingHours
	}

	var result *Response
	keys := LockKeys(req.PatientID, req.CenterID, date.Format(domain.DateFormat))

	// 6. Под блокировками в сериализуемой транзакции
	err = uc.locker.WithLock(ctx, keys, func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 6.1. Одна активная запись пациента на дату
			existing, err := uc.appointmentRepo.ListActiveByPatientAndDate(txCtx, req.PatientID, date)
			if err != nil {
				return fmt.Errorf("BookAppointment - list patient appointments: %w", err)
			}
			if len(existing) > 0 {
				uc.logger.Warn("BookAppointment: patient=%d already booked id=%d on %s",
					req.PatientID, existing[0].ID, date.Format(domain.DateFormat))
				return ErrPatientAlreadyBooked
			}

			// 6.2. Вместимость интервала (записи блокируются FOR UPDATE)
			check, err := uc.slots.IsSlotAvailable(txCtx, req.CenterID, date, rng, 0)
			if err != nil {
				return fmt.Errorf("BookAppointment - check capacity: %w", err)
			}
			if !check.IsAvailable {
				uc.logger.Warn("BookAppointment: slot %s not available, %d/%d machines booked",
					rng, check.BookedCount, check.TotalMachines)
				return ErrSlotNotAvailable
			}

			// 6.3. Создаем запись
			created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
				PatientID: req.PatientID,
				CenterID:  center.ID,
				CompanyID: center.CompanyID,
				Date:      date,
				Slot:      rng,
				Status:    domain.AppointmentScheduled,
				CreatedBy: req.CreatedBy,
			})
			if err != nil {
				// частичный уникальный индекс пациент/дата
				if errors.Is(err, appointmentRepo.ErrPatientDateTaken) {
					return ErrPatientAlreadyBooked
				}
				uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
				return fmt.Errorf("BookAppointment - create appointment: %w", err)
			}

			result = &Response{Appointment: created, AvailableMachines: check.AvailableMachines - 1}
			return nil
		})
	})
	if errors.Is(err, locker.ErrLockNotAcquired) {
		uc.logger.Warn("BookAppointment: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrResourceBusy, err)
	}
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveDomainEvent("appointments", "booked")
	uc.logger.Info("BookAppointment: created appointment id=%d", result.Appointment.ID)
	return result, nil
}
