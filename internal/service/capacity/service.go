package capacity

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// Service календарь загрузки центра: слоты и свободные аппараты
type Service struct {
	centerRepo      CenterRepository
	appointmentRepo AppointmentRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса
func NewService(centerRepo CenterRepository, appointmentRepo AppointmentRepository, logger Logger) *Service {
	return &Service{
		centerRepo:      centerRepo,
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// ComputeAvailability строит слоты центра на дату
// Занятость слота - число неотмененных записей ровно на этот диапазон
func (s *Service) ComputeAvailability(ctx context.Context, centerID int64, date time.Time) (*domain.Availability, error) {
	date = domain.TruncateDate(date)
	s.logger.Info("ComputeAvailability: center=%d, date=%s", centerID, date.Format(domain.DateFormat))

	center, totalMachines, err := s.loadCenter(ctx, "ComputeAvailability", centerID)
	if err != nil {
		return nil, err
	}
	if totalMachines == 0 {
		s.logger.Warn("ComputeAvailability: center=%d has no active machines", centerID)
		return nil, ErrNoCapacity
	}

	appointments, err := s.appointmentRepo.ListActiveByCenterAndDate(ctx, centerID, date)
	if err != nil {
		s.logger.Error("ComputeAvailability: failed to list appointments: %v", err)
		return nil, fmt.Errorf("ComputeAvailability - list appointments: %w", err)
	}

	booked := make(map[domain.TimeRange]int, len(appointments))
	for _, a := range appointments {
		booked[a.Slot]++
	}

	ranges := center.Config.Slots()
	result := &domain.Availability{
		CenterID:      centerID,
		Date:          date,
		TotalMachines: totalMachines,
		Slots:         make([]domain.AvailableSlot, 0, len(ranges)),
		Available:     make([]domain.AvailableSlot, 0, len(ranges)),
		FullyBooked:   make([]domain.AvailableSlot, 0),
	}

	for _, rng := range ranges {
		slot := domain.AvailableSlot{
			Range:             rng,
			BookedCount:       booked[rng],
			AvailableMachines: max(totalMachines-booked[rng], 0),
			TotalMachines:     totalMachines,
		}
		result.Slots = append(result.Slots, slot)
		if slot.IsAvailable() {
			result.Available = append(result.Available, slot)
		} else {
			result.FullyBooked = append(result.FullyBooked, slot)
		}
	}

	s.logger.Info("ComputeAvailability: center=%d, %d slots, %d available", centerID, len(result.Slots), len(result.Available))
	return result, nil
}

// IsSlotAvailable проверяет произвольный диапазон
// Учитываются записи, пересекающиеся с диапазоном; excludeAppointmentID (0 - нет) не считается
func (s *Service) IsSlotAvailable(ctx context.Context, centerID int64, date time.Time, rng domain.TimeRange, excludeAppointmentID int64) (*domain.SlotCheck, error) {
	date = domain.TruncateDate(date)

	center, totalMachines, err := s.loadCenter(ctx, "IsSlotAvailable", centerID)
	if err != nil {
		return nil, err
	}
	rng = rng.ResolveIn(center.Config.Window())

	appointments, err := s.appointmentRepo.ListActiveByCenterAndDate(ctx, centerID, date)
	if err != nil {
		s.logger.Error("IsSlotAvailable: failed to list appointments: %v", err)
		return nil, fmt.Errorf("IsSlotAvailable - list appointments: %w", err)
	}

	booked := 0
	for _, a := range appointments {
		if a.ID == excludeAppointmentID {
			continue
		}
		if a.Slot.Overlaps(rng) {
			booked++
		}
	}

	available := max(totalMachines-booked, 0)
	return &domain.SlotCheck{
		Range:             rng,
		BookedCount:       booked,
		AvailableMachines: available,
		TotalMachines:     totalMachines,
		IsAvailable:       available > 0,
	}, nil
}

func (s *Service) loadCenter(ctx context.Context, op string, centerID int64) (*domain.Center, int, error) {
	center, err := s.centerRepo.GetByID(ctx, centerID)
	if err != nil {
		s.logger.Warn("%s: center=%d: %v", op, centerID, err)
		return nil, 0, fmt.Errorf("%s - get center: %w", op, err)
	}
	if !center.IsActive {
		return nil, 0, ErrCenterInactive
	}

	total, err := s.centerRepo.CountActiveAssets(ctx, centerID)
	if err != nil {
		s.logger.Error("%s: failed to count machines for center=%d: %v", op, centerID, err)
		return nil, 0, fmt.Errorf("%s - count machines: %w", op, err)
	}

	return center, total, nil
}
