package assignments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	assignmentRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/assignment"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

const metricsComponent = "assignments"

// Service учет занятости аппаратов
// Проверка пересечений идет по индексу (asset_id, assigned_date), а не по списку сеансов
type Service struct {
	assetRepo      AssetRepository
	assignmentRepo AssignmentRepository
	txManager      TransactionManager
	locker         Locker
	metrics        MetricsRecorder
	logger         Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	assetRepo AssetRepository,
	assignmentRepo AssignmentRepository,
	txManager TransactionManager,
	locker Locker,
	metrics MetricsRecorder,
	logger Logger,
) *Service {
	return &Service{
		assetRepo:      assetRepo,
		assignmentRepo: assignmentRepo,
		txManager:      txManager,
		locker:         locker,
		metrics:        metrics,
		logger:         logger,
	}
}

// LockKey ключ блокировки аппарата на дату
func LockKey(assetID int64, date time.Time) string {
	return locker.Key("asset", assetID, date.Format(domain.DateFormat))
}

// IsAssetAvailable проверяет, свободен ли аппарат в диапазоне
func (s *Service) IsAssetAvailable(ctx context.Context, assetID int64, date time.Time, rng domain.TimeRange) (bool, error) {
	active, err := s.assignmentRepo.ListActiveByAsset(ctx, assetID, domain.TruncateDate(date))
	if err != nil {
		s.logger.Error("IsAssetAvailable: failed to list assignments for asset=%d: %v", assetID, err)
		return false, fmt.Errorf("IsAssetAvailable - list assignments: %w", err)
	}

	for _, a := range active {
		if a.Range().Overlaps(rng) {
			return false, nil
		}
	}
	return true, nil
}

// Assign создает активное назначение аппарата
// Под блокировкой asset:{id}:{date}: проигравший гонку получает ErrAssetNotAvailable
func (s *Service) Assign(ctx context.Context, req *AssignRequest) (*domain.AssetAssignment, error) {
	s.logger.Info("Assign: asset=%d, appointment=%d, date=%s, range=%s",
		req.AssetID, req.AppointmentID, req.Date.Format(domain.DateFormat), req.Range)

	// 1. Валидация входных данных
	if req.AssetID <= 0 || req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: asset and appointment are required", ErrInvalidInput)
	}
	if _, err := domain.NewTimeRange(req.Range.StartMinute, req.Range.EndMinute); err != nil {
		return nil, err
	}
	date := domain.TruncateDate(req.Date)

	// 2. Аппарат существует и активен
	asset, err := s.assetRepo.GetAsset(ctx, req.AssetID)
	if err != nil {
		s.logger.Warn("Assign: asset=%d: %v", req.AssetID, err)
		return nil, fmt.Errorf("Assign - get asset: %w", err)
	}
	if !asset.IsActive {
		s.logger.Warn("Assign: asset=%d is inactive", req.AssetID)
		return nil, ErrAssetInactive
	}

	var result *domain.AssetAssignment

	// 3. Проверка пересечений и запись под блокировкой в сериализуемой транзакции
	err = s.withLock(ctx, []string{LockKey(req.AssetID, date)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			available, err := s.IsAssetAvailable(txCtx, req.AssetID, date, req.Range)
			if err != nil {
				return err
			}
			if !available {
				s.logger.Warn("Assign: asset=%d busy on %s %s", req.AssetID, date.Format(domain.DateFormat), req.Range)
				return ErrAssetNotAvailable
			}

			created, err := s.assignmentRepo.Create(txCtx, &domain.AssetAssignment{
				AssetID:         req.AssetID,
				AppointmentID:   req.AppointmentID,
				SessionID:       req.SessionID,
				Date:            date,
				StartMinute:     req.Range.StartMinute,
				DurationMinutes: req.Range.Duration(),
				Status:          domain.AssignmentActive,
				CreatedBy:       req.CreatedBy,
			})
			if err != nil {
				// exclusion constraint в БД срабатывает, если пересечение появилось в обход блокировки
				if errors.Is(err, assignmentRepo.ErrAssignmentOverlap) {
					return fmt.Errorf("%w: %v", ErrAssetNotAvailable, err)
				}
				s.logger.Error("Assign: failed to create assignment: %v", err)
				return fmt.Errorf("Assign - create assignment: %w", err)
			}

			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "assigned")
	s.logger.Info("Assign: created assignment id=%d for asset=%d", result.ID, result.AssetID)
	return result, nil
}

// Release завершает назначение со статусом completed или cancelled
// Повторное освобождение уже завершенного назначения - не ошибка
func (s *Service) Release(ctx context.Context, assignmentID int64, status domain.AssignmentStatus) error {
	if status != domain.AssignmentCompleted && status != domain.AssignmentCancelled {
		return ErrInvalidReleaseStatus
	}

	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		assignment, err := s.assignmentRepo.GetByID(txCtx, assignmentID)
		if err != nil {
			return fmt.Errorf("Release - get assignment: %w", err)
		}

		released, err := s.assignmentRepo.Release(txCtx, assignment.ID, status)
		if err != nil {
			s.logger.Error("Release: failed to release assignment id=%d: %v", assignmentID, err)
			return fmt.Errorf("Release - update assignment: %w", err)
		}

		if !released {
			s.logger.Info("Release: assignment id=%d already %s", assignmentID, assignment.Status)
			return nil
		}

		s.metrics.ObserveDomainEvent(metricsComponent, "released_"+string(status))
		s.logger.Info("Release: assignment id=%d -> %s", assignmentID, status)
		return nil
	})
}

// ReleaseForAppointment отменяет все активные назначения записи, возвращает их количество
func (s *Service) ReleaseForAppointment(ctx context.Context, appointmentID int64, status domain.AssignmentStatus) (int, error) {
	active, err := s.assignmentRepo.ListActiveByAppointment(ctx, appointmentID)
	if err != nil {
		return 0, fmt.Errorf("ReleaseForAppointment - list assignments: %w", err)
	}

	for _, a := range active {
		if err := s.Release(ctx, a.ID, status); err != nil {
			return 0, err
		}
	}
	return len(active), nil
}

// GetByID получает назначение по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.AssetAssignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID - get assignment: %w", err)
	}
	return a, nil
}

// ListActiveByAsset активные назначения аппарата на дату
func (s *Service) ListActiveByAsset(ctx context.Context, assetID int64, date time.Time) ([]*domain.AssetAssignment, error) {
	if _, err := s.assetRepo.GetAsset(ctx, assetID); err != nil {
		return nil, fmt.Errorf("ListActiveByAsset - get asset: %w", err)
	}

	active, err := s.assignmentRepo.ListActiveByAsset(ctx, assetID, domain.TruncateDate(date))
	if err != nil {
		return nil, fmt.Errorf("ListActiveByAsset - list assignments: %w", err)
	}
	return active, nil
}

func (s *Service) withLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, keys, fn)
	if errors.Is(err, locker.ErrLockNotAcquired) {
		s.logger.Warn("lock not acquired: %v", err)
		return fmt.Errorf("%w: %v", ErrResourceBusy, err)
	}
	return err
}
