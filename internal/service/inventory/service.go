package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

const metricsComponent = "inventory"

// Service учет расходных материалов: поступление, резерв на сеанс, расход и списание
type Service struct {
	inventoryRepo InventoryRepository
	sessionRepo   SessionRepository
	centerRepo    CenterRepository
	txManager     TransactionManager
	locker        Locker
	metrics       MetricsRecorder
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	inventoryRepo InventoryRepository,
	sessionRepo SessionRepository,
	centerRepo CenterRepository,
	txManager TransactionManager,
	locker Locker,
	metrics MetricsRecorder,
	logger Logger,
) *Service {
	return &Service{
		inventoryRepo: inventoryRepo,
		sessionRepo:   sessionRepo,
		centerRepo:    centerRepo,
		txManager:     txManager,
		locker:        locker,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// UnitLockKey ключ блокировки единицы
func UnitLockKey(unitID int64) string {
	return locker.Key("unit", unitID)
}

// SessionLockKey ключ блокировки сеанса
func SessionLockKey(sessionID int64) string {
	return locker.Key("session", sessionID)
}

func (s *Service) withLock(ctx context.Context, op string, keys []string, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, keys, fn)
	if errors.Is(err, locker.ErrLockNotAcquired) {
		s.logger.Warn("%s: %v", op, err)
		return fmt.Errorf("%w: %v", ErrResourceBusy, err)
	}
	return err
}
