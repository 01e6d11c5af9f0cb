package inventory

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// InventoryRepository интерфейс репозитория склада
type InventoryRepository interface {
	GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error)

	CreateBatch(ctx context.Context, batch *domain.StockBatch) (*domain.StockBatch, error)
	GetBatch(ctx context.Context, id int64) (*domain.StockBatch, error)
	DecrementBatchAvailable(ctx context.Context, batchID int64, qty int) error

	CreateUnits(ctx context.Context, batch *domain.StockBatch, maxUsage, count int) ([]*domain.IndividualUnit, error)
	GetUnit(ctx context.Context, id int64) (*domain.IndividualUnit, error)
	ListSelectableUnits(ctx context.Context, itemID, centerID int64) ([]domain.IndividualUnit, error)
	UpdateUnitStatus(ctx context.Context, id int64, status domain.UnitStatus) error
	ConsumeUnit(ctx context.Context, id int64) (*domain.IndividualUnit, error)
	CreateUsageEvent(ctx context.Context, event *domain.UnitUsageEvent) (*domain.UnitUsageEvent, error)

	CreateSelection(ctx context.Context, sel *domain.InventorySelection) (*domain.InventorySelection, error)
	ListSelections(ctx context.Context, sessionID int64) ([]*domain.InventorySelection, error)
	MarkSelectionConsumed(ctx context.Context, id int64, usageSequence int, at time.Time) error

	CreateDiscardRequest(ctx context.Context, req *domain.DiscardRequest) (*domain.DiscardRequest, error)
	GetDiscardRequest(ctx context.Context, id int64) (*domain.DiscardRequest, error)
	ResolveDiscardRequest(ctx context.Context, id int64, status domain.DiscardStatus, reviewedBy int64, comments *string, at time.Time) error
	ListPendingDiscards(ctx context.Context, centerID int64) ([]*domain.DiscardRequest, error)
}

// SessionRepository интерфейс репозитория сеансов
type SessionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
}

// CenterRepository интерфейс реестра центров
type CenterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Center, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker распределенные блокировки по ключам ресурсов
type Locker interface {
	WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// MetricsRecorder счетчики доменных событий
type MetricsRecorder interface {
	ObserveDomainEvent(component, event string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
