package assignments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// AssetRepository интерфейс реестра аппаратов
type AssetRepository interface {
	GetAsset(ctx context.Context, id int64) (*domain.Asset, error)
}

// AssignmentRepository интерфейс репозитория назначений
type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.AssetAssignment) (*domain.AssetAssignment, error)
	GetByID(ctx context.Context, id int64) (*domain.AssetAssignment, error)
	ListActiveByAsset(ctx context.Context, assetID int64, date time.Time) ([]*domain.AssetAssignment, error)
	ListActiveByAppointment(ctx context.Context, appointmentID int64) ([]*domain.AssetAssignment, error)
	Release(ctx context.Context, id int64, status domain.AssignmentStatus) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
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

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
