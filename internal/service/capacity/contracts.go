package capacity

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// CenterRepository интерфейс реестра центров
type CenterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Center, error)
	CountActiveAssets(ctx context.Context, centerID int64) (int, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListActiveByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Appointment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
