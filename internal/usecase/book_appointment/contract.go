package book_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/integrations/patientservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	ListActiveByPatientAndDate(ctx context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error)
}

// CenterRepository интерфейс реестра центров
type CenterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Center, error)
}

// PatientRegistry интерфейс клиента реестра пациентов
type PatientRegistry interface {
	GetPatient(ctx context.Context, patientID int64) (*patientservice.Patient, error)
}

// SlotChecker проверка вместимости произвольного интервала
type SlotChecker interface {
	IsSlotAvailable(ctx context.Context, centerID int64, date time.Time, rng domain.TimeRange, excludeAppointmentID int64) (*domain.SlotCheck, error)
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
