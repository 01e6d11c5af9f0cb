package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id int64, reason *string) error
	HasSession(ctx context.Context, id int64) (bool, error)
	HasDependents(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// CenterRepository интерфейс реестра центров
type CenterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Center, error)
}

// MachineReleaser освобождение аппаратов записи
type MachineReleaser interface {
	ReleaseForAppointment(ctx context.Context, appointmentID int64, status domain.AssignmentStatus) (int, error)
}

// CycleRecorder счетчик курса лечения пациента
type CycleRecorder interface {
	RecordCompletion(ctx context.Context, patientID int64) (*domain.CycleNotice, error)
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
