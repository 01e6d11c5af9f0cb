package sessions

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/assignments"
)

// SessionRepository интерфейс репозитория сеансов
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Session, error)
	SetMachine(ctx context.Context, id, assetID, assignmentID int64) error
	MarkStarted(ctx context.Context, id int64, startedAt time.Time, startedBy int64) error
	MarkFinished(ctx context.Context, s *domain.Session) error
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
}

// AssetRepository интерфейс реестра аппаратов
type AssetRepository interface {
	GetAsset(ctx context.Context, id int64) (*domain.Asset, error)
}

// NoteRepository интерфейс журнала наблюдений
type NoteRepository interface {
	GetNoteType(ctx context.Context, id int64) (*domain.NoteType, error)
	MissingMandatoryNoteTypes(ctx context.Context, sessionID int64) ([]*domain.NoteType, error)
	CreateNotes(ctx context.Context, notes []*domain.SessionNote) error
	ListNotes(ctx context.Context, sessionID int64) ([]*domain.SessionNote, error)
	CreateComplication(ctx context.Context, c *domain.Complication) (*domain.Complication, error)
	ListComplications(ctx context.Context, sessionID int64) ([]*domain.Complication, error)
}

// ItemCatalog справочник расходных материалов
type ItemCatalog interface {
	ListMandatoryItems(ctx context.Context) ([]*domain.InventoryItem, error)
}

// MachineTracker учет назначений аппаратов
type MachineTracker interface {
	Assign(ctx context.Context, req *assignments.AssignRequest) (*domain.AssetAssignment, error)
	GetByID(ctx context.Context, id int64) (*domain.AssetAssignment, error)
	Release(ctx context.Context, assignmentID int64, status domain.AssignmentStatus) error
}

// InventoryLedger выбор и расход материалов сеанса
type InventoryLedger interface {
	ListSelections(ctx context.Context, sessionID int64) ([]*domain.InventorySelection, error)
	FinalizeConsumption(ctx context.Context, sessionID int64) error
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
