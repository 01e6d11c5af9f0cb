package sessions

import "github.com/m04kA/SMC-DialysisService/internal/domain"

// CreateRequest создание сеанса по записи
type CreateRequest struct {
	AppointmentID int64
	PreNotes      *string
	CreatedBy     int64
}

// ComplicationRequest осложнение во время сеанса
type ComplicationRequest struct {
	SessionID   int64
	Description string
	Severity    domain.ComplicationSeverity
	ReportedBy  int64
}

// CompleteResult завершенный сеанс и уведомление о курсе лечения (если счетчик доступен)
type CompleteResult struct {
	Session     *domain.Session
	CycleNotice *domain.CycleNotice
}

// SessionView сеанс с производными полями и журналом
type SessionView struct {
	Session         *domain.Session
	ElapsedMinutes  *int
	DurationMinutes *int
	Notes           []*domain.SessionNote
	Complications   []*domain.Complication
	Selections      []*domain.InventorySelection
}
