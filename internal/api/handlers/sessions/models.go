package sessions

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/appointments/models"
	"github.com/m04kA/SMC-DialysisService/internal/service/sessions"
)

// CreateRequest HTTP request model
type CreateRequest struct {
	AppointmentID int64   `json:"appointmentId"`
	PreNotes      *string `json:"preNotes,omitempty"`
}

// AssignMachineRequest HTTP request model
type AssignMachineRequest struct {
	AssetID int64 `json:"assetId"`
}

// CompleteRequest HTTP request model
type CompleteRequest struct {
	PostNotes *string `json:"postNotes,omitempty"`
}

// TerminateRequest HTTP request model
type TerminateRequest struct {
	Reason string `json:"reason"`
}

// ComplicationRequest HTTP request model
type ComplicationRequest struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// NoteRequest одна запись наблюдения
type NoteRequest struct {
	NoteTypeID int64  `json:"noteTypeId"`
	Content    string `json:"content"`
}

// NotesRequest HTTP request model
type NotesRequest struct {
	Notes []NoteRequest `json:"notes"`
}

// SessionResponse HTTP response model
type SessionResponse struct {
	ID                int64      `json:"id"`
	AppointmentID     int64      `json:"appointmentId"`
	PatientID         int64      `json:"patientId"`
	CenterID          int64      `json:"centerId"`
	AssetID           *int64     `json:"assetId,omitempty"`
	AssignmentID      *int64     `json:"assignmentId,omitempty"`
	SessionDate       string     `json:"sessionDate"`
	ScheduledStart    string     `json:"scheduledStart"`
	ScheduledEnd      string     `json:"scheduledEnd"`
	ActualStart       *time.Time `json:"actualStart,omitempty"`
	ActualEnd         *time.Time `json:"actualEnd,omitempty"`
	Status            string     `json:"status"`
	PreNotes          *string    `json:"preNotes,omitempty"`
	PostNotes         *string    `json:"postNotes,omitempty"`
	TerminationReason *string    `json:"terminationReason,omitempty"`
	StartedBy         *int64     `json:"startedBy,omitempty"`
	CompletedBy       *int64     `json:"completedBy,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// NoteResponse HTTP response model
type NoteResponse struct {
	ID         int64     `json:"id"`
	NoteTypeID int64     `json:"noteTypeId"`
	Content    string    `json:"content"`
	RecordedBy int64     `json:"recordedBy"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ComplicationResponse HTTP response model
type ComplicationResponse struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"sessionId"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	ReportedBy  int64     `json:"reportedBy"`
	ReportedAt  time.Time `json:"reportedAt"`
}

// SelectionResponse HTTP response model
type SelectionResponse struct {
	ID            int64      `json:"id"`
	ItemID        int64      `json:"itemId"`
	UnitID        *int64     `json:"unitId,omitempty"`
	BatchID       int64      `json:"batchId"`
	Quantity      int        `json:"quantity"`
	UsageSequence int        `json:"usageSequence"`
	ConsumedAt    *time.Time `json:"consumedAt,omitempty"`
}

// SessionViewResponse сеанс с журналом
type SessionViewResponse struct {
	SessionResponse
	ElapsedMinutes  *int                   `json:"elapsedMinutes,omitempty"`
	DurationMinutes *int                   `json:"durationMinutes,omitempty"`
	Notes           []NoteResponse         `json:"notes"`
	Complications   []ComplicationResponse `json:"complications"`
	Selections      []SelectionResponse    `json:"selections"`
}

// CompleteResponse HTTP response model
type CompleteResponse struct {
	Session     SessionResponse             `json:"session"`
	CycleNotice *models.CycleNoticeResponse `json:"cycleNotice,omitempty"`
}

// SessionListResponse HTTP response model
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

// FromDomainSession конвертирует сеанс в HTTP ответ
func FromDomainSession(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		ID:                s.ID,
		AppointmentID:     s.AppointmentID,
		PatientID:         s.PatientID,
		CenterID:          s.CenterID,
		AssetID:           s.AssetID,
		AssignmentID:      s.AssignmentID,
		SessionDate:       s.SessionDate.Format(domain.DateFormat),
		ScheduledStart:    s.Scheduled.Start().String(),
		ScheduledEnd:      s.Scheduled.End().String(),
		ActualStart:       s.ActualStart,
		ActualEnd:         s.ActualEnd,
		Status:            string(s.Status),
		PreNotes:          s.PreNotes,
		PostNotes:         s.PostNotes,
		TerminationReason: s.TerminationReason,
		StartedBy:         s.StartedBy,
		CompletedBy:       s.CompletedBy,
		CreatedAt:         s.CreatedAt,
	}
}

// FromDomainNotes конвертирует записи наблюдений
func FromDomainNotes(notes []*domain.SessionNote) []NoteResponse {
	out := make([]NoteResponse, len(notes))
	for i, n := range notes {
		out[i] = NoteResponse{
			ID:         n.ID,
			NoteTypeID: n.NoteTypeID,
			Content:    n.Content,
			RecordedBy: n.RecordedBy,
			RecordedAt: n.RecordedAt,
		}
	}
	return out
}

// FromDomainComplication конвертирует осложнение
func FromDomainComplication(c *domain.Complication) *ComplicationResponse {
	return &ComplicationResponse{
		ID:          c.ID,
		SessionID:   c.SessionID,
		Description: c.Description,
		Severity:    string(c.Severity),
		ReportedBy:  c.ReportedBy,
		ReportedAt:  c.ReportedAt,
	}
}

// FromSessionView конвертирует представление сеанса
func FromSessionView(v *sessions.SessionView) *SessionViewResponse {
	complications := make([]ComplicationResponse, len(v.Complications))
	for i, c := range v.Complications {
		complications[i] = *FromDomainComplication(c)
	}
	selections := make([]SelectionResponse, len(v.Selections))
	for i, s := range v.Selections {
		selections[i] = SelectionResponse{
			ID:            s.ID,
			ItemID:        s.ItemID,
			UnitID:        s.UnitID,
			BatchID:       s.BatchID,
			Quantity:      s.Quantity,
			UsageSequence: s.UsageSequence,
			ConsumedAt:    s.ConsumedAt,
		}
	}

	return &SessionViewResponse{
		SessionResponse: *FromDomainSession(v.Session),
		ElapsedMinutes:  v.ElapsedMinutes,
		DurationMinutes: v.DurationMinutes,
		Notes:           FromDomainNotes(v.Notes),
		Complications:   complications,
		Selections:      selections,
	}
}

// FromCompleteResult конвертирует результат завершения
func FromCompleteResult(r *sessions.CompleteResult) *CompleteResponse {
	return &CompleteResponse{
		Session:     *FromDomainSession(r.Session),
		CycleNotice: models.FromDomainCycleNotice(r.CycleNotice),
	}
}

// FromDomainSessionList конвертирует список сеансов
func FromDomainSessionList(list []*domain.Session) *SessionListResponse {
	out := make([]SessionResponse, len(list))
	for i, s := range list {
		out[i] = *FromDomainSession(s)
	}
	return &SessionListResponse{Sessions: out, Total: len(out)}
}
