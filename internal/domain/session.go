package domain

import (
	"fmt"
	"time"
)

// SessionStatus state of a treatment session
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionTerminated SessionStatus = "terminated"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionNotStarted: {SessionInProgress},
	SessionInProgress: {SessionCompleted, SessionTerminated},
}

// Valid reports whether s is a known status
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionNotStarted, SessionInProgress, SessionCompleted, SessionTerminated:
		return true
	}
	return false
}

// IsTerminal no transition leaves completed or terminated
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionTerminated
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseSessionStatus converts a string into a status
func ParseSessionStatus(s string) (SessionStatus, error) {
	status := SessionStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown session status %q", ErrValidation, s)
	}
	return status, nil
}

// Session dialysis treatment session, one per appointment
type Session struct {
	ID            int64
	AppointmentID int64
	PatientID     int64
	CenterID      int64
	AssetID       *int64
	AssignmentID  *int64
	SessionDate   time.Time
	Scheduled     TimeRange
	ActualStart   *time.Time
	ActualEnd     *time.Time
	Status        SessionStatus

	PreNotes          *string
	PostNotes         *string
	TerminationReason *string

	CreatedBy   int64
	StartedBy   *int64
	CompletedBy *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMachine reports whether a machine is assigned
func (s *Session) HasMachine() bool {
	return s.AssetID != nil && s.AssignmentID != nil
}

// ElapsedMinutes minutes since the actual start while in progress
func (s *Session) ElapsedMinutes(now time.Time) *int {
	if s.Status != SessionInProgress || s.ActualStart == nil {
		return nil
	}
	m := int(now.Sub(*s.ActualStart).Minutes())
	return &m
}

// DurationMinutes final duration once the session is terminal
func (s *Session) DurationMinutes() *int {
	if !s.Status.IsTerminal() || s.ActualStart == nil || s.ActualEnd == nil {
		return nil
	}
	m := int(s.ActualEnd.Sub(*s.ActualStart).Minutes())
	return &m
}

// NoteType observation catalog entry
type NoteType struct {
	ID          int64
	Code        string
	Name        string
	IsMandatory bool
}

// SessionNote recorded observation
type SessionNote struct {
	ID         int64
	SessionID  int64
	NoteTypeID int64
	Content    string
	RecordedBy int64
	RecordedAt time.Time
}

// NoteInput one note of a bulk add
type NoteInput struct {
	NoteTypeID int64
	Content    string
}

// ComplicationSeverity severity of an intradialytic complication
type ComplicationSeverity string

const (
	SeverityLow      ComplicationSeverity = "low"
	SeverityMedium   ComplicationSeverity = "medium"
	SeverityHigh     ComplicationSeverity = "high"
	SeverityCritical ComplicationSeverity = "critical"
)

// ParseComplicationSeverity converts a string into a severity
func ParseComplicationSeverity(s string) (ComplicationSeverity, error) {
	switch sev := ComplicationSeverity(s); sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, nil
	}
	return "", fmt.Errorf("%w: unknown complication severity %q", ErrValidation, s)
}

// Complication reported during an in-progress session
type Complication struct {
	ID          int64
	SessionID   int64
	Description string
	Severity    ComplicationSeverity
	ReportedBy  int64
	ReportedAt  time.Time
}
