package domain

import (
	"fmt"
	"time"
)

// AssignmentStatus status of a machine assignment
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s AssignmentStatus) Valid() bool {
	return s == AssignmentActive || s == AssignmentCompleted || s == AssignmentCancelled
}

// IsTerminal completed and cancelled assignments no longer hold the machine
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

// ParseAssignmentStatus converts a string into a status
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	status := AssignmentStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown assignment status %q", ErrValidation, s)
	}
	return status, nil
}

// AssetAssignment exclusive binding of a machine to an appointment time range
type AssetAssignment struct {
	ID              int64
	AssetID         int64
	AppointmentID   int64
	SessionID       *int64
	Date            time.Time
	StartMinute     int
	DurationMinutes int
	Status          AssignmentStatus
	CreatedBy       int64
	ReleasedAt      *time.Time
	CreatedAt       time.Time
}

// Range occupied time range
func (a *AssetAssignment) Range() TimeRange {
	return TimeRange{StartMinute: a.StartMinute, EndMinute: a.StartMinute + a.DurationMinutes}
}
