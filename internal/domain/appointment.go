package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentTerminated AppointmentStatus = "terminated"
)

// Valid reports whether s is a known status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentInProgress, AppointmentCompleted, AppointmentCancelled, AppointmentTerminated:
		return true
	}
	return false
}

// IsTerminal completed, cancelled and terminated appointments never change again
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled || s == AppointmentTerminated
}

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled:  {AppointmentInProgress, AppointmentCompleted, AppointmentCancelled, AppointmentTerminated},
	AppointmentInProgress: {AppointmentCompleted, AppointmentTerminated},
}

// CanTransitionTo reports whether s -> next is allowed; terminal statuses have no exits
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseAppointmentStatus converts a string into a status
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown appointment status %q", ErrValidation, s)
	}
	return status, nil
}

// Appointment a booked treatment slot of a patient at a center
type Appointment struct {
	ID        int64
	PatientID int64
	CenterID  int64
	CompanyID int64
	Date      time.Time
	Slot      TimeRange
	Status    AppointmentStatus
	Revision  int

	RescheduleReason   *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive cancelled appointments release their slot
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentCancelled
}

// CanBeCancelled only scheduled appointments can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == AppointmentScheduled
}

// CanBeRescheduled only scheduled appointments can be moved
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == AppointmentScheduled
}

// InactiveAppointmentStatuses statuses that do not occupy capacity
var InactiveAppointmentStatuses = []AppointmentStatus{AppointmentCancelled}

// TruncateDate drops the time of day
func TruncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsDateInPast reports whether date is before the calendar day of now
func IsDateInPast(date, now time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(n)
}
