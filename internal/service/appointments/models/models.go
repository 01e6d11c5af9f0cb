package models

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// Request модели

// UpdateStatusRequest запрос на смену статуса записи
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// CancelRequest запрос на отмену записи
type CancelRequest struct {
	UserID int64   `json:"userId"`
	Reason *string `json:"reason,omitempty"`
}

// ListByPatientRequest запрос истории записей пациента
type ListByPatientRequest struct {
	PatientID int64   `json:"patientId"`
	Status    *string `json:"status,omitempty"`
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID                 int64      `json:"id"`
	PatientID          int64      `json:"patientId"`
	CenterID           int64      `json:"centerId"`
	CompanyID          int64      `json:"companyId"`
	Date               string     `json:"date"`      // "2025-10-15"
	StartTime          string     `json:"startTime"` // "10:00"
	EndTime            string     `json:"endTime"`   // "14:00"
	DurationMinutes    int        `json:"durationMinutes"`
	Status             string     `json:"status"`
	Revision           int        `json:"revision"`
	RescheduleReason   *string    `json:"rescheduleReason,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedBy          int64      `json:"createdBy"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// AppointmentListResponse список записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// CycleNoticeResponse уведомление о курсе лечения
type CycleNoticeResponse struct {
	CompletedSessions int  `json:"completedSessions"`
	SessionsPerCycle  int  `json:"sessionsPerCycle"`
	RemainingSessions int  `json:"remainingSessions"`
	CycleComplete     bool `json:"cycleComplete"`
}

// StatusUpdateResponse запись после смены статуса
type StatusUpdateResponse struct {
	Appointment AppointmentResponse  `json:"appointment"`
	CycleNotice *CycleNoticeResponse `json:"cycleNotice,omitempty"`
}

// Конвертеры

// FromDomainAppointment конвертирует domain.Appointment в AppointmentResponse
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                 a.ID,
		PatientID:          a.PatientID,
		CenterID:           a.CenterID,
		CompanyID:          a.CompanyID,
		Date:               a.Date.Format(domain.DateFormat),
		StartTime:          a.Slot.Start().String(),
		EndTime:            a.Slot.End().String(),
		DurationMinutes:    a.Slot.Duration(),
		Status:             string(a.Status),
		Revision:           a.Revision,
		RescheduleReason:   a.RescheduleReason,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		CreatedBy:          a.CreatedBy,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список записей
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	out := make([]AppointmentResponse, len(list))
	for i, a := range list {
		out[i] = *FromDomainAppointment(a)
	}
	return &AppointmentListResponse{Appointments: out, Total: len(out)}
}

// FromDomainCycleNotice nil, если уведомления нет
func FromDomainCycleNotice(n *domain.CycleNotice) *CycleNoticeResponse {
	if n == nil {
		return nil
	}
	return &CycleNoticeResponse{
		CompletedSessions: n.CompletedSessions,
		SessionsPerCycle:  n.SessionsPerCycle,
		RemainingSessions: n.RemainingSessions,
		CycleComplete:     n.CycleComplete,
	}
}
