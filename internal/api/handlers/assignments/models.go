package assignments

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/pkg/types"
)

// AssignRequest HTTP request model
type AssignRequest struct {
	AssetID       int64  `json:"assetId"`
	AppointmentID int64  `json:"appointmentId"`
	SessionID     *int64 `json:"sessionId,omitempty"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

// ReleaseRequest HTTP request model
type ReleaseRequest struct {
	Status string `json:"status"` // completed | cancelled
}

// AssignmentResponse HTTP response model
type AssignmentResponse struct {
	ID              int64      `json:"id"`
	AssetID         int64      `json:"assetId"`
	AppointmentID   int64      `json:"appointmentId"`
	SessionID       *int64     `json:"sessionId,omitempty"`
	Date            string     `json:"date"`
	StartTime       string     `json:"startTime"`
	DurationMinutes int        `json:"durationMinutes"`
	Status          string     `json:"status"`
	CreatedBy       int64      `json:"createdBy"`
	ReleasedAt      *time.Time `json:"releasedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AssignmentListResponse HTTP response model
type AssignmentListResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	Total       int                  `json:"total"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	AssetID     int64  `json:"assetId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}

// FromDomainAssignment конвертирует назначение в HTTP ответ
func FromDomainAssignment(a *domain.AssetAssignment) *AssignmentResponse {
	return &AssignmentResponse{
		ID:              a.ID,
		AssetID:         a.AssetID,
		AppointmentID:   a.AppointmentID,
		SessionID:       a.SessionID,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       types.FromMinutes(a.StartMinute).String(),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		CreatedBy:       a.CreatedBy,
		ReleasedAt:      a.ReleasedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// FromDomainAssignmentList конвертирует список назначений
func FromDomainAssignmentList(list []*domain.AssetAssignment) *AssignmentListResponse {
	out := make([]AssignmentResponse, len(list))
	for i, a := range list {
		out[i] = *FromDomainAssignment(a)
	}
	return &AssignmentListResponse{Assignments: out, Total: len(out)}
}
