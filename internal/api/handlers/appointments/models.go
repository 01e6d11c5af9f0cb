package appointments

import (
	"github.com/m04kA/SMC-DialysisService/internal/api/handlers"
	"github.com/m04kA/SMC-DialysisService/internal/service/appointments/models"
	bookAppointment "github.com/m04kA/SMC-DialysisService/internal/usecase/book_appointment"
	rescheduleAppointment "github.com/m04kA/SMC-DialysisService/internal/usecase/reschedule_appointment"
)

// BookRequest HTTP request model
type BookRequest struct {
	PatientID int64  `json:"patientId"`
	CenterID  int64  `json:"centerId"`
	Date      string `json:"date"`      // "2025-10-15"
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "14:00"
}

// BookResponse HTTP response model
type BookResponse struct {
	Appointment       models.AppointmentResponse `json:"appointment"`
	AvailableMachines int                        `json:"availableMachines"`
}

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date             string  `json:"date"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	Reason           *string `json:"reason,omitempty"`
	ExpectedRevision *int    `json:"expectedRevision,omitempty"`
}

// RescheduleResponse HTTP response model
type RescheduleResponse struct {
	Appointment       models.AppointmentResponse `json:"appointment"`
	ReleasedMachines  int                        `json:"releasedMachines"`
	AvailableMachines int                        `json:"availableMachines"`
}

// StatusRequest HTTP request model
type StatusRequest struct {
	Status string `json:"status"`
}

// CancelRequest HTTP request model
type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookRequest) ToUseCaseRequest(userID int64) (*bookAppointment.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}
	return &bookAppointment.Request{
		PatientID: r.PatientID,
		CenterID:  r.CenterID,
		Date:      date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		CreatedBy: userID,
	}, nil
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(appointmentID, userID int64) (*rescheduleAppointment.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}
	return &rescheduleAppointment.Request{
		AppointmentID:    appointmentID,
		Date:             date,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Reason:           r.Reason,
		ExpectedRevision: r.ExpectedRevision,
		UpdatedBy:        userID,
	}, nil
}

// FromBookResponse конвертирует ответ use case в HTTP response
func FromBookResponse(resp *bookAppointment.Response) *BookResponse {
	return &BookResponse{
		Appointment:       *models.FromDomainAppointment(resp.Appointment),
		AvailableMachines: resp.AvailableMachines,
	}
}

// FromRescheduleResponse конвертирует ответ use case в HTTP response
func FromRescheduleResponse(resp *rescheduleAppointment.Response) *RescheduleResponse {
	return &RescheduleResponse{
		Appointment:       *models.FromDomainAppointment(resp.Appointment),
		ReleasedMachines:  resp.ReleasedMachines,
		AvailableMachines: resp.AvailableMachines,
	}
}
