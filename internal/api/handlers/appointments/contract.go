package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/service/appointments/models"
	bookAppointment "github.com/m04kA/SMC-DialysisService/internal/usecase/book_appointment"
	rescheduleAppointment "github.com/m04kA/SMC-DialysisService/internal/usecase/reschedule_appointment"
)

type BookAppointmentUseCase interface {
	Execute(ctx context.Context, req *bookAppointment.Request) (*bookAppointment.Response, error)
}

type RescheduleAppointmentUseCase interface {
	Execute(ctx context.Context, req *rescheduleAppointment.Request) (*rescheduleAppointment.Response, error)
}

type AppointmentService interface {
	GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error)
	ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) (*models.AppointmentListResponse, error)
	ListByPatient(ctx context.Context, req *models.ListByPatientRequest) (*models.AppointmentListResponse, error)
	UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.StatusUpdateResponse, error)
	Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.AppointmentResponse, error)
	Delete(ctx context.Context, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
