package appointments

import (
	"net/http"

	"github.com/m04kA/SMC-DialysisService/internal/api/handlers"
	"github.com/m04kA/SMC-DialysisService/internal/api/middleware"
	"github.com/m04kA/SMC-DialysisService/internal/service/appointments/models"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректная дата, ожидается YYYY-MM-DD"
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidCenterID      = "некорректный ID центра"
	msgInvalidPatientID     = "некорректный ID пациента"
	msgMissingUserID        = "отсутствует ID пользователя"
)

type Handler struct {
	book       BookAppointmentUseCase
	reschedule RescheduleAppointmentUseCase
	service    AppointmentService
	logger     Logger
}

func NewHandler(
	book BookAppointmentUseCase,
	reschedule RescheduleAppointmentUseCase,
	service AppointmentService,
	logger Logger,
) *Handler {
	return &Handler{
		book:       book,
		reschedule: reschedule,
		service:    service,
		logger:     logger,
	}
}

// Book POST /api/v1/appointments
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BookRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.book.Execute(r.Context(), useCaseReq)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /appointments", err)
		return
	}

	h.logger.Info("POST /appointments - Appointment booked: id=%d, patient_id=%d, center_id=%d",
		result.Appointment.ID, req.PatientID, req.CenterID)
	handlers.RespondJSON(w, http.StatusCreated, FromBookResponse(result))
}

// Get GET /api/v1/appointments/{appointmentId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	appointment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /appointments/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, appointment)
}

// Reschedule PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(id, userID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.reschedule.Execute(r.Context(), useCaseReq)
	if err != nil {
		handlers.Fail(w, h.logger, "PATCH /appointments/{id}/reschedule", err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reschedule - Appointment moved: id=%d, revision=%d",
		id, result.Appointment.Revision)
	handlers.RespondJSON(w, http.StatusOK, FromRescheduleResponse(result))
}

// UpdateStatus PATCH /api/v1/appointments/{appointmentId}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req StatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), id, &models.UpdateStatusRequest{UserID: userID, Status: req.Status})
	if err != nil {
		handlers.Fail(w, h.logger, "PATCH /appointments/{id}/status", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Cancel PATCH /api/v1/appointments/{appointmentId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req CancelRequest
	if r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.service.Cancel(r.Context(), id, &models.CancelRequest{UserID: userID, Reason: req.Reason})
	if err != nil {
		handlers.Fail(w, h.logger, "PATCH /appointments/{id}/cancel", err)
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: id=%d, user_id=%d", id, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/appointments/{appointmentId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handlers.Fail(w, h.logger, "DELETE /appointments/{id}", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByCenter GET /api/v1/centers/{centerId}/appointments?date=YYYY-MM-DD
func (h *Handler) ListByCenter(w http.ResponseWriter, r *http.Request) {
	centerID, err := handlers.PathInt64(r, "centerId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidCenterID)
		return
	}
	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	list, err := h.service.ListByCenterAndDate(r.Context(), centerID, date)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /centers/{id}/appointments", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}

// ListByPatient GET /api/v1/patients/{patientId}/appointments[?status=]
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := handlers.PathInt64(r, "patientId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPatientID)
		return
	}

	req := &models.ListByPatientRequest{PatientID: patientID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	list, err := h.service.ListByPatient(r.Context(), req)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /patients/{id}/appointments", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, list)
}
