package assignments

import (
	"net/http"

	"github.com/m04kA/SMC-DialysisService/internal/api/handlers"
	"github.com/m04kA/SMC-DialysisService/internal/api/middleware"
	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/assignments"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidAssetID      = "некорректный ID аппарата"
	msgInvalidAssignmentID = "некорректный ID назначения"
	msgInvalidDate         = "некорректная дата, ожидается YYYY-MM-DD"
	msgInvalidTimeRange    = "некорректный интервал, ожидается start/end в формате HH:MM"
	msgInvalidStatus       = "статус освобождения должен быть completed или cancelled"
	msgMissingUserID       = "отсутствует ID пользователя"
)

type Handler struct {
	service AssignmentService
	logger  Logger
}

func NewHandler(service AssignmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Assign POST /api/v1/assignments
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AssignRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	date, err := handlers.ParseDate(req.Date)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	rng, err := domain.ParseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTimeRange)
		return
	}

	assignment, err := h.service.Assign(r.Context(), &assignments.AssignRequest{
		AssetID:       req.AssetID,
		AppointmentID: req.AppointmentID,
		SessionID:     req.SessionID,
		Date:          date,
		Range:         rng,
		CreatedBy:     userID,
	})
	if err != nil {
		handlers.Fail(w, h.logger, "POST /assignments", err)
		return
	}

	h.logger.Info("POST /assignments - Asset assigned: id=%d, asset_id=%d, appointment_id=%d",
		assignment.ID, assignment.AssetID, assignment.AppointmentID)
	handlers.RespondJSON(w, http.StatusCreated, FromDomainAssignment(assignment))
}

// Release PATCH /api/v1/assignments/{assignmentId}/release
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "assignmentId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAssignmentID)
		return
	}

	var req ReleaseRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	status, err := domain.ParseAssignmentStatus(req.Status)
	if err != nil || status == domain.AssignmentActive {
		handlers.RespondBadRequest(w, msgInvalidStatus)
		return
	}

	if err := h.service.Release(r.Context(), id, status); err != nil {
		handlers.Fail(w, h.logger, "PATCH /assignments/{id}/release", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByAsset GET /api/v1/assets/{assetId}/assignments?date=YYYY-MM-DD
func (h *Handler) ListByAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := handlers.PathInt64(r, "assetId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAssetID)
		return
	}
	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	list, err := h.service.ListActiveByAsset(r.Context(), assetID, date)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /assets/{id}/assignments", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomainAssignmentList(list))
}

// CheckAvailability GET /api/v1/assets/{assetId}/availability?date=&start=&end=
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	assetID, err := handlers.PathInt64(r, "assetId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidAssetID)
		return
	}
	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	q := r.URL.Query()
	rng, err := domain.ParseTimeRange(q.Get("start"), q.Get("end"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTimeRange)
		return
	}

	available, err := h.service.IsAssetAvailable(r.Context(), assetID, date, rng)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /assets/{id}/availability", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, &AvailabilityResponse{
		AssetID:     assetID,
		Date:        date.Format(domain.DateFormat),
		StartTime:   rng.Start().String(),
		EndTime:     rng.End().String(),
		IsAvailable: available,
	})
}
