package capacity

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-DialysisService/internal/api/handlers"
	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

const (
	msgInvalidCenterID  = "некорректный ID центра"
	msgInvalidDate      = "некорректная дата, ожидается YYYY-MM-DD"
	msgInvalidTimeRange = "некорректный интервал, ожидается start/end в формате HH:MM"
	msgInvalidExclude   = "некорректный excludeAppointmentId"
)

type Handler struct {
	service CapacityService
	logger  Logger
}

func NewHandler(service CapacityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GetAvailability GET /api/v1/centers/{centerId}/availability?date=YYYY-MM-DD
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
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

	availability, err := h.service.ComputeAvailability(r.Context(), centerID, date)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /centers/{id}/availability", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomainAvailability(availability))
}

// CheckSlot GET /api/v1/centers/{centerId}/slot-check?date=&start=&end=[&excludeAppointmentId=]
func (h *Handler) CheckSlot(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	rng, err := domain.ParseTimeRange(q.Get("start"), q.Get("end"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTimeRange)
		return
	}

	var exclude int64
	if raw := q.Get("excludeAppointmentId"); raw != "" {
		exclude, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || exclude < 0 {
			handlers.RespondBadRequest(w, msgInvalidExclude)
			return
		}
	}

	check, err := h.service.IsSlotAvailable(r.Context(), centerID, date, rng, exclude)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /centers/{id}/slot-check", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomainSlotCheck(check))
}
