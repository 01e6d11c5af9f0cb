package inventory

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-DialysisService/internal/api/handlers"
	"github.com/m04kA/SMC-DialysisService/internal/api/middleware"
	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/inventory"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidExpiryDate  = "некорректный срок годности, ожидается YYYY-MM-DD"
	msgInvalidItemID      = "некорректный ID позиции"
	msgInvalidCenterID    = "некорректный ID центра"
	msgInvalidSessionID   = "некорректный ID сеанса"
	msgInvalidUnitID      = "некорректный ID единицы"
	msgInvalidRequestID   = "некорректный ID заявки"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	service InventoryService
	logger  Logger
}

func NewHandler(service InventoryService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// AddStock POST /api/v1/inventory/batches
func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AddStockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	serviceReq, err := req.ToServiceRequest(userID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidExpiryDate)
		return
	}

	result, err := h.service.AddStock(r.Context(), serviceReq)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /inventory/batches", err)
		return
	}

	h.logger.Info("POST /inventory/batches - Stock added: batch_id=%d, item_id=%d, units=%d",
		result.Batch.ID, req.ItemID, len(result.Units))
	handlers.RespondJSON(w, http.StatusCreated, FromAddStockResult(result))
}

// ListSelectableUnits GET /api/v1/inventory/items/{itemId}/units?centerId=
func (h *Handler) ListSelectableUnits(w http.ResponseWriter, r *http.Request) {
	itemID, err := handlers.PathInt64(r, "itemId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidItemID)
		return
	}
	centerID, err := strconv.ParseInt(r.URL.Query().Get("centerId"), 10, 64)
	if err != nil || centerID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidCenterID)
		return
	}

	units, err := h.service.ListSelectableUnits(r.Context(), itemID, centerID)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /inventory/items/{id}/units", err)
		return
	}

	out := make([]UnitResponse, len(units))
	for i := range units {
		out[i] = FromDomainUnit(&units[i])
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}

// AddSelection POST /api/v1/sessions/{sessionId}/selections
func (h *Handler) AddSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	sessionID, err := handlers.PathInt64(r, "sessionId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	var req SelectionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	selection, err := h.service.AddSelection(r.Context(), &inventory.SelectionRequest{
		SessionID:  sessionID,
		ItemID:     req.ItemID,
		UnitID:     req.UnitID,
		BatchID:    req.BatchID,
		Quantity:   req.Quantity,
		Condition:  req.Condition,
		SelectedBy: userID,
	})
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions/{id}/selections", err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, FromDomainSelection(selection))
}

// ListSelections GET /api/v1/sessions/{sessionId}/selections
func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	sessionID, err := handlers.PathInt64(r, "sessionId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	selections, err := h.service.ListSelections(r.Context(), sessionID)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /sessions/{id}/selections", err)
		return
	}

	out := make([]SelectionResponse, len(selections))
	for i, s := range selections {
		out[i] = FromDomainSelection(s)
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}

// DiscardDirect POST /api/v1/inventory/units/{unitId}/discard
func (h *Handler) DiscardDirect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	unitID, err := handlers.PathInt64(r, "unitId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidUnitID)
		return
	}

	unit, err := h.service.DiscardDirect(r.Context(), unitID, userID)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /inventory/units/{id}/discard", err)
		return
	}

	h.logger.Info("POST /inventory/units/{id}/discard - Unit discarded: unit_id=%d, user_id=%d", unitID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromDomainUnit(unit))
}

// RequestDiscard POST /api/v1/inventory/units/{unitId}/discard-requests
func (h *Handler) RequestDiscard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	unitID, err := handlers.PathInt64(r, "unitId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidUnitID)
		return
	}

	var req DiscardRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	discardType, err := domain.ParseDiscardType(req.Type)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /inventory/units/{id}/discard-requests", err)
		return
	}

	request, err := h.service.RequestDiscard(r.Context(), &inventory.DiscardRequestInput{
		UnitID:      unitID,
		Type:        discardType,
		Reason:      req.Reason,
		RequestedBy: userID,
	})
	if err != nil {
		handlers.Fail(w, h.logger, "POST /inventory/units/{id}/discard-requests", err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, FromDomainDiscard(request))
}

// ReviewDiscard POST /api/v1/inventory/discard-requests/{requestId}/review
func (h *Handler) ReviewDiscard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	requestID, err := handlers.PathInt64(r, "requestId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	var req ReviewRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ReviewDiscard(r.Context(), requestID, req.Approve, userID, req.Comments)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /inventory/discard-requests/{id}/review", err)
		return
	}

	h.logger.Info("POST /inventory/discard-requests/{id}/review - Request resolved: id=%d, status=%s",
		requestID, result.Request.Status)
	handlers.RespondJSON(w, http.StatusOK, &ReviewResponse{
		Request: FromDomainDiscard(result.Request),
		Unit:    FromDomainUnit(result.Unit),
	})
}

// ListPendingDiscards GET /api/v1/centers/{centerId}/discard-requests
func (h *Handler) ListPendingDiscards(w http.ResponseWriter, r *http.Request) {
	centerID, err := handlers.PathInt64(r, "centerId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidCenterID)
		return
	}

	requests, err := h.service.ListPendingDiscards(r.Context(), centerID)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /centers/{id}/discard-requests", err)
		return
	}

	out := make([]DiscardResponse, len(requests))
	for i, d := range requests {
		out[i] = FromDomainDiscard(d)
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}
