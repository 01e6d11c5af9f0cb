package sessions

import (
	"net/http"

	"github.com/m04kA/SMC-DialysisService/internal/api/handlers"
	"github.com/m04kA/SMC-DialysisService/internal/api/middleware"
	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/sessions"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSessionID   = "некорректный ID сеанса"
	msgInvalidCenterID    = "некорректный ID центра"
	msgInvalidDate        = "некорректная дата, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	service SessionService
	logger  Logger
}

func NewHandler(service SessionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// sessionRequest общий разбор: пользователь из контекста, ID сеанса из пути, тело (если dst != nil)
func (h *Handler) sessionRequest(w http.ResponseWriter, r *http.Request, dst any) (sessionID, userID int64, ok bool) {
	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}
	sessionID, err := handlers.PathInt64(r, "sessionId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return 0, 0, false
	}
	if dst != nil {
		if err := handlers.DecodeJSON(r, dst); err != nil {
			h.logger.Warn("%s %s - Invalid request body: %v", r.Method, r.URL.Path, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return 0, 0, false
		}
	}
	return sessionID, userID, true
}

// Create POST /api/v1/sessions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	sess, err := h.service.Create(r.Context(), &sessions.CreateRequest{
		AppointmentID: req.AppointmentID,
		PreNotes:      req.PreNotes,
		CreatedBy:     userID,
	})
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions", err)
		return
	}

	h.logger.Info("POST /sessions - Session created: id=%d, appointment_id=%d", sess.ID, sess.AppointmentID)
	handlers.RespondJSON(w, http.StatusCreated, FromDomainSession(sess))
}

// Get GET /api/v1/sessions/{sessionId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "sessionId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	view, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handlers.Fail(w, h.logger, "GET /sessions/{id}", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromSessionView(view))
}

// ListByCenter GET /api/v1/centers/{centerId}/sessions?date=YYYY-MM-DD
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
		handlers.Fail(w, h.logger, "GET /centers/{id}/sessions", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomainSessionList(list))
}

// AssignMachine PUT /api/v1/sessions/{sessionId}/machine
func (h *Handler) AssignMachine(w http.ResponseWriter, r *http.Request) {
	var req AssignMachineRequest
	sessionID, userID, ok := h.sessionRequest(w, r, &req)
	if !ok {
		return
	}

	sess, err := h.service.AssignMachine(r.Context(), sessionID, req.AssetID, userID)
	if err != nil {
		handlers.Fail(w, h.logger, "PUT /sessions/{id}/machine", err)
		return
	}

	h.logger.Info("PUT /sessions/{id}/machine - Machine assigned: session_id=%d, asset_id=%d", sessionID, req.AssetID)
	handlers.RespondJSON(w, http.StatusOK, FromDomainSession(sess))
}

// Start POST /api/v1/sessions/{sessionId}/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r, nil)
	if !ok {
		return
	}

	sess, err := h.service.Start(r.Context(), sessionID, userID)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions/{id}/start", err)
		return
	}

	h.logger.Info("POST /sessions/{id}/start - Session started: id=%d, user_id=%d", sessionID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromDomainSession(sess))
}

// Complete POST /api/v1/sessions/{sessionId}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	var body any
	if r.ContentLength != 0 {
		body = &req
	}
	sessionID, userID, ok := h.sessionRequest(w, r, body)
	if !ok {
		return
	}

	result, err := h.service.Complete(r.Context(), sessionID, req.PostNotes, userID)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions/{id}/complete", err)
		return
	}

	h.logger.Info("POST /sessions/{id}/complete - Session completed: id=%d, user_id=%d", sessionID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromCompleteResult(result))
}

// Terminate POST /api/v1/sessions/{sessionId}/terminate
func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	var req TerminateRequest
	sessionID, userID, ok := h.sessionRequest(w, r, &req)
	if !ok {
		return
	}

	sess, err := h.service.Terminate(r.Context(), sessionID, req.Reason, userID)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions/{id}/terminate", err)
		return
	}

	h.logger.Info("POST /sessions/{id}/terminate - Session terminated: id=%d, user_id=%d", sessionID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromDomainSession(sess))
}

// ReportComplication POST /api/v1/sessions/{sessionId}/complications
func (h *Handler) ReportComplication(w http.ResponseWriter, r *http.Request) {
	var req ComplicationRequest
	sessionID, userID, ok := h.sessionRequest(w, r, &req)
	if !ok {
		return
	}

	severity, err := domain.ParseComplicationSeverity(req.Severity)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions/{id}/complications", err)
		return
	}

	complication, err := h.service.ReportComplication(r.Context(), &sessions.ComplicationRequest{
		SessionID:   sessionID,
		Description: req.Description,
		Severity:    severity,
		ReportedBy:  userID,
	})
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions/{id}/complications", err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, FromDomainComplication(complication))
}

// RecordNotes POST /api/v1/sessions/{sessionId}/notes
func (h *Handler) RecordNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	sessionID, userID, ok := h.sessionRequest(w, r, &req)
	if !ok {
		return
	}

	inputs := make([]domain.NoteInput, len(req.Notes))
	for i, n := range req.Notes {
		inputs[i] = domain.NoteInput{NoteTypeID: n.NoteTypeID, Content: n.Content}
	}

	notes, err := h.service.RecordNotes(r.Context(), sessionID, inputs, userID)
	if err != nil {
		handlers.Fail(w, h.logger, "POST /sessions/{id}/notes", err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, FromDomainNotes(notes))
}
