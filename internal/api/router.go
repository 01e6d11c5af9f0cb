// Package api HTTP маршрутизация сервиса
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	appointmentsHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/appointments"
	assignmentsHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/assignments"
	capacityHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/capacity"
	inventoryHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/inventory"
	sessionsHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/sessions"
	"github.com/m04kA/SMC-DialysisService/internal/api/middleware"
)

// Handlers набор обработчиков
type Handlers struct {
	Capacity     *capacityHandler.Handler
	Appointments *appointmentsHandler.Handler
	Assignments  *assignmentsHandler.Handler
	Sessions     *sessionsHandler.Handler
	Inventory    *inventoryHandler.Handler
}

// Options необязательные части роутера
type Options struct {
	// Metrics получатель HTTP метрик; nil - без метрик
	Metrics middleware.HTTPObserver
	// MetricsPath путь Prometheus endpoint; пустой - не публикуется
	MetricsPath    string
	MetricsHandler http.Handler
}

// NewRouter собирает маршруты /api/v1
func NewRouter(h Handlers, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
	}
	if opts.MetricsPath != "" && opts.MetricsHandler != nil {
		r.Handle(opts.MetricsPath, opts.MetricsHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Календарь вместимости центра
	api.HandleFunc("/centers/{centerId}/availability", h.Capacity.GetAvailability).Methods(http.MethodGet)
	api.HandleFunc("/centers/{centerId}/slot-check", h.Capacity.CheckSlot).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", h.Appointments.Book).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", h.Appointments.Get).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", h.Appointments.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", h.Appointments.Reschedule).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", h.Appointments.UpdateStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", h.Appointments.Cancel).Methods(http.MethodPatch)
	protected.HandleFunc("/centers/{centerId}/appointments", h.Appointments.ListByCenter).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{patientId}/appointments", h.Appointments.ListByPatient).Methods(http.MethodGet)

	// --- Аппараты ---
	protected.HandleFunc("/assignments", h.Assignments.Assign).Methods(http.MethodPost)
	protected.HandleFunc("/assignments/{assignmentId}/release", h.Assignments.Release).Methods(http.MethodPatch)
	protected.HandleFunc("/assets/{assetId}/assignments", h.Assignments.ListByAsset).Methods(http.MethodGet)
	protected.HandleFunc("/assets/{assetId}/availability", h.Assignments.CheckAvailability).Methods(http.MethodGet)

	// --- Сеансы ---
	protected.HandleFunc("/sessions", h.Sessions.Create).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{sessionId}", h.Sessions.Get).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{sessionId}/machine", h.Sessions.AssignMachine).Methods(http.MethodPut)
	protected.HandleFunc("/sessions/{sessionId}/start", h.Sessions.Start).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{sessionId}/complete", h.Sessions.Complete).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{sessionId}/terminate", h.Sessions.Terminate).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{sessionId}/complications", h.Sessions.ReportComplication).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{sessionId}/notes", h.Sessions.RecordNotes).Methods(http.MethodPost)
	protected.HandleFunc("/centers/{centerId}/sessions", h.Sessions.ListByCenter).Methods(http.MethodGet)

	// --- Расходные материалы ---
	protected.HandleFunc("/sessions/{sessionId}/selections", h.Inventory.AddSelection).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{sessionId}/selections", h.Inventory.ListSelections).Methods(http.MethodGet)
	protected.HandleFunc("/inventory/batches", h.Inventory.AddStock).Methods(http.MethodPost)
	protected.HandleFunc("/inventory/items/{itemId}/units", h.Inventory.ListSelectableUnits).Methods(http.MethodGet)
	protected.HandleFunc("/inventory/units/{unitId}/discard", h.Inventory.DiscardDirect).Methods(http.MethodPost)
	protected.HandleFunc("/inventory/units/{unitId}/discard-requests", h.Inventory.RequestDiscard).Methods(http.MethodPost)
	protected.HandleFunc("/inventory/discard-requests/{requestId}/review", h.Inventory.ReviewDiscard).Methods(http.MethodPost)
	protected.HandleFunc("/centers/{centerId}/discard-requests", h.Inventory.ListPendingDiscards).Methods(http.MethodGet)

	return r
}
