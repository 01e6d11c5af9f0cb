package patientservice

import "time"

// Patient модель пациента из реестра
type Patient struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

// CycleProgress счетчик курса лечения после инкремента
type CycleProgress struct {
	PatientID         int64     `json:"patient_id"`
	CompletedSessions int       `json:"completed_sessions"`
	CycleStartedAt    time.Time `json:"cycle_started_at"`
}

// ErrorResponse модель ошибки от реестра
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
