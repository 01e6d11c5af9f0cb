package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID    int64     // ID записи
	Date             time.Time // Новая дата
	StartTime        string    // Новое начало, "HH:MM"
	EndTime          string    // Новый конец, "HH:MM"
	Reason           *string   // Причина переноса (опционально)
	ExpectedRevision *int      // Ревизия, которую видел клиент (опционально)
	UpdatedBy        int64
}

// Response модель ответа с перенесенной записью
type Response struct {
	Appointment       *domain.Appointment
	ReleasedMachines  int // Сколько назначений аппаратов снято со старого интервала
	AvailableMachines int // Свободно аппаратов на новом интервале после переноса
}
