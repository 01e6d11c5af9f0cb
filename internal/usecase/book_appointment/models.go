package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// Request модель запроса на запись
type Request struct {
	PatientID int64     // ID пациента в реестре
	CenterID  int64     // ID центра
	Date      time.Time // Дата сеанса (без времени)
	StartTime string    // Начало, "HH:MM"; часы 24-47 - следующие сутки
	EndTime   string    // Конец, "HH:MM"
	CreatedBy int64     // Кто записал
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment       *domain.Appointment
	AvailableMachines int // Свободно аппаратов на интервале после записи
}
