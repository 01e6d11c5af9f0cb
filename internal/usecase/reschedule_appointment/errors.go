package reschedule_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reschedule_appointment: invalid input data", domain.ErrValidation)

	// ErrDateInPast возвращается при переносе на прошедшую дату
	ErrDateInPast = fmt.Errorf("%w: reschedule_appointment: date is in the past", domain.ErrValidation)

	// ErrCannotReschedule возвращается, если запись уже не в статусе scheduled
	ErrCannotReschedule = fmt.Errorf("%w: reschedule_appointment: only scheduled appointments can be rescheduled", domain.ErrValidation)

	// ErrSessionStarted возвращается, если по записи уже открыт сеанс
	ErrSessionStarted = fmt.Errorf("%w: reschedule_appointment: appointment already has a session", domain.ErrValidation)

	// ErrCenterInactive возвращается для неактивного центра
	ErrCenterInactive = fmt.Errorf("%w: reschedule_appointment: center is inactive", domain.ErrValidation)

	// ErrOutsideWorkingHours возвращается, если интервал выходит за часы работы центра
	ErrOutsideWorkingHours = fmt.Errorf("%w: reschedule_appointment: time range is outside center working hours", domain.ErrValidation)

	// ErrPatientAlreadyBooked возвращается, если у пациента уже есть другая запись на новую дату
	ErrPatientAlreadyBooked = fmt.Errorf("%w: reschedule_appointment: patient already has an appointment on this date", domain.ErrValidation)

	// ErrSlotNotAvailable возвращается, когда все аппараты на новый интервал заняты
	ErrSlotNotAvailable = fmt.Errorf("%w: reschedule_appointment: slot is not available", domain.ErrValidation)

	// ErrRevisionMismatch возвращается, если запись изменилась после чтения клиентом
	ErrRevisionMismatch = fmt.Errorf("%w: reschedule_appointment: appointment was modified concurrently", domain.ErrConflict)

	// ErrResourceBusy возвращается, если не удалось дождаться блокировки
	ErrResourceBusy = fmt.Errorf("%w: reschedule_appointment: resource is being modified concurrently", domain.ErrConflict)
)
