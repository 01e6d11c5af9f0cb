package book_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: book_appointment: invalid input data", domain.ErrValidation)

	// ErrDateInPast возвращается при записи на прошедшую дату
	ErrDateInPast = fmt.Errorf("%w: book_appointment: date is in the past", domain.ErrValidation)

	// ErrCenterInactive возвращается для неактивного центра
	ErrCenterInactive = fmt.Errorf("%w: book_appointment: center is inactive", domain.ErrValidation)

	// ErrPatientInactive возвращается, если пациент деактивирован в реестре
	ErrPatientInactive = fmt.Errorf("%w: book_appointment: patient is inactive", domain.ErrValidation)

	// ErrOutsideWorkingHours возвращается, если интервал выходит за часы работы центра
	ErrOutsideWorkingHours = fmt.Errorf("%w: book_appointment: time range is outside center working hours", domain.ErrValidation)

	// ErrPatientAlreadyBooked возвращается, если у пациента уже есть запись на эту дату
	ErrPatientAlreadyBooked = fmt.Errorf("%w: book_appointment: patient already has an appointment on this date", domain.ErrValidation)

	// ErrSlotNotAvailable возвращается, когда все аппараты на интервал заняты
	ErrSlotNotAvailable = fmt.Errorf("%w: book_appointment: slot is not available", domain.ErrValidation)

	// ErrResourceBusy возвращается, если не удалось дождаться блокировки
	ErrResourceBusy = fmt.Errorf("%w: book_appointment: resource is being modified concurrently", domain.ErrConflict)
)
