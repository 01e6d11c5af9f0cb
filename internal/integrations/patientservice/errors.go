package patientservice

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrPatientNotFound возвращается, когда пациент не найден в реестре
	ErrPatientNotFound = fmt.Errorf("%w: patientservice client: patient not found", domain.ErrNotFound)

	// ErrInvalidRequest возвращается, если реестр отклонил запрос (400)
	ErrInvalidRequest = fmt.Errorf("%w: patientservice client: invalid request", domain.ErrValidation)

	// ErrUnavailable возвращается при недоступности реестра, таймауте или разомкнутой цепи
	ErrUnavailable = fmt.Errorf("%w: patientservice client: registry unavailable", domain.ErrDatabase)

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = fmt.Errorf("%w: patientservice client: invalid response", domain.ErrDatabase)
)
