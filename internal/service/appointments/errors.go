package appointments

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	ErrInvalidTransition = fmt.Errorf("%w: appointment status transition not allowed", domain.ErrValidation)

	// ErrCannotCancel возвращается, когда запись не может быть отменена
	ErrCannotCancel = fmt.Errorf("%w: only scheduled appointments can be cancelled", domain.ErrValidation)

	// ErrManagedBySession возвращается при ручной смене статуса записи, у которой есть сеанс лечения
	ErrManagedBySession = fmt.Errorf("%w: appointment has a treatment session, its status follows the session", domain.ErrValidation)

	// ErrHasDependents возвращается при удалении записи, на которую ссылаются сеанс или назначение
	ErrHasDependents = fmt.Errorf("%w: appointment is referenced by a session or machine assignment", domain.ErrValidation)

	// ErrResourceBusy возвращается, если не удалось дождаться блокировки ресурса
	ErrResourceBusy = fmt.Errorf("%w: resource is being modified concurrently", domain.ErrConflict)
)
