package sessions

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrAppointmentCancelled возвращается при создании сеанса для отмененной записи
	ErrAppointmentCancelled = fmt.Errorf("%w: cannot create a session for a cancelled appointment", domain.ErrValidation)

	// ErrSessionExists возвращается при повторном создании сеанса для записи
	ErrSessionExists = fmt.Errorf("%w: session already exists for this appointment", domain.ErrAlreadyExists)

	// ErrInvalidTransition возвращается, если текущий статус сеанса не допускает операцию
	ErrInvalidTransition = fmt.Errorf("%w: session status does not allow this operation", domain.ErrValidation)

	// ErrSessionClosed возвращается при записи наблюдений в завершенный сеанс
	ErrSessionClosed = fmt.Errorf("%w: session is already completed or terminated", domain.ErrValidation)

	// ErrMachineRequired возвращается при старте сеанса без аппарата
	ErrMachineRequired = fmt.Errorf("%w: machine not assigned", domain.ErrValidation)

	// ErrMachineReleased возвращается, если назначение аппарата сеанса уже не активно
	ErrMachineReleased = fmt.Errorf("%w: machine assignment is no longer active", domain.ErrValidation)

	// ErrAppointmentNotScheduled возвращается при старте сеанса, запись которого не в статусе scheduled
	ErrAppointmentNotScheduled = fmt.Errorf("%w: appointment is not scheduled", domain.ErrValidation)

	// ErrAppointmentStatusConflict возвращается, если статус записи не допускает завершение сеанса
	ErrAppointmentStatusConflict = fmt.Errorf("%w: appointment status does not allow finishing the session", domain.ErrValidation)

	// ErrAssetWrongCenter возвращается, если аппарат принадлежит другому центру
	ErrAssetWrongCenter = fmt.Errorf("%w: machine belongs to another center", domain.ErrValidation)

	// ErrInventoryRequired возвращается при старте сеанса без выбранных материалов
	ErrInventoryRequired = fmt.Errorf("%w: at least one inventory item must be selected", domain.ErrValidation)

	// ErrMandatoryInventoryMissing возвращается, если не выбраны обязательные материалы
	ErrMandatoryInventoryMissing = fmt.Errorf("%w: mandatory inventory items not selected", domain.ErrValidation)

	// ErrMandatoryNotesMissing возвращается, если не записаны обязательные наблюдения
	ErrMandatoryNotesMissing = fmt.Errorf("%w: mandatory notes not recorded", domain.ErrValidation)

	// ErrReasonRequired возвращается при прерывании сеанса без причины
	ErrReasonRequired = fmt.Errorf("%w: termination reason is required", domain.ErrValidation)

	// ErrResourceBusy возвращается, если не удалось дождаться блокировки ресурса
	ErrResourceBusy = fmt.Errorf("%w: resource is being modified concurrently", domain.ErrConflict)
)
