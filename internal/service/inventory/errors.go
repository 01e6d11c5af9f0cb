package inventory

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrSessionNotEditable возвращается, если материалы выбирают для уже начатого сеанса
	ErrSessionNotEditable = fmt.Errorf("%w: inventory can only be selected before the session starts", domain.ErrValidation)

	// ErrDuplicateSelection возвращается при повторном выборе позиции в сеансе
	ErrDuplicateSelection = fmt.Errorf("%w: item already selected for this session", domain.ErrAlreadyExists)

	// ErrUnitRequired возвращается, если для учитываемой поштучно позиции не указана единица
	ErrUnitRequired = fmt.Errorf("%w: individually tracked item requires a unit", domain.ErrValidation)

	// ErrBatchRequired возвращается, если для расходной позиции не указана партия
	ErrBatchRequired = fmt.Errorf("%w: bulk item requires a stock batch", domain.ErrValidation)

	// ErrItemMismatch возвращается, если единица или партия относятся к другой позиции или центру
	ErrItemMismatch = fmt.Errorf("%w: unit or batch does not match the item and center", domain.ErrValidation)

	// ErrUnitNotSelectable возвращается, если единица недоступна или исчерпала ресурс
	ErrUnitNotSelectable = fmt.Errorf("%w: unit is not available or reached max usage", domain.ErrValidation)

	// ErrInsufficientQuantity возвращается, если в партии недостаточно свободного остатка
	ErrInsufficientQuantity = fmt.Errorf("%w: quantity exceeds available batch quantity", domain.ErrValidation)

	// ErrUnitDiscarded возвращается при любой операции над списанной единицей
	ErrUnitDiscarded = fmt.Errorf("%w: unit is already discarded", domain.ErrValidation)

	// ErrUnitInUse возвращается, если единица зарезервирована сеансом
	ErrUnitInUse = fmt.Errorf("%w: unit is reserved for a session", domain.ErrValidation)

	// ErrDiscardPending возвращается, если по единице уже есть необработанная заявка
	ErrDiscardPending = fmt.Errorf("%w: discard request already pending for unit", domain.ErrValidation)

	// ErrApprovalRequired возвращается при раннем списании позиции, требующей согласования
	ErrApprovalRequired = fmt.Errorf("%w: early discard requires approval, submit a discard request", domain.ErrValidation)

	// ErrOveruseApprovalRequired возвращается при списании выработанной единицы, если позиция требует согласования перерасхода
	ErrOveruseApprovalRequired = fmt.Errorf("%w: overused unit requires approval, submit an overuse request", domain.ErrValidation)

	// ErrNotOverused возвращается при заявке на перерасход для единицы, не достигшей максимума использований
	ErrNotOverused = fmt.Errorf("%w: unit has not reached max usage", domain.ErrValidation)

	// ErrRequestResolved возвращается при повторной обработке заявки
	ErrRequestResolved = fmt.Errorf("%w: discard request already resolved", domain.ErrValidation)

	// ErrResourceBusy возвращается, если не удалось дождаться блокировки ресурса
	ErrResourceBusy = fmt.Errorf("%w: resource is being modified concurrently", domain.ErrConflict)
)
