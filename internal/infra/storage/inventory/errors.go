package inventory

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrItemNotFound возвращается, когда позиция каталога не найдена
	ErrItemNotFound = fmt.Errorf("%w: inventory.repository: item not found", domain.ErrNotFound)

	// ErrBatchNotFound возвращается, когда партия не найдена
	ErrBatchNotFound = fmt.Errorf("%w: inventory.repository: stock batch not found", domain.ErrNotFound)

	// ErrUnitNotFound возвращается, когда единица не найдена
	ErrUnitNotFound = fmt.Errorf("%w: inventory.repository: unit not found", domain.ErrNotFound)

	// ErrDiscardRequestNotFound возвращается, когда заявка на списание не найдена
	ErrDiscardRequestNotFound = fmt.Errorf("%w: inventory.repository: discard request not found", domain.ErrNotFound)

	// ErrInsufficientQuantity возвращается, если в партии недостаточно свободного остатка
	ErrInsufficientQuantity = fmt.Errorf("%w: inventory.repository: insufficient available quantity", domain.ErrValidation)

	// ErrDuplicateSelection возвращается при повторном выборе позиции в сеансе
	ErrDuplicateSelection = fmt.Errorf("%w: inventory.repository: item already selected for session", domain.ErrAlreadyExists)

	// ErrPendingRequestExists возвращается, если по единице уже есть необработанная заявка
	ErrPendingRequestExists = fmt.Errorf("%w: inventory.repository: discard request already pending", domain.ErrValidation)

	// ErrUnitsNotCreated возвращается, если создано меньше единиц, чем в партии
	ErrUnitsNotCreated = fmt.Errorf("%w: inventory.repository: individual units not created", domain.ErrDatabase)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("%w: inventory.repository: failed to build query", domain.ErrDatabase)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("%w: inventory.repository: failed to execute query", domain.ErrDatabase)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("%w: inventory.repository: failed to scan row", domain.ErrDatabase)
)
