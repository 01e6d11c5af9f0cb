package center

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrCenterNotFound возвращается, когда центр не найден
	ErrCenterNotFound = fmt.Errorf("%w: center.repository: center not found", domain.ErrNotFound)

	// ErrAssetNotFound возвращается, когда аппарат не найден
	ErrAssetNotFound = fmt.Errorf("%w: center.repository: asset not found", domain.ErrNotFound)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("%w: center.repository: failed to build query", domain.ErrDatabase)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("%w: center.repository: failed to execute query", domain.ErrDatabase)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("%w: center.repository: failed to scan row", domain.ErrDatabase)

	// ErrInvalidConfig возвращается, если в БД хранится некорректное окно работы центра
	ErrInvalidConfig = fmt.Errorf("%w: center.repository: invalid center config", domain.ErrValidation)
)
