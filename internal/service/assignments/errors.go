package assignments

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrAssetNotAvailable возвращается, если аппарат занят в пересекающемся интервале
	ErrAssetNotAvailable = fmt.Errorf("%w: asset not available", domain.ErrValidation)

	// ErrAssetInactive возвращается для выведенного из эксплуатации аппарата
	ErrAssetInactive = fmt.Errorf("%w: asset is inactive", domain.ErrValidation)

	// ErrInvalidReleaseStatus возвращается, если назначение пытаются завершить не в completed/cancelled
	ErrInvalidReleaseStatus = fmt.Errorf("%w: assignment can only be released as completed or cancelled", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrResourceBusy возвращается, если не удалось дождаться блокировки ресурса
	ErrResourceBusy = fmt.Errorf("%w: asset is being assigned concurrently", domain.ErrConflict)
)
