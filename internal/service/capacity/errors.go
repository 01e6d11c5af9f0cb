package capacity

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrNoCapacity возвращается, если в центре нет ни одного активного аппарата
	ErrNoCapacity = fmt.Errorf("%w: no capacity: center has no active machines", domain.ErrValidation)

	// ErrCenterInactive возвращается для неактивного центра
	ErrCenterInactive = fmt.Errorf("%w: center is inactive", domain.ErrValidation)
)
