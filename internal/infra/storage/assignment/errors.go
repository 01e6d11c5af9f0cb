package assignment

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrAssignmentNotFound возвращается, когда назначение аппарата не найдено
	ErrAssignmentNotFound = fmt.Errorf("%w: assignment.repository: assignment not found", domain.ErrNotFound)

	// ErrAssignmentOverlap возвращается, если активное назначение пересекается с другим на том же аппарате
	ErrAssignmentOverlap = fmt.Errorf("%w: assignment.repository: asset already assigned in this range", domain.ErrValidation)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("%w: assignment.repository: failed to build query", domain.ErrDatabase)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("%w: assignment.repository: failed to execute query", domain.ErrDatabase)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("%w: assignment.repository: failed to scan row", domain.ErrDatabase)
)
