package note

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrNoteTypeNotFound возвращается, когда тип наблюдения не найден
	ErrNoteTypeNotFound = fmt.Errorf("%w: note.repository: note type not found", domain.ErrNotFound)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("%w: note.repository: failed to build query", domain.ErrDatabase)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("%w: note.repository: failed to execute query", domain.ErrDatabase)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("%w: note.repository: failed to scan row", domain.ErrDatabase)
)
