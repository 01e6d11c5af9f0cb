package session

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrSessionNotFound возвращается, когда сеанс не найден
	ErrSessionNotFound = fmt.Errorf("%w: session.repository: session not found", domain.ErrNotFound)

	// ErrSessionExists возвращается при попытке создать второй сеанс для записи
	ErrSessionExists = fmt.Errorf("%w: session.repository: session already exists for appointment", domain.ErrAlreadyExists)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("%w: session.repository: failed to build query", domain.ErrDatabase)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("%w: session.repository: failed to execute query", domain.ErrDatabase)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("%w: session.repository: failed to scan row", domain.ErrDatabase)
)
