package appointment

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment.repository: appointment not found", domain.ErrNotFound)

	// ErrPatientDateTaken возвращается, если у пациента уже есть неотмененная запись на эту дату
	ErrPatientDateTaken = fmt.Errorf("%w: appointment.repository: patient already has an appointment on this date", domain.ErrAlreadyExists)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = fmt.Errorf("%w: appointment.repository: failed to build query", domain.ErrDatabase)

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = fmt.Errorf("%w: appointment.repository: failed to execute query", domain.ErrDatabase)

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = fmt.Errorf("%w: appointment.repository: failed to scan row", domain.ErrDatabase)
)
