package book_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

// validateRequest валидирует входные данные и возвращает интервал
func validateRequest(req *Request) (domain.TimeRange, error) {
	if req.PatientID <= 0 {
		return domain.TimeRange{}, fmt.Errorf("%w: patientID must be positive", ErrInvalidInput)
	}
	if req.CenterID <= 0 {
		return domain.TimeRange{}, fmt.Errorf("%w: centerID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return domain.TimeRange{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	rng, err := domain.ParseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return rng, nil
}

// LockKeys ключи блокировки записи пациента в центре на дату
func LockKeys(patientID, centerID int64, date string) []string {
	return []string{
		locker.Key("patient", patientID, date),
		locker.Key("center", centerID, date),
	}
}
