package reschedule_appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

// validateRequest валидирует входные данные и возвращает новый интервал
func validateRequest(req *Request) (domain.TimeRange, error) {
	if req.AppointmentID <= 0 {
		return domain.TimeRange{}, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return domain.TimeRange{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.Reason != nil && len(strings.TrimSpace(*req.Reason)) > domain.MaxReasonLength {
		return domain.TimeRange{}, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	rng, err := domain.ParseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return rng, nil
}

// LockKeys ключи блокировки переноса: сама запись, пациент и центр на старую и новую даты
func LockKeys(a *domain.Appointment, newDate time.Time) []string {
	keys := []string{locker.Key("appointment", a.ID)}
	for _, date := range []time.Time{a.Date, newDate} {
		d := date.Format(domain.DateFormat)
		keys = append(keys,
			locker.Key("patient", a.PatientID, d),
			locker.Key("center", a.CenterID, d),
		)
	}
	if a.Date.Equal(newDate) {
		return keys[:3]
	}
	return keys
}
