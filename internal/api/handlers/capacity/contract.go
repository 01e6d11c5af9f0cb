package capacity

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

type CapacityService interface {
	ComputeAvailability(ctx context.Context, centerID int64, date time.Time) (*domain.Availability, error)
	IsSlotAvailable(ctx context.Context, centerID int64, date time.Time, rng domain.TimeRange, excludeAppointmentID int64) (*domain.SlotCheck, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
