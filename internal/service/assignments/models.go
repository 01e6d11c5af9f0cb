package assignments

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// AssignRequest запрос на назначение аппарата
type AssignRequest struct {
	AssetID       int64
	AppointmentID int64
	SessionID     *int64
	Date          time.Time
	Range         domain.TimeRange
	CreatedBy     int64
}
