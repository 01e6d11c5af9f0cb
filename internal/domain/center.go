package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-DialysisService/pkg/types"
)

// Center dialysis center from the center registry together with its slot configuration
type Center struct {
	ID        int64
	CompanyID int64
	Name      string
	Config    CenterConfig
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CenterConfig opening window and slot duration of a center
type CenterConfig struct {
	OpenMinute          int
	CloseMinute         int
	SlotDurationMinutes int
}

// NewCenterConfig builds a config from clock times. A close time that is not after the
// open time means the center closes on the next day.
func NewCenterConfig(open, close types.TimeString, slotDuration int) (CenterConfig, error) {
	if err := open.Validate(); err != nil {
		return CenterConfig{}, fmt.Errorf("%w: open time: %v", ErrValidation, err)
	}
	if err := close.Validate(); err != nil {
		return CenterConfig{}, fmt.Errorf("%w: close time: %v", ErrValidation, err)
	}

	cfg := CenterConfig{
		OpenMinute:          open.Minutes(),
		CloseMinute:         close.Minutes(),
		SlotDurationMinutes: slotDuration,
	}
	if cfg.CloseMinute <= cfg.OpenMinute {
		cfg.CloseMinute += MinutesPerDay
	}

	return cfg, cfg.Validate()
}

// Validate checks open < close and a positive slot duration
func (c CenterConfig) Validate() error {
	if c.OpenMinute >= c.CloseMinute {
		return fmt.Errorf("%w: open time must be before close time", ErrValidation)
	}
	if c.SlotDurationMinutes < MinSlotDurationMinutes || c.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrValidation, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	return nil
}

// Window the whole opening window
func (c CenterConfig) Window() TimeRange {
	return TimeRange{StartMinute: c.OpenMinute, EndMinute: c.CloseMinute}
}

// CrossesMidnight reports whether the center closes on the next day
func (c CenterConfig) CrossesMidnight() bool {
	return c.CloseMinute > MinutesPerDay
}

// Slots generates fixed-duration slots from the open time; a trailing partial slot is dropped
func (c CenterConfig) Slots() []TimeRange {
	if c.SlotDurationMinutes <= 0 {
		return nil
	}

	slots := make([]TimeRange, 0, (c.CloseMinute-c.OpenMinute)/c.SlotDurationMinutes)
	for start := c.OpenMinute; start+c.SlotDurationMinutes <= c.CloseMinute; start += c.SlotDurationMinutes {
		slots = append(slots, TimeRange{StartMinute: start, EndMinute: start + c.SlotDurationMinutes})
	}
	return slots
}

// Asset dialysis machine
type Asset struct {
	ID        int64
	CenterID  int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
}
