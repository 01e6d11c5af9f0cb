package domain

import "time"

// AvailableSlot capacity of one generated slot
type AvailableSlot struct {
	Range             TimeRange
	BookedCount       int
	AvailableMachines int
	TotalMachines     int
}

// IsAvailable returns true if at least one machine is free
func (s *AvailableSlot) IsAvailable() bool {
	return s.AvailableMachines > 0
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (s *AvailableSlot) OccupancyRate() float64 {
	if s.TotalMachines == 0 {
		return 0
	}
	occupied := s.TotalMachines - s.AvailableMachines
	return float64(occupied) / float64(s.TotalMachines) * 100
}

// Availability capacity calendar of a center for one date
type Availability struct {
	CenterID      int64
	Date          time.Time
	TotalMachines int
	Slots         []AvailableSlot
	Available     []AvailableSlot
	FullyBooked   []AvailableSlot
}

// SlotCheck capacity of an explicit range
type SlotCheck struct {
	Range             TimeRange
	BookedCount       int
	AvailableMachines int
	TotalMachines     int
	IsAvailable       bool
}
