package capacity

import (
	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// SlotResponse вместимость одного слота
type SlotResponse struct {
	StartTime         string  `json:"startTime"`
	EndTime           string  `json:"endTime"`
	BookedCount       int     `json:"bookedCount"`
	AvailableMachines int     `json:"availableMachines"`
	TotalMachines     int     `json:"totalMachines"`
	IsAvailable       bool    `json:"isAvailable"`
	OccupancyRate     float64 `json:"occupancyRate"`
}

// AvailabilityResponse календарь центра на дату
type AvailabilityResponse struct {
	CenterID         int64          `json:"centerId"`
	Date             string         `json:"date"`
	TotalMachines    int            `json:"totalMachines"`
	Slots            []SlotResponse `json:"slots"`
	AvailableCount   int            `json:"availableCount"`
	FullyBookedCount int            `json:"fullyBookedCount"`
}

// SlotCheckResponse проверка произвольного интервала
type SlotCheckResponse struct {
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	BookedCount       int    `json:"bookedCount"`
	AvailableMachines int    `json:"availableMachines"`
	TotalMachines     int    `json:"totalMachines"`
	IsAvailable       bool   `json:"isAvailable"`
}

func fromDomainSlot(s *domain.AvailableSlot) SlotResponse {
	return SlotResponse{
		StartTime:         s.Range.Start().String(),
		EndTime:           s.Range.End().String(),
		BookedCount:       s.BookedCount,
		AvailableMachines: s.AvailableMachines,
		TotalMachines:     s.TotalMachines,
		IsAvailable:       s.IsAvailable(),
		OccupancyRate:     s.OccupancyRate(),
	}
}

// FromDomainAvailability конвертирует календарь в HTTP ответ
func FromDomainAvailability(a *domain.Availability) *AvailabilityResponse {
	slots := make([]SlotResponse, len(a.Slots))
	for i := range a.Slots {
		slots[i] = fromDomainSlot(&a.Slots[i])
	}
	return &AvailabilityResponse{
		CenterID:         a.CenterID,
		Date:             a.Date.Format(domain.DateFormat),
		TotalMachines:    a.TotalMachines,
		Slots:            slots,
		AvailableCount:   len(a.Available),
		FullyBookedCount: len(a.FullyBooked),
	}
}

// FromDomainSlotCheck конвертирует проверку интервала в HTTP ответ
func FromDomainSlotCheck(c *domain.SlotCheck) *SlotCheckResponse {
	return &SlotCheckResponse{
		StartTime:         c.Range.Start().String(),
		EndTime:           c.Range.End().String(),
		BookedCount:       c.BookedCount,
		AvailableMachines: c.AvailableMachines,
		TotalMachines:     c.TotalMachines,
		IsAvailable:       c.IsAvailable,
	}
}
