package domain

import (
	"fmt"
	"sort"
	"time"
)

// InventoryItem consumable catalog entry
type InventoryItem struct {
	ID                              int64
	Name                            string
	MinUsage                        int
	MaxUsage                        int
	IsIndividuallyTracked           bool
	RequiresApprovalForEarlyDiscard bool
	RequiresApprovalForOveruse      bool
	IsMandatory                     bool
}

// StockBatch receipt of an item at a center
type StockBatch struct {
	ID                int64
	ItemID            int64
	CenterID          int64
	Quantity          int
	AvailableQuantity int
	BatchNumber       *string
	ExpiryDate        *time.Time
	ReceivedBy        int64
	ReceivedAt        time.Time
}

// UnitStatus status of an individually tracked unit
type UnitStatus string

const (
	UnitAvailable        UnitStatus = "available"
	UnitInUse            UnitStatus = "in_use"
	UnitDiscardRequested UnitStatus = "discard_requested"
	UnitDiscarded        UnitStatus = "discarded"
)

// Valid reports whether s is a known status
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitAvailable, UnitInUse, UnitDiscardRequested, UnitDiscarded:
		return true
	}
	return false
}

// IndividualUnit reusable unit of a tracked item (e.g. a dialyzer)
type IndividualUnit struct {
	ID           int64
	BatchID      int64
	ItemID       int64
	CenterID     int64
	CurrentUsage int
	MaxUsage     int
	Status       UnitStatus
	IsAvailable  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSelectable unit can be reserved for a session
func (u *IndividualUnit) IsSelectable() bool {
	return u.Status == UnitAvailable && u.CurrentUsage < u.MaxUsage
}

// Priority selection priority: 1 partially used, 2 new, 3 everything else
func (u *IndividualUnit) Priority() int {
	switch {
	case u.CurrentUsage > 0 && u.CurrentUsage < u.MaxUsage:
		return 1
	case u.CurrentUsage == 0:
		return 2
	default:
		return 3
	}
}

// RankUnits orders units for selection: partially used first (most used first), then new ones.
// Ties keep the input order.
func RankUnits(units []IndividualUnit) []IndividualUnit {
	ranked := make([]IndividualUnit, len(units))
	copy(ranked, units)

	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Priority(), ranked[j].Priority()
		if pi != pj {
			return pi < pj
		}
		if pi == 1 {
			return ranked[i].CurrentUsage > ranked[j].CurrentUsage
		}
		return false
	})

	return ranked
}

// DiscardType reason category of a discard request
type DiscardType string

const (
	DiscardEarly   DiscardType = "early_discard"
	DiscardOveruse DiscardType = "overuse"
	DiscardDamaged DiscardType = "damaged"
	DiscardExpired DiscardType = "expired"
)

// ParseDiscardType converts a string into a discard type
func ParseDiscardType(s string) (DiscardType, error) {
	switch t := DiscardType(s); t {
	case DiscardEarly, DiscardOveruse, DiscardDamaged, DiscardExpired:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown discard type %q", ErrValidation, s)
}

// DiscardStatus review status of a discard request
type DiscardStatus string

const (
	DiscardPending  DiscardStatus = "pending"
	DiscardApproved DiscardStatus = "approved"
	DiscardRejected DiscardStatus = "rejected"
)

// IsResolved approved and rejected requests are final
func (s DiscardStatus) IsResolved() bool {
	return s == DiscardApproved || s == DiscardRejected
}

// DiscardRequest approval request for disposing a unit
type DiscardRequest struct {
	ID             int64
	UnitID         int64
	Type           DiscardType
	RequestedBy    int64
	Reason         string
	Status         DiscardStatus
	ReviewedBy     *int64
	ReviewComments *string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
}

// InventorySelection item reserved for a session before it starts
type InventorySelection struct {
	ID            int64
	SessionID     int64
	ItemID        int64
	UnitID        *int64
	BatchID       int64
	Quantity      int
	UsageSequence int
	Condition     *string
	SelectedBy    int64
	SelectedAt    time.Time
	ConsumedAt    *time.Time
}

// UnitUsageEvent consumption history of a unit
type UnitUsageEvent struct {
	ID            int64
	UnitID        int64
	SessionID     int64
	UsageSequence int
	RecordedAt    time.Time
}
