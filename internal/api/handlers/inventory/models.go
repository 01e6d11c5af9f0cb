package inventory

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/api/handlers"
	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/inventory"
)

// AddStockRequest HTTP request model
type AddStockRequest struct {
	ItemID      int64   `json:"itemId"`
	CenterID    int64   `json:"centerId"`
	Quantity    int     `json:"quantity"`
	BatchNumber *string `json:"batchNumber,omitempty"`
	ExpiryDate  *string `json:"expiryDate,omitempty"` // "2026-01-31"
}

// SelectionRequest HTTP request model
type SelectionRequest struct {
	ItemID    int64   `json:"itemId"`
	UnitID    *int64  `json:"unitId,omitempty"`
	BatchID   *int64  `json:"batchId,omitempty"`
	Quantity  int     `json:"quantity"`
	Condition *string `json:"condition,omitempty"`
}

// DiscardRequest HTTP request model
type DiscardRequest struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ReviewRequest HTTP request model
type ReviewRequest struct {
	Approve  bool    `json:"approve"`
	Comments *string `json:"comments,omitempty"`
}

// BatchResponse HTTP response model
type BatchResponse struct {
	ID                int64   `json:"id"`
	ItemID            int64   `json:"itemId"`
	CenterID          int64   `json:"centerId"`
	Quantity          int     `json:"quantity"`
	AvailableQuantity int     `json:"availableQuantity"`
	BatchNumber       *string `json:"batchNumber,omitempty"`
	ExpiryDate        *string `json:"expiryDate,omitempty"`
	ReceivedBy        int64   `json:"receivedBy"`
}

// UnitResponse HTTP response model
type UnitResponse struct {
	ID           int64  `json:"id"`
	BatchID      int64  `json:"batchId"`
	ItemID       int64  `json:"itemId"`
	CenterID     int64  `json:"centerId"`
	CurrentUsage int    `json:"currentUsage"`
	MaxUsage     int    `json:"maxUsage"`
	Status       string `json:"status"`
	IsAvailable  bool   `json:"isAvailable"`
}

// AddStockResponse HTTP response model
type AddStockResponse struct {
	Batch BatchResponse  `json:"batch"`
	Units []UnitResponse `json:"units"`
}

// SelectionResponse HTTP response model
type SelectionResponse struct {
	ID            int64      `json:"id"`
	SessionID     int64      `json:"sessionId"`
	ItemID        int64      `json:"itemId"`
	UnitID        *int64     `json:"unitId,omitempty"`
	BatchID       int64      `json:"batchId"`
	Quantity      int        `json:"quantity"`
	UsageSequence int        `json:"usageSequence"`
	Condition     *string    `json:"condition,omitempty"`
	SelectedBy    int64      `json:"selectedBy"`
	SelectedAt    time.Time  `json:"selectedAt"`
	ConsumedAt    *time.Time `json:"consumedAt,omitempty"`
}

// DiscardResponse HTTP response model
type DiscardResponse struct {
	ID             int64      `json:"id"`
	UnitID         int64      `json:"unitId"`
	Type           string     `json:"type"`
	RequestedBy    int64      `json:"requestedBy"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	ReviewedBy     *int64     `json:"reviewedBy,omitempty"`
	ReviewComments *string    `json:"reviewComments,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ReviewResponse HTTP response model
type ReviewResponse struct {
	Request DiscardResponse `json:"request"`
	Unit    UnitResponse    `json:"unit"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *AddStockRequest) ToServiceRequest(userID int64) (*inventory.AddStockRequest, error) {
	req := &inventory.AddStockRequest{
		ItemID:      r.ItemID,
		CenterID:    r.CenterID,
		Quantity:    r.Quantity,
		BatchNumber: r.BatchNumber,
		ReceivedBy:  userID,
	}
	if r.ExpiryDate != nil {
		expiry, err := handlers.ParseDate(*r.ExpiryDate)
		if err != nil {
			return nil, err
		}
		req.ExpiryDate = &expiry
	}
	return req, nil
}

func fromDomainBatch(b *domain.StockBatch) BatchResponse {
	var expiry *string
	if b.ExpiryDate != nil {
		s := b.ExpiryDate.Format(domain.DateFormat)
		expiry = &s
	}
	return BatchResponse{
		ID:                b.ID,
		ItemID:            b.ItemID,
		CenterID:          b.CenterID,
		Quantity:          b.Quantity,
		AvailableQuantity: b.AvailableQuantity,
		BatchNumber:       b.BatchNumber,
		ExpiryDate:        expiry,
		ReceivedBy:        b.ReceivedBy,
	}
}

// FromDomainUnit конвертирует единицу учета
func FromDomainUnit(u *domain.IndividualUnit) UnitResponse {
	return UnitResponse{
		ID:           u.ID,
		BatchID:      u.BatchID,
		ItemID:       u.ItemID,
		CenterID:     u.CenterID,
		CurrentUsage: u.CurrentUsage,
		MaxUsage:     u.MaxUsage,
		Status:       string(u.Status),
		IsAvailable:  u.IsAvailable,
	}
}

// FromAddStockResult конвертирует результат поступления
func FromAddStockResult(r *inventory.AddStockResult) *AddStockResponse {
	units := make([]UnitResponse, len(r.Units))
	for i, u := range r.Units {
		units[i] = FromDomainUnit(u)
	}
	return &AddStockResponse{Batch: fromDomainBatch(r.Batch), Units: units}
}

// FromDomainSelection конвертирует выбор материала
func FromDomainSelection(s *domain.InventorySelection) SelectionResponse {
	return SelectionResponse{
		ID:            s.ID,
		SessionID:     s.SessionID,
		ItemID:        s.ItemID,
		UnitID:        s.UnitID,
		BatchID:       s.BatchID,
		Quantity:      s.Quantity,
		UsageSequence: s.UsageSequence,
		Condition:     s.Condition,
		SelectedBy:    s.SelectedBy,
		SelectedAt:    s.SelectedAt,
		ConsumedAt:    s.ConsumedAt,
	}
}

// FromDomainDiscard конвертирует заявку на списание
func FromDomainDiscard(d *domain.DiscardRequest) DiscardResponse {
	return DiscardResponse{
		ID:             d.ID,
		UnitID:         d.UnitID,
		Type:           string(d.Type),
		RequestedBy:    d.RequestedBy,
		Reason:         d.Reason,
		Status:         string(d.Status),
		ReviewedBy:     d.ReviewedBy,
		ReviewComments: d.ReviewComments,
		ReviewedAt:     d.ReviewedAt,
		CreatedAt:      d.CreatedAt,
	}
}
