package inventory

import (
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// AddStockRequest поступление партии
type AddStockRequest struct {
	ItemID      int64
	CenterID    int64
	Quantity    int
	BatchNumber *string
	ExpiryDate  *time.Time
	ReceivedBy  int64
}

// AddStockResult партия и созданные единицы (для поштучного учета)
type AddStockResult struct {
	Batch *domain.StockBatch
	Units []*domain.IndividualUnit
}

// SelectionRequest выбор материала на сеанс
type SelectionRequest struct {
	SessionID  int64
	ItemID     int64
	UnitID     *int64
	BatchID    *int64
	Quantity   int
	Condition  *string
	SelectedBy int64
}

// DiscardRequestInput заявка на списание
type DiscardRequestInput struct {
	UnitID      int64
	Type        domain.DiscardType
	Reason      string
	RequestedBy int64
}

// ReviewResult решение по заявке и итоговое состояние единицы
type ReviewResult struct {
	Request *domain.DiscardRequest
	Unit    *domain.IndividualUnit
}
