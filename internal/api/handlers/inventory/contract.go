package inventory

import (
	"context"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/inventory"
)

type InventoryService interface {
	AddStock(ctx context.Context, req *inventory.AddStockRequest) (*inventory.AddStockResult, error)
	ListSelectableUnits(ctx context.Context, itemID, centerID int64) ([]domain.IndividualUnit, error)
	AddSelection(ctx context.Context, req *inventory.SelectionRequest) (*domain.InventorySelection, error)
	ListSelections(ctx context.Context, sessionID int64) ([]*domain.InventorySelection, error)
	DiscardDirect(ctx context.Context, unitID, userID int64) (*domain.IndividualUnit, error)
	RequestDiscard(ctx context.Context, in *inventory.DiscardRequestInput) (*domain.DiscardRequest, error)
	ReviewDiscard(ctx context.Context, requestID int64, approve bool, reviewerID int64, comments *string) (*inventory.ReviewResult, error)
	ListPendingDiscards(ctx context.Context, centerID int64) ([]*domain.DiscardRequest, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
