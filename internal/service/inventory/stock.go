package inventory

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// AddStock принимает партию на склад центра
// Для поштучного учета создается ровно Quantity единиц в той же транзакции: либо партия целиком, либо ничего
func (s *Service) AddStock(ctx context.Context, req *AddStockRequest) (*AddStockResult, error) {
	s.logger.Info("AddStock: item=%d, center=%d, quantity=%d", req.ItemID, req.CenterID, req.Quantity)

	// 1. Валидация входных данных
	if req.ItemID <= 0 || req.CenterID <= 0 {
		return nil, fmt.Errorf("%w: item and center are required", ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if req.Quantity > domain.MaxStockQuantity {
		return nil, fmt.Errorf("%w: quantity must not exceed %d per batch", ErrInvalidInput, domain.MaxStockQuantity)
	}

	// 2. Позиция каталога и центр
	item, err := s.inventoryRepo.GetItem(ctx, req.ItemID)
	if err != nil {
		s.logger.Warn("AddStock: item=%d: %v", req.ItemID, err)
		return nil, fmt.Errorf("AddStock - get item: %w", err)
	}
	if _, err := s.centerRepo.GetByID(ctx, req.CenterID); err != nil {
		s.logger.Warn("AddStock: center=%d: %v", req.CenterID, err)
		return nil, fmt.Errorf("AddStock - get center: %w", err)
	}

	result := &AddStockResult{}

	// 3. Партия и единицы в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		batch, err := s.inventoryRepo.CreateBatch(txCtx, &domain.StockBatch{
			ItemID:            req.ItemID,
			CenterID:          req.CenterID,
			Quantity:          req.Quantity,
			AvailableQuantity: req.Quantity,
			BatchNumber:       req.BatchNumber,
			ExpiryDate:        req.ExpiryDate,
			ReceivedBy:        req.ReceivedBy,
		})
		if err != nil {
			s.logger.Error("AddStock: failed to create batch: %v", err)
			return fmt.Errorf("AddStock - create batch: %w", err)
		}
		result.Batch = batch

		if !item.IsIndividuallyTracked {
			return nil
		}

		units, err := s.inventoryRepo.CreateUnits(txCtx, batch, item.MaxUsage, req.Quantity)
		if err != nil {
			s.logger.Error("AddStock: failed to create %d units for batch=%d: %v", req.Quantity, batch.ID, err)
			return fmt.Errorf("AddStock - create units: %w", err)
		}
		result.Units = units
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "stock_added")
	s.logger.Info("AddStock: batch=%d created with %d units", result.Batch.ID, len(result.Units))
	return result, nil
}

// ListSelectableUnits единицы позиции в центре в порядке приоритета выбора
func (s *Service) ListSelectableUnits(ctx context.Context, itemID, centerID int64) ([]domain.IndividualUnit, error) {
	if _, err := s.inventoryRepo.GetItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("ListSelectableUnits - get item: %w", err)
	}

	units, err := s.inventoryRepo.ListSelectableUnits(ctx, itemID, centerID)
	if err != nil {
		s.logger.Error("ListSelectableUnits: item=%d, center=%d: %v", itemID, centerID, err)
		return nil, fmt.Errorf("ListSelectableUnits - list units: %w", err)
	}

	return domain.RankUnits(units), nil
}
