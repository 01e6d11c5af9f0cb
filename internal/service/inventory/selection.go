package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	inventoryRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/inventory"
)

// AddSelection резервирует материал для сеанса до его начала
// Единица переводится в in_use, у партии уменьшается свободный остаток; счетчик использования не меняется
func (s *Service) AddSelection(ctx context.Context, req *SelectionRequest) (*domain.InventorySelection, error) {
	s.logger.Info("AddSelection: session=%d, item=%d", req.SessionID, req.ItemID)

	// 1. Валидация входных данных
	if req.SessionID <= 0 || req.ItemID <= 0 {
		return nil, fmt.Errorf("%w: session and item are required", ErrInvalidInput)
	}

	item, err := s.inventoryRepo.GetItem(ctx, req.ItemID)
	if err != nil {
		s.logger.Warn("AddSelection: item=%d: %v", req.ItemID, err)
		return nil, fmt.Errorf("AddSelection - get item: %w", err)
	}

	keys := []string{SessionLockKey(req.SessionID)}
	if item.IsIndividuallyTracked {
		if req.UnitID == nil {
			return nil, ErrUnitRequired
		}
		keys = append(keys, UnitLockKey(*req.UnitID))
	} else {
		if req.BatchID == nil {
			return nil, ErrBatchRequired
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
	}

	var result *domain.InventorySelection

	// 2. Проверки и резерв под блокировкой сеанса (и единицы)
	err = s.withLock(ctx, "AddSelection", keys, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 2.1. Сеанс еще не начат
			session, err := s.sessionRepo.GetByID(txCtx, req.SessionID)
			if err != nil {
				return fmt.Errorf("AddSelection - get session: %w", err)
			}
			if session.Status != domain.SessionNotStarted {
				s.logger.Warn("AddSelection: session=%d is %s", session.ID, session.Status)
				return ErrSessionNotEditable
			}

			// 2.2. Позиция еще не выбрана в этом сеансе
			selections, err := s.inventoryRepo.ListSelections(txCtx, session.ID)
			if err != nil {
				return fmt.Errorf("AddSelection - list selections: %w", err)
			}
			for _, sel := range selections {
				if sel.ItemID == item.ID {
					return ErrDuplicateSelection
				}
			}

			// 2.3. Резерв единицы или количества из партии
			selection := &domain.InventorySelection{
				SessionID:  session.ID,
				ItemID:     item.ID,
				Condition:  req.Condition,
				SelectedBy: req.SelectedBy,
			}
			if item.IsIndividuallyTracked {
				err = s.reserveUnit(txCtx, session, item, *req.UnitID, selection)
			} else {
				err = s.reserveBulk(txCtx, session, item, *req.BatchID, req.Quantity, selection)
			}
			if err != nil {
				return err
			}

			// 2.4. Сохраняем выбор
			created, err := s.inventoryRepo.CreateSelection(txCtx, selection)
			if err != nil {
				if errors.Is(err, inventoryRepo.ErrDuplicateSelection) {
					return ErrDuplicateSelection
				}
				s.logger.Error("AddSelection: failed to create selection: %v", err)
				return fmt.Errorf("AddSelection - create selection: %w", err)
			}

			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "selected")
	s.logger.Info("AddSelection: selection id=%d for session=%d", result.ID, result.SessionID)
	return result, nil
}

func (s *Service) reserveUnit(ctx context.Context, session *domain.Session, item *domain.InventoryItem, unitID int64, sel *domain.InventorySelection) error {
	unit, err := s.inventoryRepo.GetUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("AddSelection - get unit: %w", err)
	}
	if unit.ItemID != item.ID || unit.CenterID != session.CenterID {
		return ErrItemMismatch
	}
	if !unit.IsSelectable() {
		s.logger.Warn("AddSelection: unit=%d is %s, usage %d/%d", unit.ID, unit.Status, unit.CurrentUsage, unit.MaxUsage)
		return ErrUnitNotSelectable
	}

	if err := s.inventoryRepo.UpdateUnitStatus(ctx, unit.ID, domain.UnitInUse); err != nil {
		return fmt.Errorf("AddSelection - reserve unit: %w", err)
	}

	sel.UnitID = &unit.ID
	sel.BatchID = unit.BatchID
	sel.Quantity = 1
	sel.UsageSequence = unit.CurrentUsage + 1
	return nil
}

func (s *Service) reserveBulk(ctx context.Context, session *domain.Session, item *domain.InventoryItem, batchID int64, qty int, sel *domain.InventorySelection) error {
	batch, err := s.inventoryRepo.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("AddSelection - get batch: %w", err)
	}
	if batch.ItemID != item.ID || batch.CenterID != session.CenterID {
		return ErrItemMismatch
	}
	if qty > batch.AvailableQuantity {
		s.logger.Warn("AddSelection: batch=%d has %d, requested %d", batch.ID, batch.AvailableQuantity, qty)
		return ErrInsufficientQuantity
	}

	if err := s.inventoryRepo.DecrementBatchAvailable(ctx, batch.ID, qty); err != nil {
		if errors.Is(err, inventoryRepo.ErrInsufficientQuantity) {
			return ErrInsufficientQuantity
		}
		return fmt.Errorf("AddSelection - reserve quantity: %w", err)
	}

	sel.BatchID = batch.ID
	sel.Quantity = qty
	return nil
}

// ListSelections материалы, выбранные на сеанс
func (s *Service) ListSelections(ctx context.Context, sessionID int64) ([]*domain.InventorySelection, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("ListSelections - get session: %w", err)
	}

	selections, err := s.inventoryRepo.ListSelections(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("ListSelections - list selections: %w", err)
	}
	return selections, nil
}

// FinalizeConsumption фиксирует фактический расход при завершении сеанса
// Вызывается из транзакции complete/terminate: счетчик каждой единицы +1 (не выше максимума),
// событие использования с порядковым номером, единица возвращается в available
func (s *Service) FinalizeConsumption(ctx context.Context, sessionID int64) error {
	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		selections, err := s.inventoryRepo.ListSelections(txCtx, sessionID)
		if err != nil {
			return fmt.Errorf("FinalizeConsumption - list selections: %w", err)
		}

		now := s.timeProvider.Now()
		for _, sel := range selections {
			if sel.ConsumedAt != nil {
				continue
			}

			sequence := 0
			if sel.UnitID != nil {
				unit, err := s.inventoryRepo.ConsumeUnit(txCtx, *sel.UnitID)
				if err != nil {
					s.logger.Error("FinalizeConsumption: unit=%d: %v", *sel.UnitID, err)
					return fmt.Errorf("FinalizeConsumption - consume unit: %w", err)
				}
				sequence = unit.CurrentUsage

				if _, err := s.inventoryRepo.CreateUsageEvent(txCtx, &domain.UnitUsageEvent{
					UnitID:        unit.ID,
					SessionID:     sessionID,
					UsageSequence: sequence,
				}); err != nil {
					return fmt.Errorf("FinalizeConsumption - record usage: %w", err)
				}
			}

			if err := s.inventoryRepo.MarkSelectionConsumed(txCtx, sel.ID, sequence, now); err != nil {
				return fmt.Errorf("FinalizeConsumption - mark consumed: %w", err)
			}
		}

		s.logger.Info("FinalizeConsumption: session=%d, %d selections consumed", sessionID, len(selections))
		return nil
	})
}
