package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	inventoryRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/inventory"
)

// checkDisposable общие проверки статуса единицы перед списанием
func checkDisposable(unit *domain.IndividualUnit) error {
	switch unit.Status {
	case domain.UnitDiscarded:
		return ErrUnitDiscarded
	case domain.UnitDiscardRequested:
		return ErrDiscardPending
	case domain.UnitInUse:
		return ErrUnitInUse
	}
	return nil
}

// DiscardDirect списывает единицу без согласования
// Раннее списание и списание выработанной единицы идут через заявку, если этого требует политика позиции
func (s *Service) DiscardDirect(ctx context.Context, unitID, userID int64) (*domain.IndividualUnit, error) {
	s.logger.Info("DiscardDirect: unit=%d, user=%d", unitID, userID)

	var result *domain.IndividualUnit
	err := s.withLock(ctx, "DiscardDirect", []string{UnitLockKey(unitID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			unit, err := s.inventoryRepo.GetUnit(txCtx, unitID)
			if err != nil {
				return fmt.Errorf("DiscardDirect - get unit: %w", err)
			}
			if err := checkDisposable(unit); err != nil {
				return err
			}

			item, err := s.inventoryRepo.GetItem(txCtx, unit.ItemID)
			if err != nil {
				return fmt.Errorf("DiscardDirect - get item: %w", err)
			}
			if unit.CurrentUsage < item.MinUsage && item.RequiresApprovalForEarlyDiscard {
				s.logger.Warn("DiscardDirect: unit=%d usage %d below minimum %d", unit.ID, unit.CurrentUsage, item.MinUsage)
				return ErrApprovalRequired
			}
			if unit.CurrentUsage >= unit.MaxUsage && item.RequiresApprovalForOveruse {
				s.logger.Warn("DiscardDirect: unit=%d reached max usage %d, overuse approval required", unit.ID, unit.MaxUsage)
				return ErrOveruseApprovalRequired
			}

			if err := s.inventoryRepo.UpdateUnitStatus(txCtx, unit.ID, domain.UnitDiscarded); err != nil {
				return fmt.Errorf("DiscardDirect - update unit: %w", err)
			}

			unit.Status = domain.UnitDiscarded
			unit.IsAvailable = false
			result = unit
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "discarded")
	return result, nil
}

// RequestDiscard создает заявку на списание, единица переходит в discard_requested
func (s *Service) RequestDiscard(ctx context.Context, in *DiscardRequestInput) (*domain.DiscardRequest, error) {
	s.logger.Info("RequestDiscard: unit=%d, type=%s", in.UnitID, in.Type)

	// 1. Валидация входных данных
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	if _, err := domain.ParseDiscardType(string(in.Type)); err != nil {
		return nil, err
	}

	var result *domain.DiscardRequest

	// 2. Заявка и смена статуса единицы под блокировкой
	err := s.withLock(ctx, "RequestDiscard", []string{UnitLockKey(in.UnitID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			unit, err := s.inventoryRepo.GetUnit(txCtx, in.UnitID)
			if err != nil {
				return fmt.Errorf("RequestDiscard - get unit: %w", err)
			}
			if err := checkDisposable(unit); err != nil {
				return err
			}
			if in.Type == domain.DiscardOveruse && unit.CurrentUsage < unit.MaxUsage {
				return fmt.Errorf("%w: usage %d/%d", ErrNotOverused, unit.CurrentUsage, unit.MaxUsage)
			}

			created, err := s.inventoryRepo.CreateDiscardRequest(txCtx, &domain.DiscardRequest{
				UnitID:      unit.ID,
				Type:        in.Type,
				RequestedBy: in.RequestedBy,
				Reason:      reason,
				Status:      domain.DiscardPending,
			})
			if err != nil {
				if errors.Is(err, inventoryRepo.ErrPendingRequestExists) {
					return ErrDiscardPending
				}
				return fmt.Errorf("RequestDiscard - create request: %w", err)
			}

			if err := s.inventoryRepo.UpdateUnitStatus(txCtx, unit.ID, domain.UnitDiscardRequested); err != nil {
				return fmt.Errorf("RequestDiscard - update unit: %w", err)
			}

			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "discard_requested")
	s.logger.Info("RequestDiscard: request id=%d pending for unit=%d", result.ID, result.UnitID)
	return result, nil
}

// ReviewDiscard решение по заявке: одобрение списывает единицу, отказ возвращает ее в available
func (s *Service) ReviewDiscard(ctx context.Context, requestID int64, approve bool, reviewerID int64, comments *string) (*ReviewResult, error) {
	s.logger.Info("ReviewDiscard: request=%d, approve=%t, reviewer=%d", requestID, approve, reviewerID)

	// 1. Заявка нужна до блокировки, чтобы узнать единицу
	request, err := s.inventoryRepo.GetDiscardRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("ReviewDiscard - get request: %w", err)
	}

	result := &ReviewResult{}

	// 2. Повторное чтение и решение под блокировкой единицы
	err = s.withLock(ctx, "ReviewDiscard", []string{UnitLockKey(request.UnitID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			req, err := s.inventoryRepo.GetDiscardRequest(txCtx, requestID)
			if err != nil {
				return fmt.Errorf("ReviewDiscard - get request: %w", err)
			}
			if req.Status.IsResolved() {
				return ErrRequestResolved
			}

			unit, err := s.inventoryRepo.GetUnit(txCtx, req.UnitID)
			if err != nil {
				return fmt.Errorf("ReviewDiscard - get unit: %w", err)
			}
			if unit.Status == domain.UnitDiscarded {
				return ErrUnitDiscarded
			}

			status, unitStatus := domain.DiscardRejected, domain.UnitAvailable
			if approve {
				status, unitStatus = domain.DiscardApproved, domain.UnitDiscarded
			}

			if err := s.inventoryRepo.UpdateUnitStatus(txCtx, unit.ID, unitStatus); err != nil {
				return fmt.Errorf("ReviewDiscard - update unit: %w", err)
			}

			now := s.timeProvider.Now()
			if err := s.inventoryRepo.ResolveDiscardRequest(txCtx, req.ID, status, reviewerID, comments, now); err != nil {
				return fmt.Errorf("ReviewDiscard - resolve request: %w", err)
			}

			req.Status = status
			req.ReviewedBy = &reviewerID
			req.ReviewComments = comments
			req.ReviewedAt = &now

			unit.Status = unitStatus
			unit.IsAvailable = unitStatus == domain.UnitAvailable && unit.CurrentUsage < unit.MaxUsage

			result.Request = req
			result.Unit = unit
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	event := "discard_rejected"
	if approve {
		event = "discard_approved"
	}
	s.metrics.ObserveDomainEvent(metricsComponent, event)
	return result, nil
}

// ListPendingDiscards необработанные заявки центра
func (s *Service) ListPendingDiscards(ctx context.Context, centerID int64) ([]*domain.DiscardRequest, error) {
	requests, err := s.inventoryRepo.ListPendingDiscards(ctx, centerID)
	if err != nil {
		s.logger.Error("ListPendingDiscards: center=%d: %v", centerID, err)
		return nil, fmt.Errorf("ListPendingDiscards - list: %w", err)
	}
	return requests, nil
}
