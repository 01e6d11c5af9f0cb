package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/inventory"
)

// Inventory склад расходных материалов
type Inventory struct{ s *Store }

func (s *Store) Inventory() *Inventory { return &Inventory{s: s} }

func (r *Inventory) CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	err := r.s.lock("Inventory.CreateItem")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	item.ID = r.s.nextID("inventory_items")
	r.s.t.items[item.ID] = *item
	return item, nil
}

func (r *Inventory) GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	err := r.s.lock("Inventory.GetItem")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	item, ok := r.s.t.items[id]
	if !ok {
		return nil, inventory.ErrItemNotFound
	}
	return &item, nil
}

func (r *Inventory) ListMandatoryItems(ctx context.Context) ([]*domain.InventoryItem, error) {
	err := r.s.lock("Inventory.ListMandatoryItems")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.items, func(i domain.InventoryItem) bool { return i.IsMandatory })
	out := make([]*domain.InventoryItem, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Inventory) CreateBatch(ctx context.Context, batch *domain.StockBatch) (*domain.StockBatch, error) {
	err := r.s.lock("Inventory.CreateBatch")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	batch.ID = r.s.nextID("stock_batches")
	batch.ReceivedAt = r.s.now()
	r.s.t.batches[batch.ID] = *batch
	return batch, nil
}

func (r *Inventory) GetBatch(ctx context.Context, id int64) (*domain.StockBatch, error) {
	err := r.s.lock("Inventory.GetBatch")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	batch, ok := r.s.t.batches[id]
	if !ok {
		return nil, inventory.ErrBatchNotFound
	}
	return &batch, nil
}

func (r *Inventory) DecrementBatchAvailable(ctx context.Context, batchID int64, qty int) error {
	err := r.s.lock("Inventory.DecrementBatchAvailable")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	batch, ok := r.s.t.batches[batchID]
	if !ok || batch.AvailableQuantity < qty {
		return inventory.ErrInsufficientQuantity
	}
	batch.AvailableQuantity -= qty
	r.s.t.batches[batchID] = batch
	return nil
}

func (r *Inventory) CreateUnits(ctx context.Context, batch *domain.StockBatch, maxUsage, count int) ([]*domain.IndividualUnit, error) {
	err := r.s.lock("Inventory.CreateUnits")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]*domain.IndividualUnit, 0, count)
	for i := 0; i < count; i++ {
		u := domain.IndividualUnit{
			ID:          r.s.nextID("individual_units"),
			BatchID:     batch.ID,
			ItemID:      batch.ItemID,
			CenterID:    batch.CenterID,
			MaxUsage:    maxUsage,
			Status:      domain.UnitAvailable,
			IsAvailable: true,
			CreatedAt:   r.s.now(),
			UpdatedAt:   r.s.now(),
		}
		r.s.t.units[u.ID] = u
		out = append(out, &u)
	}
	return out, nil
}

// PutUnit сохраняет единицу как есть (для подготовки тестовых данных)
func (r *Inventory) PutUnit(u domain.IndividualUnit) *domain.IndividualUnit {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.ID == 0 {
		u.ID = r.s.nextID("individual_units")
	}
	r.s.t.units[u.ID] = u
	return &u
}

func (r *Inventory) GetUnit(ctx context.Context, id int64) (*domain.IndividualUnit, error) {
	err := r.s.lock("Inventory.GetUnit")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	u, ok := r.s.t.units[id]
	if !ok {
		return nil, inventory.ErrUnitNotFound
	}
	return &u, nil
}

func (r *Inventory) ListSelectableUnits(ctx context.Context, itemID, centerID int64) ([]domain.IndividualUnit, error) {
	err := r.s.lock("Inventory.ListSelectableUnits")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return sortedValues(r.s.t.units, func(u domain.IndividualUnit) bool {
		return u.ItemID == itemID && u.CenterID == centerID && u.IsSelectable()
	}), nil
}

func (r *Inventory) UpdateUnitStatus(ctx context.Context, id int64, status domain.UnitStatus) error {
	err := r.s.lock("Inventory.UpdateUnitStatus")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	u, ok := r.s.t.units[id]
	if !ok || u.Status == domain.UnitDiscarded {
		return inventory.ErrUnitNotFound
	}
	u.Status = status
	u.IsAvailable = status == domain.UnitAvailable && u.CurrentUsage < u.MaxUsage
	u.UpdatedAt = r.s.now()
	r.s.t.units[id] = u
	return nil
}

func (r *Inventory) ConsumeUnit(ctx context.Context, id int64) (*domain.IndividualUnit, error) {
	err := r.s.lock("Inventory.ConsumeUnit")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	u, ok := r.s.t.units[id]
	if !ok || u.Status == domain.UnitDiscarded {
		return nil, inventory.ErrUnitNotFound
	}
	u.CurrentUsage = min(u.CurrentUsage+1, u.MaxUsage)
	u.IsAvailable = u.CurrentUsage < u.MaxUsage
	u.Status = domain.UnitAvailable
	u.UpdatedAt = r.s.now()
	r.s.t.units[id] = u
	return &u, nil
}

func (r *Inventory) CreateUsageEvent(ctx context.Context, event *domain.UnitUsageEvent) (*domain.UnitUsageEvent, error) {
	err := r.s.lock("Inventory.CreateUsageEvent")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	event.ID = r.s.nextID("unit_usage_events")
	event.RecordedAt = r.s.now()
	r.s.t.usageEvents[event.ID] = *event
	return event, nil
}

// UsageEvents события использования единицы
func (r *Inventory) UsageEvents(unitID int64) []domain.UnitUsageEvent {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedValues(r.s.t.usageEvents, func(e domain.UnitUsageEvent) bool { return e.UnitID == unitID })
}

func (r *Inventory) CreateSelection(ctx context.Context, sel *domain.InventorySelection) (*domain.InventorySelection, error) {
	err := r.s.lock("Inventory.CreateSelection")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, other := range r.s.t.selections {
		if other.SessionID == sel.SessionID && other.ItemID == sel.ItemID {
			return nil, inventory.ErrDuplicateSelection
		}
	}

	sel.ID = r.s.nextID("inventory_selections")
	sel.SelectedAt = r.s.now()
	r.s.t.selections[sel.ID] = *sel
	return sel, nil
}

func (r *Inventory) ListSelections(ctx context.Context, sessionID int64) ([]*domain.InventorySelection, error) {
	err := r.s.lock("Inventory.ListSelections")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.selections, func(s domain.InventorySelection) bool { return s.SessionID == sessionID })
	out := make([]*domain.InventorySelection, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Inventory) MarkSelectionConsumed(ctx context.Context, id int64, usageSequence int, at time.Time) error {
	err := r.s.lock("Inventory.MarkSelectionConsumed")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	sel, ok := r.s.t.selections[id]
	if !ok || sel.ConsumedAt != nil {
		return nil
	}
	sel.ConsumedAt = &at
	sel.UsageSequence = usageSequence
	r.s.t.selections[id] = sel
	return nil
}

func (r *Inventory) CreateDiscardRequest(ctx context.Context, req *domain.DiscardRequest) (*domain.DiscardRequest, error) {
	err := r.s.lock("Inventory.CreateDiscardRequest")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, other := range r.s.t.discards {
		if other.UnitID == req.UnitID && other.Status == domain.DiscardPending {
			return nil, inventory.ErrPendingRequestExists
		}
	}

	req.ID = r.s.nextID("discard_requests")
	req.CreatedAt = r.s.now()
	r.s.t.discards[req.ID] = *req
	return req, nil
}

func (r *Inventory) GetDiscardRequest(ctx context.Context, id int64) (*domain.DiscardRequest, error) {
	err := r.s.lock("Inventory.GetDiscardRequest")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	req, ok := r.s.t.discards[id]
	if !ok {
		return nil, inventory.ErrDiscardRequestNotFound
	}
	return &req, nil
}

func (r *Inventory) GetPendingDiscardByUnit(ctx context.Context, unitID int64) (*domain.DiscardRequest, error) {
	err := r.s.lock("Inventory.GetPendingDiscardByUnit")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, req := range r.s.t.discards {
		if req.UnitID == unitID && req.Status == domain.DiscardPending {
			return &req, nil
		}
	}
	return nil, inventory.ErrDiscardRequestNotFound
}

func (r *Inventory) ResolveDiscardRequest(ctx context.Context, id int64, status domain.DiscardStatus, reviewedBy int64, comments *string, at time.Time) error {
	err := r.s.lock("Inventory.ResolveDiscardRequest")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	req, ok := r.s.t.discards[id]
	if !ok || req.Status != domain.DiscardPending {
		return inventory.ErrDiscardRequestNotFound
	}
	req.Status = status
	req.ReviewedBy = &reviewedBy
	req.ReviewComments = comments
	req.ReviewedAt = &at
	r.s.t.discards[id] = req
	return nil
}

func (r *Inventory) ListPendingDiscards(ctx context.Context, centerID int64) ([]*domain.DiscardRequest, error) {
	err := r.s.lock("Inventory.ListPendingDiscards")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.discards, func(req domain.DiscardRequest) bool {
		u := r.s.t.units[req.UnitID]
		return req.Status == domain.DiscardPending && u.CenterID == centerID
	})
	out := make([]*domain.DiscardRequest, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}
