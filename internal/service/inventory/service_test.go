package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/testutil/memstore"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
	"github.com/m04kA/SMC-DialysisService/pkg/metrics"
	"github.com/m04kA/SMC-DialysisService/pkg/ptr"
)

type fixture struct {
	svc      *Service
	store    *memstore.Store
	locker   *memstore.Locker
	center   *domain.Center
	session  *domain.Session
	dialyzer *domain.InventoryItem
	tubing   *domain.InventoryItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := memstore.NewClock(time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC))
	store := memstore.New(clock)
	center, _ := store.SeedCenter("08:00", "20:00", 60, 2)

	dialyzer, err := store.Inventory().CreateItem(ctx, &domain.InventoryItem{
		Name:                            "Dialyzer F8",
		MinUsage:                        3,
		MaxUsage:                        5,
		IsIndividuallyTracked:           true,
		RequiresApprovalForEarlyDiscard: true,
		IsMandatory:                     true,
	})
	require.NoError(t, err)
	tubing, err := store.Inventory().CreateItem(ctx, &domain.InventoryItem{Name: "Blood line", MinUsage: 1, MaxUsage: 1})
	require.NoError(t, err)

	session, err := store.Sessions().Create(ctx, &domain.Session{
		AppointmentID: 1,
		PatientID:     7,
		CenterID:      center.ID,
		SessionDate:   clock.Now(),
		Scheduled:     domain.TimeRange{StartMinute: 600, EndMinute: 840},
		Status:        domain.SessionNotStarted,
	})
	require.NoError(t, err)

	l := &memstore.Locker{}
	svc := NewService(
		store.Inventory(),
		store.Sessions(),
		store.Centers(),
		memstore.NewTxManager(store),
		l,
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		logger.NewNop(),
	).WithTimeProvider(clock)

	return &fixture{svc: svc, store: store, locker: l, center: center, session: session, dialyzer: dialyzer, tubing: tubing}
}

func (f *fixture) putUnit(usage int, status domain.UnitStatus) *domain.IndividualUnit {
	return f.store.Inventory().PutUnit(domain.IndividualUnit{
		ItemID:       f.dialyzer.ID,
		CenterID:     f.center.ID,
		CurrentUsage: usage,
		MaxUsage:     f.dialyzer.MaxUsage,
		Status:       status,
		IsAvailable:  status == domain.UnitAvailable && usage < f.dialyzer.MaxUsage,
	})
}

func TestService_AddStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.AddStock(ctx, &AddStockRequest{ItemID: f.dialyzer.ID, CenterID: f.center.ID, Quantity: 3, ReceivedBy: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Batch.AvailableQuantity)
	require.Len(t, res.Units, 3)
	for _, u := range res.Units {
		assert.Equal(t, 0, u.CurrentUsage)
		assert.Equal(t, 5, u.MaxUsage)
		assert.Equal(t, domain.UnitAvailable, u.Status)
		assert.Equal(t, res.Batch.ID, u.BatchID)
	}

	bulk, err := f.svc.AddStock(ctx, &AddStockRequest{ItemID: f.tubing.ID, CenterID: f.center.ID, Quantity: 40, ReceivedBy: 1})
	require.NoError(t, err)
	assert.Equal(t, 40, bulk.Batch.Quantity)
	assert.Empty(t, bulk.Units)
}

func TestService_AddStock_RollsBackBatchOnUnitFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.FailOn("Inventory.CreateUnits", domain.ErrDatabase)

	_, err := f.svc.AddStock(ctx, &AddStockRequest{ItemID: f.dialyzer.ID, CenterID: f.center.ID, Quantity: 2})
	require.Error(t, err)
	assert.Equal(t, domain.KindDatabase, domain.KindOf(err))

	_, err = f.store.Inventory().GetBatch(ctx, 1)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err), "batch must not survive a failed unit insert")
}

func TestService_AddStock_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *AddStockRequest
		kind domain.ErrorKind
	}{
		{"zero quantity", &AddStockRequest{ItemID: f.dialyzer.ID, CenterID: f.center.ID}, domain.KindValidation},
		{"quantity above batch limit", &AddStockRequest{ItemID: f.dialyzer.ID, CenterID: f.center.ID, Quantity: domain.MaxStockQuantity + 1}, domain.KindValidation},
		{"unknown item", &AddStockRequest{ItemID: 99, CenterID: f.center.ID, Quantity: 1}, domain.KindNotFound},
		{"unknown center", &AddStockRequest{ItemID: f.dialyzer.ID, CenterID: 99, Quantity: 1}, domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddStock(ctx, tt.req)
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}
}

func TestService_AddSelection_Unit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := f.putUnit(2, domain.UnitAvailable)

	sel, err := f.svc.AddSelection(ctx, &SelectionRequest{SessionID: f.session.ID, ItemID: f.dialyzer.ID, UnitID: &unit.ID, SelectedBy: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Quantity)
	assert.Equal(t, 3, sel.UsageSequence)
	assert.Equal(t, [][]string{{"session:1", "unit:1"}}, f.locker.Keys())

	got, err := f.store.Inventory().GetUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitInUse, got.Status)
	assert.Equal(t, 2, got.CurrentUsage, "usage changes only on consumption")

	_, err = f.svc.AddSelection(ctx, &SelectionRequest{SessionID: f.session.ID, ItemID: f.dialyzer.ID, UnitID: &unit.ID})
	assert.Equal(t, domain.KindAlreadyExists, domain.KindOf(err))
}

func TestService_AddSelection_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exhausted := f.putUnit(5, domain.UnitAvailable)
	pending := f.putUnit(1, domain.UnitDiscardRequested)
	other := f.store.Inventory().PutUnit(domain.IndividualUnit{ItemID: f.dialyzer.ID, CenterID: 99, MaxUsage: 5, Status: domain.UnitAvailable})

	stock, err := f.svc.AddStock(ctx, &AddStockRequest{ItemID: f.tubing.ID, CenterID: f.center.ID, Quantity: 2})
	require.NoError(t, err)

	started, err := f.store.Sessions().Create(ctx, &domain.Session{AppointmentID: 2, CenterID: f.center.ID, Status: domain.SessionInProgress})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *SelectionRequest
		want error
	}{
		{"unit required", &SelectionRequest{SessionID: f.session.ID, ItemID: f.dialyzer.ID}, ErrUnitRequired},
		{"batch required", &SelectionRequest{SessionID: f.session.ID, ItemID: f.tubing.ID, Quantity: 1}, ErrBatchRequired},
		{"max usage reached", &SelectionRequest{SessionID: f.session.ID, ItemID: f.dialyzer.ID, UnitID: &exhausted.ID}, ErrUnitNotSelectable},
		{"discard pending", &SelectionRequest{SessionID: f.session.ID, ItemID: f.dialyzer.ID, UnitID: &pending.ID}, ErrUnitNotSelectable},
		{"other center", &SelectionRequest{SessionID: f.session.ID, ItemID: f.dialyzer.ID, UnitID: &other.ID}, ErrItemMismatch},
		{"too much", &SelectionRequest{SessionID: f.session.ID, ItemID: f.tubing.ID, BatchID: &stock.Batch.ID, Quantity: 3}, ErrInsufficientQuantity},
		{"session started", &SelectionRequest{SessionID: started.ID, ItemID: f.tubing.ID, BatchID: &stock.Batch.ID, Quantity: 1}, ErrSessionNotEditable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddSelection(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_AddSelection_BulkReservesQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stock, err := f.svc.AddStock(ctx, &AddStockRequest{ItemID: f.tubing.ID, CenterID: f.center.ID, Quantity: 10})
	require.NoError(t, err)

	_, err = f.svc.AddSelection(ctx, &SelectionRequest{SessionID: f.session.ID, ItemID: f.tubing.ID, BatchID: &stock.Batch.ID, Quantity: 4})
	require.NoError(t, err)

	batch, err := f.store.Inventory().GetBatch(ctx, stock.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, batch.AvailableQuantity)
	assert.Equal(t, 10, batch.Quantity)
}

func TestService_FinalizeConsumption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	almost := f.putUnit(4, domain.UnitAvailable)

	_, err := f.svc.AddSelection(ctx, &SelectionRequest{SessionID: f.session.ID, ItemID: f.dialyzer.ID, UnitID: &almost.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.FinalizeConsumption(ctx, f.session.ID))

	unit, err := f.store.Inventory().GetUnit(ctx, almost.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, unit.CurrentUsage)
	assert.Equal(t, domain.UnitAvailable, unit.Status)
	assert.False(t, unit.IsAvailable, "unit at max usage is not available")

	events := f.store.Inventory().UsageEvents(almost.ID)
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].UsageSequence)

	// повторный вызов не увеличивает счетчик
	require.NoError(t, f.svc.FinalizeConsumption(ctx, f.session.ID))
	unit, err = f.store.Inventory().GetUnit(ctx, almost.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, unit.CurrentUsage)
	assert.Len(t, f.store.Inventory().UsageEvents(almost.ID), 1)
}

// Раннее списание единицы, требующей согласования: прямое списание запрещено, заявка принимается один раз
func TestService_EarlyDiscardFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := f.putUnit(1, domain.UnitAvailable)

	_, err := f.svc.DiscardDirect(ctx, unit.ID, 3)
	assert.ErrorIs(t, err, ErrApprovalRequired)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	req, err := f.svc.RequestDiscard(ctx, &DiscardRequestInput{UnitID: unit.ID, Type: domain.DiscardEarly, Reason: "membrane clotted", RequestedBy: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.DiscardPending, req.Status)

	got, err := f.store.Inventory().GetUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitDiscardRequested, got.Status)

	_, err = f.svc.RequestDiscard(ctx, &DiscardRequestInput{UnitID: unit.ID, Type: domain.DiscardEarly, Reason: "again", RequestedBy: 3})
	assert.ErrorIs(t, err, ErrDiscardPending)

	pending, err := f.svc.ListPendingDiscards(ctx, f.center.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestService_DiscardDirect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	worn := f.putUnit(3, domain.UnitAvailable)
	res, err := f.svc.DiscardDirect(ctx, worn.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitDiscarded, res.Status)

	_, err = f.svc.DiscardDirect(ctx, worn.ID, 3)
	assert.ErrorIs(t, err, ErrUnitDiscarded)

	inUse := f.putUnit(4, domain.UnitInUse)
	_, err = f.svc.DiscardDirect(ctx, inUse.ID, 3)
	assert.ErrorIs(t, err, ErrUnitInUse)

	free, err := f.store.Inventory().CreateItem(ctx, &domain.InventoryItem{Name: "Needle", MinUsage: 2, MaxUsage: 2, IsIndividuallyTracked: true})
	require.NoError(t, err)
	fresh := f.store.Inventory().PutUnit(domain.IndividualUnit{ItemID: free.ID, CenterID: f.center.ID, MaxUsage: 2, Status: domain.UnitAvailable})
	_, err = f.svc.DiscardDirect(ctx, fresh.ID, 3)
	assert.NoError(t, err, "early discard without approval policy is allowed")
}

func TestService_OveruseDiscardFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	strict, err := f.store.Inventory().CreateItem(ctx, &domain.InventoryItem{
		Name:                       "Cannula",
		MinUsage:                   1,
		MaxUsage:                   2,
		IsIndividuallyTracked:      true,
		RequiresApprovalForOveruse: true,
	})
	require.NoError(t, err)
	exhausted := f.store.Inventory().PutUnit(domain.IndividualUnit{ItemID: strict.ID, CenterID: f.center.ID, CurrentUsage: 2, MaxUsage: 2, Status: domain.UnitAvailable})
	partly := f.store.Inventory().PutUnit(domain.IndividualUnit{ItemID: strict.ID, CenterID: f.center.ID, CurrentUsage: 1, MaxUsage: 2, Status: domain.UnitAvailable, IsAvailable: true})

	_, err = f.svc.DiscardDirect(ctx, exhausted.ID, 3)
	assert.ErrorIs(t, err, ErrOveruseApprovalRequired)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	got, err := f.store.Inventory().GetUnit(ctx, exhausted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitAvailable, got.Status)

	_, err = f.svc.RequestDiscard(ctx, &DiscardRequestInput{UnitID: partly.ID, Type: domain.DiscardOveruse, Reason: "reused past limit", RequestedBy: 3})
	assert.ErrorIs(t, err, ErrNotOverused)

	req, err := f.svc.RequestDiscard(ctx, &DiscardRequestInput{UnitID: exhausted.ID, Type: domain.DiscardOveruse, Reason: "reused past limit", RequestedBy: 3})
	require.NoError(t, err)
	res, err := f.svc.ReviewDiscard(ctx, req.ID, true, 9, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitDiscarded, res.Unit.Status)

	// без политики перерасхода выработанная единица списывается сразу
	worn := f.putUnit(5, domain.UnitAvailable)
	_, err = f.svc.DiscardDirect(ctx, worn.ID, 3)
	assert.NoError(t, err)
}

func TestService_ReviewDiscard(t *testing.T) {
	tests := []struct {
		name       string
		approve    bool
		wantStatus domain.DiscardStatus
		wantUnit   domain.UnitStatus
	}{
		{"approve", true, domain.DiscardApproved, domain.UnitDiscarded},
		{"reject", false, domain.DiscardRejected, domain.UnitAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			unit := f.putUnit(1, domain.UnitAvailable)

			req, err := f.svc.RequestDiscard(ctx, &DiscardRequestInput{UnitID: unit.ID, Type: domain.DiscardDamaged, Reason: "cracked housing", RequestedBy: 3})
			require.NoError(t, err)

			res, err := f.svc.ReviewDiscard(ctx, req.ID, tt.approve, 9, ptr.Ptr("checked"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Request.Status)
			assert.Equal(t, tt.wantUnit, res.Unit.Status)
			assert.Equal(t, 1, res.Unit.CurrentUsage)
			require.NotNil(t, res.Request.ReviewedBy)
			assert.Equal(t, int64(9), *res.Request.ReviewedBy)

			_, err = f.svc.ReviewDiscard(ctx, req.ID, !tt.approve, 9, nil)
			assert.ErrorIs(t, err, ErrRequestResolved)
		})
	}
}

func TestService_ListSelectableUnits_Ranked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fresh := f.putUnit(0, domain.UnitAvailable)
	mid := f.putUnit(2, domain.UnitAvailable)
	most := f.putUnit(4, domain.UnitAvailable)
	f.putUnit(5, domain.UnitAvailable)
	f.putUnit(1, domain.UnitInUse)

	units, err := f.svc.ListSelectableUnits(ctx, f.dialyzer.ID, f.center.ID)
	require.NoError(t, err)

	ids := make([]int64, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	assert.Equal(t, []int64{most.ID, mid.ID, fresh.ID}, ids)
}

func TestService_LockNotAcquired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := f.putUnit(3, domain.UnitAvailable)
	f.locker.FailWith(locker.ErrLockNotAcquired)

	_, err := f.svc.DiscardDirect(ctx, unit.ID, 3)
	assert.ErrorIs(t, err, ErrResourceBusy)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestService_StoreFailureIsDatabaseKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.FailOn("Inventory.ListSelectableUnits", errors.Join(domain.ErrDatabase, errors.New("connection reset")))

	_, err := f.svc.ListSelectableUnits(ctx, f.dialyzer.ID, f.center.ID)
	assert.Equal(t, domain.KindDatabase, domain.KindOf(err))
}
