package assignments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/assignment"
	"github.com/m04kA/SMC-DialysisService/internal/testutil/memstore"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
	"github.com/m04kA/SMC-DialysisService/pkg/metrics"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, l Locker) (*Service, *memstore.Store, []*domain.Asset) {
	t.Helper()
	store := memstore.New(nil)
	_, assets := store.SeedCenter("08:00", "20:00", 60, 2)
	if l == nil {
		l = &memstore.Locker{}
	}
	svc := NewService(
		store.Centers(),
		store.Assignments(),
		memstore.NewTxManager(store),
		l,
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		logger.NewNop(),
	)
	return svc, store, assets
}

func assignReq(assetID int64, start, end int) *AssignRequest {
	return &AssignRequest{
		AssetID:       assetID,
		AppointmentID: 1,
		Date:          testDate,
		Range:         domain.TimeRange{StartMinute: start, EndMinute: end},
		CreatedBy:     55,
	}
}

func TestService_Assign(t *testing.T) {
	l := &memstore.Locker{}
	svc, _, assets := newTestService(t, l)
	ctx := context.Background()

	first, err := svc.Assign(ctx, assignReq(assets[0].ID, 600, 660))
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, first.Status)
	assert.Equal(t, 60, first.DurationMinutes)
	assert.Equal(t, [][]string{{"asset:1:2025-10-15"}}, l.Keys())

	_, err = svc.Assign(ctx, assignReq(assets[0].ID, 630, 690))
	assert.ErrorIs(t, err, ErrAssetNotAvailable)

	// соседний интервал и другой аппарат свободны
	_, err = svc.Assign(ctx, assignReq(assets[0].ID, 660, 720))
	assert.NoError(t, err)
	_, err = svc.Assign(ctx, assignReq(assets[1].ID, 600, 660))
	assert.NoError(t, err)
}

func TestService_Assign_Validation(t *testing.T) {
	svc, store, assets := newTestService(t, nil)
	ctx := context.Background()

	inactive, err := store.Centers().CreateAsset(ctx, &domain.Asset{CenterID: assets[0].CenterID, Name: "old", IsActive: false})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *AssignRequest
		kind domain.ErrorKind
	}{
		{name: "unknown asset", req: assignReq(999, 600, 660), kind: domain.KindNotFound},
		{name: "inactive asset", req: assignReq(inactive.ID, 600, 660), kind: domain.KindValidation},
		{name: "empty range", req: assignReq(assets[0].ID, 600, 600), kind: domain.KindValidation},
		{name: "missing appointment", req: &AssignRequest{AssetID: assets[0].ID, Range: domain.TimeRange{StartMinute: 1, EndMinute: 2}}, kind: domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assign(ctx, tt.req)
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}
}

func TestService_Assign_OverlapConstraint(t *testing.T) {
	svc, store, assets := newTestService(t, nil)
	store.FailOn("Assignments.Create", assignment.ErrAssignmentOverlap)

	_, err := svc.Assign(context.Background(), assignReq(assets[0].ID, 600, 660))
	assert.ErrorIs(t, err, ErrAssetNotAvailable)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestService_Release_Idempotent(t *testing.T) {
	svc, store, assets := newTestService(t, nil)
	ctx := context.Background()

	a, err := svc.Assign(ctx, assignReq(assets[0].ID, 600, 660))
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, a.ID, domain.AssignmentCompleted))
	require.NoError(t, svc.Release(ctx, a.ID, domain.AssignmentCancelled))

	got, err := store.Assignments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCompleted, got.Status)

	// после освобождения интервал снова свободен
	available, err := svc.IsAssetAvailable(ctx, assets[0].ID, testDate, domain.TimeRange{StartMinute: 600, EndMinute: 660})
	require.NoError(t, err)
	assert.True(t, available)

	assert.ErrorIs(t, svc.Release(ctx, a.ID, domain.AssignmentActive), ErrInvalidReleaseStatus)
}

func TestService_Assign_LockTimeoutIsConflict(t *testing.T) {
	l := &memstore.Locker{}
	l.FailWith(locker.ErrLockNotAcquired)
	svc, _, assets := newTestService(t, l)

	_, err := svc.Assign(context.Background(), assignReq(assets[0].ID, 600, 660))
	assert.ErrorIs(t, err, ErrResourceBusy)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestService_Assign_ConcurrentSameWindow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc, store, assets := newTestService(t, locker.NewRedisLocker(client, locker.DefaultConfig(), nil))
	assetID := assets[0].ID

	const callers = 2
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*domain.AssetAssignment, callers)
		errs    = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = svc.Assign(context.Background(), assignReq(assetID, 600, 660))
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for i := 0; i < callers; i++ {
		if errs[i] == nil {
			successes++
			assert.NotZero(t, results[i].ID)
			continue
		}
		assert.ErrorIs(t, errs[i], ErrAssetNotAvailable)
		assert.Contains(t, errs[i].Error(), "not available")
	}
	assert.Equal(t, 1, successes)

	active, err := store.Assignments().ListActiveByAsset(context.Background(), assetID, testDate)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
