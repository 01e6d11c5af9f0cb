package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/testutil/memstore"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func book(t *testing.T, store *memstore.Store, centerID, patientID int64, start, end int) *domain.Appointment {
	t.Helper()
	a, err := store.Appointments().Create(context.Background(), &domain.Appointment{
		PatientID: patientID,
		CenterID:  centerID,
		Date:      testDate,
		Slot:      domain.TimeRange{StartMinute: start, EndMinute: end},
		Status:    domain.AppointmentScheduled,
	})
	require.NoError(t, err)
	return a
}

func TestService_ComputeAvailability_FourHourWindow(t *testing.T) {
	store := memstore.New(nil)
	center, _ := store.SeedCenter("08:00", "12:00", 60, 2)
	svc := NewService(store.Centers(), store.Appointments(), logger.NewNop())

	before, err := svc.ComputeAvailability(context.Background(), center.ID, testDate)
	require.NoError(t, err)
	require.Len(t, before.Slots, 4)
	for _, slot := range before.Slots {
		assert.Equal(t, 2, slot.AvailableMachines)
		assert.True(t, slot.IsAvailable())
	}

	book(t, store, center.ID, 1, 540, 600)
	book(t, store, center.ID, 2, 540, 600)

	after, err := svc.ComputeAvailability(context.Background(), center.ID, testDate)
	require.NoError(t, err)
	require.Len(t, after.Slots, 4)

	for _, slot := range after.Slots {
		if slot.Range.StartMinute == 540 {
			assert.Equal(t, 0, slot.AvailableMachines)
			assert.False(t, slot.IsAvailable())
			assert.Equal(t, 2, slot.BookedCount)
			continue
		}
		assert.Equal(t, 2, slot.AvailableMachines)
	}
	assert.Len(t, after.Available, 3)
	require.Len(t, after.FullyBooked, 1)
	assert.Equal(t, "09:00-10:00", after.FullyBooked[0].Range.String())
}

func TestService_ComputeAvailability_IgnoresCancelled(t *testing.T) {
	store := memstore.New(nil)
	center, _ := store.SeedCenter("08:00", "12:00", 60, 1)
	svc := NewService(store.Centers(), store.Appointments(), logger.NewNop())

	a := book(t, store, center.ID, 1, 480, 540)
	require.NoError(t, store.Appointments().Cancel(context.Background(), a.ID, nil))

	got, err := svc.ComputeAvailability(context.Background(), center.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Slots[0].AvailableMachines)
}

func TestService_ComputeAvailability_Errors(t *testing.T) {
	store := memstore.New(nil)
	noMachines, _ := store.SeedCenter("08:00", "12:00", 60, 0)
	svc := NewService(store.Centers(), store.Appointments(), logger.NewNop())

	_, err := svc.ComputeAvailability(context.Background(), noMachines.ID, testDate)
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = svc.ComputeAvailability(context.Background(), 999, testDate)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestService_IsSlotAvailable_CountsOverlaps(t *testing.T) {
	store := memstore.New(nil)
	center, _ := store.SeedCenter("08:00", "12:00", 60, 2)
	svc := NewService(store.Centers(), store.Appointments(), logger.NewNop())

	first := book(t, store, center.ID, 1, 540, 600)
	book(t, store, center.ID, 2, 570, 630)

	tests := []struct {
		name      string
		rng       domain.TimeRange
		exclude   int64
		booked    int
		available bool
	}{
		{name: "both overlap", rng: domain.TimeRange{StartMinute: 580, EndMinute: 620}, booked: 2, available: false},
		{name: "touching end is free", rng: domain.TimeRange{StartMinute: 630, EndMinute: 690}, booked: 0, available: true},
		{name: "one overlap", rng: domain.TimeRange{StartMinute: 480, EndMinute: 560}, booked: 1, available: true},
		{name: "excluded appointment", rng: domain.TimeRange{StartMinute: 580, EndMinute: 620}, exclude: first.ID, booked: 1, available: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := svc.IsSlotAvailable(context.Background(), center.ID, testDate, tt.rng, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.booked, check.BookedCount)
			assert.Equal(t, tt.available, check.IsAvailable)
			assert.Equal(t, 2, check.TotalMachines)
		})
	}
}

func TestService_IsSlotAvailable_OvernightCenter(t *testing.T) {
	store := memstore.New(nil)
	center, _ := store.SeedCenter("20:00", "02:00", 120, 1)
	svc := NewService(store.Centers(), store.Appointments(), logger.NewNop())
	book(t, store, center.ID, 1, 1440, 1560)

	check, err := svc.IsSlotAvailable(context.Background(), center.ID, testDate, domain.TimeRange{StartMinute: 0, EndMinute: 120}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, check.BookedCount)
	assert.False(t, check.IsAvailable)
	assert.Equal(t, domain.TimeRange{StartMinute: 1440, EndMinute: 1560}, check.Range)
}
