package reschedule_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-DialysisService/internal/service/assignments"
	"github.com/m04kA/SMC-DialysisService/internal/service/capacity"
	"github.com/m04kA/SMC-DialysisService/internal/testutil/memstore"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
	"github.com/m04kA/SMC-DialysisService/pkg/metrics"
	"github.com/m04kA/SMC-DialysisService/pkg/ptr"
)

var (
	today    = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	tomorrow = today.AddDate(0, 0, 1)
)

type fixture struct {
	uc       *UseCase
	store    *memstore.Store
	locker   *memstore.Locker
	capacity *capacity.Service
	machines *assignments.Service
	center   *domain.Center
	assets   []*domain.Asset
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := memstore.NewClock(today.Add(7 * time.Hour))
	store := memstore.New(clock)
	center, assets := store.SeedCenter("08:00", "12:00", 60, 2)
	log := logger.NewNop()
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	tx := memstore.NewTxManager(store)
	l := &memstore.Locker{}

	slots := capacity.NewService(store.Centers(), store.Appointments(), log)
	machines := assignments.NewService(store.Centers(), store.Assignments(), tx, l, m, log)
	uc := NewUseCase(store.Appointments(), store.Centers(), store.Sessions(), slots, machines, tx, l, m, log).
		WithTimeProvider(clock)

	return &fixture{uc: uc, store: store, locker: l, capacity: slots, machines: machines, center: center, assets: assets}
}

func (f *fixture) book(t *testing.T, patientID int64, date time.Time, start, end string) *domain.Appointment {
	t.Helper()
	rng, err := domain.ParseTimeRange(start, end)
	require.NoError(t, err)
	a, err := f.store.Appointments().Create(context.Background(), &domain.Appointment{
		PatientID: patientID,
		CenterID:  f.center.ID,
		CompanyID: f.center.CompanyID,
		Date:      date,
		Slot:      rng,
		Status:    domain.AppointmentScheduled,
	})
	require.NoError(t, err)
	return a
}

func req(id int64, date time.Time, start, end string) *Request {
	return &Request{AppointmentID: id, Date: date, StartTime: start, EndTime: end, UpdatedBy: 500}
}

func slotAvailability(t *testing.T, f *fixture, date time.Time) map[string]int {
	t.Helper()
	availability, err := f.capacity.ComputeAvailability(context.Background(), f.center.ID, date)
	require.NoError(t, err)
	out := make(map[string]int, len(availability.Slots))
	for _, slot := range availability.Slots {
		out[string(slot.Range.Start())] = slot.AvailableMachines
	}
	return out
}

func TestUseCase_SameSlotRoundTrip(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, 1, today, "09:00", "10:00")
	f.book(t, 2, today, "09:00", "10:00")
	before := slotAvailability(t, f, today)

	resp, err := f.uc.Execute(context.Background(), req(a.ID, today, "09:00", "10:00"))
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Appointment.Revision)
	assert.Equal(t, domain.AppointmentScheduled, resp.Appointment.Status)
	assert.Equal(t, before, slotAvailability(t, f, today))

	all, err := f.store.Appointments().ListByCenterAndDate(context.Background(), f.center.ID, today)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUseCase_PatientDateIndexViolation(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, 1, today, "09:00", "10:00")
	f.store.FailOn("Appointments.Reschedule", appointmentRepo.ErrPatientDateTaken)

	_, err := f.uc.Execute(context.Background(), req(a.ID, tomorrow, "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrPatientAlreadyBooked)

	stored, err := f.store.Appointments().GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, today, stored.Date)
	assert.Equal(t, 0, stored.Revision)
}

func TestUseCase_OvernightCenter(t *testing.T) {
	f := newFixture(t)
	night, _ := f.store.SeedCenter("20:00", "02:00", 120, 1)
	a, err := f.store.Appointments().Create(context.Background(), &domain.Appointment{
		PatientID: 1,
		CenterID:  night.ID,
		Date:      today,
		Slot:      domain.TimeRange{StartMinute: 1200, EndMinute: 1320},
		Status:    domain.AppointmentScheduled,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), req(a.ID, today, "00:00", "02:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.TimeRange{StartMinute: 1440, EndMinute: 1560}, resp.Appointment.Slot)
}

func TestUseCase_MovesToFreeSlot(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, 1, today, "09:00", "10:00")
	f.book(t, 2, today, "09:00", "10:00")

	r := req(a.ID, today, "10:00", "11:00")
	r.Reason = ptr.Ptr("  patient request  ")
	resp, err := f.uc.Execute(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, "10:00-11:00", resp.Appointment.Slot.String())
	require.NotNil(t, resp.Appointment.RescheduleReason)
	assert.Equal(t, "patient request", *resp.Appointment.RescheduleReason)
	assert.Equal(t, 1, resp.AvailableMachines)

	occupancy := slotAvailability(t, f, today)
	assert.Equal(t, 1, occupancy["09:00"])
	assert.Equal(t, 1, occupancy["10:00"])
	assert.Equal(t, [][]string{{"appointment:1", "patient:1:2025-10-15", "center:1:2025-10-15"}}, f.locker.Keys())
}

func TestUseCase_MovesToAnotherDate(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, 1, today, "09:00", "10:00")

	resp, err := f.uc.Execute(context.Background(), req(a.ID, tomorrow, "08:00", "09:00"))
	require.NoError(t, err)
	assert.True(t, resp.Appointment.Date.Equal(tomorrow))

	assert.Equal(t, 2, slotAvailability(t, f, today)["09:00"])
	assert.Equal(t, 1, slotAvailability(t, f, tomorrow)["08:00"])
	assert.Equal(t, [][]string{{
		"appointment:1",
		"patient:1:2025-10-15", "center:1:2025-10-15",
		"patient:1:2025-10-16", "center:1:2025-10-16",
	}}, f.locker.Keys())
}

func TestUseCase_ReleasesMachines(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, 1, today, "09:00", "10:00")
	ctx := context.Background()

	assignment, err := f.machines.Assign(ctx, &assignments.AssignRequest{
		AssetID:       f.assets[0].ID,
		AppointmentID: a.ID,
		Date:          today,
		Range:         a.Slot,
		CreatedBy:     500,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(ctx, req(a.ID, today, "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ReleasedMachines)

	released, err := f.store.Assignments().GetByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCancelled, released.Status)
}

func TestUseCase_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.book(t, 1, today, "09:00", "10:00")
	f.book(t, 2, today, "10:00", "11:00")
	f.book(t, 3, today, "10:00", "11:00")
	f.book(t, 1, tomorrow, "08:00", "09:00")

	cancelled := f.book(t, 4, today, "08:00", "09:00")
	require.NoError(t, f.store.Appointments().Cancel(ctx, cancelled.ID, nil))

	withSession := f.book(t, 5, today, "11:00", "12:00")
	_, err := f.store.Sessions().Create(ctx, &domain.Session{
		AppointmentID: withSession.ID,
		PatientID:     5,
		CenterID:      f.center.ID,
		Status:        domain.SessionNotStarted,
	})
	require.NoError(t, err)

	yesterday := today.AddDate(0, 0, -1)
	staleRevision := req(a.ID, today, "08:00", "09:00")
	staleRevision.ExpectedRevision = ptr.Ptr(3)

	tests := []struct {
		name string
		req  *Request
		want error
		kind domain.ErrorKind
	}{
		{name: "bad range", req: req(a.ID, today, "10:00", "10:00"), want: ErrInvalidInput},
		{name: "past date", req: req(a.ID, yesterday, "09:00", "10:00"), want: ErrDateInPast},
		{name: "unknown appointment", req: req(999, today, "09:00", "10:00"), kind: domain.KindNotFound},
		{name: "cancelled appointment", req: req(cancelled.ID, today, "09:00", "10:00"), want: ErrCannotReschedule},
		{name: "outside hours", req: req(a.ID, today, "07:00", "08:00"), want: ErrOutsideWorkingHours},
		{name: "slot full", req: req(a.ID, today, "10:00", "11:00"), want: ErrSlotNotAvailable},
		{name: "overlapping full slot", req: req(a.ID, today, "10:30", "11:30"), want: ErrSlotNotAvailable},
		{name: "patient booked on new date", req: req(a.ID, tomorrow, "10:00", "11:00"), want: ErrPatientAlreadyBooked},
		{name: "session exists", req: req(withSession.ID, today, "08:00", "09:00"), want: ErrSessionStarted},
		{name: "stale revision", req: staleRevision, want: ErrRevisionMismatch, kind: domain.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(ctx, tt.req)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.kind != "" {
				assert.Equal(t, tt.kind, domain.KindOf(err))
			}
		})
	}

	unchanged, err := f.store.Appointments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unchanged.Revision)
	assert.Equal(t, "09:00-10:00", unchanged.Slot.String())
}

func TestUseCase_FailuresRollBack(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, 1, today, "09:00", "10:00")
	ctx := context.Background()

	f.locker.FailWith(locker.ErrLockNotAcquired)
	_, err := f.uc.Execute(ctx, req(a.ID, today, "10:00", "11:00"))
	assert.ErrorIs(t, err, ErrResourceBusy)

	f.locker.FailWith(nil)
	f.store.FailOn("Appointments.Reschedule", domain.ErrDatabase)
	_, err = f.uc.Execute(ctx, req(a.ID, today, "10:00", "11:00"))
	assert.Equal(t, domain.KindDatabase, domain.KindOf(err))

	unchanged, err := f.store.Appointments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unchanged.Revision)
}
