package book_appointment

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
	appointmentRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-DialysisService/internal/integrations/patientservice"
	"github.com/m04kA/SMC-DialysisService/internal/service/capacity"
	"github.com/m04kA/SMC-DialysisService/internal/testutil/memstore"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
	"github.com/m04kA/SMC-DialysisService/pkg/metrics"
)

var today = time.Date(2025, 10, 15, 7, 30, 0, 0, time.UTC)

type stubRegistry map[int64]*patientservice.Patient

func (r stubRegistry) GetPatient(ctx context.Context, id int64) (*patientservice.Patient, error) {
	if p, ok := r[id]; ok {
		return p, nil
	}
	return nil, patientservice.ErrPatientNotFound
}

func registry() stubRegistry {
	r := stubRegistry{}
	for id := int64(1); id <= 10; id++ {
		r[id] = &patientservice.Patient{ID: id, FullName: "Patient", IsActive: true}
	}
	r[99] = &patientservice.Patient{ID: 99, FullName: "Discharged", IsActive: false}
	return r
}

type fixture struct {
	uc       *UseCase
	store    *memstore.Store
	capacity *capacity.Service
	center   *domain.Center
}

func newFixture(t *testing.T, l Locker) *fixture {
	t.Helper()
	clock := memstore.NewClock(today)
	store := memstore.New(clock)
	center, _ := store.SeedCenter("08:00", "12:00", 60, 2)
	log := logger.NewNop()

	if l == nil {
		l = &memstore.Locker{}
	}
	slots := capacity.NewService(store.Centers(), store.Appointments(), log)
	uc := NewUseCase(
		store.Appointments(),
		store.Centers(),
		registry(),
		slots,
		memstore.NewTxManager(store),
		l,
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		log,
	).WithTimeProvider(clock)

	return &fixture{uc: uc, store: store, capacity: slots, center: center}
}

func req(patientID int64, start, end string) *Request {
	return &Request{
		PatientID: patientID,
		CenterID:  1,
		Date:      time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime: start,
		EndTime:   end,
		CreatedBy: 500,
	}
}

// Две записи на 09:00-10:00 занимают оба аппарата, остальные слоты не затронуты
func TestUseCase_FillsSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, req(1, "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentScheduled, first.Appointment.Status)
	assert.Equal(t, 1, first.AvailableMachines)

	second, err := f.uc.Execute(ctx, req(2, "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, 0, second.AvailableMachines)

	_, err = f.uc.Execute(ctx, req(3, "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	// пересечение тоже занято
	_, err = f.uc.Execute(ctx, req(3, "09:30", "10:30"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	availability, err := f.capacity.ComputeAvailability(ctx, f.center.ID, first.Appointment.Date)
	require.NoError(t, err)
	require.Len(t, availability.Slots, 4)
	for _, slot := range availability.Slots {
		if slot.Range.Start() == "09:00" {
			assert.Equal(t, 0, slot.AvailableMachines)
			assert.False(t, slot.IsAvailable())
			continue
		}
		assert.Equal(t, 2, slot.AvailableMachines, slot.Range.String())
	}
}

func TestUseCase_ValidationOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.uc.Execute(ctx, req(5, "10:00", "11:00"))
	require.NoError(t, err)

	yesterday := req(1, "09:00", "10:00")
	yesterday.Date = today.AddDate(0, 0, -1)
	otherCenter := req(1, "09:00", "10:00")
	otherCenter.CenterID = 42

	tests := []struct {
		name string
		req  *Request
		want error
		kind domain.ErrorKind
	}{
		{name: "missing patient", req: req(0, "09:00", "10:00"), want: ErrInvalidInput},
		{name: "start after end", req: req(1, "10:00", "09:00"), want: ErrInvalidInput},
		{name: "date in past", req: yesterday, want: ErrDateInPast},
		{name: "unknown center", req: otherCenter, kind: domain.KindNotFound},
		{name: "unknown patient", req: req(77, "09:00", "10:00"), want: patientservice.ErrPatientNotFound},
		{name: "inactive patient", req: req(99, "09:00", "10:00"), want: ErrPatientInactive},
		{name: "outside hours", req: req(1, "11:30", "12:30"), want: ErrOutsideWorkingHours},
		{name: "second booking same day", req: req(5, "08:00", "09:00"), want: ErrPatientAlreadyBooked},
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
}

// Центр 20:00-02:00: слот 00:00-02:00 из расписания бронируется как время следующих суток
func TestUseCase_OvernightCenter(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	night, _ := f.store.SeedCenter("20:00", "02:00", 120, 1)

	availability, err := f.capacity.ComputeAvailability(ctx, night.ID, today)
	require.NoError(t, err)
	require.Len(t, availability.Slots, 3)
	last := availability.Slots[2].Range
	assert.Equal(t, "00:00-02:00", last.String())

	booking := req(1, string(last.Start()), string(last.End()))
	booking.CenterID = night.ID
	res, err := f.uc.Execute(ctx, booking)
	require.NoError(t, err)
	assert.Equal(t, domain.TimeRange{StartMinute: 1440, EndMinute: 1560}, res.Appointment.Slot)
	assert.Equal(t, 0, res.AvailableMachines)

	again := req(2, "00:00", "02:00")
	again.CenterID = night.ID
	_, err = f.uc.Execute(ctx, again)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	early := req(3, "19:00", "20:00")
	early.CenterID = night.ID
	_, err = f.uc.Execute(ctx, early)
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
}

// Уникальный индекс пациент/дата в БД страхует проверку внутри транзакции
func TestUseCase_PatientDateIndexViolation(t *testing.T) {
	f := newFixture(t, nil)
	f.store.FailOn("Appointments.Create", appointmentRepo.ErrPatientDateTaken)

	_, err := f.uc.Execute(context.Background(), req(1, "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrPatientAlreadyBooked)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUseCase_LockKeys(t *testing.T) {
	l := &memstore.Locker{}
	f := newFixture(t, l)

	_, err := f.uc.Execute(context.Background(), req(3, "08:00", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"patient:3:2025-10-15", "center:1:2025-10-15"}}, l.Keys())

	l.FailWith(locker.ErrLockNotAcquired)
	_, err = f.uc.Execute(context.Background(), req(4, "08:00", "09:00"))
	assert.ErrorIs(t, err, ErrResourceBusy)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestUseCase_ConcurrentBookingsRespectCapacity(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	f := newFixture(t, locker.NewRedisLocker(client, locker.DefaultConfig(), nil))

	const callers = 5
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Execute(context.Background(), req(int64(i+1), "09:00", "10:00"))
		}(i)
	}
	close(start)
	wg.Wait()

	booked := 0
	for _, err := range errs {
		if err == nil {
			booked++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	}
	assert.Equal(t, 2, booked)

	active, err := f.store.Appointments().ListActiveByCenterAndDate(context.Background(), f.center.ID, today)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
