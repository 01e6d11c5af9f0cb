package cycles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/integrations/patientservice"
	"github.com/m04kA/SMC-DialysisService/internal/testutil/memstore"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
)

type fakeCounter struct {
	completed int
	started   time.Time
	err       error
	calls     int
}

func (f *fakeCounter) IncrementTreatmentCycle(ctx context.Context, patientID int64) (*patientservice.CycleProgress, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.completed++
	return &patientservice.CycleProgress{PatientID: patientID, CompletedSessions: f.completed, CycleStartedAt: f.started}, nil
}

func TestTracker_RecordCompletion(t *testing.T) {
	started := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		before        int
		now           time.Time
		wantRemaining int
		wantComplete  bool
	}{
		{name: "in progress", before: 10, now: started.AddDate(0, 0, 20), wantRemaining: 7, wantComplete: false},
		{name: "quota reached in window", before: 17, now: started.AddDate(0, 0, 40), wantRemaining: 0, wantComplete: true},
		{name: "over quota clamps", before: 20, now: started.AddDate(0, 0, 41), wantRemaining: 0, wantComplete: true},
		{name: "quota reached after window", before: 17, now: started.AddDate(0, 0, 43), wantRemaining: 0, wantComplete: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &fakeCounter{completed: tt.before, started: started}
			tracker := NewTracker(counter, domain.DefaultCyclePolicy(), logger.NewNop()).
				WithTimeProvider(memstore.NewClock(tt.now))

			notice, err := tracker.RecordCompletion(context.Background(), 42)
			require.NoError(t, err)
			assert.Equal(t, int64(42), notice.PatientID)
			assert.Equal(t, tt.before+1, notice.CompletedSessions)
			assert.Equal(t, 18, notice.SessionsPerCycle)
			assert.Equal(t, tt.wantRemaining, notice.RemainingSessions)
			assert.Equal(t, tt.wantComplete, notice.CycleComplete)
		})
	}
}

func TestTracker_RecordCompletion_CounterFailure(t *testing.T) {
	counter := &fakeCounter{err: patientservice.ErrUnavailable}
	tracker := NewTracker(counter, domain.CyclePolicy{SessionsPerCycle: 12, CycleDays: 28}, logger.NewNop())

	_, err := tracker.RecordCompletion(context.Background(), 1)
	assert.True(t, errors.Is(err, patientservice.ErrUnavailable))
	assert.Equal(t, 12, tracker.Policy().SessionsPerCycle)
}
