package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_Transitions(t *testing.T) {
	assert.True(t, AppointmentScheduled.CanTransitionTo(AppointmentInProgress))
	assert.True(t, AppointmentScheduled.CanTransitionTo(AppointmentCancelled))
	assert.True(t, AppointmentInProgress.CanTransitionTo(AppointmentCompleted))
	assert.False(t, AppointmentInProgress.CanTransitionTo(AppointmentCancelled))
	assert.False(t, AppointmentScheduled.CanTransitionTo(AppointmentScheduled))

	all := []AppointmentStatus{AppointmentScheduled, AppointmentInProgress, AppointmentCompleted, AppointmentCancelled, AppointmentTerminated}
	for _, terminal := range []AppointmentStatus{AppointmentCompleted, AppointmentCancelled, AppointmentTerminated} {
		assert.True(t, terminal.IsTerminal())
		for _, next := range all {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}

func TestIsDateInPast(t *testing.T) {
	now := time.Date(2025, 10, 15, 23, 59, 0, 0, time.UTC)

	assert.False(t, IsDateInPast(time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), now))
	assert.True(t, IsDateInPast(time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, IsDateInPast(time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC), now))
}
