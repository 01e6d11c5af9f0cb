package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: domain.ErrConflict},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: domain.ErrConflict},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: domain.ErrAlreadyExists},
		{name: "foreign key", err: &pq.Error{Code: "23503"}, want: domain.ErrValidation},
		{name: "exclusion", err: &pq.Error{Code: "23P01"}, want: domain.ErrValidation},
		{name: "wrapped pq error", err: fmt.Errorf("exec: %w", &pq.Error{Code: "40001"}), want: domain.ErrConflict},
		{name: "plain error", err: errors.New("connection reset"), want: domain.ErrDatabase},
		{name: "already classified", err: fmt.Errorf("%w: unit", domain.ErrNotFound), want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, Classify(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "sessions_appointment_id_key"})
	assert.True(t, IsUniqueViolation(err, "sessions_appointment_id_key"))
	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, "other"))
	assert.False(t, IsUniqueViolation(errors.New("x"), ""))
}

func TestIsExclusionViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23P01", Constraint: "asset_assignments_active_overlap_excl"})
	assert.True(t, IsExclusionViolation(err, "asset_assignments_active_overlap_excl"))
	assert.False(t, IsExclusionViolation(err, "other"))
	assert.False(t, IsUniqueViolation(err, ""))
	assert.False(t, IsExclusionViolation(&pq.Error{Code: "23505"}, ""))
}
