package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankUnits(t *testing.T) {
	units := []IndividualUnit{
		{ID: 1, CurrentUsage: 0, MaxUsage: 10},
		{ID: 2, CurrentUsage: 3, MaxUsage: 10},
		{ID: 3, CurrentUsage: 10, MaxUsage: 10},
		{ID: 4, CurrentUsage: 7, MaxUsage: 10},
		{ID: 5, CurrentUsage: 0, MaxUsage: 10},
		{ID: 6, CurrentUsage: 3, MaxUsage: 5},
	}

	ranked := RankUnits(units)

	ids := make([]int64, len(ranked))
	for i, u := range ranked {
		ids[i] = u.ID
	}
	assert.Equal(t, []int64{4, 2, 6, 1, 5, 3}, ids)
	assert.Equal(t, int64(1), units[0].ID, "input is not reordered")
}

func TestIndividualUnit_IsSelectable(t *testing.T) {
	assert.True(t, (&IndividualUnit{Status: UnitAvailable, CurrentUsage: 2, MaxUsage: 3}).IsSelectable())
	assert.False(t, (&IndividualUnit{Status: UnitAvailable, CurrentUsage: 3, MaxUsage: 3}).IsSelectable())
	assert.False(t, (&IndividualUnit{Status: UnitDiscardRequested, CurrentUsage: 1, MaxUsage: 3}).IsSelectable())
	assert.False(t, (&IndividualUnit{Status: UnitInUse, CurrentUsage: 1, MaxUsage: 3}).IsSelectable())
}
