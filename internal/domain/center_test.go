package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DialysisService/pkg/types"
)

func TestCenterConfig_Slots(t *testing.T) {
	tests := []struct {
		name      string
		open      types.TimeString
		close     types.TimeString
		duration  int
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{name: "even window", open: "08:00", close: "12:00", duration: 60, wantCount: 4, wantFirst: "08:00-09:00", wantLast: "11:00-12:00"},
		{name: "partial trailing slot dropped", open: "08:00", close: "12:30", duration: 60, wantCount: 4, wantFirst: "08:00-09:00", wantLast: "11:00-12:00"},
		{name: "crossing midnight", open: "22:00", close: "02:00", duration: 120, wantCount: 2, wantFirst: "22:00-00:00", wantLast: "00:00-02:00"},
		{name: "window shorter than slot", open: "08:00", close: "08:30", duration: 60, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewCenterConfig(tt.open, tt.close, tt.duration)
			require.NoError(t, err)

			slots := cfg.Slots()
			require.Len(t, slots, tt.wantCount)
			assert.LessOrEqual(t, len(slots)*tt.duration, cfg.CloseMinute-cfg.OpenMinute)

			for i, s := range slots {
				assert.LessOrEqual(t, s.EndMinute, cfg.CloseMinute)
				if i > 0 {
					assert.Less(t, slots[i-1].StartMinute, s.StartMinute)
				}
			}
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, slots[0].String())
				assert.Equal(t, tt.wantLast, slots[len(slots)-1].String())
			}
		})
	}
}

func TestCenterConfig_Validate(t *testing.T) {
	_, err := NewCenterConfig("08:00", "12:00", 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewCenterConfig("8am", "12:00", 60)
	assert.ErrorIs(t, err, ErrValidation)

	cfg, err := NewCenterConfig("20:00", "20:00", 60)
	require.NoError(t, err)
	assert.True(t, cfg.CrossesMidnight())
	assert.Equal(t, 24*60, cfg.CloseMinute-cfg.OpenMinute)
}

func TestTimeRange(t *testing.T) {
	_, err := ParseTimeRange("10:00", "10:00")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseTimeRange("11:00", "10:00")
	assert.ErrorIs(t, err, ErrValidation)

	night, err := ParseTimeRange("23:00", "25:00")
	require.NoError(t, err)
	assert.Equal(t, 120, night.Duration())
	assert.Equal(t, "23:00-01:00", night.String())

	a := TimeRange{StartMinute: 600, EndMinute: 660}
	assert.True(t, a.Overlaps(TimeRange{StartMinute: 630, EndMinute: 690}))
	assert.True(t, a.Overlaps(a))
	assert.False(t, a.Overlaps(TimeRange{StartMinute: 660, EndMinute: 720}), "touching ranges do not overlap")
	assert.False(t, a.Overlaps(TimeRange{StartMinute: 540, EndMinute: 600}))

	assert.True(t, a.Within(TimeRange{StartMinute: 480, EndMinute: 720}))
	assert.False(t, night.Within(TimeRange{StartMinute: 1200, EndMinute: 1440}))
}

func TestTimeRange_ResolveIn(t *testing.T) {
	overnight := TimeRange{StartMinute: 1200, EndMinute: 1560}
	day := TimeRange{StartMinute: 480, EndMinute: 1200}

	tests := []struct {
		name   string
		rng    TimeRange
		window TimeRange
		want   TimeRange
	}{
		{name: "after midnight moves to next day", rng: TimeRange{StartMinute: 0, EndMinute: 120}, window: overnight, want: TimeRange{StartMinute: 1440, EndMinute: 1560}},
		{name: "before midnight unchanged", rng: TimeRange{StartMinute: 1260, EndMinute: 1380}, window: overnight, want: TimeRange{StartMinute: 1260, EndMinute: 1380}},
		{name: "already next day unchanged", rng: TimeRange{StartMinute: 1380, EndMinute: 1500}, window: overnight, want: TimeRange{StartMinute: 1380, EndMinute: 1500}},
		{name: "day window unchanged", rng: TimeRange{StartMinute: 60, EndMinute: 120}, window: day, want: TimeRange{StartMinute: 60, EndMinute: 120}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rng.ResolveIn(tt.window))
		})
	}
}
