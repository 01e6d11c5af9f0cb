package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMinutes_NormalizesAcrossMidnight(t *testing.T) {
	tests := []struct {
		minutes int
		want    TimeString
	}{
		{0, "00:00"},
		{8 * 60, "08:00"},
		{23*60 + 30, "23:30"},
		{24 * 60, "00:00"},
		{25*60 + 15, "01:15"},
		{-30, "23:30"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FromMinutes(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts, err := NewTimeStringFromString("10:30")
	require.NoError(t, err)

	got, err := ts.AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("11:15"), got)

	_, err = ts.AddMinutes(14 * 60)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Validate(t *testing.T) {
	_, err := NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	assert.NoError(t, TimeString("09:05").Validate())
	assert.Error(t, TimeString("9am").Validate())
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan("08:15:00"))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 17, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("17:45"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("08:00").IsBefore("09:00"))
	assert.True(t, TimeString("12:00").IsAfter("11:59"))
	assert.False(t, TimeString("12:00").IsAfter("12:00"))
}

func TestParseElapsedMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:30", want: 510},
		{in: "25:00", want: 1500},
		{in: "47:59", want: 2879},
		{in: "48:00", wantErr: true},
		{in: "8:30", wantErr: true},
		{in: "08:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "-1:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseElapsedMinutes(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, FormatElapsedMinutes(got))
		})
	}
}
