package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("patients")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Minute
	b := New(cfg, nil)

	failing := func() (int, error) { return 0, errors.New("connection refused") }

	_, err := Execute(b, failing)
	require.Error(t, err)
	_, err = Execute(b, failing)
	require.Error(t, err)

	_, err = Execute(b, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_BusinessErrorsDoNotTrip(t *testing.T) {
	cfg := DefaultConfig("patients")
	cfg.ConsecutiveFailures = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errNotFound) }
	b := New(cfg, nil)

	for i := 0; i < 3; i++ {
		_, err := Execute(b, func() (string, error) { return "", errNotFound })
		assert.ErrorIs(t, err, errNotFound)
	}

	got, err := Execute(b, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, "closed", b.State())
}
