package netretry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rosa-labs/chainsail/pkg/client/netretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"bad gateway", errors.New("502 Bad Gateway"), true},
		{"io timeout", errors.New("read: i/o timeout"), true},
		{"http 503 code", errors.New("unexpected status 503"), true},
		{"port number not status", errors.New("registry localhost:5000 rejected credentials"), false},
		{"auth failure", errors.New("401 unauthorized"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.retryable, netretry.IsRetryable(test.err))
		})
	}
}

func TestExponentialDelay(t *testing.T) {
	t.Parallel()

	base := 2 * time.Second
	maxWait := 10 * time.Second

	assert.Equal(t, 2*time.Second, netretry.ExponentialDelay(1, base, maxWait))
	assert.Equal(t, 4*time.Second, netretry.ExponentialDelay(2, base, maxWait))
	assert.Equal(t, 8*time.Second, netretry.ExponentialDelay(3, base, maxWait))
	assert.Equal(t, 10*time.Second, netretry.ExponentialDelay(4, base, maxWait))
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	t.Parallel()

	calls := 0
	permanent := errors.New("403 forbidden")

	err := netretry.Do(
		context.Background(),
		3,
		time.Millisecond,
		time.Millisecond,
		func(_ context.Context) error {
			calls++

			return permanent
		},
	)

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	calls := 0

	err := netretry.Do(
		context.Background(),
		3,
		time.Millisecond,
		time.Millisecond,
		func(_ context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection reset by peer")
			}

			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0

	err := netretry.Do(
		context.Background(),
		2,
		time.Millisecond,
		time.Millisecond,
		func(_ context.Context) error {
			calls++

			return errors.New("503 Service Unavailable")
		},
	)

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
