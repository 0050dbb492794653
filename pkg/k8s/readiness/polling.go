package readiness

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is the interval between readiness checks.
const DefaultPollInterval = 5 * time.Second

// PollFunc reports whether the observed resource is ready. Returning an error
// aborts polling; transient errors should be swallowed so polling continues.
type PollFunc func(ctx context.Context) (bool, error)

// PollForReadiness polls the given function until it reports ready, the
// deadline elapses, or the context is cancelled. The first check runs
// immediately so already-ready resources do not pay the poll interval.
func PollForReadiness(ctx context.Context, deadline time.Duration, poll PollFunc) error {
	return PollForReadinessWithInterval(ctx, deadline, DefaultPollInterval, poll)
}

// PollForReadinessWithInterval is PollForReadiness with a custom poll interval.
func PollForReadinessWithInterval(
	ctx context.Context,
	deadline time.Duration,
	interval time.Duration,
	poll PollFunc,
) error {
	pollCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ready, err := poll(pollCtx)
	if err != nil {
		return err
	}

	if ready {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return fmt.Errorf("readiness polling cancelled: %w", ctx.Err())
			}

			return fmt.Errorf("%w after %s", ErrTimeoutExceeded, deadline)
		case <-ticker.C:
			ready, err := poll(pollCtx)
			if err != nil {
				return err
			}

			if ready {
				return nil
			}
		}
	}
}
