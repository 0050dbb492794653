package notify_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressGroupRunsAllTasks(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	var counter atomic.Int32

	group := notify.NewProgressGroup("Deploying components", "📦", &buf, nil)

	err := group.Run(context.Background(),
		notify.ProgressTask{Name: "quay", Fn: func(_ context.Context) error {
			counter.Add(1)

			return nil
		}},
		notify.ProgressTask{Name: "acs", Fn: func(_ context.Context) error {
			counter.Add(1)

			return nil
		}},
	)

	require.NoError(t, err)
	assert.Equal(t, int32(2), counter.Load())
	assert.Contains(t, buf.String(), "quay, acs deployed")
}

func TestProgressGroupPropagatesTaskError(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	group := notify.NewProgressGroup("Deploying components", "", &buf, nil)

	err := group.Run(context.Background(),
		notify.ProgressTask{Name: "tpa", Fn: func(_ context.Context) error {
			return assert.AnError
		}},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tpa")
	assert.Contains(t, buf.String(), "failed to deploy")
}

func TestProgressGroupKeepsSiblingsRunningAfterFailure(t *testing.T) {
	t.Parallel()

	var buf strings.Builder

	var completed atomic.Int32

	failed := make(chan struct{})

	group := notify.NewProgressGroup("Deploying components", "", &buf, nil)

	err := group.Run(context.Background(),
		notify.ProgressTask{Name: "quay", Fn: func(_ context.Context) error {
			close(failed)

			return assert.AnError
		}},
		notify.ProgressTask{Name: "mlflow", Fn: func(ctx context.Context) error {
			<-failed

			if ctx.Err() != nil {
				return ctx.Err()
			}

			completed.Add(1)

			return nil
		}},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quay")
	assert.Equal(t, int32(1), completed.Load())
}

func TestProgressGroupNoTasks(t *testing.T) {
	t.Parallel()

	group := notify.NewProgressGroup("Deploying components", "", &strings.Builder{}, nil)

	err := group.Run(context.Background())

	require.NoError(t, err)
}
