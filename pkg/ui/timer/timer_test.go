package timer_test

import (
	"testing"
	"time"

	"github.com/rosa-labs/chainsail/pkg/ui/timer"
	"github.com/stretchr/testify/assert"
)

func TestGetTimingBeforeStart(t *testing.T) {
	t.Parallel()

	tmr := timer.New()

	total, stage := tmr.GetTiming()

	assert.Zero(t, total)
	assert.Zero(t, stage)
}

func TestGetTimingTracksStages(t *testing.T) {
	t.Parallel()

	current := time.Unix(0, 0)
	tmr := timer.NewWithClock(func() time.Time { return current })

	tmr.Start()

	current = current.Add(2 * time.Second)

	tmr.NewStage()

	current = current.Add(3 * time.Second)

	total, stage := tmr.GetTiming()

	assert.Equal(t, 5*time.Second, total)
	assert.Equal(t, 3*time.Second, stage)
}

func TestNewStageBeforeStartBehavesLikeStart(t *testing.T) {
	t.Parallel()

	current := time.Unix(0, 0)
	tmr := timer.NewWithClock(func() time.Time { return current })

	tmr.NewStage()

	current = current.Add(time.Second)

	total, stage := tmr.GetTiming()

	assert.Equal(t, time.Second, total)
	assert.Equal(t, time.Second, stage)
}
