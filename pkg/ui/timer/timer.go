// Package timer provides simple wall-clock timing for multi-stage CLI activities.
package timer

import "time"

// Timer tracks the total duration of a command and the duration of the
// current stage within it.
type Timer interface {
	// Start begins timing. Calling Start again resets both totals.
	Start()

	// NewStage marks the beginning of a new stage.
	NewStage()

	// GetTiming returns the total elapsed duration and the elapsed duration
	// of the current stage.
	GetTiming() (total, stage time.Duration)
}

// clockTimer implements Timer using the system clock.
type clockTimer struct {
	start      time.Time
	stageStart time.Time
	now        func() time.Time
}

// New creates a Timer backed by the system clock.
func New() Timer {
	return &clockTimer{now: time.Now}
}

// NewWithClock creates a Timer with a custom clock function. Used in tests.
func NewWithClock(now func() time.Time) Timer {
	return &clockTimer{now: now}
}

func (t *clockTimer) Start() {
	t.start = t.now()
	t.stageStart = t.start
}

func (t *clockTimer) NewStage() {
	if t.start.IsZero() {
		t.Start()

		return
	}

	t.stageStart = t.now()
}

func (t *clockTimer) GetTiming() (time.Duration, time.Duration) {
	if t.start.IsZero() {
		return 0, 0
	}

	current := t.now()

	return current.Sub(t.start).Round(time.Millisecond),
		current.Sub(t.stageStart).Round(time.Millisecond)
}
