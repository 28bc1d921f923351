package volumeshader

import (
	"time"
)

// StepTimer tracks frame timing for the update loop.
type StepTimer struct {
	now   func() time.Time
	start time.Time
	last  time.Time
	dt    time.Duration
	total time.Duration
	count uint64
}

func NewStepTimer() *StepTimer {
	return NewStepTimerWithClock(time.Now)
}

func NewStepTimerWithClock(now func() time.Time) *StepTimer {
	t := now()
	return &StepTimer{
		now:   now,
		start: t,
		last:  t,
	}
}

// Tick advances the timer to the current clock reading. Call once per frame.
func (t *StepTimer) Tick() {
	now := t.now()
	t.dt = now.Sub(t.last)
	if t.dt < 0 {
		t.dt = 0
	}
	t.last = now
	t.total = now.Sub(t.start)
	t.count++
}

func (t *StepTimer) ElapsedSeconds() float64 { return t.dt.Seconds() }
func (t *StepTimer) TotalSeconds() float64   { return t.total.Seconds() }
func (t *StepTimer) FrameCount() uint64      { return t.count }
