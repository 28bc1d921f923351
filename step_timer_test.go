package volumeshader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStepTimer_Tick(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	timer := NewStepTimerWithClock(clock.now)

	assert.Equal(t, 0.0, timer.TotalSeconds())
	assert.Equal(t, uint64(0), timer.FrameCount())

	clock.advance(250 * time.Millisecond)
	timer.Tick()
	assert.InDelta(t, 0.25, timer.ElapsedSeconds(), 1e-9)
	assert.InDelta(t, 0.25, timer.TotalSeconds(), 1e-9)

	clock.advance(2 * time.Second)
	timer.Tick()
	assert.InDelta(t, 2.0, timer.ElapsedSeconds(), 1e-9)
	assert.InDelta(t, 2.25, timer.TotalSeconds(), 1e-9)
	assert.Equal(t, uint64(2), timer.FrameCount())
}

func TestStepTimer_ClockGoingBackwards(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	timer := NewStepTimerWithClock(clock.now)

	clock.advance(-time.Second)
	timer.Tick()
	assert.Equal(t, 0.0, timer.ElapsedSeconds())
}
