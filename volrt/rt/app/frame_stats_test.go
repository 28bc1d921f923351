package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time { return c.t }

func TestFrameStats_Scopes(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	s := NewFrameStatsWithClock(clock.now)

	s.BeginScope("update")
	clock.t = clock.t.Add(3 * time.Millisecond)
	s.EndScope("update")

	s.BeginScope("render")
	clock.t = clock.t.Add(1500 * time.Microsecond)
	s.EndScope("render")

	s.BeginScope("update")
	s.EndScope("update")

	assert.Equal(t, time.Duration(0), s.Scope("update"))
	assert.Equal(t, 1500*time.Microsecond, s.Scope("render"))

	out := s.String()
	assert.Less(t, strings.Index(out, "update"), strings.Index(out, "render"), "scopes keep first use order")
	assert.Contains(t, out, "1.50 ms")
}

func TestFrameStats_EndWithoutBegin(t *testing.T) {
	s := NewFrameStats()
	s.EndScope("missing")
	assert.Equal(t, time.Duration(0), s.Scope("missing"))
}

func TestFrameStats_Counts(t *testing.T) {
	s := NewFrameStats()
	s.SetCount("indices", 36)
	s.SetCount("cubes", 1)

	out := s.String()
	assert.Contains(t, out, "indices")
	assert.Less(t, strings.Index(out, "cubes"), strings.Index(out, "indices"))
}

func TestFrameStats_FPS(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	s := NewFrameStatsWithClock(clock.now)

	for i := 0; i < 59; i++ {
		clock.t = clock.t.Add(10 * time.Millisecond)
		assert.False(t, s.FrameDone())
	}
	clock.t = clock.t.Add(410 * time.Millisecond)
	assert.True(t, s.FrameDone())
	assert.InDelta(t, 60.0, s.FPS(), 1e-9)
	assert.NotContains(t, s.String(), "FPS", "the app logs FPS next to the table")

	assert.False(t, s.FrameDone())
}

func TestFrameStats_Reset(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0)}
	s := NewFrameStatsWithClock(clock.now)
	s.BeginScope("render")
	clock.t = clock.t.Add(time.Millisecond)
	s.EndScope("render")

	s.Reset()
	assert.Equal(t, time.Duration(0), s.Scope("render"))
	assert.Contains(t, s.String(), "render")
}
