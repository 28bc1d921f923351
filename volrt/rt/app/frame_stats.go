package app

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// FrameStats collects per frame CPU scope timings and counters. Init stages
// report from the loader goroutine, so access is locked.
type FrameStats struct {
	mu         sync.Mutex
	now        func() time.Time
	scopes     map[string]time.Duration
	startTimes map[string]time.Time
	counts     map[string]int
	order      []string

	frames      int
	windowStart time.Time
	fps         float64
}

func NewFrameStats() *FrameStats {
	return NewFrameStatsWithClock(time.Now)
}

func NewFrameStatsWithClock(now func() time.Time) *FrameStats {
	return &FrameStats{
		now:         now,
		scopes:      make(map[string]time.Duration),
		startTimes:  make(map[string]time.Time),
		counts:      make(map[string]int),
		order:       make([]string, 0),
		windowStart: now(),
	}
}

func (s *FrameStats) BeginScope(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startTimes[name] = s.now()
	for _, n := range s.order {
		if n == name {
			return
		}
	}
	s.order = append(s.order, name)
}

func (s *FrameStats) EndScope(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if start, ok := s.startTimes[name]; ok {
		s.scopes[name] = s.now().Sub(start)
		delete(s.startTimes, name)
	}
}

func (s *FrameStats) Scope(name string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scopes[name]
}

func (s *FrameStats) SetCount(name string, count int) {
	s.mu.Lock()
	s.counts[name] = count
	s.mu.Unlock()
}

// FrameDone counts a presented frame. It returns true once per second, when
// FPS has been recomputed.
func (s *FrameStats) FrameDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++
	elapsed := s.now().Sub(s.windowStart)
	if elapsed < time.Second {
		return false
	}
	s.fps = float64(s.frames) / elapsed.Seconds()
	s.frames = 0
	s.windowStart = s.now()
	return true
}

func (s *FrameStats) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

// Reset keeps scope order and clears timings, so a restored device does not
// report scopes from the lost one.
func (s *FrameStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.scopes {
		s.scopes[k] = 0
	}
}

func (s *FrameStats) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("Timings (CPU):\n")
	for _, name := range s.order {
		ms := float64(s.scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	if len(s.counts) > 0 {
		sb.WriteString("Stats:\n")
		keys := make([]string, 0, len(s.counts))
		for k := range s.counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, s.counts[k]))
		}
	}
	return sb.String()
}
