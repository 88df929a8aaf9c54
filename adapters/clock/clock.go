// Package clock provides Clock implementations.
package clock

import (
	"sync"
	"time"

	"github.com/artpar/cloudrest/ports"
)

// UTC returns the current UTC time truncated to whole seconds, the
// resolution timestamps are stored with.
type UTC struct{}

// Now returns the current time.
func (UTC) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

var _ ports.Clock = UTC{}

// Stepping is a controllable clock for testing. Every call to Now moves
// it forward by the configured step.
type Stepping struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewStepping creates a clock starting at start.
func NewStepping(start time.Time, step time.Duration) *Stepping {
	return &Stepping{current: start, step: step}
}

// Now returns the current fake time and advances it.
func (s *Stepping) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.current
	s.current = s.current.Add(s.step)
	return now
}

// Set moves the clock to t.
func (s *Stepping) Set(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
}

var _ ports.Clock = (*Stepping)(nil)
