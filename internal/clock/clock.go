// Package clock supplies the current time to the session services and
// interprets the scheduled-start timestamp of a session.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock returns the time a state transition is recorded at.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// System reads the local wall clock.
type System struct{}

func (System) Now(context.Context) (time.Time, error) {
	return time.Now().UTC(), nil
}

// Func adapts a store query such as "SELECT now()" into a Clock.
type Func func(ctx context.Context) (time.Time, error)

func (f Func) Now(ctx context.Context) (time.Time, error) {
	now, err := f(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return now.UTC(), nil
}

// Manual is a settable clock for tests and simulations.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now.UTC()}
}

func (m *Manual) Now(context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now, nil
}

func (m *Manual) Set(now time.Time) {
	m.mu.Lock()
	m.now = now.UTC()
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// EarliestStart is the first instant a session scheduled at scheduled may
// be started.
func EarliestStart(scheduled time.Time, window time.Duration) time.Time {
	return scheduled.Add(-window)
}

// ElapsedMinutes returns whole minutes between start and end, truncated
// toward zero. A negative span (clock skew) counts as zero.
func ElapsedMinutes(start, end time.Time) int {
	elapsed := end.Sub(start)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}
