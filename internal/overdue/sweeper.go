// Package overdue drives the periodic overdue sweep of the task store.
package overdue

import (
	"context"
	"io"
	"log"
	"time"
)

// DefaultInterval is how often the board re-checks deadlines.
const DefaultInterval = 24 * time.Hour

// Refresher is the store operation the sweeper calls.
type Refresher interface {
	RefreshOverdue(now time.Time) int
}

// Sweeper calls RefreshOverdue once at start and then every Interval.
type Sweeper struct {
	Store    Refresher
	Interval time.Duration
	Now      func() time.Time
	Logger   *log.Logger
}

// New returns a sweeper using the wall clock.
func New(store Refresher, interval time.Duration, logger *log.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sweeper{Store: store, Interval: interval, Now: time.Now, Logger: logger}
}

// Sweep runs a single pass and returns the number of tasks flagged.
func (s *Sweeper) Sweep() int {
	changed := s.Store.RefreshOverdue(s.Now())
	if changed > 0 {
		s.Logger.Printf("overdue: %d task(s) flagged", changed)
	}
	return changed
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.Sweep()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}
