// Package sweeper deactivates flights that have departed or sold out.
// The sweep only flips the availability flag; seat counts change through
// bookings alone.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/skyfare/flightbooking/internal/repository"
)

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Sweeper struct {
	flights repository.FlightRepository
	cache   Cache
	now     func() time.Time
}

type Option func(*Sweeper)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func New(flights repository.FlightRepository, cache Cache, opts ...Option) *Sweeper {
	s := &Sweeper{flights: flights, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep marks departed and sold-out flights unavailable and returns the
// number of flights updated. A failure on one flight is logged and the
// sweep moves on; the next tick retries it. Running the sweep twice in a
// row updates nothing the second time.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.flights.ListSweepCandidates(ctx, now)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range candidates {
		ok, err := s.flights.MarkUnavailable(ctx, id, now)
		if err != nil {
			log.Printf("sweep flight %d: %v", id, err)
			continue
		}
		if ok {
			updated++
		}
	}

	if updated > 0 && s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			log.Printf("sweep: invalidate flights cache: %v", err)
		}
	}
	return updated, nil
}

// Run executes the sweep on the given interval until the context is
// canceled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			updated, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("availability sweep error: %v", err)
				continue
			}
			if updated > 0 {
				log.Printf("availability sweep deactivated %d flights", updated)
			}
		case <-ctx.Done():
			return
		}
	}
}
