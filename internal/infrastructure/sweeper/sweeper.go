// Package sweeper deletes expired session records in the background.
//
// The sweep is an operational optimisation, not a correctness mechanism:
// the session store already filters on expiry at query time, so an expired
// record behaves as absent whether or not the sweeper has reached it. The
// sweep only keeps the collection from growing without bound.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/srushti128/kodbank/internal/api/metrics"
	"github.com/srushti128/kodbank/internal/core/ports"
)

const defaultInterval = 10 * time.Minute

// Locker gates sweep passes so only one instance sweeps at a time.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Sweeper periodically deletes session records past their expiry.
type Sweeper struct {
	sessions ports.SessionRepository
	lock     Locker
	interval time.Duration
	log      zerolog.Logger
}

// New creates a Sweeper. If interval <= 0, defaultInterval is used.
func New(sessions ports.SessionRepository, lock Locker, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{sessions: sessions, lock: lock, interval: interval, log: log}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("sweeper stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single sweep pass: take the leader lock, delete
// everything past expiry, release. Failures are logged and retried on the
// next tick; nothing on a request path depends on this succeeding.
func (s *Sweeper) RunOnce(ctx context.Context) {
	ok, err := s.lock.Acquire(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("sweep lock unavailable, skipping pass")
		return
	}
	if !ok {
		s.log.Debug().Msg("another instance holds the sweep lock")
		return
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.log.Warn().Err(err).Msg("sweep lock release failed")
		}
	}()

	start := time.Now()
	deleted, err := s.sessions.DeleteExpired(ctx, time.Now().UTC())
	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Error().Err(err).Msg("sweep pass failed")
		return
	}

	metrics.SessionsSweptTotal.Add(float64(deleted))
	if deleted > 0 {
		metrics.SessionsRevokedTotal.WithLabelValues("sweep").Add(float64(deleted))
		s.log.Info().Int64("deleted", deleted).Msg("expired sessions swept")
	}
}
