// Package scheduler refreshes the standings caches in the background so
// request paths rarely wait on upstream.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/okian/livetable/pkg/logger"
	"github.com/okian/livetable/pkg/metrics"
)

// ErrInterval is returned for a non-positive warm interval.
var ErrInterval = errors.New("warm interval must be positive")

// Warmer refreshes whatever cache entries are stale.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Scheduler runs a Warmer on a fixed interval.
type Scheduler struct {
	s        gocron.Scheduler
	warmer   Warmer
	interval time.Duration
	timeout  time.Duration
	logger   logger.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTimeout bounds each warm run. Defaults to the interval.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler that calls warmer.Warm every interval.
func New(warmer Warmer, interval time.Duration, opts ...Option) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrInterval
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	sch := &Scheduler{
		s:        s,
		warmer:   warmer,
		interval: interval,
		timeout:  interval,
	}
	for _, opt := range opts {
		opt(sch)
	}
	if sch.logger == nil {
		sch.logger = logger.Get()
	}
	return sch, nil
}

// Start registers the warm job, runs it once immediately, and starts the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.warm),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create warm job: %w", err)
	}
	s.s.Start()
	return nil
}

// Stop waits for a running job and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.warmer.Warm(ctx); err != nil {
		metrics.RecordWarmRun("error")
		s.logger.Warn(ctx, "cache warm failed", logger.Error(err))
		return
	}
	metrics.RecordWarmRun("ok")
}
