package application

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the refresh period when none is configured.
const DefaultInterval = 60 * time.Second

// Scheduler runs a function once right away and then on every tick. It never
// waits for the previous run: slow runs simply overlap with newer ones.
type Scheduler struct {
	log       *zap.Logger
	fn        func(context.Context)
	pauseFile string

	reset chan time.Duration

	mu    sync.Mutex
	every time.Duration

	wg sync.WaitGroup
}

func NewScheduler(l *zap.Logger, every time.Duration, pauseFile string, fn func(context.Context)) *Scheduler {
	if every <= 0 {
		every = DefaultInterval
	}
	return &Scheduler{
		log: l, fn: fn, every: every, pauseFile: pauseFile,
		reset: make(chan time.Duration, 1),
	}
}

// UpdateInterval changes the period of a running scheduler, starting from the
// next tick.
func (s *Scheduler) UpdateInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d == s.every {
		return
	}
	s.every = d

	select {
	case <-s.reset:
	default:
	}
	s.reset <- d
	s.log.Info("interval updated", zap.Duration("every", d))
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.every
}

// Run blocks until ctx is done. Runs still in flight are not waited for; see
// Wait.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.Interval())
	defer t.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.reset:
			t.Reset(d)
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// Trigger starts one run now, outside the tick schedule. The pause file is
// not consulted: an explicit request wins.
func (s *Scheduler) Trigger(ctx context.Context) {
	s.start(ctx)
}

// Wait blocks until every started run has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.isPaused() {
		s.log.Debug("paused: skipping refresh")
		return
	}
	s.start(ctx)
}

func (s *Scheduler) start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fn(ctx)
	}()
}

func (s *Scheduler) isPaused() bool {
	if s.pauseFile == "" {
		return false
	}
	_, err := os.Stat(s.pauseFile)
	return err == nil
}
