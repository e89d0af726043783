package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/thesor/chesswatch/internal/logger"
)

// Scheduler fires a callback on a standard five-field cron schedule.
// Runs never overlap: the next timer is armed only after the current
// run returns.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	run      func(context.Context) error
	log      *logger.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewScheduler parses the cron expression eagerly; a bad spec is a
// startup error, not a runtime one.
func NewScheduler(spec string, run func(context.Context) error) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	return &Scheduler{
		spec:     spec,
		schedule: schedule,
		run:      run,
		log:      logger.Default().WithPrefix("scheduler"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the schedule loop. The loop ends when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.log.Info("schedule %q active, first run at %s",
		s.spec, s.schedule.Next(time.Now()).Format(time.RFC3339))

	for {
		timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			start := time.Now()
			if err := s.run(ctx); err != nil {
				s.log.Error("scheduled run failed: %v", err)
			} else {
				s.log.Debug("scheduled run finished in %v", time.Since(start))
			}
		}
	}
}

// Stop halts the loop and waits for it to exit. Safe to call more
// than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}
