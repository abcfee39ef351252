package schedule

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron specs ("@every 5m", "0 3 * * *"). Job errors
// are logged and swallowed so one failed run never blocks the next; a run
// that overlaps a still-active previous run is skipped.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

func (s *Scheduler) AddJob(job Job, spec string) error {
	if _, err := s.cron.AddFunc(spec, s.wrap(job)); err != nil {
		return err
	}
	slog.Info("job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

// Start begins dispatching jobs. The context is handed to every job run and
// should be cancelled at shutdown, before Stop.
func (s *Scheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	s.cron.Start()
}

// Stop halts dispatching and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) wrap(job Job) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			slog.Info("job skipped: previous run still active", "job", job.Name())
			return
		}
		defer running.Store(false)

		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			slog.Error("job failed", "job", job.Name(), "duration", time.Since(start), "err", err)
			return
		}
		slog.Debug("job finished", "job", job.Name(), "duration", time.Since(start))
	}
}
