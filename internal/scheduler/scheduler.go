package scheduler

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type taskFn func(ctx context.Context) error

// Scheduler wraps gocron with singleton-mode jobs and panic recovery, so one
// slow or failing refresh can never stack up behind itself.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *zap.Logger
}

// New creates a stopped scheduler; call Start after registering jobs.
func New(log *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: sched, log: log}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	_ = s.scheduler.Shutdown()
}

// NewIntervalJob registers a job that runs every interval. With
// startImmediately the first run happens right after Start.
func (s *Scheduler) NewIntervalJob(name string, fn taskFn, interval time.Duration, startImmediately bool) error {
	opts := []gocron.JobOption{gocron.WithSingletonMode(gocron.LimitModeReschedule)}
	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.taskWithRecover(fn, name)),
		opts...,
	)
	return err
}

func (s *Scheduler) taskWithRecover(fn taskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic recovered in scheduler job",
					zap.String("job", jobName),
					zap.Any("panic", r),
					zap.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		if err := fn(ctx); err != nil {
			s.log.Warn("job failed", zap.String("job", jobName), zap.Error(err))
			return
		}
		s.log.Debug("job completed", zap.String("job", jobName))
	}
}
