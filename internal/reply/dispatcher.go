package reply

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/edgard/shamstagram/internal/logger"
)

// immediateThreshold is the delay under which a task is started right away;
// gocron rejects one-time jobs whose start time has already passed.
const immediateThreshold = 50 * time.Millisecond

// Dispatcher runs closures after a delay, each independently cancellable.
type Dispatcher interface {
	// After schedules fn to run once after delay and returns its id.
	After(delay time.Duration, name string, fn func()) (uuid.UUID, error)
	// Cancel removes a task that has not started yet. It reports whether a
	// task was removed.
	Cancel(id uuid.UUID) bool
	// Shutdown stops accepting work and waits for running tasks.
	Shutdown() error
}

// GocronDispatcher implements Dispatcher with gocron one-time jobs. gocron
// keeps one-time jobs registered after they run, so each job removes itself
// once it has finished.
type GocronDispatcher struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewGocronDispatcher creates and starts a dedicated gocron scheduler.
func NewGocronDispatcher(log *slog.Logger) (*GocronDispatcher, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("component", "reply_dispatcher")

	s, err := gocron.NewScheduler(
		gocron.WithLogger(logger.NewGocronLogger(log)),
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	s.Start()

	return &GocronDispatcher{scheduler: s, logger: log}, nil
}

// After registers a one-time job.
func (d *GocronDispatcher) After(delay time.Duration, name string, fn func()) (uuid.UUID, error) {
	start := gocron.OneTimeJobStartImmediately()
	if delay >= immediateThreshold {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(delay))
	}

	job, err := d.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithEventListeners(
			gocron.AfterJobRuns(d.release),
			gocron.AfterJobRunsWithPanic(func(id uuid.UUID, name string, _ any) { d.release(id, name) }),
		),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	d.logger.Debug("Scheduled one-time job", "job_name", name, "job_id", job.ID(), "delay", delay)
	return job.ID(), nil
}

// release drops a job that has run. RemoveJob goes through the scheduler
// loop, so it is not called from the executor goroutine running the job.
func (d *GocronDispatcher) release(id uuid.UUID, name string) {
	go func() {
		if err := d.scheduler.RemoveJob(id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
			d.logger.Debug("Finished job not removed", "job_name", name, "job_id", id, "error", err)
		}
	}()
}

// Len returns the number of jobs the scheduler still holds.
func (d *GocronDispatcher) Len() int {
	return len(d.scheduler.Jobs())
}

// Cancel removes the job if gocron still knows it.
func (d *GocronDispatcher) Cancel(id uuid.UUID) bool {
	if err := d.scheduler.RemoveJob(id); err != nil {
		d.logger.Debug("Job not removed", "job_id", id, "error", err)
		return false
	}
	return true
}

// Shutdown waits for running jobs and stops the scheduler.
func (d *GocronDispatcher) Shutdown() error {
	if err := d.scheduler.Shutdown(); err != nil {
		d.logger.Error("Error during dispatcher shutdown", "error", err)
		return err
	}
	d.logger.Info("Reply dispatcher stopped")
	return nil
}
