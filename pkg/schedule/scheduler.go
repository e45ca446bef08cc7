package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feedscraper/pkg/logger"

	"github.com/go-co-op/gocron"
)

// Job is a unit of periodic work
type Job func(ctx context.Context) error

// Scheduler runs periodic collection jobs. Every job runs in singleton
// mode: a run that is still going when the next one is due delays it
// instead of overlapping.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	ctx       context.Context
	log       logger.Logger

	mu      sync.Mutex
	stopped bool
	running sync.WaitGroup
}

// NewScheduler creates a scheduler whose jobs share ctx
func NewScheduler(ctx context.Context, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(ctx)

	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
		log:       log.WithField("component", "schedule"),
	}
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops scheduling new runs, waits for running jobs to return and
// then cancels the shared job context.
func (s *Scheduler) Stop() {
	s.halt()
	s.scheduler.Stop()
	s.running.Wait()
	s.cancel()
}

// Abort cancels running jobs, then stops the scheduler
func (s *Scheduler) Abort() {
	s.halt()
	s.cancel()
	s.scheduler.Stop()
	s.running.Wait()
}

func (s *Scheduler) halt() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// begin registers a run unless the scheduler is stopping
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.running.Add(1)
	return true
}

// ScheduleInterval runs job every interval, starting immediately
func (s *Scheduler) ScheduleInterval(tag string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	_, err := s.scheduler.Every(interval).Tag(tag).Do(func() {
		if !s.begin() {
			return
		}
		defer s.running.Done()

		start := time.Now()
		log := s.log.WithField("job", tag)
		log.Debug("Scheduled job started")

		if err := job(s.ctx); err != nil {
			log.WithError(err).Error("Scheduled job failed")
			return
		}
		log.WithField("duration", time.Since(start)).Info("Scheduled job finished")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", tag, err)
	}
	return nil
}

// RemoveJob removes a scheduled job by tag
func (s *Scheduler) RemoveJob(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}

// NextRun returns when the tagged job runs next
func (s *Scheduler) NextRun(tag string) (time.Time, bool) {
	jobs, err := s.scheduler.FindJobsByTag(tag)
	if err != nil || len(jobs) == 0 {
		return time.Time{}, false
	}
	return jobs[0].NextRun(), true
}

// GetJobs returns all scheduled jobs
func (s *Scheduler) GetJobs() []*gocron.Job {
	return s.scheduler.Jobs()
}
