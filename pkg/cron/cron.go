// Package cron runs background jobs on a schedule.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler is a cron-like job scheduler.
type Scheduler struct {
	*cron.Cron
	logger *log.Logger
}

// cronLogger adapts a charmbracelet logger to cron.Logger.
type cronLogger struct {
	logger *log.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error logs an error condition.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

// NewScheduler returns a new Scheduler. Jobs that panic are recovered and
// a job still running when its next tick comes is skipped.
func NewScheduler(ctx context.Context) *Scheduler {
	logger := log.FromContext(ctx).WithPrefix("cron")
	clog := cronLogger{logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		logger: logger,
	}
}

// Shutdown stops the Scheduler and waits up to 30 seconds for running jobs.
func (s *Scheduler) Shutdown() {
	ctx, cancel := context.WithTimeout(s.Cron.Stop(), 30*time.Second)
	defer cancel()
	<-ctx.Done()
}

// Start starts the Scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
}

// AddFunc schedules fn under name. An empty spec disables the job and
// returns an ID of 0.
func (s *Scheduler) AddFunc(name, spec string, fn func()) (int, error) {
	if spec == "" {
		s.logger.Debug("job disabled", "job", name)
		return 0, nil
	}

	id, err := s.Cron.AddFunc(spec, fn)
	if err != nil {
		return 0, fmt.Errorf("schedule job %q: %w", name, err)
	}

	s.logger.Debug("job scheduled", "job", name, "spec", spec)
	return int(id), nil
}

// Remove removes a job from the Scheduler.
func (s *Scheduler) Remove(id int) {
	s.Cron.Remove(cron.EntryID(id))
}
