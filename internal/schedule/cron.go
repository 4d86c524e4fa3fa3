// Package schedule runs periodic jobs on a cron expression.
package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler fires a job on a standard 5-field cron schedule.
type Scheduler struct {
	sched    cron.Schedule
	job      Job
	name     string
	stopChan chan struct{}
	doneChan chan struct{}
}

// New parses a 5-field cron expression (minute hour dom month dow) and
// returns a scheduler for the job.
func New(expr, name string, job Job) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return &Scheduler{
		sched:    sched,
		job:      job,
		name:     name,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start runs the schedule loop until the context is cancelled or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.doneChan)

	for {
		now := time.Now()
		next := s.sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next %s run at %s (in %s)", s.name, next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("Scheduler %s stopped: context cancelled", s.name)
			return
		case <-s.stopChan:
			timer.Stop()
			log.Printf("Scheduler %s stopped: stop signal received", s.name)
			return
		case <-timer.C:
			log.Printf("Running scheduled %s", s.name)
			s.runJob(ctx)
		}
	}
}

// runJob contains a panicking job so one bad run cannot take down the
// schedule loop.
func (s *Scheduler) runJob(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: scheduled %s panicked: %v", s.name, r)
		}
	}()
	s.job(ctx)
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.doneChan
}
