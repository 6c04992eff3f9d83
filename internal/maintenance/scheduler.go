// Package maintenance runs the periodic cleanup jobs.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/tasktrack-be/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 5 * time.Minute

// Scheduler sweeps orphaned tasks and prunes old activity on cron schedules.
type Scheduler struct {
	tasks     store.Tasks
	events    store.Events
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewScheduler creates a scheduler. The schedules use standard cron syntax
// or descriptors such as "@every 1h".
func NewScheduler(tasks store.Tasks, events store.Events, sweepSpec, pruneSpec string, retention time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		tasks:     tasks,
		events:    events,
		retention: retention,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(sweepSpec, s.sweepOrphans); err != nil {
		return nil, fmt.Errorf("invalid orphan sweep schedule %q: %w", sweepSpec, err)
	}
	if _, err := s.cron.AddFunc(pruneSpec, s.pruneEvents); err != nil {
		return nil, fmt.Errorf("invalid event prune schedule %q: %w", pruneSpec, err)
	}
	return s, nil
}

// Run executes every job once and then blocks running them on schedule
// until Stop is called.
func (s *Scheduler) Run() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting maintenance scheduler")
	s.RunOnce()
	s.cron.Run()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped maintenance scheduler")
}

// RunOnce executes every job immediately.
func (s *Scheduler) RunOnce() {
	s.sweepOrphans()
	s.pruneEvents()
}

func (s *Scheduler) sweepOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.tasks.DeleteOrphanTasks(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Orphan task sweep failed")
		return
	}
	if n > 0 {
		log.Warn().Int64("tasks", n).Msg("Removed tasks whose project no longer exists")
	}
}

func (s *Scheduler) pruneEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	n, err := s.events.PruneEvents(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Activity pruning failed")
		return
	}
	log.Debug().Int64("events", n).Time("before", cutoff).Msg("Pruned activity")
}
