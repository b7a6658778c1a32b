// Package scheduler wires up the cron job that periodically re-runs the
// scan-scrape-sync loop.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
	spec string
	job  func()
}

// New builds a scheduler around job. spec is a cron expression like
// "@every 12h"; empty disables scheduling entirely.
func New(spec string, job func()) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		spec: spec,
		job:  job,
	}
}

func (s *Scheduler) Start() error {
	if s.spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.job); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling; a run already in flight finishes.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
