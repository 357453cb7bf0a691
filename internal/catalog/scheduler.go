package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and runs the Syncer periodically.
type Scheduler struct {
	cron   *cron.Cron
	syncer *Syncer
	spec   string // cron spec, e.g. "@every 6h"
}

// NewScheduler creates a Scheduler that fires every intervalHours hours.
func NewScheduler(syncer *Syncer, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		syncer: syncer,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Spec returns the cron expression in use.
func (s *Scheduler) Spec() string { return s.spec }

// Start registers the job and starts the scheduler. Also runs one sync
// immediately so the feed is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runSync(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	log.Printf("[catalog] cron started, spec: %s", s.spec)

	go s.runSync(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running sync to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[catalog] cron stopped")
}

func (s *Scheduler) runSync(ctx context.Context) {
	if _, err := s.syncer.Run(ctx); err != nil {
		log.Printf("[catalog] sync aborted: %v", err)
	}
}
