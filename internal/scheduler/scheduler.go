// Package scheduler keeps stored series current with cron-driven refreshes.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"PricePulse/internal/ingest"
	"PricePulse/internal/store"
)

// Scheduler periodically re-fetches the trailing window for every symbol
// already in the store.
type Scheduler struct {
	Cron       *cron.Cron
	Runner     *ingest.Runner
	Store      store.Store
	WindowDays int
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *ingest.Runner, st store.Store, windowDays int) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Runner:     runner,
		Store:      st,
		WindowDays: windowDays,
		Ctx:        ctx,
	}
}

// Register registers the refresh task. An empty spec disables it.
func (s *Scheduler) Register(spec string) error {
	if spec == "" {
		log.Println("[INFO] scheduled refresh disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running scheduled refresh")

	symbols, err := s.Store.Symbols(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] scheduled refresh: list symbols: %v", err)
		return
	}
	if len(symbols) == 0 {
		log.Println("[INFO] scheduled refresh: nothing stored yet")
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -s.WindowDays)
	report := s.Runner.Run(s.Ctx, symbols, start, end)
	log.Printf("[INFO] scheduled refresh done: %s", report.Summary())
}
