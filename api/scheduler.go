/*
scheduler.go - Nightly diagnosis scheduler

PURPOSE:
  Runs the diagnosis automatically each night for the previous calendar
  day, once upstream extracts for that day have landed. Manual runs via
  POST /api/runs remain available and produce identical results because
  the computation is deterministic.

DESIGN:
  - cron-driven, default spec "0 2 * * *" (02:00 server time)
  - Each firing diagnoses yesterday and records a run audit entry
  - Overlapping firings are impossible at daily cadence; the store
    serializes writes regardless

USAGE:
  s := NewScheduler(handler, log)
  if err := s.Start(); err != nil { ... }
  // ... later
  s.Stop()

SEE ALSO:
  - handlers.go: RunDiagnosis (shared run path)
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/retailops/diagnostics-engine/engine"
)

// Scheduler triggers the nightly diagnosis run.
type Scheduler struct {
	Handler *Handler
	Log     logrus.FieldLogger

	// Spec is a standard cron expression. Default: 02:00 daily.
	Spec string

	// Timeout bounds each run. Default: 10 minutes.
	Timeout time.Duration

	cron *cron.Cron
}

// NewScheduler creates a scheduler with default settings.
func NewScheduler(h *Handler, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		Handler: h,
		Log:     log,
		Spec:    "0 2 * * *",
		Timeout: 10 * time.Minute,
	}
}

// Start registers the cron entry and begins scheduling.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.Spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.Log.WithField("spec", s.Spec).Info("diagnosis scheduler started")
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.Log.Info("diagnosis scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	target := engine.Yesterday(s.Handler.now())
	if _, err := s.Handler.RunDiagnosis(ctx, target); err != nil {
		s.Log.WithError(err).WithField("target_date", target.String()).
			Error("scheduled diagnosis failed")
	}
}
