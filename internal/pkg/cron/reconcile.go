package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/construtek/nomina-backend-go/internal/domain/audit"
	"github.com/construtek/nomina-backend-go/internal/domain/reconcile"
)

type ReconcileJobs struct {
	reconcileSvc reconcile.ReconcileService
	interval     time.Duration
}

func NewReconcileJobs(reconcileSvc reconcile.ReconcileService, interval time.Duration) *ReconcileJobs {
	return &ReconcileJobs{
		reconcileSvc: reconcileSvc,
		interval:     interval,
	}
}

// RegisterJobs wires the periodic reconciliation pass. A zero interval
// means the job is disabled.
func (j *ReconcileJobs) RegisterJobs(scheduler *Scheduler) {
	if j.interval <= 0 {
		slog.Info("Cron: reconciliation job disabled")
		return
	}
	scheduler.AddJob(Job{
		Name:     "reconcile_payroll_weeks",
		Interval: j.interval,
		Run:      j.RunReconciliation,
	})
}

func (j *ReconcileJobs) RunReconciliation(ctx context.Context) error {
	report, err := j.reconcileSvc.Run(ctx, audit.SystemActor)
	if err != nil {
		return fmt.Errorf("reconciliation pass failed: %w", err)
	}

	if len(report.Failures) > 0 {
		return fmt.Errorf("reconciliation finished with %d failures", len(report.Failures))
	}
	return nil
}
