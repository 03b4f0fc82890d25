package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/construtek/nomina-backend-go/internal/domain/audit"
	"github.com/construtek/nomina-backend-go/internal/domain/payroll"
	"github.com/construtek/nomina-backend-go/internal/domain/reconcile"
	"github.com/construtek/nomina-backend-go/internal/domain/week"
	"github.com/construtek/nomina-backend-go/internal/pkg/database"
	"github.com/construtek/nomina-backend-go/internal/pkg/isoweek"
	"github.com/construtek/nomina-backend-go/internal/repository/postgresql"
)

type ReconcileServiceImpl struct {
	db          *database.DB
	weekRepo    week.WeekRepository
	payrollRepo payroll.PayrollRepository
	auditRepo   audit.AuditRepository
	logger      *slog.Logger
}

func NewReconcileService(
	db *database.DB,
	weekRepo week.WeekRepository,
	payrollRepo payroll.PayrollRepository,
	auditRepo audit.AuditRepository,
	logger *slog.Logger,
) reconcile.ReconcileService {
	return &ReconcileServiceImpl{
		db:          db,
		weekRepo:    weekRepo,
		payrollRepo: payrollRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

func weekIdentityString(year, weekNum int) string {
	return fmt.Sprintf("%d-W%02d", year, weekNum)
}

func (s *ReconcileServiceImpl) AuditWeeks(ctx context.Context) (reconcile.Report, error) {
	report := reconcile.Report{StartedAt: time.Now().UTC().Format(time.RFC3339)}

	weeks, err := s.weekRepo.ListAll(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}
	report.WeeksScanned = len(weeks)

	for _, w := range weeks {
		expected := isoweek.Compute(w.WeekStart)
		if expected.Year != w.ISOYear || expected.Week != w.ISOWeek ||
			expected.Label != w.Label || !expected.End.Equal(w.WeekEnd) {
			report.Discrepancies = append(report.Discrepancies, reconcile.Discrepancy{
				Kind:     reconcile.KindWrongIdentity,
				WeekID:   w.ID,
				Stored:   weekIdentityString(w.ISOYear, w.ISOWeek),
				Expected: weekIdentityString(expected.Year, expected.Week),
			})
		}
	}

	weekGroups, err := s.weekRepo.DuplicateGroups(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}
	for _, group := range weekGroups {
		keeper := group[0]
		for _, dup := range group[1:] {
			report.Discrepancies = append(report.Discrepancies, reconcile.Discrepancy{
				Kind:     reconcile.KindDuplicateWeek,
				WeekID:   dup.ID,
				Stored:   weekIdentityString(dup.ISOYear, dup.ISOWeek),
				Expected: weekIdentityString(keeper.ISOYear, keeper.ISOWeek),
			})
		}
	}

	recordGroups, err := s.payrollRepo.DuplicateRecordGroups(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}
	for _, group := range recordGroups {
		keeper := group[0]
		for _, dup := range group[1:] {
			report.Discrepancies = append(report.Discrepancies, reconcile.Discrepancy{
				Kind:     reconcile.KindDuplicateRecord,
				RecordID: dup.ID,
				Stored:   dup.ID,
				Expected: keeper.ID,
			})
		}
	}

	report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	return report, nil
}

// RepairWeeks recomputes each week's identity from its start date and fixes
// rows that disagree. When the corrected identity already belongs to another
// row, the bad week is merged into it instead: records move over, the stale
// row goes away, and no payroll record is lost in the process. Each week is
// repaired in its own transaction so one failure cannot poison the rest.
func (s *ReconcileServiceImpl) RepairWeeks(ctx context.Context, actorID string) (reconcile.Report, error) {
	report := reconcile.Report{StartedAt: time.Now().UTC().Format(time.RFC3339)}

	weeks, err := s.weekRepo.ListAll(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}
	report.WeeksScanned = len(weeks)

	for _, w := range weeks {
		expected := isoweek.Compute(w.WeekStart)
		if expected.Year == w.ISOYear && expected.Week == w.ISOWeek &&
			expected.Label == w.Label && expected.End.Equal(w.WeekEnd) {
			continue
		}

		var merged bool
		var moved int64
		err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
			canonical, err := s.weekRepo.GetByYearWeek(txCtx, expected.Year, expected.Week)
			if err != nil && !errors.Is(err, week.ErrWeekNotFound) {
				return err
			}

			if errors.Is(err, week.ErrWeekNotFound) || canonical.ID == w.ID {
				if err := s.weekRepo.UpdateIdentity(txCtx, w.ID, expected); err != nil {
					return err
				}

				repaired := w
				repaired.ISOYear = expected.Year
				repaired.ISOWeek = expected.Week
				repaired.WeekStart = expected.Start
				repaired.WeekEnd = expected.End
				repaired.Label = expected.Label
				entry := audit.NewEntry("payroll_week", w.ID, "reconcile_repair", actorID, w, repaired)
				return s.auditRepo.Append(txCtx, entry)
			}

			merged = true
			moved, err = s.mergeWeek(txCtx, w, canonical, actorID)
			return err
		})
		if err != nil {
			s.logger.Error("week repair failed", "week_id", w.ID, "error", err)
			report.Failures = append(report.Failures, fmt.Sprintf("week %s: %v", w.ID, err))
			continue
		}
		if merged {
			report.WeeksMerged++
			report.RecordsMoved += moved
		} else {
			report.WeeksRepaired++
		}
	}

	report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	return report, nil
}

func (s *ReconcileServiceImpl) DeduplicateWeeks(ctx context.Context, actorID string) (reconcile.Report, error) {
	report := reconcile.Report{StartedAt: time.Now().UTC().Format(time.RFC3339)}

	groups, err := s.weekRepo.DuplicateGroups(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}

	for _, group := range groups {
		keeper := group[0]
		for _, dup := range group[1:] {
			dup := dup
			var moved int64
			err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
				var err error
				moved, err = s.mergeWeek(txCtx, dup, keeper, actorID)
				return err
			})
			if err != nil {
				s.logger.Error("week dedup failed", "week_id", dup.ID, "error", err)
				report.Failures = append(report.Failures, fmt.Sprintf("week %s: %v", dup.ID, err))
				continue
			}
			report.WeeksDeduped++
			report.RecordsMoved += moved
		}
	}

	report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	return report, nil
}

// DeduplicateRecords keeps the lowest-id record of each (employee, week)
// group and removes the rest. IDs are UUIDv7, so the lowest id is the
// earliest created.
func (s *ReconcileServiceImpl) DeduplicateRecords(ctx context.Context, actorID string) (reconcile.Report, error) {
	report := reconcile.Report{StartedAt: time.Now().UTC().Format(time.RFC3339)}

	groups, err := s.payrollRepo.DuplicateRecordGroups(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}

	for _, group := range groups {
		keeper := group[0]
		for _, dup := range group[1:] {
			dup := dup
			err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
				if err := s.payrollRepo.DeleteRecord(txCtx, dup.ID); err != nil {
					return err
				}

				entry := audit.NewEntry("payroll_record", dup.ID, "reconcile_dedup", actorID, dup, keeper)
				return s.auditRepo.Append(txCtx, entry)
			})
			if err != nil {
				s.logger.Error("record dedup failed", "record_id", dup.ID, "error", err)
				report.Failures = append(report.Failures, fmt.Sprintf("record %s: %v", dup.ID, err))
				continue
			}
			report.RecordsDeduped++
		}
	}

	report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	return report, nil
}

func (s *ReconcileServiceImpl) Run(ctx context.Context, actorID string) (reconcile.Report, error) {
	report := reconcile.Report{StartedAt: time.Now().UTC().Format(time.RFC3339)}

	auditReport, err := s.AuditWeeks(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}
	report.WeeksScanned = auditReport.WeeksScanned
	report.Discrepancies = auditReport.Discrepancies

	repairReport, err := s.RepairWeeks(ctx, actorID)
	if err != nil {
		return reconcile.Report{}, err
	}
	report.WeeksRepaired = repairReport.WeeksRepaired
	report.WeeksMerged = repairReport.WeeksMerged
	report.RecordsMoved = repairReport.RecordsMoved
	report.Failures = append(report.Failures, repairReport.Failures...)

	weekDedupReport, err := s.DeduplicateWeeks(ctx, actorID)
	if err != nil {
		return reconcile.Report{}, err
	}
	report.WeeksDeduped = weekDedupReport.WeeksDeduped
	report.RecordsMoved += weekDedupReport.RecordsMoved
	report.Failures = append(report.Failures, weekDedupReport.Failures...)

	recordDedupReport, err := s.DeduplicateRecords(ctx, actorID)
	if err != nil {
		return reconcile.Report{}, err
	}
	report.RecordsDeduped = recordDedupReport.RecordsDeduped
	report.Failures = append(report.Failures, recordDedupReport.Failures...)

	report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	s.logger.Info("reconciliation pass finished",
		"weeks_scanned", report.WeeksScanned,
		"discrepancies", len(report.Discrepancies),
		"weeks_repaired", report.WeeksRepaired,
		"weeks_merged", report.WeeksMerged,
		"records_moved", report.RecordsMoved,
		"weeks_deduped", report.WeeksDeduped,
		"records_deduped", report.RecordsDeduped,
		"failures", len(report.Failures),
	)
	return report, nil
}

// mergeWeek folds the stale week into the canonical one. Records move over
// first; an employee holding a record on both weeks is a true duplicate, and
// the lowest-id one of the pair wins. The stale week row is deleted only
// once it holds no records.
func (s *ReconcileServiceImpl) mergeWeek(ctx context.Context, stale, canonical week.PayrollWeek, actorID string) (int64, error) {
	moved, err := s.payrollRepo.ReassignWeek(ctx, stale.ID, canonical.ID)
	if err != nil {
		return 0, err
	}

	leftovers, err := s.payrollRepo.ListRecordsByWeek(ctx, stale.ID)
	if err != nil {
		return 0, err
	}
	for _, rec := range leftovers {
		counterpart, err := s.payrollRepo.GetRecordByEmployeeWeek(ctx, rec.EmployeeID, canonical.ID)
		if err != nil {
			return 0, err
		}
		if counterpart.ID == rec.ID {
			// Already moved by a previous pass over this group.
			continue
		}

		if rec.ID < counterpart.ID {
			if err := s.payrollRepo.DeleteRecord(ctx, counterpart.ID); err != nil {
				return 0, err
			}
			extra, err := s.payrollRepo.ReassignWeek(ctx, stale.ID, canonical.ID)
			if err != nil {
				return 0, err
			}
			moved += extra
			entry := audit.NewEntry("payroll_record", counterpart.ID, "reconcile_dedup", actorID, counterpart, rec)
			if err := s.auditRepo.Append(ctx, entry); err != nil {
				return 0, err
			}
		} else {
			if err := s.payrollRepo.DeleteRecord(ctx, rec.ID); err != nil {
				return 0, err
			}
			entry := audit.NewEntry("payroll_record", rec.ID, "reconcile_dedup", actorID, rec, counterpart)
			if err := s.auditRepo.Append(ctx, entry); err != nil {
				return 0, err
			}
		}
	}

	count, err := s.payrollRepo.CountByWeek(ctx, stale.ID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, fmt.Errorf("week %s still holds %d records after merge", stale.ID, count)
	}

	if err := s.weekRepo.Delete(ctx, stale.ID); err != nil {
		return 0, err
	}

	entry := audit.NewEntry("payroll_week", stale.ID, "reconcile_merge", actorID, stale, canonical)
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return 0, err
	}

	return moved, nil
}
