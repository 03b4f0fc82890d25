package reconcile

import "context"

// DiscrepancyKind classifies what the audit found wrong with a week row.
type DiscrepancyKind string

const (
	// KindWrongIdentity - stored iso_year/iso_week/label disagree with what
	// the week_start date computes to.
	KindWrongIdentity DiscrepancyKind = "wrong_identity"
	// KindDuplicateWeek - another row already holds the same week_start.
	KindDuplicateWeek DiscrepancyKind = "duplicate_week"
	// KindDuplicateRecord - an employee has more than one record on a week.
	KindDuplicateRecord DiscrepancyKind = "duplicate_record"
)

type Discrepancy struct {
	Kind     DiscrepancyKind `json:"kind"`
	WeekID   string          `json:"week_id,omitempty"`
	RecordID string          `json:"record_id,omitempty"`
	Stored   string          `json:"stored"`
	Expected string          `json:"expected"`
}

// Report summarizes one reconciliation pass. Failures are collected per
// item, not raised: one bad row must not stop the sweep.
type Report struct {
	StartedAt      string        `json:"started_at"`
	FinishedAt     string        `json:"finished_at"`
	WeeksScanned   int           `json:"weeks_scanned"`
	Discrepancies  []Discrepancy `json:"discrepancies"`
	WeeksRepaired  int           `json:"weeks_repaired"`
	WeeksMerged    int           `json:"weeks_merged"`
	RecordsMoved   int64         `json:"records_moved"`
	WeeksDeduped   int           `json:"weeks_deduped"`
	RecordsDeduped int           `json:"records_deduped"`
	Failures       []string      `json:"failures,omitempty"`
}

// ReconcileService detects and repairs drift between stored week identities
// and what their dates actually compute to.
type ReconcileService interface {
	// AuditWeeks reports discrepancies without modifying anything.
	AuditWeeks(ctx context.Context) (Report, error)
	// RepairWeeks fixes mislabeled weeks, merging into an existing row when
	// the corrected identity is already taken.
	RepairWeeks(ctx context.Context, actorID string) (Report, error)
	// DeduplicateWeeks collapses rows sharing a week_start onto the oldest.
	DeduplicateWeeks(ctx context.Context, actorID string) (Report, error)
	// DeduplicateRecords keeps the lowest-id record per (employee, week).
	DeduplicateRecords(ctx context.Context, actorID string) (Report, error)
	// Run executes the full pass: audit, repair, dedupe weeks, dedupe records.
	Run(ctx context.Context, actorID string) (Report, error)
}
