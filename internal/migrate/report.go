package migrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Failure is one row-level failure in the ledger.
type Failure struct {
	Entity    EntityType
	LegacyKey string
	Reason    string
	Fatal     bool
}

// Outcome is the per-entity fragment of a run report.
type Outcome struct {
	Entity     EntityType
	Seen       int
	Migrated   int
	Skipped    int // rejected by the business filter
	Duplicates int // already migrated on a previous run
	Failed     int
	Failures   []Failure
}

func NewOutcome(entity EntityType) *Outcome {
	return &Outcome{Entity: entity}
}

func (o *Outcome) fail(legacyKey, reason string, fatal bool) {
	o.Failed++
	o.Failures = append(o.Failures, Failure{
		Entity:    o.Entity,
		LegacyKey: legacyKey,
		Reason:    reason,
		Fatal:     fatal,
	})
}

// HasFatal reports whether any failure in this fragment halts the run.
func (o *Outcome) HasFatal() bool {
	for _, f := range o.Failures {
		if f.Fatal {
			return true
		}
	}
	return false
}

// RunStatus is the overall verdict of a run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunDegraded  RunStatus = "degraded" // non-fatal row failures occurred
	RunAborted   RunStatus = "aborted"  // halted mid-sequence
)

// Report aggregates outcome fragments across modules. It is owned by the
// run that produced it and immutable once finalized.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []*Outcome
	HaltedAt   EntityType
	HaltReason string

	finalized bool
}

func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Append adds a module fragment. Appending to a finalized report is
// ignored.
func (r *Report) Append(o *Outcome) {
	if r.finalized {
		return
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Halt marks the run as stopped inside the given module.
func (r *Report) Halt(entity EntityType, reason string) {
	if r.finalized {
		return
	}
	r.HaltedAt = entity
	r.HaltReason = reason
}

// Finalize freezes the report for audit.
func (r *Report) Finalize() {
	if r.finalized {
		return
	}
	r.FinishedAt = time.Now().UTC()
	r.finalized = true
}

func (r *Report) Status() RunStatus {
	if r.HaltedAt != "" {
		return RunAborted
	}
	for _, o := range r.Outcomes {
		if o.Failed > 0 {
			return RunDegraded
		}
	}
	return RunSucceeded
}

// AllFailures returns the ordered failure ledger across modules.
func (r *Report) AllFailures() []Failure {
	var all []Failure
	for _, o := range r.Outcomes {
		all = append(all, o.Failures...)
	}
	return all
}

// Summary renders the human-readable run report.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Migration run %s: %s\n", r.RunID, r.Status())
	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "  %-30s seen=%-6d migrated=%-6d skipped=%-5d duplicate=%-6d failed=%d\n",
			o.Entity, o.Seen, o.Migrated, o.Skipped, o.Duplicates, o.Failed)
	}
	if r.HaltedAt != "" {
		fmt.Fprintf(&b, "  HALTED in module %s: %s\n", r.HaltedAt, r.HaltReason)
	}
	for _, f := range r.AllFailures() {
		marker := ""
		if f.Fatal {
			marker = " [fatal]"
		}
		fmt.Fprintf(&b, "  failure %s %s: %s%s\n", f.Entity, f.LegacyKey, f.Reason, marker)
	}
	return b.String()
}
