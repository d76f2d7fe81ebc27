package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportStatus(t *testing.T) {
	r := NewReport()
	assert.Equal(t, RunSucceeded, r.Status())

	clean := NewOutcome(EntityUser)
	clean.Migrated = 3
	r.Append(clean)
	assert.Equal(t, RunSucceeded, r.Status())

	degraded := NewOutcome(EntityClinic)
	degraded.fail("5", "bad address", false)
	r.Append(degraded)
	assert.Equal(t, RunDegraded, r.Status())

	r.Halt(EntityClinic, "module reported a fatal failure")
	assert.Equal(t, RunAborted, r.Status())
}

func TestReportFinalizeFreezes(t *testing.T) {
	r := NewReport()
	r.Append(NewOutcome(EntityUser))
	r.Finalize()

	finishedAt := r.FinishedAt
	assert.False(t, finishedAt.IsZero())

	r.Append(NewOutcome(EntityClinic))
	r.Halt(EntityClinic, "too late")
	r.Finalize()

	assert.Len(t, r.Outcomes, 1)
	assert.Empty(t, r.HaltReason)
	assert.Equal(t, finishedAt, r.FinishedAt)
}

func TestOutcomeHasFatal(t *testing.T) {
	o := NewOutcome(EntityCase)
	o.fail("1", "soft", false)
	assert.False(t, o.HasFatal())

	o.fail("2", "hard", true)
	assert.True(t, o.HasFatal())
	assert.Equal(t, 2, o.Failed)
}

func TestAllFailuresPreservesModuleOrder(t *testing.T) {
	r := NewReport()

	users := NewOutcome(EntityUser)
	users.fail("1", "no email", false)
	r.Append(users)

	clinics := NewOutcome(EntityClinic)
	clinics.fail("9", "no name", false)
	r.Append(clinics)

	all := r.AllFailures()
	assert.Len(t, all, 2)
	assert.Equal(t, EntityUser, all[0].Entity)
	assert.Equal(t, EntityClinic, all[1].Entity)
}

func TestSummaryMentionsHalt(t *testing.T) {
	r := NewReport()
	r.Halt(EntityInvoice, "connection lost")
	r.Finalize()

	s := r.Summary()
	assert.Contains(t, s, "aborted")
	assert.Contains(t, s, "Invoice")
	assert.Contains(t, s, "connection lost")
}
