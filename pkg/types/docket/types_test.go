package docket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineType_IsValid(t *testing.T) {
	for _, dt := range AllDeadlineTypes() {
		assert.True(t, dt.IsValid(), "type %s", dt)
	}
	assert.False(t, DeadlineType("deposition").IsValid())
	assert.False(t, DeadlineType("").IsValid())
}

func TestPriority_Rank_Ordering(t *testing.T) {
	ranks := AllPriorities()
	for i := 1; i < len(ranks); i++ {
		assert.Less(t, ranks[i-1].Rank(), ranks[i].Rank(),
			"%s must outrank %s", ranks[i-1], ranks[i])
	}
	assert.Equal(t, 4, Priority("bogus").Rank(), "unknown priorities sort last")
}

func TestPriority_IsValid(t *testing.T) {
	assert.True(t, PriorityCritical.IsValid())
	assert.True(t, PriorityLow.IsValid())
	assert.False(t, Priority("urgent").IsValid())
}

func TestDeadlineStatus_IsOpen(t *testing.T) {
	assert.True(t, StatusPending.IsOpen())
	assert.True(t, StatusExtended.IsOpen())
	assert.False(t, StatusCompleted.IsOpen())
	assert.False(t, StatusMissed.IsOpen())
	assert.False(t, StatusCancelled.IsOpen())
}

func TestDeadlineStatus_IsValid(t *testing.T) {
	for _, s := range AllDeadlineStatuses() {
		assert.True(t, s.IsValid(), "status %s", s)
	}
	assert.False(t, DeadlineStatus("open").IsValid())
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobRunning.IsTerminal())
	assert.True(t, JobCompleted.IsTerminal())
	assert.True(t, JobFailed.IsTerminal())
}

func TestJobType_IsValid(t *testing.T) {
	assert.True(t, JobDocumentTriage.IsValid())
	assert.True(t, JobConflictSweep.IsValid())
	assert.False(t, JobType("ocr").IsValid())
}

func TestConflictStatus_IsValid(t *testing.T) {
	assert.True(t, ConflictClear.IsValid())
	assert.True(t, ConflictDetected.IsValid())
	assert.True(t, ConflictUnknown.IsValid())
	assert.False(t, ConflictStatus("maybe").IsValid())
}
