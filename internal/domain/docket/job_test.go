package docket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

func newTestJob(t *testing.T) *Job {
	t.Helper()
	j, err := NewJob("case-1", dockettypes.JobDocumentTriage, []string{"doc-1", "doc-2"}, 0.6, 0.8)
	require.NoError(t, err)
	return j
}

func TestNewJob_BornRunning(t *testing.T) {
	j := newTestJob(t)
	assert.Equal(t, dockettypes.JobRunning, j.Status)
	assert.Zero(t, j.Progress)
	assert.False(t, j.IsTerminal())
}

func TestNewJob_Validation(t *testing.T) {
	_, err := NewJob("", dockettypes.JobDocumentTriage, []string{"d"}, 0.5, 0.5)
	assert.Error(t, err)

	_, err = NewJob("case-1", "ocr", []string{"d"}, 0.5, 0.5)
	assert.Error(t, err)

	_, err = NewJob("case-1", dockettypes.JobDocumentTriage, []string{"d"}, 1.2, 0.5)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJobThresholdInvalid))

	_, err = NewJob("case-1", dockettypes.JobDocumentTriage, []string{"d"}, 0.5, 1.2)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJobThresholdInvalid))

	_, err = NewJob("case-1", dockettypes.JobDocumentTriage, nil, 0.5, 0.5)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJobDocumentSetEmpty))
}

func TestNewJob_ConflictSweepNeedsNoDocuments(t *testing.T) {
	j, err := NewJob("case-1", dockettypes.JobConflictSweep, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, j.DocumentIDs)
}

func TestAdmissionKey(t *testing.T) {
	j := newTestJob(t)
	assert.Equal(t, "case-1/document_triage", j.Key())
	assert.Equal(t, j.Key(), AdmissionKey("case-1", dockettypes.JobDocumentTriage))
}

func TestUpdateProgress_ClampsAndKeepsHighWaterMark(t *testing.T) {
	j := newTestJob(t)

	require.NoError(t, j.UpdateProgress(40))
	assert.Equal(t, 40.0, j.Progress)

	// Reordered, stale report does not move progress backwards.
	require.NoError(t, j.UpdateProgress(20))
	assert.Equal(t, 40.0, j.Progress)

	require.NoError(t, j.UpdateProgress(170))
	assert.Equal(t, 100.0, j.Progress)
}

func TestTerminalTransitions_AreOneWay(t *testing.T) {
	j := newTestJob(t)
	require.NoError(t, j.Complete(&dockettypes.TriageResult{Threshold: 0.6}))
	assert.Equal(t, dockettypes.JobCompleted, j.Status)
	assert.Equal(t, 100.0, j.Progress)
	require.NotNil(t, j.FinishedAt)

	err := j.Fail("late failure")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJobTerminal))
	assert.Equal(t, dockettypes.JobCompleted, j.Status)

	err = j.UpdateProgress(50)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJobTerminal))
}

func TestFail_RecordsReason(t *testing.T) {
	j := newTestJob(t)
	require.NoError(t, j.Fail("scorer unreachable"))
	assert.Equal(t, dockettypes.JobFailed, j.Status)
	assert.Equal(t, "scorer unreachable", j.Error)
	assert.Error(t, j.Complete(nil))
}
