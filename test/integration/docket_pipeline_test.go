package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdocket "github.com/turtacn/LitiDocket/internal/application/docket"
	"github.com/turtacn/LitiDocket/internal/application/triage"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// The clock is pinned to a Tuesday so the grid geometry below is stable:
// September 2026 starts on a Tuesday, its Sunday-first grid on Aug 30.
var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func createDeadline(t *testing.T, e *env, title, deadlineType, priority string, date time.Time) *dockettypes.Deadline {
	t.Helper()
	created, err := e.Deadlines.Create(context.Background(), &appdocket.CreateDeadlineRequest{
		CaseID:       "case-7",
		Title:        title,
		DeadlineType: deadlineType,
		Priority:     priority,
		DeadlineDate: date,
	})
	require.NoError(t, err)
	return created
}

func TestDeadlinesFeedCalendarAndConflicts(t *testing.T) {
	e := newEnv(t, testNow)
	ctx := context.Background()

	hearing := createDeadline(t, e, "Motion hearing", "hearing", "high",
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))

	// Second deadline lands on the same day; the collaborator now reports a
	// clash, and the create-triggered check picks it up.
	e.Checker.set([]dockettypes.ConflictMatch{{
		DeadlineIDs: [2]dockettypes.DeadlineID{hearing.ID, "pending"},
		Titles:      [2]string{"Motion hearing", "Expert deposition"},
		Dates: [2]time.Time{
			time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		Severity: dockettypes.PriorityHigh,
	}}, nil)
	deposition := createDeadline(t, e, "Expert deposition", "discovery", "critical",
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))

	report := e.Router.StateFor("case-7")
	assert.Equal(t, dockettypes.ConflictDetected, report.Status)
	require.Len(t, report.Matches, 1)

	// Month grid: 42 Sunday-first cells, both deadlines bucketed on Sept 15
	// (cell 16), the critical one driving the day badge.
	grid, err := e.Calendar.MonthGrid(ctx, 2026, time.September)
	require.NoError(t, err)
	require.Len(t, grid.Days, 42)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), grid.Days[0].Date)
	assert.True(t, grid.Days[2].IsToday)

	day := grid.Days[16]
	assert.Equal(t, 15, day.Date.Day())
	assert.True(t, day.InMonth)
	require.Len(t, day.Deadlines, 2)
	require.NotNil(t, day.HighestPriority)
	assert.Equal(t, dockettypes.PriorityCritical, *day.HighestPriority)

	// Upcoming feed: both fall inside the 14-day window, ascending by date.
	upcoming, err := e.Calendar.Upcoming(ctx, 14)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, 14, upcoming[0].Urgency.DaysUntil)
	assert.False(t, upcoming[0].Urgency.Overdue)

	// Completing the deposition resolves the clash; a refresh against the
	// now-clear collaborator flips the verdict.
	e.Checker.set(nil, nil)
	_, err = e.Deadlines.Complete(ctx, deposition.ID)
	require.NoError(t, err)

	report, err = e.Router.Refresh(ctx, "case-7")
	require.NoError(t, err)
	assert.Equal(t, dockettypes.ConflictClear, report.Status)

	// The completed deadline leaves the feed but stays on the grid.
	upcoming, err = e.Calendar.Upcoming(ctx, 14)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, hearing.ID, upcoming[0].Deadline.ID)
}

func TestConflictCheckerOutageYieldsUnknown(t *testing.T) {
	e := newEnv(t, testNow)

	e.Checker.set(nil, errors.New(errors.ErrCodeExternalService, "checker unreachable"))
	createDeadline(t, e, "Reply brief", "brief", "normal",
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))

	report := e.Router.StateFor("case-7")
	assert.Equal(t, dockettypes.ConflictUnknown, report.Status,
		"a failed check must record unknown, not clear")
}

func TestTriagePipelineRoundTrip(t *testing.T) {
	e := newEnv(t, testNow)
	ctx := context.Background()

	e.DocStore.docs = map[string]string{
		"doc-1": "deposition transcript",
		"doc-2": "privilege log",
		"doc-3": "email chain",
	}
	e.Scorer.scores = map[string]float64{"doc-1": 0.9, "doc-2": 0.2, "doc-3": 0.75}
	e.Scorer.privilege = map[string]float64{"doc-1": 0.1, "doc-2": 0.95, "doc-3": 0.3}

	job, err := e.Triage.Submit(ctx, &triage.SubmitJobRequest{
		CaseID:      "case-7",
		JobType:     string(dockettypes.JobDocumentTriage),
		DocumentIDs: []string{"doc-1", "doc-2", "doc-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, dockettypes.JobRunning, job.Status)

	// Single flight: the duplicate is refused while the first job runs.
	_, err = e.Triage.Submit(ctx, &triage.SubmitJobRequest{
		CaseID:      "case-7",
		JobType:     string(dockettypes.JobDocumentTriage),
		DocumentIDs: []string{"doc-1"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJobAlreadyRunning))

	// The worker side consumes the brokered submission and scores it.
	submitted := e.Broker.nextSubmitted(t)
	require.NoError(t, e.Processor.Process(ctx, submitted))

	done, err := e.Triage.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, dockettypes.JobCompleted, done.Status)
	assert.Equal(t, 100.0, done.Progress)
	require.NotNil(t, done.Result)
	assert.Equal(t, 2, done.Result.RelevantCount, "0.9 and 0.75 clear the 0.6 default")
	assert.Equal(t, 1, done.Result.PrivilegedCount, "the privilege log clears the 0.7 default")
	require.Len(t, done.Result.Documents, 3)
	assert.False(t, done.Result.Documents[2].Relevant)
	assert.True(t, done.Result.Documents[2].Privileged, "lowest relevance sorts last")

	// Terminal state frees admission for the case.
	second, err := e.Triage.Submit(ctx, &triage.SubmitJobRequest{
		CaseID:      "case-7",
		JobType:     string(dockettypes.JobDocumentTriage),
		DocumentIDs: []string{"doc-2"},
	})
	require.NoError(t, err)

	// Acknowledge clears the first record; the running job refuses it.
	require.NoError(t, e.Triage.Acknowledge(ctx, job.ID))
	_, err = e.Triage.Get(ctx, job.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJobNotFound))

	err = e.Triage.Acknowledge(ctx, second.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
}

func TestTriagePipelineScoringFailure(t *testing.T) {
	e := newEnv(t, testNow)
	ctx := context.Background()

	e.DocStore.docs = map[string]string{"doc-1": "exhibit A", "doc-2": "exhibit B"}
	e.Scorer.scores = map[string]float64{"doc-1": 0.8} // doc-2 has no score

	job, err := e.Triage.Submit(ctx, &triage.SubmitJobRequest{
		CaseID:      "case-9",
		JobType:     string(dockettypes.JobDocumentTriage),
		DocumentIDs: []string{"doc-1", "doc-2"},
	})
	require.NoError(t, err)

	submitted := e.Broker.nextSubmitted(t)
	err = e.Processor.Process(ctx, submitted)
	require.Error(t, err, "the processor surfaces the scoring error after settling")

	failed, err := e.Triage.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, dockettypes.JobFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)

	// The failure settled admission, so the case can resubmit immediately.
	_, err = e.Triage.Submit(ctx, &triage.SubmitJobRequest{
		CaseID:      "case-9",
		JobType:     string(dockettypes.JobDocumentTriage),
		DocumentIDs: []string{"doc-1"},
	})
	assert.NoError(t, err)
}
