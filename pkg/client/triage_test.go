package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

func TestTriageClient_Submit(t *testing.T) {
	var gotPath string
	var gotBody SubmitJobRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"id":"job-1","case_id":"case-1","status":"running"}`))
	})

	threshold := 0.7
	job, err := c.Triage().Submit(context.Background(), "case-1", &SubmitJobRequest{
		JobType:     "document_triage",
		DocumentIDs: []string{"doc-1"},
		Threshold:   &threshold,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/cases/case-1/triage", gotPath)
	assert.Equal(t, "document_triage", gotBody.JobType)
	assert.Equal(t, dockettypes.JobRunning, job.Status)
}

func TestTriageClient_SubmitConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"TRG_001","message":"a job of this type is already running for the case"}`))
	})

	_, err := c.Triage().Submit(context.Background(), "case-1", &SubmitJobRequest{JobType: "document_triage"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsConflict())
	assert.Equal(t, "TRG_001", apiErr.Code)
}

func TestTriageClient_ListByCaseActive(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"items":[{"id":"job-1","status":"running"}],"total":1,"page":1,"page_size":20}`))
	})

	list, err := c.Triage().ListByCase(context.Background(), "case-1", true)
	require.NoError(t, err)
	assert.Equal(t, "active=true", gotQuery)
	require.Len(t, list.Items, 1)
	assert.Equal(t, dockettypes.JobID("job-1"), list.Items[0].ID)
}

func TestTriageClient_WaitForCompletion(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			w.Write([]byte(`{"id":"job-1","status":"running","progress":50}`))
			return
		}
		w.Write([]byte(`{"id":"job-1","status":"completed","progress":100}`))
	})

	job, err := c.Triage().WaitForCompletion(context.Background(), "job-1", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, dockettypes.JobCompleted, job.Status)
	assert.Equal(t, int32(3), polls.Load())
}

func TestTriageClient_WaitForCompletionHonorsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"job-1","status":"running"}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	job, err := c.Triage().WaitForCompletion(ctx, "job-1", 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, job, "last snapshot is returned alongside the context error")
	assert.Equal(t, dockettypes.JobRunning, job.Status)
}

func TestConflictsClient_GetAndRefresh(t *testing.T) {
	var gotPaths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"case_id":"case-1","status":"clear"}`))
	})

	ctx := context.Background()
	report, err := c.Conflicts().Get(ctx, "case-1")
	require.NoError(t, err)
	assert.Equal(t, dockettypes.ConflictClear, report.Status)

	_, err = c.Conflicts().Refresh(ctx, "case-1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /api/v1/cases/case-1/conflicts",
		"POST /api/v1/cases/case-1/conflicts/refresh",
	}, gotPaths)
}

func TestPrecedentsClient_Search(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"total":1,"page":1,"page_size":20,"hits":[{"precedent":{"id":"prec-1","caption":"Hargrove v. Meridian Ins. Co."},"score":2.1}]}`))
	})

	results, err := c.Precedents().Search(context.Background(), PrecedentSearchQuery{
		Text:  "coverage",
		Court: "9th Cir.",
		Tags:  []string{"insurance", "appeal"},
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "q=coverage")
	assert.Contains(t, gotQuery, "tags=insurance%2Cappeal")
	require.Len(t, results.Hits, 1)
	assert.Equal(t, "Hargrove v. Meridian Ins. Co.", results.Hits[0].Precedent.Caption)
}
