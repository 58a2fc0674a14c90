package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// TriageClient accesses triage job submission and polling.
type TriageClient struct {
	client *Client
}

// SubmitJobRequest carries the fields for a new triage job.
type SubmitJobRequest struct {
	JobType     string   `json:"job_type"`
	DocumentIDs []string `json:"document_ids"`

	// Threshold and PrivilegeThreshold override the server defaults when
	// non-nil.
	Threshold          *float64 `json:"threshold,omitempty"`
	PrivilegeThreshold *float64 `json:"privilege_threshold,omitempty"`
}

// JobList is a page of triage jobs.
type JobList struct {
	Items []dockettypes.Job `json:"items"`
	ListMeta
}

// Submit admits a new job for the case.  A second submission while a job of
// the same type is running fails with HTTP 409.
func (tc *TriageClient) Submit(ctx context.Context, caseID string, req *SubmitJobRequest) (*dockettypes.Job, error) {
	var out dockettypes.Job
	path := fmt.Sprintf("/api/v1/cases/%s/triage", url.PathEscape(caseID))
	if err := tc.client.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the current job snapshot, progress included.
func (tc *TriageClient) Get(ctx context.Context, jobID string) (*dockettypes.Job, error) {
	var out dockettypes.Job
	if err := tc.client.get(ctx, "/api/v1/triage/jobs/"+url.PathEscape(jobID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByCase returns the most recent jobs for a case.  With activeOnly, only
// running jobs are returned.
func (tc *TriageClient) ListByCase(ctx context.Context, caseID string, activeOnly bool) (*JobList, error) {
	path := fmt.Sprintf("/api/v1/cases/%s/triage", url.PathEscape(caseID))
	if activeOnly {
		path += "?active=true"
	}

	var out JobList
	if err := tc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Acknowledge clears a terminal job's record.
func (tc *TriageClient) Acknowledge(ctx context.Context, jobID string) error {
	return tc.client.delete(ctx, "/api/v1/triage/jobs/"+url.PathEscape(jobID))
}

// WaitForCompletion polls the job until it reaches a terminal state, the
// context expires, or a poll fails.
func (tc *TriageClient) WaitForCompletion(ctx context.Context, jobID string, pollInterval time.Duration) (*dockettypes.Job, error) {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		job, err := tc.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return job, ctx.Err()
		}
	}
}
