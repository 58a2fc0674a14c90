package docket

import (
	"time"

	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// Job is the aggregate for an admitted background job.  A job is born running
// (admission is single-flight per (case, type); a rejected submission never
// creates a Job) and makes exactly one one-way transition to completed or
// failed.
type Job struct {
	ID     dockettypes.JobID     `json:"id"`
	CaseID common.CaseID         `json:"case_id"`
	Type   dockettypes.JobType   `json:"job_type"`
	Status dockettypes.JobStatus `json:"status"`

	// Progress is the percentage of work done, in [0, 100].
	Progress float64 `json:"progress"`

	// Threshold marks documents relevant; PrivilegeThreshold flags them as
	// likely privileged.  Both are scores in [0, 1].
	Threshold          float64 `json:"threshold"`
	PrivilegeThreshold float64 `json:"privilege_threshold"`

	DocumentIDs []string `json:"document_ids"`

	Result *dockettypes.TriageResult `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`

	SubmittedAt time.Time  `json:"submitted_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// NewJob creates a running Job with validation applied.
//
// Business rules:
//   - CaseID must not be empty and Type must be a known kind
//   - Threshold and PrivilegeThreshold must fall in [0, 1]
//   - document_triage jobs require a non-empty document set
func NewJob(
	caseID common.CaseID,
	jobType dockettypes.JobType,
	documentIDs []string,
	threshold, privilegeThreshold float64,
) (*Job, error) {
	if caseID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "case_id must not be empty")
	}
	if !jobType.IsValid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown job type %q", jobType)
	}
	if threshold < 0 || threshold > 1 {
		return nil, errors.Newf(errors.ErrCodeJobThresholdInvalid,
			"threshold %g is out of range [0, 1]", threshold)
	}
	if privilegeThreshold < 0 || privilegeThreshold > 1 {
		return nil, errors.Newf(errors.ErrCodeJobThresholdInvalid,
			"privilege threshold %g is out of range [0, 1]", privilegeThreshold)
	}
	if jobType == dockettypes.JobDocumentTriage && len(documentIDs) == 0 {
		return nil, errors.New(errors.ErrCodeJobDocumentSetEmpty,
			"document_triage requires at least one document")
	}

	return &Job{
		ID:                 dockettypes.JobID(common.NewID()),
		CaseID:             caseID,
		Type:               jobType,
		Status:             dockettypes.JobRunning,
		Progress:           0,
		Threshold:          threshold,
		PrivilegeThreshold: privilegeThreshold,
		DocumentIDs:        append([]string(nil), documentIDs...),
		SubmittedAt:        time.Now().UTC(),
	}, nil
}

// Key returns the single-flight admission key for this job.
func (j *Job) Key() string {
	return AdmissionKey(j.CaseID, j.Type)
}

// AdmissionKey builds the single-flight key for a (case, job type) pair.
func AdmissionKey(caseID common.CaseID, jobType dockettypes.JobType) string {
	return string(caseID) + "/" + string(jobType)
}

// IsTerminal reports whether the job can no longer change state.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// UpdateProgress merges an out-of-band progress report.  Progress is a
// percentage clamped to [0, 100]; reports arriving after a terminal
// transition are rejected so stragglers cannot resurrect a finished job.
func (j *Job) UpdateProgress(p float64) error {
	if j.IsTerminal() {
		return errors.Newf(errors.ErrCodeJobTerminal,
			"job %s is %s; late progress report dropped", j.ID, j.Status)
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	// Progress never moves backwards; reordered reports keep the high-water mark.
	if p > j.Progress {
		j.Progress = p
	}
	return nil
}

// Complete records the triage result and moves the job to its completed
// terminal state.
func (j *Job) Complete(result *dockettypes.TriageResult) error {
	if err := j.finish(dockettypes.JobCompleted); err != nil {
		return err
	}
	j.Progress = 100
	j.Result = result
	return nil
}

// Fail records the failure reason and moves the job to its failed terminal
// state.
func (j *Job) Fail(reason string) error {
	if err := j.finish(dockettypes.JobFailed); err != nil {
		return err
	}
	j.Error = reason
	return nil
}

func (j *Job) finish(to dockettypes.JobStatus) error {
	if j.IsTerminal() {
		return errors.Newf(errors.ErrCodeJobTerminal,
			"job %s already reached terminal state %s", j.ID, j.Status)
	}
	now := time.Now().UTC()
	j.Status = to
	j.FinishedAt = &now
	return nil
}

// ToWire converts the aggregate into its wire representation.
func (j *Job) ToWire() dockettypes.Job {
	return dockettypes.Job{
		ID:                 j.ID,
		CaseID:             j.CaseID,
		JobType:            j.Type,
		Status:             j.Status,
		Progress:           j.Progress,
		Threshold:          j.Threshold,
		PrivilegeThreshold: j.PrivilegeThreshold,
		DocumentIDs:        append([]string(nil), j.DocumentIDs...),
		Result:             j.Result,
		Error:              j.Error,
		SubmittedAt:        j.SubmittedAt,
		FinishedAt:         j.FinishedAt,
	}
}
