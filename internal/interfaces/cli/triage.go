package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/LitiDocket/pkg/client"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// jobListResult renders triage jobs as a table.
type jobListResult struct {
	Items []dockettypes.Job `json:"items"`
}

func (r jobListResult) TableHeaders() []string {
	return []string{"ID", "TYPE", "STATUS", "PROGRESS", "SUBMITTED", "CASE"}
}

func (r jobListResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Items))
	for _, j := range r.Items {
		rows = append(rows, jobRow(j))
	}
	return rows
}

// jobResult renders a single job as a one-row table.
type jobResult struct {
	dockettypes.Job
}

func (r jobResult) TableHeaders() []string { return jobListResult{}.TableHeaders() }

func (r jobResult) TableRows() [][]string { return [][]string{jobRow(r.Job)} }

func jobRow(j dockettypes.Job) []string {
	return []string{
		string(j.ID),
		string(j.JobType),
		string(j.Status),
		fmt.Sprintf("%.0f%%", j.Progress),
		j.SubmittedAt.Format(time.RFC3339),
		string(j.CaseID),
	}
}

// NewTriageCmd creates the "triage" command group.
func NewTriageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Submit and track document triage jobs",
	}

	cmd.AddCommand(
		newTriageSubmitCmd(),
		newTriageStatusCmd(),
		newTriageListCmd(),
		newTriageAckCmd(),
	)
	return cmd
}

func newTriageSubmitCmd() *cobra.Command {
	var (
		jobType            string
		documentIDs        []string
		threshold          float64
		privilegeThreshold float64
		wait               bool
		pollInterval       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit <case-id>",
		Short: "Submit a triage job for a case",
		Long: "Submits a document triage job.  Only one job of a given type may run per\n" +
			"case at a time; a second submission fails until the first finishes and is\n" +
			"acknowledged.",
		Example: `  litidocket triage submit case-2026-0142 --doc doc-18 --doc doc-19
  litidocket triage submit case-2026-0142 --threshold 0.7 --wait`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			req := &client.SubmitJobRequest{
				JobType:     jobType,
				DocumentIDs: documentIDs,
			}
			if cmd.Flags().Changed("threshold") {
				req.Threshold = &threshold
			}
			if cmd.Flags().Changed("privilege-threshold") {
				req.PrivilegeThreshold = &privilegeThreshold
			}

			tc := cliCtx.Client.Triage()
			job, err := tc.Submit(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("failed to submit job: %w", err)
			}
			PrintSuccess(cmd, fmt.Sprintf("submitted job %s", job.ID))

			if wait {
				job, err = tc.WaitForCompletion(cmd.Context(), string(job.ID), pollInterval)
				if err != nil {
					return fmt.Errorf("waiting for job: %w", err)
				}
				if job.Status == dockettypes.JobFailed {
					return fmt.Errorf("job %s failed: %s", job.ID, job.Error)
				}
			}
			return PrintResult(cmd, jobResult{Job: *job})
		},
	}

	f := cmd.Flags()
	f.StringVar(&jobType, "type", string(dockettypes.JobDocumentTriage), "job type")
	f.StringArrayVar(&documentIDs, "doc", nil, "document ID to triage (repeatable)")
	f.Float64Var(&threshold, "threshold", 0, "relevance threshold override, 0 to 1")
	f.Float64Var(&privilegeThreshold, "privilege-threshold", 0, "privilege threshold override, 0 to 1")
	f.BoolVar(&wait, "wait", false, "block until the job reaches a terminal state")
	f.DurationVar(&pollInterval, "poll-interval", 2*time.Second, "poll interval used with --wait")
	return cmd
}

func newTriageStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show a job's progress and result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			job, err := cliCtx.Client.Triage().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch job: %w", err)
			}
			return PrintResult(cmd, jobResult{Job: *job})
		},
	}
}

func newTriageListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list <case-id>",
		Short: "List recent triage jobs for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			list, err := cliCtx.Client.Triage().ListByCase(cmd.Context(), args[0], activeOnly)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}
			if len(list.Items) == 0 {
				PrintSuccess(cmd, "no jobs for this case")
				return nil
			}
			return PrintResult(cmd, jobListResult{Items: list.Items})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "show only running jobs")
	return cmd
}

func newTriageAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ack <job-id>",
		Aliases: []string{"acknowledge"},
		Short:   "Acknowledge a finished job, clearing its record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			if err := cliCtx.Client.Triage().Acknowledge(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to acknowledge job: %w", err)
			}
			PrintSuccess(cmd, fmt.Sprintf("acknowledged job %s", args[0]))
			return nil
		},
	}
}
