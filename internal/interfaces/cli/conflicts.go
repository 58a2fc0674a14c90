package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// conflictResult renders a conflict report, one table row per match.
type conflictResult struct {
	dockettypes.ConflictReport
}

func (r conflictResult) TableHeaders() []string {
	return []string{"SEVERITY", "DATE A", "DATE B", "TITLE A", "TITLE B", "DETAIL"}
}

func (r conflictResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		rows = append(rows, []string{
			string(m.Severity),
			m.Dates[0].Format("2006-01-02"),
			m.Dates[1].Format("2006-01-02"),
			m.Titles[0],
			m.Titles[1],
			m.Detail,
		})
	}
	return rows
}

// NewConflictsCmd creates the "conflicts" command group.
func NewConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Inspect scheduling conflicts reported for a case",
	}

	cmd.AddCommand(
		newConflictsShowCmd(),
		newConflictsRefreshCmd(),
	)
	return cmd
}

func newConflictsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <case-id>",
		Short: "Show the last known conflict state for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			report, err := cliCtx.Client.Conflicts().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch conflict state: %w", err)
			}
			return printConflictReport(cmd, report)
		},
	}
}

func newConflictsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <case-id>",
		Short: "Re-run the conflict check and show the fresh result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			report, err := cliCtx.Client.Conflicts().Refresh(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to refresh conflict check: %w", err)
			}
			return printConflictReport(cmd, report)
		},
	}
}

func printConflictReport(cmd *cobra.Command, report *dockettypes.ConflictReport) error {
	switch report.Status {
	case dockettypes.ConflictDetected:
		fmt.Fprintf(cmd.OutOrStdout(), "case %s: %d conflict(s) detected\n", report.CaseID, len(report.Matches))
		return PrintResult(cmd, conflictResult{ConflictReport: *report})
	case dockettypes.ConflictUnknown:
		PrintSuccess(cmd, fmt.Sprintf("case %s: conflict checker unreachable, state unknown", report.CaseID))
	case dockettypes.ConflictUnchecked:
		PrintSuccess(cmd, fmt.Sprintf("case %s: not yet checked", report.CaseID))
	default:
		msg := fmt.Sprintf("case %s: no conflicts", report.CaseID)
		if !report.CheckedAt.IsZero() {
			msg += " (checked " + report.CheckedAt.Format(time.RFC3339) + ")"
		}
		PrintSuccess(cmd, msg)
	}
	return nil
}
