package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// upcomingResult renders the upcoming feed as a table.
type upcomingResult struct {
	WindowDays int                            `json:"window_days,omitempty"`
	Count      int                            `json:"count"`
	Entries    []dockettypes.UpcomingDeadline `json:"entries"`
}

func (r upcomingResult) TableHeaders() []string {
	return []string{"DUE", "DAYS", "URGENCY", "PRIORITY", "TITLE", "CASE"}
}

func (r upcomingResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, []string{
			e.Deadline.DeadlineDate.Format("2006-01-02"),
			strconv.Itoa(e.Urgency.DaysUntil),
			string(e.Urgency.Label),
			string(e.Deadline.Priority),
			e.Deadline.Title,
			string(e.Deadline.CaseID),
		})
	}
	return rows
}

// NewUpcomingCmd creates the "upcoming" command.
func NewUpcomingCmd() *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List open deadlines due within the upcoming window",
		Example: `  litidocket upcoming
  litidocket upcoming --window 7 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			feed, err := cliCtx.Client.Calendar().Upcoming(cmd.Context(), windowDays)
			if err != nil {
				return fmt.Errorf("failed to fetch upcoming deadlines: %w", err)
			}
			if feed.Count == 0 {
				PrintSuccess(cmd, "no deadlines due in the window")
				return nil
			}
			return PrintResult(cmd, upcomingResult{
				WindowDays: feed.WindowDays,
				Count:      feed.Count,
				Entries:    feed.Entries,
			})
		},
	}

	cmd.Flags().IntVarP(&windowDays, "window", "w", 0, "window in days (0 uses the server default)")
	return cmd
}
