package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/LitiDocket/pkg/client"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// deadlineListResult renders a page of deadlines as a table.
type deadlineListResult struct {
	Items []dockettypes.Deadline `json:"items"`
	Total int64                  `json:"total"`
}

func (r deadlineListResult) TableHeaders() []string {
	return []string{"ID", "DUE", "STATUS", "PRIORITY", "TYPE", "TITLE", "CASE"}
}

func (r deadlineListResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Items))
	for _, d := range r.Items {
		rows = append(rows, deadlineRow(d))
	}
	return rows
}

// deadlineResult renders a single deadline as a one-row table.
type deadlineResult struct {
	dockettypes.Deadline
}

func (r deadlineResult) TableHeaders() []string {
	return deadlineListResult{}.TableHeaders()
}

func (r deadlineResult) TableRows() [][]string {
	return [][]string{deadlineRow(r.Deadline)}
}

func deadlineRow(d dockettypes.Deadline) []string {
	return []string{
		string(d.ID),
		d.DeadlineDate.Format("2006-01-02"),
		string(d.Status),
		string(d.Priority),
		string(d.DeadlineType),
		d.Title,
		string(d.CaseID),
	}
}

// NewDeadlineCmd creates the "deadline" command group.
func NewDeadlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deadline",
		Aliases: []string{"dl"},
		Short:   "Manage litigation deadlines",
	}

	cmd.AddCommand(
		newDeadlineListCmd(),
		newDeadlineGetCmd(),
		newDeadlineCreateCmd(),
		newDeadlineTransitionCmd("complete", "Mark a deadline as completed"),
		newDeadlineTransitionCmd("miss", "Mark a deadline as missed"),
		newDeadlineTransitionCmd("cancel", "Cancel a deadline"),
		newDeadlineExtendCmd(),
		newDeadlineDeleteCmd(),
	)
	return cmd
}

func newDeadlineListCmd() *cobra.Command {
	var query client.ListDeadlinesQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deadlines with optional filters",
		Example: `  litidocket deadline list --case case-2026-0142
  litidocket deadline list --status pending --sort priority --order desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			list, err := cliCtx.Client.Deadlines().List(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to list deadlines: %w", err)
			}
			if len(list.Items) == 0 {
				PrintSuccess(cmd, "no deadlines match the filter")
				return nil
			}
			return PrintResult(cmd, deadlineListResult{Items: list.Items, Total: list.Total})
		},
	}

	f := cmd.Flags()
	f.StringVar(&query.CaseID, "case", "", "filter by case ID")
	f.StringVar(&query.Type, "type", "", "filter by deadline type (filing, discovery, motion, ...)")
	f.StringVar(&query.Priority, "priority", "", "filter by priority (critical, high, normal, low)")
	f.StringVar(&query.Status, "status", "", "filter by status (pending, completed, missed, cancelled)")
	f.StringVar(&query.Sort, "sort", "", "sort key (date, priority, title, status)")
	f.StringVar(&query.Order, "order", "", "sort order (asc, desc)")
	f.IntVar(&query.Page, "page", 0, "page number")
	f.IntVar(&query.PageSize, "page-size", 0, "page size")
	return cmd
}

func newDeadlineGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <deadline-id>",
		Short: "Show one deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			d, err := cliCtx.Client.Deadlines().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch deadline: %w", err)
			}
			return PrintResult(cmd, deadlineResult{Deadline: *d})
		},
	}
}

func newDeadlineCreateCmd() *cobra.Command {
	var (
		req     client.CreateDeadlineRequest
		dueDate string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deadline",
		Example: `  litidocket deadline create --case case-2026-0142 --title "Answer due" \
      --type filing --priority high --date 2026-09-14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			req.DeadlineDate, err = parseCLIDate(dueDate)
			if err != nil {
				return err
			}

			d, err := cliCtx.Client.Deadlines().Create(cmd.Context(), &req)
			if err != nil {
				return fmt.Errorf("failed to create deadline: %w", err)
			}
			PrintSuccess(cmd, fmt.Sprintf("created deadline %s", d.ID))
			return PrintResult(cmd, deadlineResult{Deadline: *d})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.CaseID, "case", "", "case ID (required)")
	f.StringVar(&req.Title, "title", "", "deadline title (required)")
	f.StringVar(&req.Description, "description", "", "description")
	f.StringVar(&req.Notes, "notes", "", "free-form notes")
	f.StringVar(&req.DeadlineType, "type", "filing", "deadline type")
	f.StringVar(&req.Priority, "priority", "normal", "priority")
	f.StringVar(&dueDate, "date", "", "due date, 2006-01-02 or RFC 3339 (required)")
	cmd.MarkFlagRequired("case")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("date")
	return cmd
}

// newDeadlineTransitionCmd builds complete/miss/cancel, which differ only in
// the action name.
func newDeadlineTransitionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <deadline-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			dc := cliCtx.Client.Deadlines()
			var d *dockettypes.Deadline
			switch action {
			case "complete":
				d, err = dc.Complete(cmd.Context(), args[0])
			case "miss":
				d, err = dc.Miss(cmd.Context(), args[0])
			case "cancel":
				d, err = dc.Cancel(cmd.Context(), args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to %s deadline: %w", action, err)
			}
			PrintSuccess(cmd, fmt.Sprintf("deadline %s is now %s", d.ID, d.Status))
			return nil
		},
	}
}

func newDeadlineExtendCmd() *cobra.Command {
	var newDate string

	cmd := &cobra.Command{
		Use:   "extend <deadline-id>",
		Short: "Move a pending deadline to a later date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			date, err := parseCLIDate(newDate)
			if err != nil {
				return err
			}

			d, err := cliCtx.Client.Deadlines().Extend(cmd.Context(), args[0], date)
			if err != nil {
				return fmt.Errorf("failed to extend deadline: %w", err)
			}
			PrintSuccess(cmd, fmt.Sprintf("deadline %s extended to %s", d.ID, d.DeadlineDate.Format("2006-01-02")))
			return nil
		},
	}

	cmd.Flags().StringVar(&newDate, "date", "", "new due date, 2006-01-02 or RFC 3339 (required)")
	cmd.MarkFlagRequired("date")
	return cmd
}

func newDeadlineDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <deadline-id>",
		Short: "Delete a deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("deletion is permanent; re-run with --force to confirm")
			}

			if err := cliCtx.Client.Deadlines().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete deadline: %w", err)
			}
			PrintSuccess(cmd, fmt.Sprintf("deleted deadline %s", args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation guard")
	return cmd
}

// parseCLIDate accepts a bare date or a full RFC 3339 timestamp.
func parseCLIDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("a date is required")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not 2006-01-02 or RFC 3339", s)
	}
	return t, nil
}
