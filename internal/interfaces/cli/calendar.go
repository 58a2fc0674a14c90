package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// calendarResult renders the 42-cell grid, one table row per week.
type calendarResult struct {
	Year  int                       `json:"year"`
	Month time.Month                `json:"month"`
	Days  []dockettypes.CalendarDay `json:"days"`
}

func (r calendarResult) TableHeaders() []string {
	return []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}
}

func (r calendarResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Days)/7)
	for week := 0; week+7 <= len(r.Days); week += 7 {
		row := make([]string, 7)
		for i, day := range r.Days[week : week+7] {
			row[i] = formatCalendarCell(day)
		}
		rows = append(rows, row)
	}
	return rows
}

// formatCalendarCell compacts one grid cell: day number, a deadline count,
// and markers for today (*) and out-of-month days (parentheses).
func formatCalendarCell(day dockettypes.CalendarDay) string {
	var sb strings.Builder
	num := strconv.Itoa(day.Date.Day())
	if !day.InMonth {
		num = "(" + num + ")"
	}
	sb.WriteString(num)
	if day.IsToday {
		sb.WriteString("*")
	}
	if n := len(day.Deadlines); n > 0 {
		fmt.Fprintf(&sb, " [%d]", n)
	}
	return sb.String()
}

// NewCalendarCmd creates the "calendar" command.
func NewCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar <year> <month>",
		Short: "Show the month grid with bucketed deadlines",
		Example: `  litidocket calendar 2026 9
  litidocket calendar 2026 9 -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("year %q is not a number", args[0])
			}
			month, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("month %q is not a number", args[1])
			}

			grid, err := cliCtx.Client.Calendar().MonthGrid(cmd.Context(), year, time.Month(month))
			if err != nil {
				return fmt.Errorf("failed to fetch calendar: %w", err)
			}
			return PrintResult(cmd, calendarResult{
				Year:  grid.Year,
				Month: grid.Month,
				Days:  grid.Days,
			})
		},
	}
	return cmd
}
