package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/LitiDocket/pkg/client"
)

// searchResult renders precedent hits as a table.
type searchResult struct {
	Total int64                 `json:"total"`
	Hits  []client.PrecedentHit `json:"hits"`
}

func (r searchResult) TableHeaders() []string {
	return []string{"SCORE", "CAPTION", "CITATION", "COURT", "DECIDED"}
}

func (r searchResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Hits))
	for _, h := range r.Hits {
		decided := ""
		if !h.Precedent.DecidedAt.IsZero() {
			decided = h.Precedent.DecidedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.FormatFloat(h.Score, 'f', 2, 64),
			h.Precedent.Caption,
			h.Precedent.Citation,
			h.Precedent.Court,
			decided,
		})
	}
	return rows
}

// NewSearchCmd creates the "search" command for precedent research.
func NewSearchCmd() *cobra.Command {
	var query client.PrecedentSearchQuery

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the precedent index",
		Example: `  litidocket search "duty to defend"
  litidocket search coverage --court "9th Cir." --tag insurance --from 2020-01-01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			query.Text = args[0]
			for _, extra := range args[1:] {
				query.Text += " " + extra
			}

			results, err := cliCtx.Client.Precedents().Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if results.Total == 0 {
				PrintSuccess(cmd, "no precedents matched")
				return nil
			}
			return PrintResult(cmd, searchResult{Total: results.Total, Hits: results.Hits})
		},
	}

	f := cmd.Flags()
	f.StringVar(&query.Court, "court", "", "filter by court")
	f.StringVar(&query.Jurisdiction, "jurisdiction", "", "filter by jurisdiction")
	f.StringArrayVar(&query.Tags, "tag", nil, "filter by tag (repeatable)")
	f.StringVar(&query.DecidedFrom, "from", "", "earliest decision date, 2006-01-02")
	f.StringVar(&query.DecidedTo, "to", "", "latest decision date, 2006-01-02")
	f.IntVar(&query.Page, "page", 0, "page number")
	f.IntVar(&query.PageSize, "page-size", 0, "page size")
	return cmd
}
