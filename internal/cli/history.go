package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pablasso/plantrack/internal/session"
)

const contentWidth = 40

// historyRow is one entry as shown by the history command.
type historyRow struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId,omitempty"`
	Time     string `json:"time"`
	Role     string `json:"role,omitempty"`
	Tool     string `json:"tool,omitempty"`
	Action   string `json:"action,omitempty"`
	Error    string `json:"error,omitempty"`
	Content  string `json:"content,omitempty"`
	OnBranch bool   `json:"onBranch"`
}

func historyCmd(v *viper.Viper) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the entries of the active branch",
		Long: `Show the entries of the active branch, root first. Entry ids can be passed
to 'session checkout' and 'session fork'. With --all every entry of the session
tree is listed and entries off the active branch are unmarked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				if _, err := a.activate(ctx, false); err != nil {
					return err
				}
				rows, err := a.historyRows(ctx, all)
				if err != nil {
					return err
				}
				if a.cfg.JSON {
					return a.printJSON(rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(a.out, "No entries.")
					return nil
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(a.out)
				tw.SetStyle(table.StyleLight)
				tw.AppendHeader(table.Row{"", "Entry", "Time", "Role", "Tool", "Action", "Error", "Content"})
				for _, r := range rows {
					marker := ""
					if r.OnBranch {
						marker = "*"
					}
					tw.AppendRow(table.Row{marker, r.ID, r.Time, r.Role, r.Tool, r.Action, r.Error, r.Content})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every entry of the session tree")
	return cmd
}

func (a *app) historyRows(ctx context.Context, all bool) ([]historyRow, error) {
	branch, err := a.manager.BranchEntries(ctx)
	if err != nil {
		return nil, err
	}
	onBranch := make(map[string]bool, len(branch))
	for _, e := range branch {
		onBranch[e.ID] = true
	}

	entries := branch
	if all {
		if entries, err = a.manager.Entries(ctx); err != nil {
			return nil, err
		}
	}

	rows := make([]historyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, newHistoryRow(e, onBranch[e.ID]))
	}
	return rows, nil
}

func newHistoryRow(e session.Entry, onBranch bool) historyRow {
	row := historyRow{
		ID:       e.ID,
		ParentID: e.ParentID,
		Time:     e.Timestamp.Local().Format("2006-01-02 15:04:05"),
		OnBranch: onBranch,
	}
	if e.Message == nil {
		return row
	}
	row.Role = e.Message.Role
	row.Tool = e.Message.ToolName
	row.Content = truncate(e.Message.Content, contentWidth)
	if d, ok := e.Details(); ok {
		row.Action = string(d.Action)
		row.Error = d.Error
	}
	return row
}
