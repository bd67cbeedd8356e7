package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/session"
	"github.com/pablasso/plantrack/internal/tracker"
	"github.com/pablasso/plantrack/internal/tui/components"
)

func sessionCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Manage sessions"}
	cmd.AddCommand(sessionNewCmd(v))
	cmd.AddCommand(sessionListCmd(v))
	cmd.AddCommand(sessionUseCmd(v))
	cmd.AddCommand(sessionForkCmd(v))
	cmd.AddCommand(sessionCheckoutCmd(v))
	cmd.AddCommand(sessionRmCmd(v))
	cmd.AddCommand(sessionNoteCmd(v))
	return cmd
}

func sessionNewCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "new [name]",
		Short: "Start a new session and make it current",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				sess, err := a.manager.Start(ctx, name)
				if err != nil {
					return err
				}
				if err := writeCurrent(a.cfg.CurrentFile(), sess.ID); err != nil {
					return err
				}
				if a.cfg.JSON {
					return a.printJSON(sess)
				}
				fmt.Fprintf(a.out, "Started session %s (%s)\n", sess.Name, sess.ID)
				return nil
			})
		},
	}
}

func sessionListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				sessions, err := a.store.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list sessions: %w", err)
				}
				if a.cfg.JSON {
					if sessions == nil {
						sessions = []*session.Session{}
					}
					return a.printJSON(sessions)
				}
				if len(sessions) == 0 {
					fmt.Fprintln(a.out, "No sessions.")
					return nil
				}

				current, err := readCurrent(a.cfg.CurrentFile())
				if err != nil {
					return err
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(a.out)
				tw.SetStyle(table.StyleLight)
				tw.AppendHeader(table.Row{"", "ID", "Name", "Plan", "Forked From", "Updated"})
				for _, s := range sessions {
					marker := ""
					if s.ID == current {
						marker = "*"
					}
					tw.AppendRow(table.Row{marker, s.ID, s.Name, a.planSummary(ctx, s.ID), shortID(s.ForkedFrom), formatAge(s.UpdatedAt)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func sessionUseCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Switch the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				id, err := a.resolveSessionID(ctx, args[0])
				if err != nil {
					return err
				}
				sess, err := a.manager.Open(ctx, id)
				if err != nil {
					return err
				}
				if err := writeCurrent(a.cfg.CurrentFile(), sess.ID); err != nil {
					return err
				}
				return a.reportPlan(ctx, tracker.EventSessionSwitch, fmt.Sprintf("Switched to session %s (%s)", sess.Name, sess.ID))
			})
		},
	}
}

func sessionForkCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "fork <entry-id> [name]",
		Short: "Copy the branch ending at an entry into a new current session",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				if _, err := a.activate(ctx, false); err != nil {
					return err
				}
				name := ""
				if len(args) == 2 {
					name = args[1]
				}
				fork, err := a.manager.Fork(ctx, args[0], name)
				if err != nil {
					return err
				}
				if err := writeCurrent(a.cfg.CurrentFile(), fork.ID); err != nil {
					return err
				}
				return a.reportPlan(ctx, tracker.EventSessionFork, fmt.Sprintf("Forked session %s (%s) at %s", fork.Name, fork.ID, args[0]))
			})
		},
	}
}

func sessionCheckoutCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <entry-id>",
		Short: "Move the active branch of the current session to an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				if _, err := a.activate(ctx, false); err != nil {
					return err
				}
				return a.withSessionLock(func() error {
					if err := a.manager.Navigate(ctx, args[0]); err != nil {
						return err
					}
					return a.reportPlan(ctx, tracker.EventSessionTree, "Checked out "+args[0])
				})
			})
		},
	}
}

func sessionRmCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				id, err := a.resolveSessionID(ctx, args[0])
				if err != nil {
					return err
				}

				lock := session.NewLock(a.cfg.SessionsDir(), id)
				if err := lock.Acquire(); err != nil {
					return fmt.Errorf("cannot delete session %s: %w", id, err)
				}
				defer lock.Release()

				if err := a.store.Delete(ctx, id); err != nil {
					return err
				}
				current, err := readCurrent(a.cfg.CurrentFile())
				if err != nil {
					return err
				}
				if current == id {
					if err := clearCurrent(a.cfg.CurrentFile()); err != nil {
						return err
					}
				}
				fmt.Fprintf(a.out, "Deleted session %s\n", id)
				return nil
			})
		},
	}
}

func sessionNoteCmd(v *viper.Viper) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "note <text>",
		Short: "Append a user or assistant message to the active branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				if _, err := a.activate(ctx, true); err != nil {
					return err
				}
				return a.withSessionLock(func() error {
					if err := a.manager.AppendMessage(ctx, role, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "Added %s note %s\n", role, a.manager.Current().Leaf)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", session.RoleUser, "message role (user|assistant)")
	return cmd
}

// reportPlan replays the active branch for ev and prints msg with the plan.
func (a *app) reportPlan(ctx context.Context, ev tracker.Event, msg string) error {
	tr, err := a.newTracker(ctx, ev)
	if err != nil {
		return err
	}
	tasks := tr.Tasks()
	if a.cfg.JSON {
		return a.printJSON(struct {
			Session *session.Session `json:"session"`
			Tasks   []plan.Task      `json:"tasks"`
		}{a.manager.Current(), tasks})
	}

	fmt.Fprintln(a.out, msg)
	fmt.Fprintln(a.out, plan.FormatStatus(tasks))
	if line := components.RenderWidget(plan.FormatWidget(tasks)); line != "" {
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// planSummary returns "c/n" for a session's plan, or "-" when it has none.
func (a *app) planSummary(ctx context.Context, id string) string {
	entries, err := a.store.Entries(ctx, id)
	if err != nil {
		return "?"
	}
	sess, err := a.store.Load(ctx, id)
	if err != nil {
		return "?"
	}
	branch, err := session.BranchOf(entries, sess.Leaf)
	if err != nil {
		return "?"
	}
	records := make([]plan.Record, len(branch))
	for i, e := range branch {
		records[i] = e.Record()
	}
	tasks := plan.Reconstruct(records)
	if len(tasks) == 0 {
		return "-"
	}
	c := plan.Count(tasks)
	return fmt.Sprintf("%d/%d", c.Complete, c.Total)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatAge returns a human-readable relative time string.
func formatAge(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	return fmt.Sprintf("%dd ago", hours/24)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
