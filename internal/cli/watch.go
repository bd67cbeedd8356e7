package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/session"
	"github.com/pablasso/plantrack/internal/tui"
)

func watchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the active plan and refresh it as the session changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, v)
		},
	}
}

func runWatch(cmd *cobra.Command, v *viper.Viper) error {
	return withApp(cmd, v, func(ctx context.Context, a *app) error {
		w, err := session.NewWatcher(a.logger.Named("watch"), a.cfg.SessionsDir(), a.cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer w.Close()
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}

		return tui.Run(ctx, tui.Options{
			Load:    a.loadSnapshot,
			Changes: w.Changes(),
		})
	})
}

// loadSnapshot re-reads the current session on every call, so switching
// sessions from another terminal is picked up too. Loads may overlap, so each
// one opens its own manager.
func (a *app) loadSnapshot(ctx context.Context) (tui.Snapshot, error) {
	id := a.cfg.Session
	if id == "" {
		current, err := readCurrent(a.cfg.CurrentFile())
		if err != nil {
			return tui.Snapshot{}, err
		}
		if current == "" {
			return tui.Snapshot{}, nil
		}
		id = current
	}
	id, err := a.resolveSessionID(ctx, id)
	if err != nil {
		return tui.Snapshot{}, err
	}

	m := session.NewManager(a.store, a.logger.Named("session"))
	sess, err := m.Open(ctx, id)
	if err != nil {
		return tui.Snapshot{}, err
	}
	records, err := m.Branch(ctx)
	if err != nil {
		return tui.Snapshot{}, err
	}
	return tui.Snapshot{Session: sess.Name, Tasks: plan.Reconstruct(records)}, nil
}
