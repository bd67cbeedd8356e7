package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pablasso/plantrack/internal/config"
	"github.com/pablasso/plantrack/internal/server"
	"github.com/pablasso/plantrack/internal/tracker"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan_tracker tool of the active session over HTTP",
		Long: `Serve the plan_tracker tool of the active session over HTTP.

  GET  /tool             tool definition
  GET  /plan             current tasks, widget and status report
  POST /tool             execute a call; X-Call-Id sets the call id
  POST /events/{event}   replay history (session_start, session_switch,
                         session_fork, session_tree)

The session lock is held while the server runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				sess, err := a.activate(ctx, true)
				if err != nil {
					return err
				}
				return a.withSessionLock(func() error {
					tr, err := a.newTracker(ctx, tracker.EventSessionStart)
					if err != nil {
						return err
					}
					h, err := server.New(server.Config{
						Tracker: tr,
						Session: sess.ID,
						Logger:  a.logger.Named("server"),
					})
					if err != nil {
						return err
					}
					a.logger.Info("serving session", zap.String("session", sess.ID), zap.String("addr", a.cfg.Addr))
					return server.ListenAndServe(ctx, a.cfg.Addr, h, a.logger.Named("server"))
				})
			})
		},
	}
	cmd.Flags().String(config.KeyAddr, config.DefaultAddr, "listen address")
	_ = v.BindPFlag(config.KeyAddr, cmd.Flags().Lookup(config.KeyAddr))
	return cmd
}
