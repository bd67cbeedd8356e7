// Package cli implements the plantrack command line.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pablasso/plantrack/internal/config"
	"github.com/pablasso/plantrack/internal/version"
)

// NewRootCmd builds the command tree. Each call gets its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	config.Setup(v)

	root := &cobra.Command{
		Use:   "plantrack",
		Short: "Plan tracker for coding agent sessions",
		Long: `plantrack keeps a task plan inside an agent session's history.

Every tool call is stored as a session entry; the plan is rebuilt by replaying
the active branch, so forking or rewinding a session rewinds its plan too.
Run without arguments to watch the active plan.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, v)
		},
	}

	flags := root.PersistentFlags()
	flags.String(config.KeyDataDir, config.DefaultDataDir, "data directory")
	flags.String(config.KeyStore, config.DefaultStore, "session store backend (jsonl|sqlite)")
	flags.String(config.KeySession, "", "session id or unique prefix (default: current session)")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "log level (debug|info|warn|error)")
	flags.Bool(config.KeyJSON, false, "output JSON")
	for _, key := range []string{config.KeyDataDir, config.KeyStore, config.KeySession, config.KeyLogLevel, config.KeyJSON} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(initCmd(v))
	root.AddCommand(updateCmd(v))
	root.AddCommand(statusCmd(v))
	root.AddCommand(clearCmd(v))
	root.AddCommand(sessionCmd(v))
	root.AddCommand(historyCmd(v))
	root.AddCommand(schemaCmd())
	root.AddCommand(serveCmd(v))
	root.AddCommand(watchCmd(v))
	root.AddCommand(versionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
