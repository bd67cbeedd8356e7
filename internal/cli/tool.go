package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pablasso/plantrack/internal/display"
	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tracker"
	"github.com/pablasso/plantrack/internal/tui/components"
	"github.com/pablasso/plantrack/internal/util"
)

func initCmd(v *viper.Viper) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "init [task...]",
		Short: "Replace the plan with a new task list",
		Long: `Replace the plan with a new task list. Tasks come from the arguments or
from a YAML file holding either a list of names or {tasks: [...]}.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := tracker.Params{Action: string(plan.ActionInit)}
			switch {
			case file != "":
				if len(args) > 0 {
					return fmt.Errorf("use either task arguments or --file, not both")
				}
				tasks, err := readTaskFile(file)
				if err != nil {
					return err
				}
				params.Tasks = tasks
			case len(args) > 0:
				params.Tasks = args
			}
			return runTool(cmd, v, params)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with task names")
	addCompactFlag(cmd)
	return cmd
}

func updateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <index> <status>",
		Short: "Set the status of one task (pending|in_progress|complete)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: must be an integer", args[0])
			}
			status := args[1]
			return runTool(cmd, v, tracker.Params{
				Action: string(plan.ActionUpdate),
				Index:  &index,
				Status: &status,
			})
		},
	}
	addCompactFlag(cmd)
	return cmd
}

func statusCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, v, tracker.Params{Action: string(plan.ActionStatus)})
		},
	}
	addCompactFlag(cmd)
	return cmd
}

func clearCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, v, tracker.Params{Action: string(plan.ActionClear)})
		},
	}
	addCompactFlag(cmd)
	return cmd
}

const compactFlag = "compact"

func addCompactFlag(cmd *cobra.Command) {
	cmd.Flags().Bool(compactFlag, false, "print a one-line call header and a short result instead of the full text")
}

// runTool executes one tool call against the active session and prints the
// result text followed by the widget line, or the result as JSON.
func runTool(cmd *cobra.Command, v *viper.Viper, params tracker.Params) error {
	return withApp(cmd, v, func(ctx context.Context, a *app) error {
		if _, err := a.activate(ctx, true); err != nil {
			return err
		}
		return a.withSessionLock(func() error {
			if a.cfg.JSON {
				tr, err := a.newTracker(ctx, tracker.EventSessionStart)
				if err != nil {
					return err
				}
				result, err := execute(ctx, tr, params)
				if err != nil {
					return err
				}
				return a.printJSON(result)
			}

			compact, _ := cmd.Flags().GetBool(compactFlag)
			d := display.New(a.out)
			defer d.Finish()
			tr, err := a.newTracker(ctx, tracker.EventSessionStart, tracker.WithDisplay(d))
			if err != nil {
				return err
			}
			result, err := execute(ctx, tr, params)
			if err != nil {
				return err
			}
			if compact {
				d.PrintAbove("%s\n%s", components.RenderCall(params), components.RenderResult(result.Details))
				return nil
			}
			d.PrintAbove("%s", result.Text)
			return nil
		})
	})
}

func execute(ctx context.Context, tr *tracker.Tracker, params tracker.Params) (tracker.ToolResult, error) {
	callID, err := util.GenerateCallID()
	if err != nil {
		return tracker.ToolResult{}, err
	}
	return tr.Execute(ctx, callID, params)
}

// taskFile is the mapping form of a task file.
type taskFile struct {
	Tasks []string `yaml:"tasks"`
}

// readTaskFile reads task names from YAML: a sequence of names or a mapping
// with a tasks key.
func readTaskFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("task file %s is empty", path)
	}

	var tasks []string
	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
		}
	case yaml.MappingNode:
		var tf taskFile
		if err := root.Decode(&tf); err != nil {
			return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
		}
		tasks = tf.Tasks
	default:
		return nil, fmt.Errorf("task file %s must hold a list of tasks", path)
	}

	for i, t := range tasks {
		tasks[i] = strings.TrimSpace(t)
	}
	return tasks, nil
}
