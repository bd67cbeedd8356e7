package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pablasso/plantrack/internal/config"
	"github.com/pablasso/plantrack/internal/logging"
	"github.com/pablasso/plantrack/internal/session"
	"github.com/pablasso/plantrack/internal/tracker"
)

const defaultSessionName = "default"

// errNoSession is returned by read-only commands before any session exists.
var errNoSession = errors.New("no active session; run 'plantrack session new' or any plan command")

// app holds everything a command needs for one invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   session.Store
	manager *session.Manager
	out     io.Writer
}

// openApp resolves config, logging and the session store.
func openApp(cmd *cobra.Command, v *viper.Viper) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	store, err := session.OpenStore(cfg.Store, cfg.SessionsDir())
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("command started",
		zap.String("command", cmd.CommandPath()),
		zap.String("store", cfg.Store),
		zap.String("data_dir", cfg.DataDir))

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		manager: session.NewManager(store, logger.Named("session")),
		out:     cmd.OutOrStdout(),
	}, nil
}

func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.store.Close()
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, v *viper.Viper, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd, v)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(commandContext(cmd), a)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// activate opens the session named by --session or the current file. When
// neither names one and create is set, a new default session is started.
func (a *app) activate(ctx context.Context, create bool) (*session.Session, error) {
	id := a.cfg.Session
	if id == "" {
		current, err := readCurrent(a.cfg.CurrentFile())
		if err != nil {
			return nil, err
		}
		id = current
	}

	if id == "" {
		if !create {
			return nil, errNoSession
		}
		sess, err := a.manager.Start(ctx, defaultSessionName)
		if err != nil {
			return nil, err
		}
		if err := writeCurrent(a.cfg.CurrentFile(), sess.ID); err != nil {
			return nil, err
		}
		return sess, nil
	}

	full, err := a.resolveSessionID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.manager.Open(ctx, full)
}

// resolveSessionID expands a unique id prefix to the full session id.
func (a *app) resolveSessionID(ctx context.Context, prefix string) (string, error) {
	sessions, err := a.store.List(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, s := range sessions {
		if s.ID == prefix {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", session.ErrSessionNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("session prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

// withSessionLock holds the pid lock of the active session while fn runs.
func (a *app) withSessionLock(fn func() error) error {
	cur := a.manager.Current()
	if cur == nil {
		return errNoSession
	}
	lock := session.NewLock(a.cfg.SessionsDir(), cur.ID)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			a.logger.Warn("failed to release session lock", zap.Error(err))
		}
	}()
	return fn()
}

// newTracker creates a tracker over the active session and replays its branch.
func (a *app) newTracker(ctx context.Context, ev tracker.Event, opts ...tracker.Option) (*tracker.Tracker, error) {
	opts = append([]tracker.Option{tracker.WithLogger(a.logger.Named("tracker"))}, opts...)
	tr := tracker.New(a.manager, a.manager, opts...)
	if err := tr.HandleEvent(ctx, ev); err != nil {
		return nil, err
	}
	return tr, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readCurrent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read current session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeCurrent(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tmp, []byte(id+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write current session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write current session: %w", err)
	}
	return nil
}

func clearCurrent(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
