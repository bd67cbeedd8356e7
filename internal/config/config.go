// Package config resolves plantrack settings from flags, PLANTRACK_* env
// vars and an optional plantrack.yaml.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pablasso/plantrack/internal/session"
)

// Keys shared by flags, env vars and the config file.
const (
	KeyDataDir  = "data-dir"
	KeyStore    = "store"
	KeySession  = "session"
	KeyLogLevel = "log-level"
	KeyLogFile  = "log-file"
	KeyAddr     = "addr"
	KeyJSON     = "json"
)

// Defaults
const (
	DefaultDataDir  = ".plantrack"
	DefaultStore    = session.BackendJSONL
	DefaultLogLevel = "warn"
	DefaultAddr     = "127.0.0.1:7878"
	EnvPrefix       = "PLANTRACK"
	FileName        = "plantrack"
	logFileName     = "plantrack.log"
	sessionsDirName = "sessions"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir  string
	Store    string
	Session  string
	LogLevel string
	LogFile  string
	Addr     string
	JSON     bool
}

// SessionsDir is where the session store keeps its files.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir, sessionsDirName)
}

// CurrentFile holds the id of the active session.
func (c *Config) CurrentFile() string {
	return filepath.Join(c.DataDir, "current")
}

// Setup applies defaults and env binding to v, and registers the optional
// config file search path.
func Setup(v *viper.Viper) {
	v.SetDefault(KeyDataDir, DefaultDataDir)
	v.SetDefault(KeyStore, DefaultStore)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyAddr, DefaultAddr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
}

// Load reads the optional config file and resolves a Config from v.
// A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	c := &Config{
		DataDir:  v.GetString(KeyDataDir),
		Store:    strings.ToLower(v.GetString(KeyStore)),
		Session:  v.GetString(KeySession),
		LogLevel: strings.ToLower(v.GetString(KeyLogLevel)),
		LogFile:  v.GetString(KeyLogFile),
		Addr:     v.GetString(KeyAddr),
		JSON:     v.GetBool(KeyJSON),
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, logFileName)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: %s is required", KeyDataDir)
	}
	switch c.Store {
	case session.BackendJSONL, session.BackendSQLite:
	default:
		return fmt.Errorf("config: %s must be %s or %s, got %q", KeyStore, session.BackendJSONL, session.BackendSQLite, c.Store)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: %s must be debug, info, warn or error, got %q", KeyLogLevel, c.LogLevel)
	}
	if c.Addr == "" {
		return fmt.Errorf("config: %s is required", KeyAddr)
	}
	return nil
}
