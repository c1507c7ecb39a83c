package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Foreman configuration
type Config struct {
	Agent    AgentConfig    `mapstructure:"agent"`
	Lock     LockConfig     `mapstructure:"lock"`
	Liveness LivenessConfig `mapstructure:"liveness"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Paths    PathsConfig    `mapstructure:"paths"`
}

// AgentConfig controls the identity of the calling agent
type AgentConfig struct {
	// ID is the agent identifier used for claims, heartbeats, and log
	// attribution. When empty, the FOREMAN_AGENT_ID environment variable
	// is consulted, and failing that a UUID is generated per invocation.
	ID string `mapstructure:"id"`
}

// LockConfig controls exclusive file lock acquisition
type LockConfig struct {
	// TimeoutSecs bounds how long an operation waits for a guard lock
	// before failing (default: 30)
	TimeoutSecs int `mapstructure:"timeout_secs"`
	// PollIntervalMs is how often a contended lock is re-attempted
	// (default: 250)
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
}

// Timeout returns the lock timeout as a time.Duration
func (c *LockConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// PollInterval returns the lock poll interval as a time.Duration
func (c *LockConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// LivenessConfig controls heartbeat staleness detection
type LivenessConfig struct {
	// TimeoutSecs is how long an agent may go without a heartbeat before
	// the reaper reclaims its work (default: 300)
	TimeoutSecs int `mapstructure:"timeout_secs"`
}

// Timeout returns the staleness timeout as a time.Duration
func (c *LivenessConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// PathsConfig controls where Foreman stores coordination state
type PathsConfig struct {
	// CoordinationDir is the coordination root directory holding the
	// registry, lock records, heartbeats, quota, and logs.
	// Relative paths resolve against the working directory.
	CoordinationDir string `mapstructure:"coordination_dir"`
}

// Default returns a Config populated with default values
func Default() *Config {
	return &Config{
		Agent: AgentConfig{},
		Lock: LockConfig{
			TimeoutSecs:    30,
			PollIntervalMs: 250,
		},
		Liveness: LivenessConfig{
			TimeoutSecs: 300,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Paths: PathsConfig{
			CoordinationDir: filepath.Join(".foreman", "coordination"),
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Agent defaults
	viper.SetDefault("agent.id", defaults.Agent.ID)

	// Lock defaults
	viper.SetDefault("lock.timeout_secs", defaults.Lock.TimeoutSecs)
	viper.SetDefault("lock.poll_interval_ms", defaults.Lock.PollIntervalMs)

	// Liveness defaults
	viper.SetDefault("liveness.timeout_secs", defaults.Liveness.TimeoutSecs)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	// Paths defaults
	viper.SetDefault("paths.coordination_dir", defaults.Paths.CoordinationDir)
}

// Load reads the configuration from viper into a Config struct
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "foreman")
	}
	// Fall back to ~/.config/foreman
	home, err := os.UserHomeDir()
	if err != nil {
		return ".foreman"
	}
	return filepath.Join(home, ".config", "foreman")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
