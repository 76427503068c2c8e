package config

import (
	"fmt"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Navigation NavigationConfig `mapstructure:"navigation" yaml:"navigation"`
	Matcher    MatcherConfig    `mapstructure:"matcher" yaml:"matcher"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// NavigationConfig tunes the pathfinding and retry behavior.
type NavigationConfig struct {
	// MaxPathLength caps the number of states in a candidate path. Zero
	// means "number of registered states", which is the termination bound
	// for simple-path enumeration.
	MaxPathLength int `mapstructure:"max_path_length" yaml:"max_path_length"`
	// StaysVisibleDefault applies to transitions that leave the tri-state
	// unset.
	StaysVisibleDefault bool `mapstructure:"stays_visible_default" yaml:"stays_visible_default"`
}

// MatcherConfig tunes Matcher implementations.
type MatcherConfig struct {
	// Backend selects the matcher: "mock" or "browser".
	Backend string `mapstructure:"backend" yaml:"backend"`
	// FindTimeout bounds a single Attempt call.
	FindTimeout time.Duration `mapstructure:"find_timeout" yaml:"find_timeout"`
	// AttemptsPerSecond rate-limits successive Attempt calls.
	AttemptsPerSecond float64 `mapstructure:"attempts_per_second" yaml:"attempts_per_second"`
	// MockFailNames lists element names the mock matcher reports as absent.
	MockFailNames []string `mapstructure:"mock_fail_names" yaml:"mock_fail_names"`
	// MockProbability is the percent chance (1-100) that the mock matcher
	// finds an element that resolves to no state.
	MockProbability int `mapstructure:"mock_probability" yaml:"mock_probability"`
}

// HistoryConfig configures the SQLite transition history store.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// DatabaseConfig configures the optional Postgres action log.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// SetDefaults registers the default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "brobot")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("navigation.max_path_length", 0)
	v.SetDefault("navigation.stays_visible_default", false)

	v.SetDefault("matcher.backend", "mock")
	v.SetDefault("matcher.find_timeout", 10*time.Second)
	v.SetDefault("matcher.attempts_per_second", 2.0)
	v.SetDefault("matcher.mock_probability", 100)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "~/.brobot/history.db")

	v.SetDefault("database.enabled", false)
}

// Load reads configuration from the given file (or the standard search
// path when empty), layered under BROBOT_* environment variables, and
// returns the validated Config.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.brobot")
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BROBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints and expands path placeholders.
func (c *Config) Validate() error {
	switch c.Matcher.Backend {
	case "mock", "browser":
	default:
		return fmt.Errorf("unknown matcher backend %q", c.Matcher.Backend)
	}
	if c.Matcher.FindTimeout <= 0 {
		return fmt.Errorf("matcher.find_timeout must be positive, got %s", c.Matcher.FindTimeout)
	}
	if c.Matcher.AttemptsPerSecond <= 0 {
		return fmt.Errorf("matcher.attempts_per_second must be positive, got %f", c.Matcher.AttemptsPerSecond)
	}
	if c.Matcher.MockProbability < 1 || c.Matcher.MockProbability > 100 {
		return fmt.Errorf("matcher.mock_probability must be within 1-100, got %d", c.Matcher.MockProbability)
	}
	if c.Navigation.MaxPathLength < 0 {
		return fmt.Errorf("navigation.max_path_length must not be negative, got %d", c.Navigation.MaxPathLength)
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.enabled is true")
	}
	if c.History.Enabled {
		expanded, err := homedir.Expand(c.History.Path)
		if err != nil {
			return fmt.Errorf("invalid history.path: %w", err)
		}
		c.History.Path = expanded
	}
	return nil
}
