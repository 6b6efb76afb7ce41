// Package config loads reporter settings from a YAML file, MARQUEE_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ansel1/marquee/events"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up in the working directory when no
// path is given.
const FileName = ".marquee.yaml"

// EnvPrefix prefixes every environment variable, e.g. MARQUEE_LOG_FILE.
const EnvPrefix = "MARQUEE"

// Settings holds all reporter settings.
type Settings struct {
	// Display switches. Each one is OR-ed onto the engine's global config:
	// a setting can turn a mode on but never off.
	Silent  bool `yaml:"silent" mapstructure:"silent"`
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Expand  bool `yaml:"expand" mapstructure:"expand"`

	Columns int           `yaml:"columns" mapstructure:"columns"` // 0 = detect
	NoTTY   bool          `yaml:"notty" mapstructure:"notty"`
	Refresh time.Duration `yaml:"refresh" mapstructure:"refresh"` // live region redraw interval

	Log LogSettings `yaml:"log" mapstructure:"log"`
}

// LogSettings configures the diagnostic log. Nothing is logged to the
// terminal while the live display is up.
type LogSettings struct {
	File       string `yaml:"file" mapstructure:"file"`
	Debug      bool   `yaml:"debug" mapstructure:"debug"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	return &Settings{
		Refresh: time.Second,
		Log: LogSettings{
			MaxSizeMB:  10,
			MaxAgeDays: 7,
			MaxBackups: 3,
		},
	}
}

// flagKeys maps setting keys to the flag names bound to them.
var flagKeys = map[string]string{
	"silent":  "silent",
	"verbose": "verbose",
	"expand":  "expand",
	"columns": "columns",
	"notty":   "notty",
	"refresh": "refresh",

	"log.file":  "log-file",
	"log.debug": "debug",
}

func setDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("silent", d.Silent)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("expand", d.Expand)
	v.SetDefault("columns", d.Columns)
	v.SetDefault("notty", d.NoTTY)
	v.SetDefault("refresh", d.Refresh)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
}

// Load resolves the settings. path names the settings file; when empty,
// FileName is used if it exists in the working directory. flags may be nil;
// only flags the user actually set override the file and environment.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if _, err := os.Stat(FileName); err == nil {
		v.SetConfigFile(FileName)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes settings to a YAML file.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the settings are usable.
func (s *Settings) Validate() error {
	if s.Columns < 0 {
		return fmt.Errorf("columns must not be negative, got %d", s.Columns)
	}
	if s.Refresh < 100*time.Millisecond {
		return fmt.Errorf("refresh must be at least 100ms, got %s", s.Refresh)
	}
	if s.Log.MaxSizeMB < 0 || s.Log.MaxAgeDays < 0 || s.Log.MaxBackups < 0 {
		return errors.New("log rotation limits must not be negative")
	}
	return nil
}

// Apply merges the display switches into the engine's global config.
func (s *Settings) Apply(cfg events.GlobalConfig) events.GlobalConfig {
	cfg.Silent = cfg.Silent || s.Silent
	cfg.Verbose = cfg.Verbose || s.Verbose
	cfg.Expand = cfg.Expand || s.Expand
	return cfg
}
