package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jask/mxdesk/internal/sample"
)

// Config holds application configuration.
type Config struct {
	Database     DatabaseConfig
	UI           UIConfig
	Log          LogConfig
	ManualSample ManualSampleConfig `mapstructure:"manual_sample"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings. Timezone is an IANA name used when
// printing stored timestamps.
type UIConfig struct {
	Route    string
	Timezone string
}

// LogConfig controls the file logger. The TUI owns the terminal, so logs
// never go to stdout.
type LogConfig struct {
	Path  string
	Level string
}

// ManualSampleConfig carries the validation rules for the new sample form.
type ManualSampleConfig struct {
	Components []Component
}

// Component configures one form field.
type Component struct {
	ID         string
	Label      string
	Pattern    string
	PatternMsg string `mapstructure:"pattern_msg"`
	MaxLength  *int   `mapstructure:"max_length"`
}

// Load reads configuration from file and env. Env var overrides use prefix MXDESK_.
func Load() (Config, error) {
	v := newViper()
	if err := readConfig(v); err != nil {
		return Config{}, err
	}
	return decode(v)
}

// Watch reloads the config file whenever it changes on disk and hands the
// result to onChange. When no config file is in use it does nothing.
func Watch(onChange func(Config, error)) error {
	v := newViper()
	if err := readConfig(v); err != nil {
		return err
	}
	if v.ConfigFileUsed() == "" {
		return nil
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "mxdesk")
	v.SetDefault("database.path", filepath.Join(dataDir, "mxdesk.db"))
	v.SetDefault("ui.route", "/datacollection")
	v.SetDefault("ui.timezone", "UTC")
	v.SetDefault("log.path", filepath.Join(dataDir, "mxdesk.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("MXDESK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "mxdesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MXDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit MXDESK_CONFIG must exist and parse
		if os.Getenv("MXDESK_CONFIG") != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Component returns the configured component with the given id.
func (c Config) Component(id string) (Component, bool) {
	for _, comp := range c.ManualSample.Components {
		if comp.ID == id {
			return comp, true
		}
	}
	return Component{}, false
}

// FieldRule resolves the rule for a form field, falling back to defaults
// when the component is absent. A pattern that does not compile yields the
// default rule and an error.
func (c Config) FieldRule(id string) (sample.FieldRule, error) {
	comp, ok := c.Component(id)
	if !ok {
		return sample.DefaultRule(id), nil
	}
	return sample.CompileRule(id, sample.RuleSource{
		Label:      comp.Label,
		Pattern:    comp.Pattern,
		PatternMsg: comp.PatternMsg,
		MaxLength:  comp.MaxLength,
	})
}

// SampleRules resolves both manual sample fields. Rules that failed to
// compile are replaced by defaults and reported in the returned error.
func (c Config) SampleRules() (sample.Rules, error) {
	var errs []string
	name, err := c.FieldRule(sample.FieldSampleName)
	if err != nil {
		errs = append(errs, err.Error())
	}
	acr, err := c.FieldRule(sample.FieldProteinAcronym)
	if err != nil {
		errs = append(errs, err.Error())
	}
	rules := sample.Rules{SampleName: name, ProteinAcronym: acr}
	if len(errs) > 0 {
		return rules, fmt.Errorf("manual sample rules: %s", strings.Join(errs, "; "))
	}
	return rules, nil
}

// Location resolves UI.Timezone. An empty or unknown name yields UTC; the
// error reports the unknown name.
func (c Config) Location() (*time.Location, error) {
	if c.UI.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("load timezone %q: %w", c.UI.Timezone, err)
	}
	return loc, nil
}

// Path returns the config file Save writes to.
func Path() string {
	if path := os.Getenv("MXDESK_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "mxdesk", "config.toml")
}

// Init writes the currently effective settings (defaults plus env
// overrides plus any existing file) to Path. An existing file is kept
// unless force is set.
func Init(force bool) (string, error) {
	path := Path()
	_, statErr := os.Stat(path)
	if statErr == nil && !force {
		return path, fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	v := newViper()
	if statErr == nil {
		if err := readConfig(v); err != nil {
			return path, err
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return path, err
	}
	return path, Save(cfg)
}

// Save writes the provided config to disk, creating the config directory if needed.
// Field rules are left to hand editing and are not written.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.route", cfg.UI.Route)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
