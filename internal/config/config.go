package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StartDateLayout is the layout of Config.StartDate.
const StartDateLayout = "2006-01-02"

// EventConfig is a seed event stored in the calendar at startup.
type EventConfig struct {
	Name string `yaml:"name" json:"name"`
	// Day is the 1-based day slot.
	Day int `yaml:"day" json:"day"`
	// StartTime is hour-minute encoded, 0..2400.
	StartTime int `yaml:"start_time" json:"start_time"`
	// Duration is in minutes.
	Duration int `yaml:"duration" json:"duration"`
	// Info is stored as the event payload when non-empty.
	Info string `yaml:"info,omitempty" json:"info,omitempty"`
}

// ICSConfig describes a single ICS source (local path or HTTP(S) URL).
type ICSConfig struct {
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for logging.
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// ScheduleConfig is a cron-driven recurring event.
type ScheduleConfig struct {
	Name string `yaml:"name" json:"name"`
	// Cron is a standard 5-field cron expression (e.g. "0 9 * * 1-5").
	Cron     string `yaml:"cron" json:"cron"`
	Duration int    `yaml:"duration" json:"duration"`
	Info     string `yaml:"info,omitempty" json:"info,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Name is the calendar's label.
	Name string `yaml:"name" json:"name"`

	// Days is the fixed number of day slots.
	Days int `yaml:"days" json:"days"`

	// Order selects how events are arranged within a day. Supported values:
	//   - "duration" (default)
	//   - "start_time"
	//   - "name"
	Order string `yaml:"order" json:"order"`

	// StartDate is the date of day 1 (YYYY-MM-DD). Empty means today in
	// Timezone. Only ICS and cron loaders use it.
	StartDate string `yaml:"start_date" json:"start_date"`

	// Timezone is the IANA timezone used to place ICS and cron occurrences.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Verbose adds the calendar header to printed reports.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Listen is the HTTP listen address used with -serve.
	Listen string `yaml:"listen" json:"listen"`

	Events    []EventConfig    `yaml:"events" json:"events"`
	ICS       []ICSConfig      `yaml:"ics" json:"ics"`
	Schedules []ScheduleConfig `yaml:"schedules" json:"schedules"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:      "Week",
		Days:      7,
		Order:     "duration",
		Timezone:  "UTC",
		Verbose:   true,
		LogLevel:  "info",
		Listen:    "127.0.0.1:8080",
		Events:    []EventConfig{},
		ICS:       []ICSConfig{},
		Schedules: []ScheduleConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Name == "" {
		c.Name = "Week"
	}
	if c.Days <= 0 {
		c.Days = 7
	}
	switch c.Order {
	case "duration", "start_time", "name":
		// ok
	default:
		c.Order = "duration"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Events == nil {
		c.Events = []EventConfig{}
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.Schedules == nil {
		c.Schedules = []ScheduleConfig{}
	}
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FirstDay returns midnight of day 1 in loc. An empty StartDate means today.
func (c *Config) FirstDay(now time.Time, loc *time.Location) (time.Time, error) {
	if c.StartDate == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation(StartDateLayout, c.StartDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start_date %q: %w", c.StartDate, err)
	}
	return d, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically via
// a temp file + rename, with 0600 permissions on the result.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".daycal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
