// Package config loads the host runner configuration from YAML
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"macrokey/core"
	"macrokey/protocol"
)

const (
	BackendUHID = "uhid"
	BackendLog  = "log"

	ButtonTTY      = "tty"
	ButtonEvdev    = "evdev"
	ButtonPressed  = "pressed"
	ButtonReleased = "released"
)

type Config struct {
	Keyboard KeyboardConfig `yaml:"keyboard"`
	Serial   SerialConfig   `yaml:"serial"`
	Store    StoreConfig    `yaml:"store"`
	Button   ButtonConfig   `yaml:"button"`
	Query    QueryConfig    `yaml:"query"`
	Timings  TimingsConfig  `yaml:"timings"`
	Log      LogConfig      `yaml:"log"`
	DryRun   DryRunConfig   `yaml:"dry_run"`
}

// KeyboardConfig selects how keystrokes reach the desktop.
// "uhid" registers a virtual USB keyboard; "log" only logs them.
type KeyboardConfig struct {
	Backend   string `yaml:"backend"`
	Name      string `yaml:"name"`
	VendorID  uint32 `yaml:"vendor_id"`
	ProductID uint32 `yaml:"product_id"`
}

// SerialConfig is the runner's end of the query data channel. An empty
// device runs without a response channel: every query times out.
type SerialConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMS int    `yaml:"read_timeout_ms"`
}

type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// ButtonConfig stands in for the selection button.
// "tty" samples a keypress on Path; "evdev" reads whether Key is held on
// the input device at Path (empty: first keyboard found); "pressed" and
// "released" are fixed.
type ButtonConfig struct {
	Mode     string `yaml:"mode"`
	Path     string `yaml:"path"`
	Key      string `yaml:"key"`
	WindowMS int    `yaml:"window_ms"`
	Polarity string `yaml:"polarity"` // "low" or "high"
}

type QueryConfig struct {
	DeviceGlob string `yaml:"device_glob"`
}

// TimingsConfig overrides core.DefaultTimings. Values are milliseconds;
// zero keeps the default.
type TimingsConfig struct {
	StartupSettle      int `yaml:"startup_settle"`
	KeyHold            int `yaml:"key_hold"`
	CharDelay          int `yaml:"char_delay"`
	MenuSettle         int `yaml:"menu_settle"`
	TerminalSettle     int `yaml:"terminal_settle"`
	RunDialogSettle    int `yaml:"run_dialog_settle"`
	CommandSettle      int `yaml:"command_settle"`
	ExitSettle         int `yaml:"exit_settle"`
	AppSettle          int `yaml:"app_settle"`
	PollInterval       int `yaml:"poll_interval"`
	DrainInterval      int `yaml:"drain_interval"`
	DrainLimit         int `yaml:"drain_limit"`
	SelectionTimeout   int `yaml:"selection_timeout"`
	ProgrammingTimeout int `yaml:"programming_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DryRunConfig scripts the simulated host used by -dry-run. Responses are
// handed out in order, one per query.
type DryRunConfig struct {
	Responses []string `yaml:"responses"`
}

// Load reads, defaults and validates the file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Keyboard.Backend == "" {
		cfg.Keyboard.Backend = BackendUHID
	}
	if cfg.Keyboard.Name == "" {
		cfg.Keyboard.Name = "macrokey"
	}
	if cfg.Keyboard.VendorID == 0 {
		cfg.Keyboard.VendorID = 0x239A
	}
	if cfg.Keyboard.ProductID == 0 {
		cfg.Keyboard.ProductID = 0x80F4
	}

	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Serial.ReadTimeoutMS == 0 {
		cfg.Serial.ReadTimeoutMS = 100
	}

	if cfg.Store.Dir == "" {
		cfg.Store.Dir = "."
	}

	if cfg.Button.Mode == "" {
		cfg.Button.Mode = ButtonTTY
	}
	if cfg.Button.Path == "" && cfg.Button.Mode == ButtonTTY {
		cfg.Button.Path = "/dev/tty"
	}
	if cfg.Button.Key == "" {
		cfg.Button.Key = "KEY_SCROLLLOCK"
	}
	if cfg.Button.WindowMS == 0 {
		cfg.Button.WindowMS = 1000
	}
	if cfg.Button.Polarity == "" {
		cfg.Button.Polarity = "low"
	}

	if cfg.Query.DeviceGlob == "" {
		cfg.Query.DeviceGlob = protocol.DefaultDeviceGlob
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks configuration correctness. It does not mutate cfg.
func Validate(cfg *Config) error {
	switch cfg.Keyboard.Backend {
	case BackendUHID, BackendLog:
	default:
		return fmt.Errorf("keyboard.backend %q: must be %q or %q",
			cfg.Keyboard.Backend, BackendUHID, BackendLog)
	}

	if cfg.Serial.Baud < 0 {
		return fmt.Errorf("serial.baud must not be negative")
	}
	if cfg.Serial.ReadTimeoutMS < 0 {
		return fmt.Errorf("serial.read_timeout_ms must not be negative")
	}

	switch cfg.Button.Mode {
	case ButtonTTY, ButtonEvdev, ButtonPressed, ButtonReleased:
	default:
		return fmt.Errorf("button.mode %q: must be one of %q, %q, %q, %q",
			cfg.Button.Mode, ButtonTTY, ButtonEvdev, ButtonPressed, ButtonReleased)
	}
	if cfg.Button.WindowMS < 0 {
		return fmt.Errorf("button.window_ms must not be negative")
	}
	if _, err := parsePolarity(cfg.Button.Polarity); err != nil {
		return err
	}

	// The glob is pasted between single quotes of the host command
	if strings.ContainsAny(cfg.Query.DeviceGlob, "'\"\n ") {
		return fmt.Errorf("query.device_glob %q: quotes, spaces and newlines are not allowed",
			cfg.Query.DeviceGlob)
	}

	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return err
	}

	t := cfg.Timings
	for name, v := range map[string]int{
		"startup_settle":      t.StartupSettle,
		"key_hold":            t.KeyHold,
		"char_delay":          t.CharDelay,
		"menu_settle":         t.MenuSettle,
		"terminal_settle":     t.TerminalSettle,
		"run_dialog_settle":   t.RunDialogSettle,
		"command_settle":      t.CommandSettle,
		"exit_settle":         t.ExitSettle,
		"app_settle":          t.AppSettle,
		"poll_interval":       t.PollInterval,
		"drain_interval":      t.DrainInterval,
		"drain_limit":         t.DrainLimit,
		"selection_timeout":   t.SelectionTimeout,
		"programming_timeout": t.ProgrammingTimeout,
	} {
		if v < 0 {
			return fmt.Errorf("timings.%s must not be negative", name)
		}
	}

	for i, r := range cfg.DryRun.Responses {
		if strings.ContainsAny(r, "\r\n") {
			return fmt.Errorf("dry_run.responses[%d]: must be a single line", i)
		}
	}

	return nil
}

// CoreTimings returns the default timings with the configured overrides
func (c *Config) CoreTimings() core.Timings {
	t := core.DefaultTimings()
	override := func(d *time.Duration, ms int) {
		if ms > 0 {
			*d = time.Duration(ms) * time.Millisecond
		}
	}
	o := c.Timings
	override(&t.StartupSettle, o.StartupSettle)
	override(&t.KeyHold, o.KeyHold)
	override(&t.CharDelay, o.CharDelay)
	override(&t.MenuSettle, o.MenuSettle)
	override(&t.TerminalSettle, o.TerminalSettle)
	override(&t.RunDialogSettle, o.RunDialogSettle)
	override(&t.CommandSettle, o.CommandSettle)
	override(&t.ExitSettle, o.ExitSettle)
	override(&t.AppSettle, o.AppSettle)
	override(&t.PollInterval, o.PollInterval)
	override(&t.DrainInterval, o.DrainInterval)
	override(&t.DrainLimit, o.DrainLimit)
	override(&t.SelectionTimeout, o.SelectionTimeout)
	override(&t.ProgrammingTimeout, o.ProgrammingTimeout)
	return t
}

// ActiveLevel returns the configured button polarity
func (c *Config) ActiveLevel() core.ActiveLevel {
	a, _ := parsePolarity(c.Button.Polarity)
	return a
}

// ButtonWindow is how long the tty button waits for a keypress
func (c *Config) ButtonWindow() time.Duration {
	return time.Duration(c.Button.WindowMS) * time.Millisecond
}

// LogLevel returns the configured slog level
func (c *Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func parsePolarity(s string) (core.ActiveLevel, error) {
	switch strings.ToLower(s) {
	case "low":
		return core.ActiveLow, nil
	case "high":
		return core.ActiveHigh, nil
	}
	return core.ActiveLow, fmt.Errorf("button.polarity %q: must be \"low\" or \"high\"", s)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", s, err)
	}
	return l, nil
}
