// Package config loads and validates the YAML run configuration.
//
// The configuration supplies plain scalar and struct parameters only; the
// translation into protocol command strings happens in the acquire package.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/4x0/hioctl/script"
	"github.com/4x0/hioctl/sequence"
)

// Config is the complete run configuration.
type Config struct {
	Host     HostConfig      `yaml:"host"`
	System   SystemConfig    `yaml:"system"`
	Display  *DisplayConfig  `yaml:"display"`
	Measure  MeasureConfig   `yaml:"measure"`
	Panel    *PanelConfig    `yaml:"panel"`
	Label    *LabelConfig    `yaml:"label"`
	Run      RunConfig       `yaml:"run"`
	Sequence *SequenceConfig `yaml:"sequence"`
	Script   *ScriptConfig   `yaml:"script"`
}

// HostConfig identifies the instrument endpoint.
type HostConfig struct {
	Address    string  `yaml:"address"`
	Port       int     `yaml:"port"`
	TimeoutSec float64 `yaml:"timeout_sec"`
}

// Timeout returns the connect/query timeout as a duration.
func (h HostConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSec * float64(time.Second))
}

// SystemConfig holds instrument-wide setup actions.
type SystemConfig struct {
	Reset bool `yaml:"reset"`
}

// DisplayConfig holds front-panel display settings. Empty fields are left
// untouched on the instrument.
type DisplayConfig struct {
	Brightness string `yaml:"brightness"`
	View       string `yaml:"view"`
	State      string `yaml:"state"`
	Type       string `yaml:"type"`
}

// MeasureConfig holds measurement setup. Empty fields are left untouched.
type MeasureConfig struct {
	VoltageRange     string `yaml:"voltage_range"`
	VoltageRangeAuto string `yaml:"voltage_range_auto"`
	Speed            string `yaml:"speed"`
	SampleCount      int    `yaml:"sample_count"`
	Format           string `yaml:"format"`
	Continuous       string `yaml:"continuous"`
	ImpedanceAuto    string `yaml:"impedance_auto"`
	Temperature      bool   `yaml:"temperature"`
}

// PanelConfig recalls or saves a front-panel setup slot.
type PanelConfig struct {
	Load *int `yaml:"load"`
	Save *int `yaml:"save"`
}

// LabelConfig drives the front-panel text label.
type LabelConfig struct {
	State string `yaml:"state"`
	Text  string `yaml:"text"`
}

// RunConfig drives the acquisition loop. Samples is a pointer so that an
// explicit 0 (continuous mode) is distinguishable from an absent key.
type RunConfig struct {
	Samples           *int    `yaml:"samples"`
	PollingRateSec    float64 `yaml:"polling_rate"`
	SettingsDump      bool    `yaml:"settings_dump"`
	TriggerSource     string  `yaml:"trigger_source"`
	TriggerTimeoutSec float64 `yaml:"trigger_timeout"`
	Output            string  `yaml:"output"`
	Archive           string  `yaml:"archive"`
}

// SampleCount returns the target sample count; 0 runs continuously.
func (r RunConfig) SampleCount() int {
	if r.Samples == nil {
		return DefaultSamples
	}

	return *r.Samples
}

// Interval returns the polling interval as a duration.
func (r RunConfig) Interval() time.Duration {
	return time.Duration(r.PollingRateSec * float64(time.Second))
}

// TriggerTimeout returns the trigger wait bound, zero when unset.
func (r RunConfig) TriggerTimeout() time.Duration {
	return time.Duration(r.TriggerTimeoutSec * float64(time.Second))
}

// SequenceConfig describes the digital-output sequence plan.
type SequenceConfig struct {
	Mode           string `yaml:"mode"` // "range" or "list"
	Start          int    `yaml:"start"`
	End            int    `yaml:"end"`
	Step           int    `yaml:"step"`
	Patterns       []int  `yaml:"patterns"`
	SamplesPerStep int    `yaml:"samples_per_step"`
	Loop           bool   `yaml:"loop"`
}

// Plan builds the sequence plan, validating its parameters.
func (s *SequenceConfig) Plan() (*sequence.Plan, error) {
	switch s.Mode {
	case "range":
		return sequence.NewRangePlan(s.Start, s.End, s.Step, s.SamplesPerStep, s.Loop)
	case "list":
		return sequence.NewListPlan(s.Patterns, s.SamplesPerStep, s.Loop)
	default:
		return nil, fmt.Errorf("%w: unknown sequence mode %q", sequence.ErrConfig, s.Mode)
	}
}

// ScriptConfig selects a user routine and its sandbox policy.
type ScriptConfig struct {
	File       string  `yaml:"file"`
	Tier       string  `yaml:"tier"`
	TimeoutSec float64 `yaml:"timeout_sec"`
}

// Timeout returns the script wall-clock deadline, zero when unset.
func (s *ScriptConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec * float64(time.Second))
}

// TrustTier parses the configured trust tier.
func (s *ScriptConfig) TrustTier() (script.Tier, error) {
	return script.ParseTier(s.Tier)
}

// Default values applied by Load before validation.
const (
	DefaultPort           = 23
	DefaultTimeoutSec     = 10
	DefaultSamples        = 10
	DefaultPollingRateSec = 1
	DefaultScriptTier     = "restricted"
	DefaultScriptTimeout  = 300
)

// Load reads, defaults, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes, defaults, and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host.Port == 0 {
		c.Host.Port = DefaultPort
	}
	if c.Host.TimeoutSec == 0 {
		c.Host.TimeoutSec = DefaultTimeoutSec
	}
	if c.Run.Samples == nil {
		d := DefaultSamples
		c.Run.Samples = &d
	}
	if c.Run.PollingRateSec == 0 {
		c.Run.PollingRateSec = DefaultPollingRateSec
	}
	if c.Run.TriggerSource == "" {
		c.Run.TriggerSource = "IMM"
	}
	if c.Script != nil {
		if c.Script.Tier == "" {
			c.Script.Tier = DefaultScriptTier
		}
		if c.Script.TimeoutSec == 0 {
			c.Script.TimeoutSec = DefaultScriptTimeout
		}
	}
}

// Validate reports the first configuration problem found. It runs before
// any connection is opened.
func (c *Config) Validate() error {
	if c.Host.Address == "" {
		return fmt.Errorf("config: host.address is required")
	}
	if c.Host.Port < 1 || c.Host.Port > 65535 {
		return fmt.Errorf("config: host.port %d out of range [1, 65535]", c.Host.Port)
	}
	if c.Host.TimeoutSec <= 0 {
		return fmt.Errorf("config: host.timeout_sec must be positive")
	}

	if c.Run.SampleCount() < 0 {
		return fmt.Errorf("config: run.samples must be non-negative (0 = continuous)")
	}
	if c.Run.PollingRateSec <= 0 {
		return fmt.Errorf("config: run.polling_rate must be positive")
	}
	if c.Run.TriggerTimeoutSec < 0 {
		return fmt.Errorf("config: run.trigger_timeout must be non-negative")
	}
	switch c.Run.TriggerSource {
	case "IMM", "IMMediate", "EXT", "EXTernal", "BUS":
	default:
		return fmt.Errorf("config: run.trigger_source %q not one of IMM, EXT, BUS", c.Run.TriggerSource)
	}

	if c.Panel != nil && c.Panel.Load != nil && c.Panel.Save != nil {
		return fmt.Errorf("config: panel.load and panel.save are mutually exclusive")
	}

	if c.Sequence != nil {
		if _, err := c.Sequence.Plan(); err != nil {
			return fmt.Errorf("config: sequence: %w", err)
		}
	}

	if c.Script != nil {
		if c.Script.File == "" {
			return fmt.Errorf("config: script.file is required when script section is present")
		}
		if _, err := c.Script.TrustTier(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if c.Script.TimeoutSec <= 0 {
			return fmt.Errorf("config: script.timeout_sec must be positive")
		}
	}

	return nil
}
