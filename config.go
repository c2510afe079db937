package guibridge

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the bridge's tunables and the paths needed to bring the
// GUI process up. Hosts typically fill it from their own path discovery;
// LoadConfig reads the same shape from a YAML file.
type Config struct {
	// GuiExecutable is the path of the GUI binary to spawn.
	GuiExecutable string `yaml:"gui_executable"`

	// SkinDir is the skin directory handed to the GUI (--skin).
	SkinDir string `yaml:"skin_dir"`

	// QMLImportPaths are extra GUI-library import paths (--qml-import,
	// repeatable).
	QMLImportPaths []string `yaml:"qml_import_paths"`

	// TimerPeriodMs is the period of the upkeep timer in milliseconds.
	TimerPeriodMs int `yaml:"timer_period_ms"`

	// LogLevel configures the shared logger. Empty keeps the default.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the baseline configuration: a 60 Hz upkeep timer
// and no paths.
func DefaultConfig() Config {
	return Config{
		TimerPeriodMs: 1000 / 60,
	}
}

// TimerPeriod returns the upkeep timer period as a duration.
func (c *Config) TimerPeriod() time.Duration {
	ms := c.TimerPeriodMs
	if ms <= 0 {
		ms = 1000 / 60
	}
	return time.Duration(ms) * time.Millisecond
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
