package logger

import (
	"fmt"

	"github.com/raysim/pipekit/errors"
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate reports whether the level and format name known settings.
func (c *Config) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown log level %q", c.Level)).
			WithDetail("field", "logging.level")
	}
	switch c.Format {
	case "json", "console":
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown log format %q", c.Format)).
			WithDetail("field", "logging.format")
	}
	return nil
}
