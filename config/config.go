package config

import (
	"fmt"

	"github.com/raysim/pipekit/errors"
	"github.com/raysim/pipekit/logger"
)

// BaseConfig contains essential fields that every embedder needs.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate requires a name and a known deployment environment.
func (c *BaseConfig) Validate() error {
	if c.Name == "" {
		return errors.MissingField("base.name")
	}
	switch c.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown environment %q", c.Environment)).
			WithDetail("field", "base.environment")
	}
}

// EngineConfig groups the engine-level settings.
type EngineConfig struct {
	// Validate is the default global validation flag for new pipelines.
	Validate *bool `yaml:"validate" mapstructure:"validate"`
	// DefinitionPaths lists directories searched for pipeline definition files.
	DefinitionPaths []string `yaml:"definition_paths" mapstructure:"definition_paths"`
	// GraphvizBin is the dot binary used for PNG/SVG rendering.
	GraphvizBin string `yaml:"graphviz_bin" mapstructure:"graphviz_bin"`
}

// ApplyDefaults applies default values to engine configuration.
func (c *EngineConfig) ApplyDefaults() {
	if c.Validate == nil {
		v := true
		c.Validate = &v
	}
	if len(c.DefinitionPaths) == 0 {
		c.DefinitionPaths = []string{"./pipelines"}
	}
	if c.GraphvizBin == "" {
		c.GraphvizBin = "dot"
	}
}

// ValidateConfig requires at least one definition search path and a renderer binary.
func (c *EngineConfig) ValidateConfig() error {
	if len(c.DefinitionPaths) == 0 {
		return errors.MissingField("engine.definition_paths")
	}
	if c.GraphvizBin == "" {
		return errors.MissingField("engine.graphviz_bin")
	}
	return nil
}

// TracingConfig groups OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults applies default values to tracing configuration.
func (c *TracingConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Validate bounds the sample rate to [0, 1].
func (c *TracingConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return errors.InvalidInput(fmt.Sprintf("sample rate %v outside [0, 1]", c.SampleRate)).
			WithDetail("field", "tracing.sample_rate")
	}
	return nil
}

// MetricsConfig groups OpenTelemetry metrics settings.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// ApplyDefaults applies default values to metrics configuration.
func (c *MetricsConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
}

// Config is the root configuration for a pipekit embedder.
type Config struct {
	Base    BaseConfig    `yaml:"base" mapstructure:"base"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Engine.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	c.Metrics.ApplyDefaults()
}

// Validate validates every section, stopping at the first failure.
func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Engine.ValidateConfig(); err != nil {
		return err
	}
	return c.Tracing.Validate()
}
