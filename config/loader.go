package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for an application.
// Returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(opts LoaderOptions) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.findFirst([]string{
			"./pipekit.yml",
			"./pipekit.yaml",
			"./config/pipekit.yml",
			"./config.yml",
		})
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.findFirst([]string{
			".env.local",
			".env",
		})
	}

	return resolved
}

func (cr *Resolver) findFirst(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderOptions holds optional file overrides for Load.
type LoaderOptions struct {
	// ConfigFile is an explicit config file path. Searched for when empty.
	ConfigFile string
	// EnvFile is an explicit .env file path. Searched for when empty.
	EnvFile string
}

// Load reads configuration from YAML and the environment.
// Environment variables use the PIPEKIT_ prefix and override file values.
func Load(opts LoaderOptions) (*Config, error) {
	resolver := &Resolver{FileSystem: &RealFileSystem{}}
	resolved := resolver.ResolveFiles(opts)

	if resolved.EnvFile != "" {
		if err := resolver.FileSystem.LoadEnv(resolved.EnvFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", resolved.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("PIPEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if resolved.ConfigFile != "" {
		v.SetConfigFile(resolved.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", resolved.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
