// Package config provides configuration loading for pipekit embedders.
//
// Configuration is read from YAML files via viper, with .env files
// loaded through godotenv and environment variables taking precedence.
package config
