// Package logger provides structured logging for pipekit using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("dag")
//	log.Info("node completed", logger.Fields(logger.FieldNode, "radiance"))
package logger
