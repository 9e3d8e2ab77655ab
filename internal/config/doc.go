// Package config defines runtime configuration for confsync.
//
// Configuration is assembled in layers: built-in defaults, then the
// YAML configuration file, then environment variables, then CLI flags.
// The resulting Config struct is passed through the application via
// dependency injection rather than global state.
package config
