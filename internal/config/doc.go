// Package config loads, normalizes, and validates the TOML configuration for
// crunch. Configuration is read once at process start; the resulting Config
// is treated as immutable afterward.
package config
