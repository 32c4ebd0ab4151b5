package config

import "fmt"

// maxWorkers bounds the conversion pool; each worker drives an ffmpeg process
// that already uses every CPU thread.
const maxWorkers = 16

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 || c.Batch.Workers > maxWorkers {
		return fmt.Errorf("batch.workers must be between 1 and %d, got %d", maxWorkers, c.Batch.Workers)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
