package config

const (
	defaultLogDir         = "~/.local/share/crunch/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultBatchWorkers   = 1
	defaultHistoryEnabled = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
