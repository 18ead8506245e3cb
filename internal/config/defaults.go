package config

const (
	defaultMinSharedPrefix = 12
	defaultExiftoolTimeout = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Run: Run{
			Workers:      0, // one per CPU
			VerifyCopies: true,
			Ledger:       true,
			Progress:     true,
		},
		Matching: Matching{
			MinSharedPrefix: defaultMinSharedPrefix,
		},
		Exiftool: Exiftool{
			Binary:         "exiftool",
			TimeoutSeconds: defaultExiftoolTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
