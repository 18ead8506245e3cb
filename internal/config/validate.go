package config

import (
	"errors"
	"fmt"
)

const maxWorkers = 256

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRun(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateExiftool(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRun() error {
	if c.Run.Workers < 1 || c.Run.Workers > maxWorkers {
		return fmt.Errorf("run.workers must be between 1 and %d, got %d", maxWorkers, c.Run.Workers)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.MinSharedPrefix < 4 {
		return errors.New("matching.min_shared_prefix must be at least 4; lower values pair unrelated files")
	}
	return nil
}

func (c *Config) validateExiftool() error {
	if c.Exiftool.Disabled {
		return nil
	}
	if c.Exiftool.TimeoutSeconds <= 0 {
		return errors.New("exiftool.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
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
