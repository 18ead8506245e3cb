package config

import (
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return err
		}
		c.Logging.Dir = expanded
	} else {
		c.Logging.Dir = ""
	}

	c.Exiftool.Binary = strings.TrimSpace(c.Exiftool.Binary)

	if c.Run.Workers <= 0 {
		c.Run.Workers = runtime.NumCPU()
	}
	return nil
}
