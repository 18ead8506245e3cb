// Package config loads, normalizes, and validates takesort configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/takesort/config.toml or a
// project-local takesort.toml. Obtain settings through this package so
// downstream code receives sanitized paths, canonical log formats, and clear
// validation errors.
package config
