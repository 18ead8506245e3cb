// Package logging centralizes slog construction for takesort.
//
// It offers a compact console handler for interactive runs, a JSON handler
// for machine consumption, typed attribute helpers, and component loggers so
// every pipeline stage reports under a stable name.
package logging
