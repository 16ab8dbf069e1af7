package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is().
var (
	// ErrEmptyTitle is returned when the report title is empty.
	ErrEmptyTitle = errors.New("invalid title: must not be empty")

	// ErrEmptyOutputPath is returned when no output path is configured.
	ErrEmptyOutputPath = errors.New("invalid output path: must not be empty")

	// ErrInvalidConcurrency is returned when the loading concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxCellWidth is returned when the maximum cell width is negative.
	// Use 0 to disable truncation.
	ErrInvalidMaxCellWidth = errors.New("invalid max cell width: must be non-negative")

	// ErrInvalidLogFormat is returned when the log format is neither "text" nor "json".
	ErrInvalidLogFormat = errors.New("invalid log format: must be \"text\" or \"json\"")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
