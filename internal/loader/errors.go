package loader

import "errors"

var (
	// ErrNotFound is returned when a result file does not exist or cannot be opened.
	ErrNotFound = errors.New("result file not found")

	// ErrMalformedData is returned when a result file cannot be interpreted as
	// a table of identifiers and correctness flags. The wrapping error always
	// names the offending file.
	ErrMalformedData = errors.New("malformed result data")
)
