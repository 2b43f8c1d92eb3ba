package engine

import "errors"

// Engine errors.
var (
	// ErrNotConfigured is returned when an operation needs a configuration and
	// none has been set yet. Callers treat it as "list not ready" and skip the report.
	ErrNotConfigured = errors.New("engine is not configured")

	// ErrInvalidMeasurement is returned for negative or non-finite sizes.
	// The previous measurement for the key is kept.
	ErrInvalidMeasurement = errors.New("invalid size measurement")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)
