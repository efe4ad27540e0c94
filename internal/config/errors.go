// Package config provides configuration types and defaults for flvgap.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidPreset indicates an unknown preset name was provided.
	ErrInvalidPreset = errors.New("invalid preset")

	// ErrInvalidTolerance indicates a tolerance outside the accepted range.
	ErrInvalidTolerance = errors.New("tolerance out of range")

	// ErrInvalidWarmup indicates a warmup window outside the accepted range.
	ErrInvalidWarmup = errors.New("warmup samples out of range")

	// ErrInvalidDelta indicates a non-positive or oversized fallback delta.
	ErrInvalidDelta = errors.New("default delta out of range")
)
