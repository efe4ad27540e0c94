// Package errors provides structured error types for flvgap operations.
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindFormat represents input that is not a readable FLV container.
	KindFormat ErrorKind = iota
	// KindTruncated represents a stream that was cut short inside a tag.
	KindTruncated
	// KindIO represents I/O errors outside of container parsing.
	KindIO
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindNoFilesFound represents no suitable FLV files found.
	KindNoFilesFound
	// KindFilter represents gap filter compilation or evaluation errors.
	KindFilter
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindFormat:
		return "Format error"
	case KindTruncated:
		return "Truncated stream"
	case KindIO:
		return "I/O error"
	case KindConfig:
		return "Configuration error"
	case KindNoFilesFound:
		return "No files found"
	case KindFilter:
		return "Filter error"
	default:
		return "Unknown error"
	}
}

// CoreError is the main error type for flvgap operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Offset     int64 // byte offset in the input, -1 when not applicable
	Underlying error
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail())
}

// Detail returns the error text without the kind prefix.
func (e *CoreError) Detail() string {
	msg := e.Message
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (at byte %d)", msg, e.Offset)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewFormatError creates an error for input that is not a valid FLV container.
func NewFormatError(message string, offset int64, underlying error) *CoreError {
	return &CoreError{Kind: KindFormat, Message: message, Offset: offset, Underlying: underlying}
}

// NewTruncatedError creates an error for a tag that promises more bytes than remain.
func NewTruncatedError(message string, offset int64) *CoreError {
	return &CoreError{Kind: KindTruncated, Message: message, Offset: offset}
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Offset: -1, Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message, Offset: -1, Underlying: underlying}
}

// NewNoFilesFoundError creates an error for when no FLV files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no FLV files found in %s", dir), Offset: -1}
}

// NewFilterError creates a new gap filter error.
func NewFilterError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindFilter, Message: message, Offset: -1, Underlying: underlying}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsFormat checks if the error is a container format error.
func IsFormat(err error) bool {
	return IsKind(err, KindFormat)
}

// IsTruncated checks if the error is a truncated stream error.
func IsTruncated(err error) bool {
	return IsKind(err, KindTruncated)
}

// IsNoFilesFound checks if the error is a no-files-found error.
func IsNoFilesFound(err error) bool {
	return IsKind(err, KindNoFilesFound)
}
