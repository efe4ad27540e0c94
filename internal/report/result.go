// Package report assembles gap events into the serializable check result.
package report

import "fmt"

// Code is the overall outcome of a check.
type Code int

const (
	// CodeError means the file could not be analyzed to the end.
	CodeError Code = -1
	// CodeOK means the whole file was read and no gap was found.
	CodeOK Code = 0
	// CodeHasGap means the whole file was read and at least one gap was found.
	CodeHasGap Code = 1
)

// String returns a short label for the code.
func (c Code) String() string {
	switch c {
	case CodeError:
		return "error"
	case CodeOK:
		return "ok"
	case CodeHasGap:
		return "has_gap"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// OffsetInfo is one reported gap.
type OffsetInfo struct {
	IDFrom        int   `json:"id_from"`
	IDTo          int   `json:"id_to"`
	TmFrom        int64 `json:"tm_from"`
	TmTo          int64 `json:"tm_to"`
	CurrentOffset int64 `json:"current_offset"`
	TotalOffset   int64 `json:"total_offset"`
}

// CheckResult is the outcome of checking one file. Message is set only for
// CodeError and Data only for CodeHasGap.
type CheckResult struct {
	Code    Code         `json:"code"`
	Message string       `json:"message,omitempty"`
	Data    []OffsetInfo `json:"data,omitempty"`
}

// OK reports whether the check completed without finding gaps.
func (r CheckResult) OK() bool {
	return r.Code == CodeOK
}

// Failed reports whether the check could not complete.
func (r CheckResult) Failed() bool {
	return r.Code == CodeError
}

// ErrorResult builds a CodeError result.
func ErrorResult(message string) CheckResult {
	if message == "" {
		message = "unknown error"
	}
	return CheckResult{Code: CodeError, Message: message}
}
