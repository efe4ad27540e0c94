// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// CheckStartSummary describes a file before its tags are walked.
type CheckStartSummary struct {
	InputFile string
	Size      uint64
	HasAudio  bool
	HasVideo  bool
}

// ProgressSnapshot contains check progress information.
type ProgressSnapshot struct {
	BytesRead  uint64
	TotalBytes uint64
	Tags       int
	Percent    float32
}

// GapSummary describes one reported gap.
type GapSummary struct {
	InputFile     string
	Category      string
	IDFrom        int
	IDTo          int
	TmFrom        int64
	TmTo          int64
	Expected      int64
	CurrentOffset int64
	TotalOffset   int64
}

// CheckOutcome contains the final result of one file.
type CheckOutcome struct {
	InputFile   string
	Code        int
	Status      string
	Message     string
	Tags        int
	Gaps        int
	MaxOffset   int64
	TotalOffset int64
	Duration    time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	TotalFiles    int
	OKCount       int
	GapCount      int
	ErrorCount    int
	TotalDuration time.Duration
	FileResults   []FileResult
}

// FileResult contains the per-file outcome within a batch.
type FileResult struct {
	Filename string
	Status   string
	Gaps     int
}
