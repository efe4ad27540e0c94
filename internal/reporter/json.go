package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events, one object per line.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	now                func() time.Time
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		now:                time.Now,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return r.now().Unix()
}

func (r *JSONReporter) write(v map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]any{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]any{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) CheckStarted(summary CheckStartSummary) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]any{
		"type":       "check_started",
		"input_file": summary.InputFile,
		"size":       summary.Size,
		"has_audio":  summary.HasAudio,
		"has_video":  summary.HasVideo,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) Progress(progress ProgressSnapshot) {
	const progressBucketSize = 10
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent) / progressBucketSize
	now := r.now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]any{
		"type":        "progress",
		"bytes_read":  progress.BytesRead,
		"total_bytes": progress.TotalBytes,
		"tags":        progress.Tags,
		"percent":     progress.Percent,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) GapFound(gap GapSummary) {
	r.write(map[string]any{
		"type":           "gap",
		"input_file":     gap.InputFile,
		"category":       gap.Category,
		"id_from":        gap.IDFrom,
		"id_to":          gap.IDTo,
		"tm_from":        gap.TmFrom,
		"tm_to":          gap.TmTo,
		"expected_delta": gap.Expected,
		"current_offset": gap.CurrentOffset,
		"total_offset":   gap.TotalOffset,
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) CheckComplete(outcome CheckOutcome) {
	event := map[string]any{
		"type":             "check_complete",
		"input_file":       outcome.InputFile,
		"code":             outcome.Code,
		"status":           outcome.Status,
		"tags":             outcome.Tags,
		"gaps":             outcome.Gaps,
		"max_offset":       outcome.MaxOffset,
		"total_offset":     outcome.TotalOffset,
		"duration_seconds": outcome.Duration.Seconds(),
		"timestamp":        r.timestamp(),
	}
	if outcome.Message != "" {
		event["message"] = outcome.Message
	}
	r.write(event)
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]any{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]any, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		results[i] = map[string]any{
			"file":   fr.Filename,
			"status": fr.Status,
			"gaps":   fr.Gaps,
		}
	}

	r.write(map[string]any{
		"type":                   "batch_complete",
		"total_files":            summary.TotalFiles,
		"ok_count":               summary.OKCount,
		"gap_count":              summary.GapCount,
		"error_count":            summary.ErrorCount,
		"total_duration_seconds": summary.TotalDuration.Seconds(),
		"file_results":           results,
		"timestamp":              r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]any{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
