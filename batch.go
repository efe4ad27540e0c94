package flvgap

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/flvgap/internal/report"
	"github.com/five82/flvgap/internal/reporter"
	"github.com/five82/flvgap/internal/util"
)

// FileReport is the outcome of one file in a batch.
type FileReport struct {
	Path     string
	Result   Result
	Duration time.Duration
}

// BatchResult contains the results of checking several files.
type BatchResult struct {
	Files      []FileReport
	TotalFiles int
	OKCount    int
	GapCount   int
	ErrorCount int
}

// Skipped returns the number of files never checked because the batch was
// cancelled.
func (b *BatchResult) Skipped() int {
	return b.TotalFiles - len(b.Files)
}

// Code returns the most severe code in the batch: any error wins over gaps,
// gaps win over clean files. A batch that stopped before checking every file
// is an error.
func (b *BatchResult) Code() Code {
	switch {
	case b.ErrorCount > 0 || b.Skipped() > 0:
		return CodeError
	case b.GapCount > 0:
		return CodeHasGap
	default:
		return CodeOK
	}
}

// CheckFiles checks each file in order, one at a time. Cancelling ctx stops
// the batch before the next file; a file already being checked runs to the end.
func (c *Checker) CheckFiles(ctx context.Context, paths []string) *BatchResult {
	batch := &BatchResult{TotalFiles: len(paths)}
	start := time.Now()

	if len(paths) > 1 {
		names := make([]string, len(paths))
		for i, p := range paths {
			names[i] = util.GetFilename(p)
		}
		c.reporter.BatchStarted(reporter.BatchStartInfo{
			TotalFiles: len(paths),
			FileList:   names,
		})
	}

	var fileResults []reporter.FileResult
	for i, path := range paths {
		// Check for cancellation before starting each file
		if ctx.Err() != nil {
			c.reporter.Warning(fmt.Sprintf("Check cancelled: %v", ctx.Err()))
			break
		}

		if len(paths) > 1 {
			c.reporter.FileProgress(reporter.FileProgressContext{
				CurrentFile: i + 1,
				TotalFiles:  len(paths),
			})
		}

		fileStart := time.Now()
		res := c.CheckContext(ctx, path)
		fr := FileReport{Path: path, Result: res, Duration: time.Since(fileStart)}
		batch.Files = append(batch.Files, fr)

		switch res.Code {
		case report.CodeOK:
			batch.OKCount++
		case report.CodeHasGap:
			batch.GapCount++
		default:
			batch.ErrorCount++
		}
		fileResults = append(fileResults, reporter.FileResult{
			Filename: path,
			Status:   res.Code.String(),
			Gaps:     len(res.Data),
		})
	}

	if len(paths) > 1 {
		c.reporter.BatchComplete(reporter.BatchSummary{
			TotalFiles:    len(paths),
			OKCount:       batch.OKCount,
			GapCount:      batch.GapCount,
			ErrorCount:    batch.ErrorCount,
			TotalDuration: time.Since(start),
			FileResults:   fileResults,
		})
	}

	return batch
}
