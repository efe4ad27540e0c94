package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/flvgap/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	verbose    bool
	progress   *progressbar.ProgressBar
	maxPercent float32
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
}

// NewTerminalReporter creates a new terminal reporter writing to stdout,
// with progress bars and errors on stderr.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr, verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, "BATCH")
	_, _ = fmt.Fprintf(r.out, "  Checking %d files\n", info.TotalFiles)
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	_, _ = fmt.Fprintf(r.out, "\nFile %s of %d\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles)
}

func (r *TerminalReporter) CheckStarted(summary CheckStartSummary) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, "FILE")
	r.printLabel(8, "Path:", summary.InputFile)
	r.printLabel(8, "Size:", util.FormatBytes(summary.Size))
	r.printLabel(8, "Streams:", streamsLabel(summary.HasAudio, summary.HasVideo))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		int64(summary.Size),
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Reading [",
			BarEnd:        "]",
		}),
	)
}

func streamsLabel(hasAudio, hasVideo bool) string {
	switch {
	case hasAudio && hasVideo:
		return "audio + video"
	case hasAudio:
		return "audio only"
	case hasVideo:
		return "video only"
	default:
		return "none flagged"
	}
}

func (r *TerminalReporter) Progress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	if progress.Percent >= r.maxPercent {
		r.maxPercent = progress.Percent
		_ = r.progress.Set64(int64(progress.BytesRead))
	}
	r.progress.Describe(fmt.Sprintf("%d tags", progress.Tags))
}

func (r *TerminalReporter) GapFound(gap GapSummary) {
	r.mu.Lock()
	if r.progress != nil {
		_ = r.progress.Clear()
	}
	r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "  %s %-5s #%d -> #%d  %s -> %s  %s (total %s)\n",
		r.magenta.Sprint("›"),
		gap.Category,
		gap.IDFrom, gap.IDTo,
		util.FormatTimestamp(gap.TmFrom), util.FormatTimestamp(gap.TmTo),
		r.yellow.Sprint(util.FormatOffset(gap.CurrentOffset)),
		util.FormatOffset(gap.TotalOffset))
}

func (r *TerminalReporter) CheckComplete(outcome CheckOutcome) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, "RESULT")

	var status string
	switch outcome.Code {
	case 0:
		status = color.New(color.FgGreen, color.Bold).Sprint("✓ no gaps")
	case 1:
		status = r.yellow.Sprintf("%d gap(s)", outcome.Gaps)
	default:
		status = r.red.Sprint("✗ check failed")
	}
	r.printLabel(8, "Status:", status)
	if outcome.Message != "" {
		r.printLabel(8, "Reason:", outcome.Message)
	}
	r.printLabel(8, "Tags:", fmt.Sprintf("%d", outcome.Tags))
	if outcome.Gaps > 0 {
		r.printLabel(8, "Largest:", util.FormatOffset(outcome.MaxOffset))
		r.printLabel(8, "Total:", util.FormatOffset(outcome.TotalOffset))
	}
	r.printLabel(8, "Time:", outcome.Duration.Round(time.Millisecond).String())
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, "BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d files checked", summary.TotalFiles))
	_, _ = fmt.Fprintf(r.out, "  %s clean, %s with gaps, %s failed\n",
		r.green.Sprint(summary.OKCount),
		r.yellow.Sprint(summary.GapCount),
		r.red.Sprint(summary.ErrorCount))
	_, _ = fmt.Fprintf(r.out, "  Time: %s\n", summary.TotalDuration.Round(time.Millisecond))

	for _, result := range summary.FileResults {
		_, _ = fmt.Fprintf(r.out, "  - %s: %s", filepath.Base(result.Filename), result.Status)
		if result.Gaps > 0 {
			_, _ = fmt.Fprintf(r.out, " (%d)", result.Gaps)
		}
		_, _ = fmt.Fprintln(r.out)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint(message))
}
