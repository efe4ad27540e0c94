// Package logging provides file logging for the flvgap CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileLevel represents the file logging level.
type FileLevel int

const (
	// FileLevelInfo is the default file logging level.
	FileLevelInfo FileLevel = iota
	// FileLevelDebug enables verbose debug logging.
	FileLevelDebug
)

// RunInfo describes a check run for the header of its log file.
type RunInfo struct {
	Version string
	Paths   []string
	Verbose bool
}

// FileLogger writes the log file of one check run: a header naming the
// inputs, one section per checked file and a closing tally of results.
type FileLogger struct {
	level    FileLevel
	logger   *log.Logger
	file     *os.File
	filePath string
	started  time.Time

	mu     sync.Mutex
	counts map[string]int
}

// Setup creates the run log flvgap_run_<timestamp>.log in logDir and writes
// its header. Returns nil if logging is disabled (noLog=true). All methods
// are nil-safe.
func Setup(logDir string, run RunInfo, noLog bool) (*FileLogger, error) {
	if noLog {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	started := time.Now()
	filePath := filepath.Join(logDir, fmt.Sprintf("flvgap_run_%s.log", started.Format("20060102_150405")))

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := FileLevelInfo
	if run.Verbose {
		level = FileLevelDebug
	}

	l := &FileLogger{
		level:    level,
		logger:   log.New(file, "", log.LstdFlags),
		file:     file,
		filePath: filePath,
		started:  started,
		counts:   make(map[string]int),
	}

	version := run.Version
	if version == "" {
		version = "(devel)"
	}
	l.Info("flvgap %s check run starting", version)
	if len(run.Paths) > 0 {
		l.Info("Inputs: %s", strings.Join(run.Paths, ", "))
	}
	if run.Verbose {
		l.Info("Debug level logging enabled")
	}
	l.Info("Log file: %s", filePath)

	return l, nil
}

// BeginFile opens the log section of one input file.
func (l *FileLogger) BeginFile(path string, size uint64) {
	if l == nil {
		return
	}
	l.logger.Printf("---- %s (%d bytes)", path, size)
}

// EndFile records the outcome of one input file. Failed checks also get a
// warning line carrying the result message.
func (l *FileLogger) EndFile(path, status string, gaps int, totalOffset int64, elapsed time.Duration, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.counts[status]++
	l.mu.Unlock()

	l.Info("%s: %s, %d gaps, total offset %dms, in %s", path, status, gaps, totalOffset, elapsed.Round(time.Millisecond))
	if message != "" {
		l.Warn("%s: %s", path, message)
	}
}

// Close writes the run tally and closes the log file.
func (l *FileLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.Info("Run finished: %s in %s", l.tally(), time.Since(l.started).Round(time.Millisecond))
	return l.file.Close()
}

// tally renders the per-status file counts in a stable order.
func (l *FileLogger) tally() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	statuses := make([]string, 0, len(l.counts))
	for status, n := range l.counts {
		statuses = append(statuses, status)
		total += n
	}
	sort.Strings(statuses)

	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = fmt.Sprintf("%s=%d", status, l.counts[status])
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d files", total)
	}
	return fmt.Sprintf("%d files (%s)", total, strings.Join(parts, " "))
}

// FilePath returns the path to the log file.
func (l *FileLogger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Info logs an info-level message.
func (l *FileLogger) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Printf("[INFO] "+format, args...)
}

// Debug logs a debug-level message (only if verbose mode is enabled).
func (l *FileLogger) Debug(format string, args ...any) {
	if l == nil || l.level < FileLevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] "+format, args...)
}

// Warn logs a warning message.
func (l *FileLogger) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Printf("[WARN] "+format, args...)
}

// Error logs an error message.
func (l *FileLogger) Error(format string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Printf("[ERROR] "+format, args...)
}

// Writer returns an io.Writer that writes to the log file.
func (l *FileLogger) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}

// Structured returns a slog-backed Logger writing into the same file, at
// debug level when the file logger is verbose. A nil FileLogger yields a
// discarding logger.
func (l *FileLogger) Structured() *Logger {
	if l == nil || l.file == nil {
		return Discard()
	}
	level := LevelInfo
	if l.level >= FileLevelDebug {
		level = LevelDebug
	}
	return New(Config{Level: level, Output: l.file, Enabled: true})
}
