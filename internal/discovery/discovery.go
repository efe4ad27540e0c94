// Package discovery resolves command-line arguments into FLV files to check.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/five82/flvgap/internal/errors"
	"github.com/five82/flvgap/internal/util"
)

// DiscoveryLogger defines the interface for discovery logging.
type DiscoveryLogger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// DiscoveryResult contains the results of file discovery with metadata.
type DiscoveryResult struct {
	Files        []string
	SkippedCount int
	Errors       []error
}

// FindFLVFiles finds FLV files in the given directory.
// Returns files sorted alphabetically by filename.
func FindFLVFiles(inputDir string) ([]string, error) {
	files, _, err := scanDir(inputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.NewNoFilesFoundError(inputDir)
	}
	return files, nil
}

// Resolve expands paths into the list of files to check, keeping argument
// order. Directories contribute their FLV files, sorted by name; plain files
// are taken as given whatever their extension, since the checker validates
// the signature itself. Missing paths are collected in Errors.
func Resolve(paths []string, logger DiscoveryLogger) (*DiscoveryResult, error) {
	result := &DiscoveryResult{}
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result.Files = append(result.Files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("cannot access %s: %w", p, err))
			continue
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}

		files, skipped, err := scanDir(p)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.SkippedCount += skipped
		for _, f := range files {
			add(f)
		}
	}

	if len(result.Files) == 0 {
		if len(result.Errors) > 0 {
			return result, result.Errors[0]
		}
		return result, apperrors.NewNoFilesFoundError(strings.Join(paths, ", "))
	}

	if logger != nil {
		logDiscoveredFiles(result.Files, logger)
	}
	return result, nil
}

func scanDir(inputDir string) ([]string, int, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, 0, fmt.Errorf("directory does not exist: %s", inputDir)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%s is not a directory", inputDir)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot read directory %s: %w", inputDir, err)
	}

	var files []string
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Skip hidden files
		if strings.HasPrefix(name, ".") {
			continue
		}

		fullPath := filepath.Join(inputDir, name)
		if util.IsFLVFile(fullPath) {
			files = append(files, fullPath)
		} else {
			skipped++
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	return files, skipped, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(files []string, logger DiscoveryLogger) {
	logger.Info("Found %d FLV file(s)", len(files))

	maxToLog := min(5, len(files))
	for i := range maxToLog {
		logger.Debug("  %s", filepath.Base(files[i]))
	}

	if len(files) > 5 {
		logger.Debug("  ... and %d more", len(files)-5)
	}
}
