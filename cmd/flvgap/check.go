package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gowebpki/jcs"
	"github.com/spf13/cobra"

	"github.com/five82/flvgap"
	"github.com/five82/flvgap/internal/config"
	"github.com/five82/flvgap/internal/discovery"
	"github.com/five82/flvgap/internal/logging"
	"github.com/five82/flvgap/internal/report"
	"github.com/five82/flvgap/internal/reporter"
	"github.com/five82/flvgap/internal/tracing"
	"github.com/five82/flvgap/internal/util"
)

// checkArgs holds the parsed arguments for the check command.
type checkArgs struct {
	jsonOut    bool
	ndjson     bool
	tolerance  int64
	warmup     int
	preset     string
	configPath string
	filter     string
	logDir     string
	noLog      bool
	verbose    bool
	trace      bool
}

func newCheckCmd() *cobra.Command {
	var ca checkArgs

	cmd := &cobra.Command{
		Use:   "check [flags] PATH...",
		Short: "Check FLV files for timestamp gaps",
		Long: `Check FLV files for timestamp gaps.

Each PATH is a file or a directory. Directories contribute the .flv and
.f4v files they contain, checked in name order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCheck(cmd, ca, args)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&ca.jsonOut, "json", false, "Print the canonical JSON report instead of text")
	f.BoolVar(&ca.ndjson, "ndjson", false, "Stream progress events as NDJSON")
	f.Int64Var(&ca.tolerance, "tolerance", config.DefaultTolerance, "Largest deviation from the expected delta not reported as a gap (ms)")
	f.IntVar(&ca.warmup, "warmup", config.DefaultWarmupSamples, "Deltas used to learn each stream's cadence")
	f.StringVar(&ca.preset, "preset", "", "Tolerance preset (strict, default, lenient)")
	f.StringVar(&ca.configPath, "config", "", "YAML file with check settings")
	f.StringVar(&ca.filter, "filter", "", "CEL expression selecting which gaps are reported")
	f.StringVarP(&ca.logDir, "log-dir", "l", config.DefaultLogDir, "Log directory")
	f.BoolVar(&ca.noLog, "no-log", false, "Disable log file creation")
	f.BoolVarP(&ca.verbose, "verbose", "v", false, "Enable verbose output")
	f.BoolVar(&ca.trace, "trace", false, "Write OpenTelemetry spans to stderr")
	cmd.MarkFlagsMutuallyExclusive("json", "ndjson")

	return cmd
}

func executeCheck(cmd *cobra.Command, ca checkArgs, paths []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := buildConfig(cmd, ca)
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}

	// Setup file logging
	logger, err := logging.Setup(ca.logDir, logging.RunInfo{
		Version: util.ModuleVersion(),
		Paths:   paths,
		Verbose: ca.verbose,
	}, ca.noLog)
	if err != nil {
		return &exitCodeError{code: exitError, err: fmt.Errorf("failed to setup logging: %w", err)}
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
	}

	if ca.trace {
		if err := tracing.Init(stderr, util.ModuleVersion()); err != nil {
			return &exitCodeError{code: exitError, err: fmt.Errorf("failed to setup tracing: %w", err)}
		}
		defer tracing.Flush()
	}

	// Create reporter
	var rep reporter.Reporter
	switch {
	case ca.jsonOut:
		rep = reporter.NullReporter{}
	case ca.ndjson:
		rep = reporter.NewJSONReporterWithWriter(stdout)
	default:
		rep = reporter.NewTerminalReporterWithWriters(stdout, stderr, ca.verbose)
	}
	if logger != nil {
		rep = reporter.NewCompositeReporter(rep, &runLogReporter{log: logger})
	}

	sys := util.GetSystemInfo()
	rep.Verbose(fmt.Sprintf("%s %s on %s (%d CPUs, %s/%s, %s)",
		appName, util.ModuleVersion(), sys.Hostname, sys.NumCPU, sys.OS, sys.Arch, sys.GoVersion))

	// Discover files to check
	found, err := discovery.Resolve(paths, logger)
	if found != nil {
		for _, derr := range found.Errors {
			rep.Error(reporter.ReporterError{
				Title:      "Input Error",
				Message:    derr.Error(),
				Suggestion: "Check that the path exists and is readable",
			})
			logger.Error("%v", derr)
		}
		if found.SkippedCount > 0 {
			rep.Verbose(fmt.Sprintf("Skipped %d non-FLV files", found.SkippedCount))
		}
	}
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}

	// Log configuration
	logger.Info("Tolerance: %dms, warmup: %d samples", cfg.Tolerance, cfg.WarmupSamples)
	logger.Info("Fallback deltas: video=%dms, audio=%dms", cfg.VideoDelta, cfg.AudioDelta)
	if cfg.Preset != nil {
		logger.Info("Preset: %s", *cfg.Preset)
	}
	if cfg.Filter != "" {
		logger.Info("Filter: %s", cfg.Filter)
	}

	checker, err := flvgap.New(
		flvgap.WithConfig(cfg),
		flvgap.WithReporter(rep),
		flvgap.WithLogger(logger.Structured().Logger),
	)
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	batch := checker.CheckFiles(ctx, found.Files)
	if n := batch.Skipped(); n > 0 {
		logger.Warn("Cancelled with %d of %d files unchecked", n, batch.TotalFiles)
	}

	if ca.jsonOut {
		if err := writeJSON(stdout, batch); err != nil {
			return &exitCodeError{code: exitError, err: err}
		}
	}

	code := batch.Code()
	if len(found.Errors) > 0 {
		code = report.CodeError
	}
	switch code {
	case report.CodeOK:
		return nil
	case report.CodeHasGap:
		return &exitCodeError{code: exitGap}
	default:
		return &exitCodeError{code: exitError}
	}
}

// buildConfig layers the config file, the preset and explicit flags, in
// that order.
func buildConfig(cmd *cobra.Command, ca checkArgs) (*config.Config, error) {
	cfg := config.NewConfig()
	if ca.configPath != "" {
		loaded, err := config.Load(ca.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if ca.preset != "" {
		preset, err := config.ParsePreset(ca.preset)
		if err != nil {
			return nil, err
		}
		cfg.ApplyPreset(preset)
	}

	flags := cmd.Flags()
	if flags.Changed("tolerance") {
		cfg.Tolerance = ca.tolerance
	}
	if flags.Changed("warmup") {
		cfg.WarmupSamples = ca.warmup
	}
	if flags.Changed("filter") {
		cfg.Filter = ca.filter
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runLogReporter writes one section per checked file into the run log.
type runLogReporter struct {
	reporter.NullReporter
	log *logging.FileLogger
}

func (r *runLogReporter) CheckStarted(s reporter.CheckStartSummary) {
	r.log.BeginFile(s.InputFile, s.Size)
}

func (r *runLogReporter) CheckComplete(o reporter.CheckOutcome) {
	r.log.EndFile(o.InputFile, o.Status, o.Gaps, o.TotalOffset, o.Duration, o.Message)
}

type fileReport struct {
	Path   string             `json:"path"`
	Report report.CheckResult `json:"report"`
}

// writeJSON prints the canonical report of a single file, or an array of
// path/report pairs when several files were checked.
func writeJSON(w io.Writer, batch *flvgap.BatchResult) error {
	var out []byte
	var err error
	if batch.TotalFiles == 1 && len(batch.Files) == 1 {
		out, err = report.Marshal(batch.Files[0].Result)
	} else {
		reports := make([]fileReport, len(batch.Files))
		for i, fr := range batch.Files {
			reports[i] = fileReport{Path: fr.Path, Report: fr.Result}
		}
		var raw []byte
		raw, err = json.Marshal(reports)
		if err == nil {
			out, err = jcs.Transform(raw)
		}
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
