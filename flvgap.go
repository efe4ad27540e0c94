// Package flvgap detects timestamp gaps in FLV files.
//
// A check reads the file once, front to back, and reports every place where
// an audio or video timestamp breaks the stream's cadence. The result carries
// the position of each gap, its own offset and the running sum of all
// offsets so far.
//
// Basic usage:
//
//	res := flvgap.Check("stream.flv")
//	switch res.Code {
//	case flvgap.CodeOK:
//	    fmt.Println("no gaps")
//	case flvgap.CodeHasGap:
//	    for _, g := range res.Data {
//	        fmt.Printf("#%d -> #%d: %+dms\n", g.IDFrom, g.IDTo, g.CurrentOffset)
//	    }
//	default:
//	    fmt.Println("check failed:", res.Message)
//	}
//
// A Checker built with New carries non-default tuning and is safe for
// concurrent use:
//
//	checker, err := flvgap.New(
//	    flvgap.WithPreset(flvgap.PresetLenient),
//	    flvgap.WithFilter("current_offset > 100 || current_offset < -100"),
//	)
package flvgap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/five82/flvgap/internal/config"
	apperrors "github.com/five82/flvgap/internal/errors"
	"github.com/five82/flvgap/internal/flv"
	"github.com/five82/flvgap/internal/gap"
	"github.com/five82/flvgap/internal/gapfilter"
	"github.com/five82/flvgap/internal/logging"
	"github.com/five82/flvgap/internal/report"
	"github.com/five82/flvgap/internal/reporter"
	"github.com/five82/flvgap/internal/util"
)

// Re-exported result types.
type (
	Result     = report.CheckResult
	Code       = report.Code
	OffsetInfo = report.OffsetInfo
	Summary    = flv.Summary
	Tag        = flv.Tag
	Config     = config.Config
	Reporter   = reporter.Reporter
)

const (
	CodeError  = report.CodeError
	CodeOK     = report.CodeOK
	CodeHasGap = report.CodeHasGap
)

// Re-export preset types
type Preset = config.Preset

const (
	PresetStrict  = config.PresetStrict
	PresetDefault = config.PresetDefault
	PresetLenient = config.PresetLenient
)

// ParsePreset converts a preset string to a Preset value.
// Valid values are "strict", "default", and "lenient" (case-insensitive).
func ParsePreset(s string) (Preset, error) {
	return config.ParsePreset(s)
}

// progressInterval is the number of tags between progress events.
const progressInterval = 1024

const tracerName = "github.com/five82/flvgap"

// Checker runs gap checks with a fixed configuration.
type Checker struct {
	config   *config.Config
	filter   *gapfilter.Filter
	reporter reporter.Reporter
	logger   *logging.Logger
}

type options struct {
	cfg      *config.Config
	reporter reporter.Reporter
	logger   *logging.Logger
}

// Option configures a Checker.
type Option func(*options)

// New creates a Checker with the given options.
func New(opts ...Option) (*Checker, error) {
	o := &options{cfg: config.NewConfig()}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid checker configuration", err)
	}

	filter, err := gapfilter.Compile(o.cfg.Filter)
	if err != nil {
		return nil, err
	}

	rep := o.reporter
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	return &Checker{
		config:   o.cfg.Clone(),
		filter:   filter,
		reporter: rep,
		logger:   o.logger,
	}, nil
}

// WithPreset applies a tolerance preset.
func WithPreset(p Preset) Option {
	return func(o *options) {
		o.cfg.ApplyPreset(p)
	}
}

// WithTolerance sets the largest deviation from the expected delta, in
// timestamp units, that is not reported as a gap.
func WithTolerance(ms int64) Option {
	return func(o *options) {
		o.cfg.Tolerance = ms
	}
}

// WithWarmupSamples sets how many deltas are used to learn each category's
// cadence.
func WithWarmupSamples(n int) Option {
	return func(o *options) {
		o.cfg.WarmupSamples = n
	}
}

// WithDefaultDeltas sets the fallback video and audio deltas used before a
// category has any samples.
func WithDefaultDeltas(video, audio int64) Option {
	return func(o *options) {
		o.cfg.VideoDelta = video
		o.cfg.AudioDelta = audio
	}
}

// WithConfig replaces the whole configuration, e.g. one read by config.Load.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.cfg = cfg.Clone()
		}
	}
}

// WithFilter sets a CEL expression selecting which gaps are reported.
func WithFilter(expr string) Option {
	return func(o *options) {
		o.cfg.Filter = expr
	}
}

// WithReporter sets the reporter receiving check events.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithLogger sets the structured logger. Without it the package-level
// global logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = &logging.Logger{Logger: l}
		}
	}
}

// Check analyzes path with the default configuration.
func Check(path string) Result {
	return defaultChecker.Check(path)
}

var defaultChecker = &Checker{
	config:   config.NewConfig(),
	reporter: reporter.NullReporter{},
}

// Check analyzes path. It never panics and always returns a well-formed result.
func (c *Checker) Check(path string) Result {
	return c.CheckContext(context.Background(), path)
}

// CheckContext is Check with a parent context for tracing. The check itself
// is not cancellable: it runs to completion or failure.
func (c *Checker) CheckContext(ctx context.Context, path string) (result Result) {
	_, span := otel.Tracer(tracerName).Start(ctx, "flvgap.check",
		trace.WithAttributes(attribute.String("flvgap.path", path)))
	defer span.End()

	log := c.log().WithFile(path)
	start := time.Now()
	var tags int

	defer func() {
		if r := recover(); r != nil {
			log.Error("check panicked", "panic", r)
			result = report.ErrorResult(fmt.Sprintf("internal error: %v", r))
		}

		sum := report.Summarize(result)
		span.SetAttributes(
			attribute.Int("flvgap.tags", tags),
			attribute.Int("flvgap.gaps", sum.Gaps),
			attribute.Int("flvgap.code", int(result.Code)),
		)
		if result.Failed() {
			span.SetStatus(codes.Error, result.Message)
		}

		log.Debug("check finished",
			"code", result.Code.String(),
			"tags", tags,
			"gaps", sum.Gaps,
			"total_offset", sum.TotalOffset)

		c.reporter.CheckComplete(reporter.CheckOutcome{
			InputFile:   path,
			Code:        int(result.Code),
			Status:      result.Code.String(),
			Message:     result.Message,
			Tags:        tags,
			Gaps:        sum.Gaps,
			MaxOffset:   sum.MaxOffset,
			TotalOffset: sum.TotalOffset,
			Duration:    time.Since(start),
		})
	}()

	return c.run(path, log, &tags)
}

func (c *Checker) log() *logging.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logging.Global()
}

// run is the single forward pass: reader, detector, accumulator, builder.
func (c *Checker) run(path string, log *logging.Logger, tags *int) Result {
	b := report.NewBuilder()

	r, err := flv.Open(path)
	if err != nil {
		log.Debug("open failed", "error", err)
		b.Fail(err)
		return b.Build()
	}
	defer func() { _ = r.Close() }()

	hdr := r.Header()
	c.reporter.CheckStarted(reporter.CheckStartSummary{
		InputFile: path,
		Size:      uint64(r.Size()),
		HasAudio:  hdr.HasAudio,
		HasVideo:  hdr.HasVideo,
	})

	det := gap.NewDetector(c.config, log)
	var acc gap.Accumulator

	// record filters, accumulates and reports one gap. It returns false when
	// the filter failed and the check must stop.
	record := func(ev gap.Event) bool {
		keep, err := c.filter.Keep(ev, acc.Total()+ev.CurrentOffset)
		if err != nil {
			b.Fail(err)
			return false
		}
		if !keep {
			log.Debug("gap filtered out", "id_from", ev.IDFrom, "id_to", ev.IDTo, "current_offset", ev.CurrentOffset)
			return true
		}

		ev = acc.Add(ev)
		b.Add(ev)
		log.Debug("gap",
			"category", ev.Category.String(),
			"id_from", ev.IDFrom,
			"id_to", ev.IDTo,
			"expected", ev.Expected,
			"current_offset", ev.CurrentOffset,
			"total_offset", ev.TotalOffset)
		c.reporter.GapFound(reporter.GapSummary{
			InputFile:     path,
			Category:      ev.Category.String(),
			IDFrom:        ev.IDFrom,
			IDTo:          ev.IDTo,
			TmFrom:        ev.TmFrom,
			TmTo:          ev.TmTo,
			Expected:      ev.Expected,
			CurrentOffset: ev.CurrentOffset,
			TotalOffset:   ev.TotalOffset,
		})
		return true
	}

	filterOK := true
loop:
	for {
		tag, err := r.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("tag stream ended early", "error", err, "tags", *tags)
				b.Fail(err)
			}
			break
		}
		*tags++
		if *tags%progressInterval == 0 {
			c.progress(r, *tags)
		}

		for _, ev := range det.Observe(tag) {
			if filterOK = record(ev); !filterOK {
				break loop
			}
		}
	}

	if filterOK {
		for _, ev := range det.Flush() {
			if !record(ev) {
				break
			}
		}
	}
	log.Debug("tag stream done", "tags", *tags, "gaps", b.Len(), "total_offset", acc.Total())

	c.progress(r, *tags)
	return b.Build()
}

func (c *Checker) progress(r *flv.Reader, tags int) {
	done, total := uint64(r.Position()), uint64(r.Size())
	c.reporter.Progress(reporter.ProgressSnapshot{
		BytesRead:  done,
		TotalBytes: total,
		Tags:       tags,
		Percent:    util.Percent(done, total),
	})
}

// Info walks path and returns per-stream statistics and decoded metadata.
// visit, when not nil, is called for every tag.
func Info(path string, visit func(Tag)) (*Summary, error) {
	return flv.Inspect(path, visit)
}

// Marshal serializes a result as canonical JSON.
func Marshal(r Result) ([]byte, error) {
	return report.Marshal(r)
}
