// Package gapfilter selects which gap events are reported using a CEL
// expression over the event fields.
package gapfilter

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	apperrors "github.com/five82/flvgap/internal/errors"
	"github.com/five82/flvgap/internal/gap"
)

// Filter is a compiled gap filter. A nil *Filter keeps every event.
// Filters are immutable and safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. The expression sees the variables
// id_from, id_to, tm_from, tm_to, current_offset, total_offset, expected
// (all int) and category (string, "audio" or "video") and must yield a bool.
// An empty expression returns a nil Filter.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("id_from", cel.IntType),
		cel.Variable("id_to", cel.IntType),
		cel.Variable("tm_from", cel.IntType),
		cel.Variable("tm_to", cel.IntType),
		cel.Variable("current_offset", cel.IntType),
		cel.Variable("total_offset", cel.IntType),
		cel.Variable("expected", cel.IntType),
		cel.Variable("category", cel.StringType),
	)
	if err != nil {
		return nil, apperrors.NewFilterError("creating filter environment", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperrors.NewFilterError(fmt.Sprintf("compiling %q", expr), issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperrors.NewFilterError(fmt.Sprintf("%q yields %s, want bool", expr, ast.OutputType()), nil)
	}

	prg, err := env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, apperrors.NewFilterError(fmt.Sprintf("building program for %q", expr), err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Keep reports whether ev should be reported. total is the running sum the
// event would carry if kept.
func (f *Filter) Keep(ev gap.Event, total int64) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(map[string]any{
		"id_from":        int64(ev.IDFrom),
		"id_to":          int64(ev.IDTo),
		"tm_from":        ev.TmFrom,
		"tm_to":          ev.TmTo,
		"current_offset": ev.CurrentOffset,
		"total_offset":   total,
		"expected":       ev.Expected,
		"category":       ev.Category.String(),
	})
	if err != nil {
		return false, apperrors.NewFilterError(fmt.Sprintf("evaluating %q", f.expr), err)
	}
	keep, ok := out.Value().(bool)
	if !ok {
		return false, apperrors.NewFilterError(fmt.Sprintf("%q did not yield a bool", f.expr), nil)
	}
	return keep, nil
}
