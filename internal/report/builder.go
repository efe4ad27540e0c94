package report

import (
	"errors"

	apperrors "github.com/five82/flvgap/internal/errors"
	"github.com/five82/flvgap/internal/gap"
)

// TruncatedPrefix starts the message of results for streams that end inside a tag.
const TruncatedPrefix = "truncated stream: "

// FormatPrefix starts the message of results for input that is not valid FLV.
const FormatPrefix = "format error: "

// Builder collects gap events in emission order and decides the final code.
// A Builder is used for a single check.
type Builder struct {
	data []OffsetInfo
	err  error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an accumulated gap event.
func (b *Builder) Add(ev gap.Event) {
	b.data = append(b.data, OffsetInfo{
		IDFrom:        ev.IDFrom,
		IDTo:          ev.IDTo,
		TmFrom:        ev.TmFrom,
		TmTo:          ev.TmTo,
		CurrentOffset: ev.CurrentOffset,
		TotalOffset:   ev.TotalOffset,
	})
}

// Fail records the error that ended the check. Only the first error is kept.
func (b *Builder) Fail(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// Len returns the number of gaps collected so far.
func (b *Builder) Len() int {
	return len(b.data)
}

// Build returns the final result. A recorded error always wins over
// collected gaps.
func (b *Builder) Build() CheckResult {
	if b.err != nil {
		return ErrorResult(Message(b.err))
	}
	if len(b.data) == 0 {
		return CheckResult{Code: CodeOK}
	}
	data := make([]OffsetInfo, len(b.data))
	copy(data, b.data)
	return CheckResult{Code: CodeHasGap, Data: data}
}

// Message renders err for a CodeError result. Truncated streams and format
// errors get distinct prefixes.
func Message(err error) string {
	var ce *apperrors.CoreError
	if !errors.As(err, &ce) {
		return err.Error()
	}
	switch ce.Kind {
	case apperrors.KindTruncated:
		return TruncatedPrefix + ce.Detail()
	case apperrors.KindFormat:
		return FormatPrefix + ce.Detail()
	default:
		return ce.Error()
	}
}
