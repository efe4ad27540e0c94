package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/five82/flvgap/internal/errors"
	"github.com/five82/flvgap/internal/gap"
)

func TestBuilderOK(t *testing.T) {
	r := NewBuilder().Build()
	assert.Equal(t, CodeOK, r.Code)
	assert.Empty(t, r.Message)
	assert.Nil(t, r.Data)
	assert.True(t, r.OK())
}

func TestBuilderGaps(t *testing.T) {
	b := NewBuilder()
	b.Add(gap.Event{IDFrom: 3, IDTo: 4, TmFrom: 120, TmTo: 200, CurrentOffset: 40, TotalOffset: 40})
	b.Add(gap.Event{IDFrom: 9, IDTo: 11, TmFrom: 300, TmTo: 290, CurrentOffset: -50, TotalOffset: -10})
	assert.Equal(t, 2, b.Len())

	r := b.Build()
	require.Equal(t, CodeHasGap, r.Code)
	require.Len(t, r.Data, 2)
	assert.Equal(t, OffsetInfo{IDFrom: 3, IDTo: 4, TmFrom: 120, TmTo: 200, CurrentOffset: 40, TotalOffset: 40}, r.Data[0])
	assert.Equal(t, int64(-10), r.Data[1].TotalOffset)
	assert.Empty(t, r.Message)
}

func TestBuilderTruncationWins(t *testing.T) {
	b := NewBuilder()
	b.Add(gap.Event{IDFrom: 1, IDTo: 2, CurrentOffset: 10, TotalOffset: 10})
	b.Fail(apperrors.NewTruncatedError("tag 7 header needs 11 bytes, only 4 remain", 512))

	r := b.Build()
	assert.Equal(t, CodeError, r.Code)
	assert.True(t, strings.HasPrefix(r.Message, TruncatedPrefix), r.Message)
	assert.Contains(t, r.Message, "at byte 512")
	assert.Nil(t, r.Data)
	assert.True(t, r.Failed())
}

func TestBuilderKeepsFirstError(t *testing.T) {
	b := NewBuilder()
	b.Fail(nil)
	b.Fail(apperrors.NewFormatError("bad signature", 0, nil))
	b.Fail(apperrors.NewTruncatedError("later", 10))

	r := b.Build()
	assert.True(t, strings.HasPrefix(r.Message, FormatPrefix), r.Message)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "truncated",
			err:  apperrors.NewTruncatedError("stream ended", 20),
			want: "truncated stream: stream ended (at byte 20)",
		},
		{
			name: "format",
			err:  apperrors.NewFormatError("bad signature \"RIF\", not an FLV file", 0, nil),
			want: "format error: bad signature \"RIF\", not an FLV file (at byte 0)",
		},
		{
			name: "other core error",
			err:  apperrors.NewFilterError("evaluating filter", errors.New("no such key")),
			want: "Filter error: evaluating filter: no such key",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestErrorResultNeverEmpty(t *testing.T) {
	r := ErrorResult("")
	assert.Equal(t, CodeError, r.Code)
	assert.NotEmpty(t, r.Message)
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "error", CodeError.String())
	assert.Equal(t, "ok", CodeOK.String())
	assert.Equal(t, "has_gap", CodeHasGap.String())
	assert.Equal(t, "code(7)", Code(7).String())
}

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		r    CheckResult
		want string
	}{
		{
			name: "ok",
			r:    CheckResult{Code: CodeOK},
			want: `{"code":0}`,
		},
		{
			name: "error",
			r:    ErrorResult("truncated stream: x"),
			want: `{"code":-1,"message":"truncated stream: x"}`,
		},
		{
			name: "gaps",
			r: CheckResult{Code: CodeHasGap, Data: []OffsetInfo{
				{IDFrom: 3, IDTo: 4, TmFrom: 120, TmTo: 200, CurrentOffset: 40, TotalOffset: 40},
			}},
			want: `{"code":1,"data":[{"current_offset":40,"id_from":3,"id_to":4,"tm_from":120,"tm_to":200,"total_offset":40}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
			assert.NoError(t, Validate(out))

			again, err := Marshal(tt.r)
			require.NoError(t, err)
			assert.Equal(t, out, again)
		})
	}
}

func TestUnmarshal(t *testing.T) {
	in := CheckResult{Code: CodeHasGap, Data: []OffsetInfo{
		{IDFrom: 0, IDTo: 1, TmFrom: 0, TmTo: -5, CurrentOffset: -45, TotalOffset: -45},
	}}
	out, err := Marshal(in)
	require.NoError(t, err)

	got, err := Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{"code":`},
		{name: "missing code", doc: `{}`},
		{name: "unknown code", doc: `{"code":2}`},
		{name: "error without message", doc: `{"code":-1}`},
		{name: "ok with message", doc: `{"code":0,"message":"x"}`},
		{name: "ok with data", doc: `{"code":0,"data":[{"id_from":0,"id_to":1,"tm_from":0,"tm_to":1,"current_offset":1,"total_offset":1}]}`},
		{name: "has gap without data", doc: `{"code":1}`},
		{name: "has gap with empty data", doc: `{"code":1,"data":[]}`},
		{name: "offset missing field", doc: `{"code":1,"data":[{"id_from":0,"id_to":1}]}`},
		{name: "fractional offset", doc: `{"code":1,"data":[{"id_from":0,"id_to":1,"tm_from":0,"tm_to":1,"current_offset":1.5,"total_offset":1}]}`},
		{name: "extra field", doc: `{"code":0,"extra":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate([]byte(tt.doc)))
		})
	}
}

func TestSummarize(t *testing.T) {
	r := CheckResult{Code: CodeHasGap, Data: []OffsetInfo{
		{CurrentOffset: 5, TotalOffset: 5},
		{CurrentOffset: -20, TotalOffset: -15},
		{CurrentOffset: 3, TotalOffset: -12},
	}}
	s := Summarize(r)
	assert.Equal(t, 3, s.Gaps)
	assert.Equal(t, int64(-20), s.MaxOffset)
	assert.Equal(t, int64(-12), s.TotalOffset)

	assert.Equal(t, Summary{}, Summarize(CheckResult{Code: CodeOK}))
}
