package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/flvgap"
	"github.com/five82/flvgap/internal/flv/flvtest"
	"github.com/five82/flvgap/internal/report"
)

func TestProduceRelease(t *testing.T) {
	b := flvtest.NewBuilder()
	next := b.VideoRun(0, 40, 10)
	b.VideoRun(next+60, 40, 3)
	path := b.WriteFile(t, "gap.flv")

	before := Outstanding()
	buf := Produce(path)
	require.NotNil(t, buf)
	assert.Equal(t, before+1, Outstanding())

	res, err := report.Unmarshal(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, report.CodeHasGap, res.Code)
	require.Len(t, res.Data, 1)
	assert.Equal(t, int64(60), res.Data[0].CurrentOffset)

	Release(buf)
	assert.True(t, buf.Released())
	assert.Nil(t, buf.Bytes())
	assert.Equal(t, before, Outstanding())

	// Releasing twice or releasing nil is a no-op.
	Release(buf)
	Release(nil)
	assert.Equal(t, before, Outstanding())
}

func TestProduceAlwaysReturnsBuffer(t *testing.T) {
	buf := Produce(t.TempDir() + "/missing.flv")
	defer Release(buf)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, float64(-1), raw["code"])
	assert.NotEmpty(t, raw["message"])
	assert.NotContains(t, raw, "data")
}

func TestProduceBytesIsCanonical(t *testing.T) {
	path := flvtest.NewBuilder().Video(0).Video(40).Video(80).WriteFile(t, "ok.flv")

	assert.Equal(t, `{"code":0}`, string(ProduceBytes(path)))
	assert.Equal(t, ProduceBytes(path), ProduceBytes(path))
}

func TestProduceWith(t *testing.T) {
	b := flvtest.NewBuilder()
	b.VideoRun(0, 40, 5)
	b.Video(162 + 40)
	path := b.WriteFile(t, "jitter.flv")

	c, err := flvgap.New(flvgap.WithTolerance(5))
	require.NoError(t, err)

	buf := ProduceWith(c, path)
	defer Release(buf)
	assert.Equal(t, `{"code":0}`, string(buf.Bytes()))
}

func TestErrorJSON(t *testing.T) {
	assert.Equal(t, `{"code":-1,"message":"null path"}`, string(ErrorJSON("null path")))
	assert.Equal(t, `{"code":-1,"message":"unknown error"}`, string(ErrorJSON("")))
	require.NoError(t, report.Validate([]byte(fallbackJSON)))
}

func TestHandlesKeepBuffersUntilDropped(t *testing.T) {
	var h Handles
	before := Outstanding()

	first := ProduceError("format error: null path")
	second := ProduceError("format error: null path")
	h.Hold(0x10, first)
	h.Hold(0x20, second)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, before+2, Outstanding())

	res, err := report.Unmarshal(first.Bytes())
	require.NoError(t, err)
	assert.Equal(t, report.CodeError, res.Code)
	assert.Equal(t, "format error: null path", res.Message)

	assert.True(t, h.Drop(0x10))
	assert.True(t, first.Released())
	assert.False(t, second.Released())
	assert.Equal(t, before+1, Outstanding())

	// A second free of the same address and an unknown address are refused.
	assert.False(t, h.Drop(0x10))
	assert.False(t, h.Drop(0x30))
	assert.Equal(t, before+1, Outstanding())

	assert.True(t, h.Drop(0x20))
	assert.Zero(t, h.Len())
	assert.Equal(t, before, Outstanding())
}
