// Package flvtest builds synthetic FLV streams for tests.
package flvtest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Payload heads for the common tag kinds.
var (
	VideoFrame          = []byte{0x27, 0x01, 0x00, 0x00, 0x00} // AVC inter frame, NALU
	VideoKeyframe       = []byte{0x17, 0x01, 0x00, 0x00, 0x00} // AVC key frame, NALU
	VideoSequenceHeader = []byte{0x17, 0x00, 0x00, 0x00, 0x00} // AVC decoder configuration
	AudioFrame          = []byte{0xaf, 0x01, 0x21, 0x10}       // AAC raw frame
	AudioSequenceHeader = []byte{0xaf, 0x00, 0x12, 0x10}       // AAC AudioSpecificConfig
)

// Builder accumulates an FLV byte stream.
type Builder struct {
	buf []byte
}

// NewBuilder starts a stream with a header flagging audio and video.
func NewBuilder() *Builder {
	b := &Builder{}
	b.buf = append(b.buf, 'F', 'L', 'V', 1, 0x05, 0, 0, 0, 9)
	b.buf = append(b.buf, 0, 0, 0, 0) // PreviousTagSize0
	return b
}

// Tag appends a raw tag with the given type, timestamp and payload.
// Negative timestamps are written as their 32-bit two's complement.
func (b *Builder) Tag(typ uint8, ts int64, data []byte) *Builder {
	size := len(data)
	t := uint32(int32(ts))
	b.buf = append(b.buf,
		typ,
		byte(size>>16), byte(size>>8), byte(size),
		byte(t>>16), byte(t>>8), byte(t), byte(t>>24),
		0, 0, 0,
	)
	b.buf = append(b.buf, data...)
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(11+size))
	return b
}

// Video appends an AVC inter frame.
func (b *Builder) Video(ts int64) *Builder { return b.Tag(9, ts, VideoFrame) }

// Keyframe appends an AVC key frame.
func (b *Builder) Keyframe(ts int64) *Builder { return b.Tag(9, ts, VideoKeyframe) }

// VideoSequenceHeader appends an AVC decoder configuration record.
func (b *Builder) VideoSequenceHeader(ts int64) *Builder { return b.Tag(9, ts, VideoSequenceHeader) }

// Audio appends an AAC frame.
func (b *Builder) Audio(ts int64) *Builder { return b.Tag(8, ts, AudioFrame) }

// AudioSequenceHeader appends an AAC sequence header.
func (b *Builder) AudioSequenceHeader(ts int64) *Builder { return b.Tag(8, ts, AudioSequenceHeader) }

// Script appends a script tag carrying payload.
func (b *Builder) Script(ts int64, payload []byte) *Builder { return b.Tag(18, ts, payload) }

// VideoRun appends n video frames starting at start, delta apart, and
// returns the timestamp the next frame would have.
func (b *Builder) VideoRun(start, delta int64, n int) int64 {
	ts := start
	for i := 0; i < n; i++ {
		b.Video(ts)
		ts += delta
	}
	return ts
}

// AudioRun is VideoRun for AAC frames.
func (b *Builder) AudioRun(start, delta int64, n int) int64 {
	ts := start
	for i := 0; i < n; i++ {
		b.Audio(ts)
		ts += delta
	}
	return ts
}

// Bytes returns the stream built so far.
func (b *Builder) Bytes() []byte {
	return append([]byte(nil), b.buf...)
}

// Len returns the current stream length.
func (b *Builder) Len() int {
	return len(b.buf)
}

// WriteFile writes the stream to name inside a test temp dir and returns the path.
func (b *Builder) WriteFile(tb testing.TB, name string) string {
	tb.Helper()
	return WriteBytes(tb, name, b.buf)
}

// WriteBytes writes data to name inside a test temp dir and returns the path.
func WriteBytes(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// OnMetaData encodes an onMetaData script payload with numeric properties.
func OnMetaData(props map[string]float64) []byte {
	var out []byte
	out = appendString(out, "onMetaData")

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out = append(out, 0x08)
	out = binary.BigEndian.AppendUint32(out, uint32(len(keys)))
	for _, k := range keys {
		out = appendKey(out, k)
		out = appendNumber(out, props[k])
	}
	return append(out, 0, 0, 0x09)
}

func appendKey(out []byte, s string) []byte {
	out = binary.BigEndian.AppendUint16(out, uint16(len(s)))
	return append(out, s...)
}

func appendString(out []byte, s string) []byte {
	out = append(out, 0x02)
	return appendKey(out, s)
}

func appendNumber(out []byte, f float64) []byte {
	out = append(out, 0x00)
	return binary.BigEndian.AppendUint64(out, math.Float64bits(f))
}
