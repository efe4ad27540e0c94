// Package flv provides a forward-only reader for FLV tag streams.
//
// The reader validates the container header and then yields one Tag at a
// time. Only the few payload bytes needed to classify a tag are read; media
// payloads are skipped so memory use does not depend on file size.
package flv

import "fmt"

// Container layout constants.
const (
	// HeaderSize is the size of the fixed FLV file header.
	HeaderSize = 9
	// TagHeaderSize is the size of every tag header.
	TagHeaderSize = 11
	// PrevTagSizeLen is the size of the back pointer following every tag.
	PrevTagSizeLen = 4
	// Version is the only FLV version this reader accepts.
	Version = 1
	// MaxScriptDataSize bounds the script payload kept in memory.
	MaxScriptDataSize = 16 << 20

	flagAudio = 0x04
	flagVideo = 0x01
)

// Signature is the magic prefix of every FLV file.
var Signature = [3]byte{'F', 'L', 'V'}

// TagType is the category of an FLV tag.
type TagType uint8

const (
	TagAudio  TagType = 8
	TagVideo  TagType = 9
	TagScript TagType = 18
)

// Valid reports whether t is one of the three tag types defined by the format.
func (t TagType) Valid() bool {
	return t == TagAudio || t == TagVideo || t == TagScript
}

func (t TagType) String() string {
	switch t {
	case TagAudio:
		return "audio"
	case TagVideo:
		return "video"
	case TagScript:
		return "script"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Header is the decoded FLV file header.
type Header struct {
	Version    uint8
	HasAudio   bool
	HasVideo   bool
	DataOffset uint32
}

// Video frame types and codec ids used to classify video tags.
const (
	FrameKey     uint8 = 1
	FrameInter   uint8 = 2
	FrameCommand uint8 = 5

	CodecAVC  uint8 = 7
	CodecHEVC uint8 = 12

	PacketSequenceHeader uint8 = 0
	PacketNALU           uint8 = 1
	PacketEndOfSequence  uint8 = 2
)

// SoundFormatAAC is the audio format id for AAC.
const SoundFormatAAC uint8 = 10

// Tag is one record of the tag stream.
type Tag struct {
	Type TagType
	// ID is the zero-based ordinal of the tag in the stream.
	ID int
	// Timestamp is in milliseconds. The extended byte is the high byte and the
	// value is read as signed, so broken muxers can yield negative timestamps.
	Timestamp     int64
	DataSize      uint32
	Offset        int64
	PayloadOffset int64
	PrevTagSize   uint32

	// Sequence marks codec configuration and control records rather than
	// media frames. They are not part of the timestamp cadence.
	Sequence bool

	// Video fields.
	FrameType uint8
	CodecID   uint8

	// Audio fields.
	SoundFormat uint8
	SoundRate   uint8
	SoundSize   uint8
	SoundType   uint8

	// PacketType is the AVC/HEVC or AAC packet type when present.
	PacketType uint8

	// Payload is only populated for script tags.
	Payload []byte
}

// Keyframe reports whether the tag is a video key frame carrying picture data.
func (t Tag) Keyframe() bool {
	return t.Type == TagVideo && t.FrameType == FrameKey && !t.Sequence
}

// classify decodes the first payload bytes of an audio or video tag.
func (t *Tag) classify(head []byte) {
	if len(head) == 0 {
		return
	}
	switch t.Type {
	case TagVideo:
		t.FrameType = (head[0] >> 4) & 0x0f
		t.CodecID = head[0] & 0x0f
		if t.FrameType == FrameCommand {
			t.Sequence = true
			return
		}
		if (t.CodecID == CodecAVC || t.CodecID == CodecHEVC) && len(head) > 1 {
			t.PacketType = head[1]
			if t.PacketType == PacketSequenceHeader || t.PacketType == PacketEndOfSequence {
				t.Sequence = true
			}
		}
	case TagAudio:
		t.SoundFormat = (head[0] >> 4) & 0x0f
		t.SoundRate = (head[0] >> 2) & 0x03
		t.SoundSize = (head[0] >> 1) & 0x01
		t.SoundType = head[0] & 0x01
		if t.SoundFormat == SoundFormatAAC && len(head) > 1 {
			t.PacketType = head[1]
			if t.PacketType == PacketSequenceHeader {
				t.Sequence = true
			}
		}
	}
}

// classifyHeadLen is the number of payload bytes needed by classify.
const classifyHeadLen = 2
