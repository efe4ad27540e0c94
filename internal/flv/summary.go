package flv

import (
	"errors"
	"io"
)

// StreamStats holds per-category counters.
type StreamStats struct {
	Tags           int
	SequenceTags   int
	Keyframes      int
	Bytes          uint64
	FirstTimestamp int64
	LastTimestamp  int64
}

// Summary describes a whole file as seen by Inspect.
type Summary struct {
	Path     string
	Size     int64
	Header   Header
	Metadata *Metadata
	// MetadataErr is set when the first script tag could not be decoded.
	MetadataErr error

	Audio  StreamStats
	Video  StreamStats
	Script StreamStats

	// BadBackPointers counts tags whose PreviousTagSize disagrees with the tag length.
	BadBackPointers int
	// Err is the error that ended the walk early, if any.
	Err error
}

// TotalTags returns the number of tags read.
func (s *Summary) TotalTags() int {
	return s.Audio.Tags + s.Video.Tags + s.Script.Tags
}

func (s *Summary) stats(t TagType) *StreamStats {
	switch t {
	case TagAudio:
		return &s.Audio
	case TagVideo:
		return &s.Video
	default:
		return &s.Script
	}
}

func (s *Summary) observe(tag Tag) {
	st := s.stats(tag.Type)
	if st.Tags == 0 {
		st.FirstTimestamp = tag.Timestamp
	}
	st.Tags++
	st.LastTimestamp = tag.Timestamp
	st.Bytes += uint64(tag.DataSize)
	if tag.Sequence {
		st.SequenceTags++
	}
	if tag.Keyframe() {
		st.Keyframes++
	}
	if tag.PrevTagSize != TagHeaderSize+tag.DataSize {
		s.BadBackPointers++
	}

	if tag.Type == TagScript && s.Metadata == nil && s.MetadataErr == nil && tag.Payload != nil {
		s.Metadata, s.MetadataErr = ParseMetadata(tag.Payload)
	}
}

// Inspect walks every tag of path and collects a Summary. visit, when not
// nil, is called for every tag in stream order. Header errors are returned
// directly; errors in the tag stream are recorded in Summary.Err.
func Inspect(path string, visit func(Tag)) (*Summary, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	s := &Summary{Path: path, Size: r.Size(), Header: r.Header()}
	for {
		tag, err := r.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.Err = err
			}
			return s, nil
		}
		s.observe(tag)
		if visit != nil {
			visit(tag)
		}
	}
}
