package flv

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "github.com/five82/flvgap/internal/errors"
)

const readBufferSize = 64 << 10

// Reader walks the tags of an FLV stream front to back.
//
// A Reader is not safe for concurrent use. It is exhausted after the first
// error: every later call to Next returns that same error.
type Reader struct {
	file   *os.File
	br     *bufio.Reader
	size   int64
	pos    int64
	header Header
	nextID int
	err    error
	hdr    [TagHeaderSize]byte
	head   [classifyHeadLen]byte
}

// Open opens path and validates its FLV header.
//
// Missing, unreadable or non-regular files and signature mismatches return a
// format error. A header that ends early returns a truncated error.
func Open(path string) (*Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewFormatError("cannot access input "+path, -1, err)
	}
	if !info.Mode().IsRegular() {
		return nil, apperrors.NewFormatError(path+" is not a regular file", -1, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewFormatError("cannot open input "+path, -1, err)
	}
	adviseSequential(f)

	r, err := NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// NewReader reads an FLV stream of the given total size from src.
// The header is validated before NewReader returns.
func NewReader(src io.Reader, size int64) (*Reader, error) {
	r := &Reader{
		br:   bufio.NewReaderSize(src, readBufferSize),
		size: size,
	}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// Header returns the decoded file header.
func (r *Reader) Header() Header {
	return r.header
}

// Position returns the number of bytes consumed so far.
func (r *Reader) Position() int64 {
	return r.pos
}

// Size returns the total stream size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *Reader) readHeader() error {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r.br, buf[:])
	r.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return apperrors.NewFormatError(fmt.Sprintf("file too short for an FLV header (%d bytes)", n), 0, nil)
		}
		return apperrors.NewFormatError("cannot read FLV header", 0, err)
	}

	if buf[0] != Signature[0] || buf[1] != Signature[1] || buf[2] != Signature[2] {
		return apperrors.NewFormatError(fmt.Sprintf("bad signature %q, not an FLV file", buf[:3]), 0, nil)
	}
	if buf[3] != Version {
		return apperrors.NewFormatError(fmt.Sprintf("unsupported FLV version %d", buf[3]), 3, nil)
	}

	r.header = Header{
		Version:    buf[3],
		HasAudio:   buf[4]&flagAudio != 0,
		HasVideo:   buf[4]&flagVideo != 0,
		DataOffset: binary.BigEndian.Uint32(buf[5:9]),
	}
	if r.header.DataOffset < HeaderSize {
		return apperrors.NewFormatError(fmt.Sprintf("invalid header data offset %d", r.header.DataOffset), 5, nil)
	}

	// Everything after this point looked like a valid FLV file, so running
	// out of bytes means truncation rather than a foreign format.
	if err := r.skip(int64(r.header.DataOffset) - HeaderSize); err != nil {
		return err
	}
	var prev [PrevTagSizeLen]byte
	if err := r.read(prev[:]); err != nil {
		return err
	}
	return nil
}

// Next returns the next tag. It returns io.EOF at a clean end of stream,
// a truncated error when a tag is cut short and a format error for corrupt
// tag headers.
func (r *Reader) Next() (Tag, error) {
	if r.err != nil {
		return Tag{}, r.err
	}
	tag, err := r.next()
	if err != nil {
		r.err = err
		return Tag{}, err
	}
	r.nextID++
	return tag, nil
}

func (r *Reader) next() (Tag, error) {
	start := r.pos
	remaining := r.size - r.pos
	if remaining <= 0 {
		// Confirm with the source in case the size was stale.
		if _, err := r.br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return Tag{}, io.EOF
			}
			return Tag{}, apperrors.NewFormatError("cannot read tag header", start, err)
		}
		return Tag{}, apperrors.NewFormatError("stream is longer than its reported size", start, nil)
	}
	if remaining < TagHeaderSize {
		return Tag{}, apperrors.NewTruncatedError(
			fmt.Sprintf("tag %d header needs %d bytes, only %d remain", r.nextID, TagHeaderSize, remaining), start)
	}

	if err := r.read(r.hdr[:]); err != nil {
		return Tag{}, err
	}

	tag := Tag{
		Type:          TagType(r.hdr[0] & 0x1f),
		ID:            r.nextID,
		DataSize:      uint32(r.hdr[1])<<16 | uint32(r.hdr[2])<<8 | uint32(r.hdr[3]),
		Timestamp:     int64(int32(uint32(r.hdr[7])<<24 | uint32(r.hdr[4])<<16 | uint32(r.hdr[5])<<8 | uint32(r.hdr[6]))),
		Offset:        start,
		PayloadOffset: start + TagHeaderSize,
	}
	if !tag.Type.Valid() {
		return Tag{}, apperrors.NewFormatError(fmt.Sprintf("corrupt tag %d: unknown tag type %d", tag.ID, r.hdr[0]), start, nil)
	}

	need := int64(tag.DataSize) + PrevTagSizeLen
	if left := r.size - r.pos; need > left {
		return Tag{}, apperrors.NewTruncatedError(
			fmt.Sprintf("tag %d declares %d data bytes, only %d bytes remain", tag.ID, tag.DataSize, left), start)
	}

	if err := r.readPayload(&tag); err != nil {
		return Tag{}, err
	}

	var prev [PrevTagSizeLen]byte
	if err := r.read(prev[:]); err != nil {
		return Tag{}, err
	}
	tag.PrevTagSize = binary.BigEndian.Uint32(prev[:])
	return tag, nil
}

func (r *Reader) readPayload(tag *Tag) error {
	size := int64(tag.DataSize)
	if tag.Type == TagScript {
		if size > MaxScriptDataSize {
			return r.skip(size)
		}
		tag.Payload = make([]byte, size)
		return r.read(tag.Payload)
	}

	n := min(size, classifyHeadLen)
	head := r.head[:n]
	if err := r.read(head); err != nil {
		return err
	}
	tag.classify(head)
	return r.skip(size - n)
}

// read fills p, mapping a short read to a truncated error.
func (r *Reader) read(p []byte) error {
	start := r.pos
	n, err := io.ReadFull(r.br, p)
	r.pos += int64(n)
	if err != nil {
		return r.wrapReadErr(err, start)
	}
	return nil
}

func (r *Reader) skip(n int64) error {
	start := r.pos
	for n > 0 {
		chunk := int(min(n, readBufferSize))
		d, err := r.br.Discard(chunk)
		r.pos += int64(d)
		n -= int64(d)
		if err != nil {
			return r.wrapReadErr(err, start)
		}
	}
	return nil
}

func (r *Reader) wrapReadErr(err error, offset int64) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.NewTruncatedError(fmt.Sprintf("stream ended at byte %d", r.pos), offset)
	}
	return apperrors.NewFormatError("read failed", offset, err)
}
