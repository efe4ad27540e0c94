package flv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// AMF0 type markers.
const (
	amfNumber      = 0x00
	amfBoolean     = 0x01
	amfString      = 0x02
	amfObject      = 0x03
	amfNull        = 0x05
	amfUndefined   = 0x06
	amfECMAArray   = 0x08
	amfObjectEnd   = 0x09
	amfStrictArray = 0x0a
	amfDate        = 0x0b
	amfLongString  = 0x0c
	amfXMLDocument = 0x0f
	amfTypedObject = 0x10
)

const maxAMFDepth = 32

// ErrShortAMF is returned when an AMF0 value runs past the end of its buffer.
var ErrShortAMF = errors.New("amf0: unexpected end of data")

// amfDecoder decodes AMF0 values into plain Go values:
// float64, bool, string, map[string]any, []any, time.Time and nil.
type amfDecoder struct {
	buf   []byte
	off   int
	depth int
}

// DecodeAMF0 decodes every value in buf.
func DecodeAMF0(buf []byte) ([]any, error) {
	d := &amfDecoder{buf: buf}
	var values []any
	for d.off < len(d.buf) {
		v, err := d.value()
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (d *amfDecoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.off < n {
		return nil, ErrShortAMF
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *amfDecoder) u8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *amfDecoder) u16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *amfDecoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *amfDecoder) f64() (float64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (d *amfDecoder) shortString() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *amfDecoder) longString() (string, error) {
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(len(d.buf)-d.off) {
		return "", ErrShortAMF
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *amfDecoder) value() (any, error) {
	marker, err := d.u8()
	if err != nil {
		return nil, err
	}

	switch marker {
	case amfNumber:
		return d.f64()
	case amfBoolean:
		b, err := d.u8()
		return b != 0, err
	case amfString:
		return d.shortString()
	case amfLongString, amfXMLDocument:
		return d.longString()
	case amfObject:
		return d.properties(false)
	case amfTypedObject:
		if _, err := d.shortString(); err != nil {
			return nil, err
		}
		return d.properties(false)
	case amfECMAArray:
		if _, err := d.u32(); err != nil {
			return nil, err
		}
		return d.properties(true)
	case amfStrictArray:
		return d.strictArray()
	case amfDate:
		ms, err := d.f64()
		if err != nil {
			return nil, err
		}
		if _, err := d.u16(); err != nil {
			return nil, err
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	case amfNull, amfUndefined:
		return nil, nil
	default:
		return nil, fmt.Errorf("amf0: unsupported marker 0x%02x at offset %d", marker, d.off-1)
	}
}

// properties reads key/value pairs up to the object end marker. ECMA arrays
// written by some muxers stop at the end of the buffer without the marker.
func (d *amfDecoder) properties(lenient bool) (map[string]any, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > maxAMFDepth {
		return nil, fmt.Errorf("amf0: nesting deeper than %d", maxAMFDepth)
	}

	obj := make(map[string]any)
	for {
		if lenient && d.off == len(d.buf) {
			return obj, nil
		}
		key, err := d.shortString()
		if err != nil {
			return nil, err
		}
		if key == "" {
			end, err := d.u8()
			if err != nil {
				return nil, err
			}
			if end != amfObjectEnd {
				return nil, fmt.Errorf("amf0: expected object end marker, got 0x%02x", end)
			}
			return obj, nil
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		obj[key] = v
	}
}

func (d *amfDecoder) strictArray() ([]any, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > maxAMFDepth {
		return nil, fmt.Errorf("amf0: nesting deeper than %d", maxAMFDepth)
	}

	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	// Every element takes at least one byte.
	if uint64(n) > uint64(len(d.buf)-d.off) {
		return nil, ErrShortAMF
	}
	values := make([]any, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
