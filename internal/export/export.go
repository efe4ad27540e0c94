// Package export serializes check results into caller-owned buffers for the
// C ABI. Every buffer returned by Produce must be handed back to Release.
package export

import (
	"sync"
	"sync/atomic"

	"github.com/five82/flvgap"
	"github.com/five82/flvgap/internal/report"
)

// fallbackJSON is returned when a result cannot be serialized at all.
const fallbackJSON = `{"code":-1,"message":"internal error: cannot serialize check result"}`

var live atomic.Int64

// Buffer holds one serialized report.
type Buffer struct {
	mu       sync.Mutex
	data     []byte
	released bool
}

// Bytes returns the serialized report, or nil once the buffer is released.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Released reports whether Release has been called on b.
func (b *Buffer) Released() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Produce checks path with the default configuration. It always returns a
// buffer, even when the check or the serialization fails.
func Produce(path string) *Buffer {
	return newBuffer(ProduceBytes(path))
}

// ProduceWith is Produce with a configured checker.
func ProduceWith(c *flvgap.Checker, path string) *Buffer {
	return newBuffer(encode(c.Check(path)))
}

// ProduceBytes checks path and returns the canonical JSON report.
func ProduceBytes(path string) []byte {
	return encode(flvgap.Check(path))
}

// ProduceError returns a buffer holding an error result with message.
func ProduceError(message string) *Buffer {
	return newBuffer(ErrorJSON(message))
}

// ErrorJSON returns the canonical JSON of an error result with message.
func ErrorJSON(message string) []byte {
	return encode(report.ErrorResult(message))
}

// Release frees b. It is safe on nil and on an already released buffer.
func Release(b *Buffer) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.data = nil
	live.Add(-1)
}

// Outstanding returns the number of produced buffers not yet released.
func Outstanding() int64 {
	return live.Load()
}

// Handles keeps buffers alive while a foreign caller holds a copy of their
// bytes, keyed by the address handed out. The zero value is ready to use.
type Handles struct {
	mu   sync.Mutex
	held map[uintptr]*Buffer
}

// Hold records that key now owns b.
func (h *Handles) Hold(key uintptr, b *Buffer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held == nil {
		h.held = make(map[uintptr]*Buffer)
	}
	h.held[key] = b
}

// Drop releases the buffer held under key. It returns false when key is not
// held, which covers a second free of the same address.
func (h *Handles) Drop(key uintptr) bool {
	h.mu.Lock()
	b, ok := h.held[key]
	delete(h.held, key)
	h.mu.Unlock()

	if ok {
		Release(b)
	}
	return ok
}

// Len returns the number of held buffers.
func (h *Handles) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.held)
}

func newBuffer(data []byte) *Buffer {
	live.Add(1)
	return &Buffer{data: data}
}

func encode(r report.CheckResult) []byte {
	data, err := report.Marshal(r)
	if err != nil {
		return []byte(fallbackJSON)
	}
	return data
}
