// Package memreader provides an in-memory matroska.Reader whose available
// window can grow call by call, for exercising the parser's incremental
// "need more bytes" behavior without a real, possibly-unbounded transport.
//
// It is a minimal stand-in for a Reader capability narrower than the full
// data: a bounded window that grows over time, to match this module's
// Reader interface.
package memreader

import "fmt"

// Reader is a matroska.Reader over an in-memory byte slice with a
// caller-controlled available window.
type Reader struct {
	data      []byte
	available int64
}

// New creates a Reader over data with the entire slice immediately
// available.
func New(data []byte) *Reader {
	return &Reader{data: data, available: int64(len(data))}
}

// NewEmpty creates a Reader over data with nothing available yet; call Grow
// to reveal bytes incrementally.
func NewEmpty(data []byte) *Reader {
	return &Reader{data: data}
}

// Grow advances the available window by n bytes, capped at len(data).
func (r *Reader) Grow(n int64) {
	r.available += n
	if r.available > int64(len(r.data)) {
		r.available = int64(len(r.data))
	}
}

// SetAvailable sets the available window directly, capped at len(data).
func (r *Reader) SetAvailable(n int64) {
	r.available = n
	if r.available > int64(len(r.data)) {
		r.available = int64(len(r.data))
	}
}

// ReadAt implements matroska.Reader.
func (r *Reader) ReadAt(pos, length int64, buf []byte) error {
	if pos < 0 || length < 0 {
		return fmt.Errorf("memreader: negative pos/length")
	}
	if pos+length > r.available {
		return &needMoreError{n: pos + length - r.available}
	}
	n := copy(buf, r.data[pos:pos+length])
	if int64(n) != length {
		return fmt.Errorf("memreader: short copy")
	}
	return nil
}

// Length implements matroska.Reader.
func (r *Reader) Length() (total, available int64) {
	return int64(len(r.data)), r.available
}

// needMoreError mirrors matroska.NeedMoreError without importing the parent
// package (which would create an import cycle with its own tests); the
// parser recognizes it structurally via the Reader contract, not by type.
type needMoreError struct{ n int64 }

func (e *needMoreError) Error() string { return fmt.Sprintf("memreader: need %d more byte(s)", e.n) }

// N reports how many more bytes are required.
func (e *needMoreError) N() int64 { return e.n }
