// Package xdr provides big-endian binary encoding and decoding utilities
// for the dlzw container.
//
// A dlzw file is two newline-terminated ASCII lines followed by a payload
// of 16-bit codes, most significant byte first. This package provides
// bounds-checked readers and writers for exactly those shapes.
package xdr

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	// ErrShortBuffer is returned when a read cannot complete because there
	// isn't enough data left in the buffer.
	ErrShortBuffer = errors.New("xdr: buffer too short")

	// ErrNoNewline is returned by ReadLine when no newline occurs within the
	// allowed line length.
	ErrNoNewline = errors.New("xdr: line not newline-terminated")
)

// ByteOrder is the byte order used for every multi-byte value.
var ByteOrder = binary.BigEndian

// Reader provides big-endian binary reading from a byte slice.
// It maintains a read position and bounds checks every operation.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader from a byte slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// ReadUint16s fills dst with consecutive big-endian 16-bit integers.
func (r *Reader) ReadUint16s(dst []uint16) error {
	if r.pos+2*len(dst) > len(r.data) {
		return ErrShortBuffer
	}
	src := r.data[r.pos:]
	for i := range dst {
		dst[i] = ByteOrder.Uint16(src[2*i:])
	}
	r.pos += 2 * len(dst)
	return nil
}

// ReadLine reads up to and including the next '\n' and returns the line
// without its terminator. At most limit bytes (terminator included) are
// examined; a longer line returns ErrNoNewline and leaves the position
// unchanged.
func (r *Reader) ReadLine(limit int) ([]byte, error) {
	rest := r.data[r.pos:]
	if limit > 0 && len(rest) > limit {
		rest = rest[:limit]
	}
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		return nil, ErrNoNewline
	}
	line := rest[:i]
	r.pos += i + 1
	return line, nil
}

// BufferWriter provides a growing buffer for writing binary data.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter creates a BufferWriter with an initial capacity.
func NewBufferWriter(capacity int) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written data as a byte slice.
// The returned slice is valid until the next write operation.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// WriteUint16s writes each value of vs in big-endian order.
func (w *BufferWriter) WriteUint16s(vs []uint16) {
	w.buf = growBuf(w.buf, 2*len(vs))
	for _, v := range vs {
		w.buf = ByteOrder.AppendUint16(w.buf, v)
	}
}

// WriteLine writes s followed by a single '\n'.
func (w *BufferWriter) WriteLine(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, '\n')
}

func growBuf(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b
	}
	nb := make([]byte, len(b), len(b)+n)
	copy(nb, b)
	return nb
}
