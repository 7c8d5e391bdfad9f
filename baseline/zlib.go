package baseline

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// ErrZlibCorrupted is returned for zlib data that does not inflate to the
// expected size.
var ErrZlibCorrupted = errors.New("baseline: corrupted zlib data")

// Pooled default-level writers, each with its destination buffer.
type zlibWriterPoolItem struct {
	writer *zlib.Writer
	buf    *bytes.Buffer
}

var zlibWriterPool = sync.Pool{
	New: func() any {
		buf := new(bytes.Buffer)
		w, _ := zlib.NewWriterLevel(buf, zlib.DefaultCompression)
		return &zlibWriterPoolItem{writer: w, buf: buf}
	},
}

// ZlibCodec is zlib (deflate) at a fixed level, one of the
// compress/zlib level constants.
type ZlibCodec struct {
	level int
}

var _ Codec = ZlibCodec{}

// NewZlibCodec returns a zlib codec at the given level.
func NewZlibCodec(level int) ZlibCodec {
	return ZlibCodec{level: level}
}

// Name implements Codec.
func (c ZlibCodec) Name() string {
	return "zlib"
}

// Compress implements Codec.
func (c ZlibCodec) Compress(src []byte) ([]byte, error) {
	if c.level == zlib.DefaultCompression {
		item := zlibWriterPool.Get().(*zlibWriterPoolItem)
		defer zlibWriterPool.Put(item)
		item.buf.Reset()
		item.writer.Reset(item.buf)
		return finishZlib(item.writer, item.buf, src)
	}

	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, c.level)
	if err != nil {
		return nil, err
	}
	return finishZlib(w, buf, src)
}

func finishZlib(w *zlib.Writer, buf *bytes.Buffer, src []byte) ([]byte, error) {
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Decompress implements Codec.
func (c ZlibCodec) Decompress(src []byte, size int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, ErrZlibCorrupted
	}
	defer r.Close()

	dst := make([]byte, size)
	if _, err := io.ReadFull(r, dst); err != nil {
		return nil, ErrZlibCorrupted
	}
	return dst, nil
}
