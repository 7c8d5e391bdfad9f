// Package dlzw implements a lossless 8-bit raster codec built from a
// horizontal differencing predictor and an adaptive 16-bit LZW stage.
//
// A dlzw file is laid out as:
//
//	my compressed image - v1.0\n
//	<rows> <cols>[ <channels>]\n
//	<code><code>...            two bytes per code, big-endian
//
// The channel count is omitted for single-channel images.
//
// Encoding and decoding hold the whole image in memory. Every call builds
// its own dictionary, so concurrent calls on different images are safe.
package dlzw

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mrjoshuak/go-dlzw/compression"
	"github.com/mrjoshuak/go-dlzw/internal/predictor"
	"github.com/mrjoshuak/go-dlzw/internal/xdr"
	"github.com/mrjoshuak/go-dlzw/raster"
)

// Options configures Encode and Decode.
type Options struct {
	// Verify decodes the freshly encoded code stream and compares the
	// result with the input before anything is written.
	Verify bool

	// Logger receives debug records for each stage. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{}
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Stats reports the sizes and time of one encode or decode.
type Stats struct {
	// InputBytes is the number of raw samples, Rows*Cols*Channels.
	InputBytes int
	// OutputBytes is the size of the code payload, header excluded.
	OutputBytes int
	// HeaderBytes is the size of the two header lines.
	HeaderBytes int
	// Codes is the number of 16-bit codes in the payload.
	Codes int
	// Elapsed covers prediction and the dictionary stage only.
	Elapsed time.Duration
}

// Ratio returns InputBytes/OutputBytes, or 0 when there is no payload.
func (s *Stats) Ratio() float64 {
	if s.OutputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes) / float64(s.OutputBytes)
}

// EncodeMatrix returns the complete dlzw file for m.
func EncodeMatrix(m *raster.Matrix) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, m, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode compresses m and writes the dlzw file to w.
func Encode(w io.Writer, m *raster.Matrix, opts *Options) (*Stats, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	log := opts.logger()
	h := Header{Rows: m.Rows, Cols: m.Cols, Channels: m.Channels}

	start := time.Now()
	residuals := predictor.Predict(m)
	codes, err := compression.LZWEncode(residuals)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	log.Debug("encoded", "rows", h.Rows, "cols", h.Cols, "channels", h.Channels,
		"residuals", len(residuals), "codes", len(codes), "elapsed", elapsed)

	if opts != nil && opts.Verify {
		if err := verify(m, codes); err != nil {
			return nil, err
		}
		log.Debug("verified", "digest", fmt.Sprintf("%016x", m.Digest()))
	}

	out := xdr.NewBufferWriter(h.Size() + compression.CodeSize*len(codes))
	h.appendTo(out)
	out.WriteUint16s(codes)
	if _, err := w.Write(out.Bytes()); err != nil {
		return nil, err
	}

	return &Stats{
		InputBytes:  m.Len(),
		OutputBytes: compression.CodeSize * len(codes),
		HeaderBytes: h.Size(),
		Codes:       len(codes),
		Elapsed:     elapsed,
	}, nil
}

func verify(m *raster.Matrix, codes []uint16) error {
	got, err := reconstruct(codes, Header{Rows: m.Rows, Cols: m.Cols, Channels: m.Channels})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerify, err)
	}
	if !got.Equal(m) {
		return fmt.Errorf("%w: decoded image differs from input", ErrVerify)
	}
	return nil
}

// DecodeMatrix decodes a complete dlzw file held in memory.
func DecodeMatrix(data []byte) (*raster.Matrix, error) {
	h, off, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	codes, err := unpack(data[off:])
	if err != nil {
		return nil, err
	}
	return reconstruct(codes, h)
}

// Decode reads a dlzw file from r and returns the decoded image.
func Decode(r io.Reader, opts *Options) (*raster.Matrix, *Stats, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	h, err := ReadHeader(br)
	if err != nil {
		return nil, nil, err
	}
	payload, err := io.ReadAll(br)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	codes, err := unpack(payload)
	if err != nil {
		return nil, nil, err
	}
	m, err := reconstruct(codes, h)
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start)
	opts.logger().Debug("decoded", "rows", h.Rows, "cols", h.Cols, "channels", h.Channels,
		"codes", len(codes), "elapsed", elapsed)

	return m, &Stats{
		InputBytes:  m.Len(),
		OutputBytes: len(payload),
		HeaderBytes: h.Size(),
		Codes:       len(codes),
		Elapsed:     elapsed,
	}, nil
}

func unpack(payload []byte) ([]uint16, error) {
	codes, err := compression.UnpackCodes(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return codes, nil
}

// reconstruct runs the dictionary decoder and the reconstructor.
func reconstruct(codes []uint16, h Header) (*raster.Matrix, error) {
	residuals, err := compression.LZWDecode(codes, h.Samples())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDesync, err)
	}
	m, err := predictor.Reconstruct(residuals, h.Rows, h.Cols, h.Channels)
	if err != nil {
		if errors.Is(err, predictor.ErrShortStream) || errors.Is(err, predictor.ErrLongStream) {
			return nil, fmt.Errorf("%w: %w", ErrDesync, err)
		}
		return nil, err
	}
	return m, nil
}
