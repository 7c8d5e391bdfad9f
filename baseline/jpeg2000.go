package baseline

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mrjoshuak/go-jpeg2000"

	"github.com/mrjoshuak/go-dlzw/raster"
)

// jpeg2000Options returns lossless (5/3 wavelet) options for a raw
// codestream, optionally with the high-throughput block coder.
func jpeg2000Options(m *raster.Matrix, highThroughput bool) *jpeg2000.Options {
	opts := &jpeg2000.Options{
		Format:         jpeg2000.FormatJ2K,
		Lossless:       true,
		NumResolutions: jpeg2000Resolutions(m.Rows, m.Cols),
		CodeBlockSize:  jpeg2000.DefaultOptions().CodeBlockSize,
		NumLayers:      1,
	}
	if highThroughput {
		opts.HighThroughput = true
		opts.HTBlockWidth = 32
		opts.HTBlockHeight = 32
	}
	return opts
}

// jpeg2000Resolutions keeps the decomposition depth within the smaller
// image side: each level halves it.
func jpeg2000Resolutions(rows, cols int) int {
	side := min(rows, cols)
	n := 1
	for side > 1 && n < 6 {
		side >>= 1
		n++
	}
	return n
}

// EncodeJPEG2000 compresses m losslessly as a raw JPEG 2000 codestream.
// Only one- and three-channel matrices have a JPEG 2000 mapping here.
func EncodeJPEG2000(m *raster.Matrix, highThroughput bool) ([]byte, error) {
	if m.Channels != 1 && m.Channels != 3 {
		return nil, fmt.Errorf("baseline: jpeg2000 needs 1 or 3 channels, have %d", m.Channels)
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg2000.Encode(&buf, img, jpeg2000Options(m, highThroughput)); err != nil {
		return nil, fmt.Errorf("baseline: jpeg2000 encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeJPEG2000 decodes a codestream written by EncodeJPEG2000.
func DecodeJPEG2000(data []byte) (*raster.Matrix, error) {
	img, err := jpeg2000.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("baseline: jpeg2000 decode failed: %w", err)
	}
	return raster.FromImage(img)
}

func measureJPEG2000(m *raster.Matrix, highThroughput bool) Result {
	name := "j2k"
	if highThroughput {
		name = "htj2k"
	}
	r := Result{Name: name, InputBytes: m.Len()}

	start := time.Now()
	out, err := EncodeJPEG2000(m, highThroughput)
	r.Elapsed = time.Since(start)
	if err != nil {
		r.Err = err
		return r
	}
	r.Size = len(out)

	back, err := DecodeJPEG2000(out)
	if err != nil {
		r.Err = err
		return r
	}
	if !back.Equal(m) {
		r.Err = fmt.Errorf("%w: %s", ErrMismatch, name)
	}
	return r
}
