// Package predictor implements the horizontal differencing predictor
// used by the dlzw codec.
//
// The predictor converts absolute samples to differences from the sample
// one column to the left in the same row and channel, which tends to
// produce long runs of small, repeating values for images with local
// coherence. Only the left neighbor is used; rows and channels are
// independent of each other.
//
// Residuals are plain signed differences in [-255, 255]. They are not
// reduced modulo 256 on the way in; the reconstructor wraps on the way out.
package predictor

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-dlzw/raster"
)

// Reconstruction errors
var (
	ErrShortStream = errors.New("predictor: residual stream shorter than image")
	ErrLongStream  = errors.New("predictor: residual stream longer than image")
)

// Predict returns the residual stream of m in raster order.
// The result has exactly m.Len() elements.
func Predict(m *raster.Matrix) []int16 {
	out := make([]int16, m.Len())
	stride := m.Cols * m.Channels
	for y := 0; y < m.Rows; y++ {
		off := y * stride
		PredictRow(out[off:off+stride], m.Pix[off:off+stride], m.Channels)
	}
	return out
}

// PredictRow differences one row of interleaved samples into dst.
// The first pixel of the row (one sample per channel) is copied as is.
func PredictRow(dst []int16, row []uint8, channels int) {
	n := len(row)
	if channels <= 0 || n == 0 {
		return
	}
	if channels > n {
		channels = n
	}

	for i := 0; i < channels; i++ {
		dst[i] = int16(row[i])
	}
	for i := channels; i < n; i++ {
		dst[i] = int16(row[i]) - int16(row[i-channels])
	}
}

// Reconstruct rebuilds a rows × cols × channels matrix from residuals.
//
// A residual stream of the wrong length means the dictionary stage lost
// synchronization; it is reported as ErrShortStream or ErrLongStream
// rather than patched.
func Reconstruct(residuals []int16, rows, cols, channels int) (*raster.Matrix, error) {
	m, err := raster.New(rows, cols, channels)
	if err != nil {
		return nil, err
	}
	want := m.Len()
	switch {
	case len(residuals) < want:
		return nil, fmt.Errorf("%w: have %d, want %d", ErrShortStream, len(residuals), want)
	case len(residuals) > want:
		return nil, fmt.Errorf("%w: have %d, want %d", ErrLongStream, len(residuals), want)
	}

	stride := cols * channels
	for y := 0; y < rows; y++ {
		off := y * stride
		ReconstructRow(m.Pix[off:off+stride], residuals[off:off+stride], channels)
	}
	return m, nil
}

// ReconstructRow reverses PredictRow. Sums wrap modulo 256.
func ReconstructRow(dst []uint8, residuals []int16, channels int) {
	n := len(residuals)
	if channels <= 0 || n == 0 {
		return
	}
	if channels > n {
		channels = n
	}

	for i := 0; i < channels; i++ {
		dst[i] = uint8(residuals[i])
	}
	for i := channels; i < n; i++ {
		dst[i] = uint8(int(residuals[i]) + int(dst[i-channels]))
	}
}
