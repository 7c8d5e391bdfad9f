// Package raster defines the pixel matrix exchanged between the image I/O
// layer and the dlzw codec.
//
// A Matrix is a rows × columns × channels grid of 8-bit unsigned samples
// stored in raster order: all channels of column 0 of row 0, then column 1,
// and so on. Single-channel (grayscale) images use Channels == 1.
package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/cespare/xxhash/v2"
)

// Raster errors
var (
	ErrInvalidDimensions = errors.New("raster: invalid dimensions")
	ErrSizeMismatch      = errors.New("raster: sample count does not match dimensions")
	ErrNoColorModel      = errors.New("raster: no image color model for channel count")
	ErrSampleDepth       = errors.New("raster: image samples are wider than 8 bits")
)

// MaxSamples bounds rows*cols*channels so that sample indices fit in an int
// on every platform and a hostile header cannot request absurd allocations.
const MaxSamples = 1 << 30

// Matrix is an 8-bit pixel matrix.
type Matrix struct {
	Rows     int
	Cols     int
	Channels int

	// Pix holds Rows*Cols*Channels samples in raster order.
	Pix []uint8
}

// CheckDimensions reports whether rows, cols and channels describe a
// non-empty matrix whose sample count stays within MaxSamples.
func CheckDimensions(rows, cols, channels int) error {
	if rows < 1 || cols < 1 || channels < 1 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, rows, cols, channels)
	}
	if rows > MaxSamples/cols || rows*cols > MaxSamples/channels {
		return fmt.Errorf("%w: %dx%dx%d exceeds %d samples", ErrInvalidDimensions, rows, cols, channels, MaxSamples)
	}
	return nil
}

// New allocates a zeroed matrix.
func New(rows, cols, channels int) (*Matrix, error) {
	if err := CheckDimensions(rows, cols, channels); err != nil {
		return nil, err
	}
	return &Matrix{
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
		Pix:      make([]uint8, rows*cols*channels),
	}, nil
}

// FromPix wraps existing samples without copying them.
func FromPix(rows, cols, channels int, pix []uint8) (*Matrix, error) {
	if err := CheckDimensions(rows, cols, channels); err != nil {
		return nil, err
	}
	if len(pix) != rows*cols*channels {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrSizeMismatch, len(pix), rows*cols*channels)
	}
	return &Matrix{Rows: rows, Cols: cols, Channels: channels, Pix: pix}, nil
}

// Len returns the number of samples, Rows*Cols*Channels.
func (m *Matrix) Len() int {
	return m.Rows * m.Cols * m.Channels
}

// Offset returns the index in Pix of sample (row, col, ch).
func (m *Matrix) Offset(row, col, ch int) int {
	return (row*m.Cols+col)*m.Channels + ch
}

// At returns sample (row, col, ch).
func (m *Matrix) At(row, col, ch int) uint8 {
	return m.Pix[m.Offset(row, col, ch)]
}

// Set stores sample (row, col, ch).
func (m *Matrix) Set(row, col, ch int, v uint8) {
	m.Pix[m.Offset(row, col, ch)] = v
}

// Validate checks that the dimensions are legal and agree with len(Pix).
func (m *Matrix) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil matrix", ErrInvalidDimensions)
	}
	if err := CheckDimensions(m.Rows, m.Cols, m.Channels); err != nil {
		return err
	}
	if len(m.Pix) != m.Len() {
		return fmt.Errorf("%w: have %d, want %d", ErrSizeMismatch, len(m.Pix), m.Len())
	}
	return nil
}

// Equal reports whether two matrices have the same shape and samples.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Rows != o.Rows || m.Cols != o.Cols || m.Channels != o.Channels {
		return false
	}
	return string(m.Pix) == string(o.Pix)
}

// Digest returns a 64-bit xxhash of the shape and samples. Two matrices with
// equal digests are, for all practical purposes, identical.
func (m *Matrix) Digest() uint64 {
	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[0:], uint32(m.Rows))
	binary.BigEndian.PutUint32(hdr[4:], uint32(m.Cols))
	binary.BigEndian.PutUint32(hdr[8:], uint32(m.Channels))

	d := xxhash.New()
	_, _ = d.Write(hdr[:])
	_, _ = d.Write(m.Pix)
	return d.Sum64()
}

// FromImage converts an image.Image into a matrix. Gray images, and
// paletted images whose palette is opaque gray, yield one channel; opaque
// color images three (RGB); images with any transparency four
// (non-premultiplied RGBA). Images with 16-bit samples return
// ErrSampleDepth, since a matrix cannot hold them without loss.
func FromImage(img image.Image) (*Matrix, error) {
	switch img.ColorModel() {
	case color.Gray16Model, color.Alpha16Model, color.RGBA64Model, color.NRGBA64Model:
		return nil, fmt.Errorf("%w: %T", ErrSampleDepth, img)
	}

	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()

	switch src := img.(type) {
	case *image.Gray:
		m, err := New(rows, cols, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < rows; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(m.Pix[y*cols:(y+1)*cols], row[:cols])
		}
		return m, nil
	case *image.Paletted:
		if levels, ok := grayLevels(src.Palette); ok {
			m, err := New(rows, cols, 1)
			if err != nil {
				return nil, err
			}
			for y := 0; y < rows; y++ {
				row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
				for x := 0; x < cols; x++ {
					m.Pix[y*cols+x] = levels[row[x]]
				}
			}
			return m, nil
		}
	}

	channels := 3
	if !isOpaque(img) {
		channels = 4
	}
	m, err := New(rows, cols, channels)
	if err != nil {
		return nil, err
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			m.Pix[i+0] = c.R
			m.Pix[i+1] = c.G
			m.Pix[i+2] = c.B
			if channels == 4 {
				m.Pix[i+3] = c.A
			}
			i += channels
		}
	}
	return m, nil
}

// grayLevels returns the gray value of every palette entry, indexed like
// the palette and padded to 256 entries, when all entries are opaque gray.
func grayLevels(p color.Palette) (*[256]uint8, bool) {
	if len(p) == 0 || len(p) > 256 {
		return nil, false
	}
	var levels [256]uint8
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		if n.A != 0xff || n.R != n.G || n.G != n.B {
			return nil, false
		}
		levels[i] = n.R
	}
	return &levels, true
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// ToImage converts a 1-, 3- or 4-channel matrix into an *image.Gray,
// *image.RGBA (opaque) or *image.NRGBA respectively.
func (m *Matrix) ToImage() (image.Image, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	r := image.Rect(0, 0, m.Cols, m.Rows)

	switch m.Channels {
	case 1:
		img := image.NewGray(r)
		copy(img.Pix, m.Pix)
		return img, nil
	case 3:
		img := image.NewRGBA(r)
		for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
			img.Pix[j+0] = m.Pix[i+0]
			img.Pix[j+1] = m.Pix[i+1]
			img.Pix[j+2] = m.Pix[i+2]
			img.Pix[j+3] = 0xff
		}
		return img, nil
	case 4:
		img := image.NewNRGBA(r)
		copy(img.Pix, m.Pix)
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrNoColorModel, m.Channels)
	}
}
