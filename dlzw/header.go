package dlzw

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mrjoshuak/go-dlzw/internal/xdr"
	"github.com/mrjoshuak/go-dlzw/raster"
)

// Magic is the first line of every dlzw file, without its newline.
const Magic = "my compressed image - v1.0"

// maxDimensionLine bounds the dimension line, newline included.
const maxDimensionLine = 64

// Header describes the image stored in a dlzw file.
type Header struct {
	Rows     int
	Cols     int
	Channels int
}

// Samples returns Rows*Cols*Channels.
func (h Header) Samples() int {
	return h.Rows * h.Cols * h.Channels
}

// DimensionLine returns the dimension line without its newline:
// "rows cols" for single-channel images, "rows cols channels" otherwise.
func (h Header) DimensionLine() string {
	if h.Channels == 1 {
		return fmt.Sprintf("%d %d", h.Rows, h.Cols)
	}
	return fmt.Sprintf("%d %d %d", h.Rows, h.Cols, h.Channels)
}

// Size returns the number of bytes the header occupies on disk.
func (h Header) Size() int {
	return len(Magic) + 1 + len(h.DimensionLine()) + 1
}

// appendTo writes both header lines to w.
func (h Header) appendTo(w *xdr.BufferWriter) {
	w.WriteLine(Magic)
	w.WriteLine(h.DimensionLine())
}

// ReadHeader reads the magic and dimension lines from br, leaving br
// positioned at the first payload byte. The dimension line is not touched
// when the magic line does not match.
func ReadHeader(br *bufio.Reader) (Header, error) {
	magic, err := readLine(br, len(Magic)+1)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, errLineTooLong) {
			return Header{}, fmt.Errorf("%w: bad magic line", ErrFormat)
		}
		return Header{}, err
	}
	if string(magic) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic line", ErrFormat)
	}

	line, err := readLine(br, maxDimensionLine)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, errLineTooLong) {
			return Header{}, fmt.Errorf("%w: %v", ErrDimensions, err)
		}
		return Header{}, err
	}
	return parseDimensions(line)
}

var errLineTooLong = errors.New("line too long")

// readLine reads one byte at a time up to and including '\n', so nothing
// past the line is consumed. limit counts the newline.
func readLine(br *bufio.Reader, limit int) ([]byte, error) {
	line := make([]byte, 0, limit)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == '\n' {
			return line, nil
		}
		if len(line)+1 >= limit {
			return nil, errLineTooLong
		}
		line = append(line, b)
	}
}

// ParseHeader parses the header at the start of data and returns it along
// with the offset of the payload.
func ParseHeader(data []byte) (Header, int, error) {
	r := xdr.NewReader(data)
	magic, err := r.ReadLine(len(Magic) + 1)
	if err != nil || string(magic) != Magic {
		return Header{}, 0, fmt.Errorf("%w: bad magic line", ErrFormat)
	}
	line, err := r.ReadLine(maxDimensionLine)
	if err != nil {
		return Header{}, 0, fmt.Errorf("%w: %v", ErrDimensions, err)
	}
	h, err := parseDimensions(line)
	if err != nil {
		return Header{}, 0, err
	}
	return h, r.Pos(), nil
}

// parseDimensions accepts "rows cols" or "rows cols channels".
func parseDimensions(line []byte) (Header, error) {
	fields := bytes.Fields(line)
	if len(fields) != 2 && len(fields) != 3 {
		return Header{}, fmt.Errorf("%w: want 2 or 3 fields, have %d", ErrDimensions, len(fields))
	}

	dims := [3]int{0, 0, 1}
	for i, f := range fields {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return Header{}, fmt.Errorf("%w: field %d: %q", ErrDimensions, i, f)
		}
		dims[i] = v
	}

	h := Header{Rows: dims[0], Cols: dims[1], Channels: dims[2]}
	if err := raster.CheckDimensions(h.Rows, h.Cols, h.Channels); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrDimensions, err)
	}
	return h, nil
}
