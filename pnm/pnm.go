// Package pnm reads and writes Netpbm images (PGM, PPM and PAM) with up to
// 8 bits per sample as raster matrices.
//
// Supported on input: P2 and P3 (plain), P5 and P6 (raw) and P7 (PAM).
// Encode writes P5 for one channel, P6 for three and P7 otherwise.
package pnm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrjoshuak/go-dlzw/raster"
)

// PNM errors
var (
	ErrFormat      = errors.New("pnm: invalid Netpbm data")
	ErrUnsupported = errors.New("pnm: unsupported Netpbm variant")
)

// maxToken bounds a single header token.
const maxToken = 64

// Decode reads one Netpbm image from r.
func Decode(r io.Reader) (*raster.Matrix, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var magic [2]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: missing magic number", ErrFormat)
	}
	if magic[0] != 'P' {
		return nil, fmt.Errorf("%w: bad magic number %q", ErrFormat, magic[:])
	}

	switch magic[1] {
	case '2', '5':
		return decodePNM(br, 1, magic[1] == '2')
	case '3', '6':
		return decodePNM(br, 3, magic[1] == '3')
	case '7':
		return decodePAM(br)
	case '1', '4':
		return nil, fmt.Errorf("%w: bitmap P%c", ErrUnsupported, magic[1])
	default:
		return nil, fmt.Errorf("%w: bad magic number %q", ErrFormat, magic[:])
	}
}

func decodePNM(br *bufio.Reader, channels int, plain bool) (*raster.Matrix, error) {
	var dims [3]int
	for i := range dims {
		tok, err := readToken(br)
		if err != nil {
			return nil, err
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: bad header value %q", ErrFormat, tok)
		}
		dims[i] = v
	}
	cols, rows, maxval := dims[0], dims[1], dims[2]
	if err := checkMaxval(maxval); err != nil {
		return nil, err
	}

	m, err := raster.New(rows, cols, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if plain {
		for i := range m.Pix {
			tok, err := readToken(br)
			if err != nil {
				return nil, err
			}
			v, err := strconv.Atoi(tok)
			if err != nil || v < 0 || v > maxval {
				return nil, fmt.Errorf("%w: bad sample %q", ErrFormat, tok)
			}
			m.Pix[i] = uint8(v)
		}
		return m, nil
	}

	if err := readRaw(br, m.Pix, maxval); err != nil {
		return nil, err
	}
	return m, nil
}

func decodePAM(br *bufio.Reader) (*raster.Matrix, error) {
	var cols, rows, depth, maxval int
	seen := map[string]bool{}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: truncated PAM header", ErrFormat)
		}
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		key := fields[0]
		if key == "ENDHDR" {
			break
		}
		if key == "TUPLTYPE" {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: bad PAM header line %q", ErrFormat, line)
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad PAM header line %q", ErrFormat, line)
		}
		switch key {
		case "WIDTH":
			cols = v
		case "HEIGHT":
			rows = v
		case "DEPTH":
			depth = v
		case "MAXVAL":
			maxval = v
		default:
			return nil, fmt.Errorf("%w: unknown PAM header %q", ErrFormat, key)
		}
		seen[key] = true
	}
	for _, key := range []string{"WIDTH", "HEIGHT", "DEPTH", "MAXVAL"} {
		if !seen[key] {
			return nil, fmt.Errorf("%w: PAM header missing %s", ErrFormat, key)
		}
	}
	if err := checkMaxval(maxval); err != nil {
		return nil, err
	}

	m, err := raster.New(rows, cols, depth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if err := readRaw(br, m.Pix, maxval); err != nil {
		return nil, err
	}
	return m, nil
}

func checkMaxval(maxval int) error {
	if maxval < 1 || maxval > 65535 {
		return fmt.Errorf("%w: maxval %d", ErrFormat, maxval)
	}
	if maxval > 255 {
		return fmt.Errorf("%w: maxval %d needs 16-bit samples", ErrUnsupported, maxval)
	}
	return nil
}

func readRaw(br *bufio.Reader, pix []uint8, maxval int) error {
	if _, err := io.ReadFull(br, pix); err != nil {
		return fmt.Errorf("%w: truncated raster: %v", ErrFormat, err)
	}
	for _, v := range pix {
		if int(v) > maxval {
			return fmt.Errorf("%w: sample %d exceeds maxval %d", ErrFormat, v, maxval)
		}
	}
	return nil
}

// readToken returns the next whitespace-delimited header token, skipping
// '#' comments. For raw formats the single whitespace byte after the last
// header token is consumed, as the raster starts right after it.
func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if len(tok) > 0 && errors.Is(err, io.EOF) {
				return string(tok), nil
			}
			return "", fmt.Errorf("%w: truncated header", ErrFormat)
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", fmt.Errorf("%w: truncated comment", ErrFormat)
			}
		case isSpace(b):
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			if len(tok) >= maxToken {
				return "", fmt.Errorf("%w: header token too long", ErrFormat)
			}
			tok = append(tok, b)
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// Encode writes m to w as P5, P6 or P7 depending on its channel count.
func Encode(w io.Writer, m *raster.Matrix) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	switch m.Channels {
	case 1:
		fmt.Fprintf(bw, "P5\n%d %d\n255\n", m.Cols, m.Rows)
	case 3:
		fmt.Fprintf(bw, "P6\n%d %d\n255\n", m.Cols, m.Rows)
	default:
		fmt.Fprintf(bw, "P7\nWIDTH %d\nHEIGHT %d\nDEPTH %d\nMAXVAL 255\n%sENDHDR\n",
			m.Cols, m.Rows, m.Channels, tupleType(m.Channels))
	}
	if _, err := bw.Write(m.Pix); err != nil {
		return err
	}
	return bw.Flush()
}

func tupleType(channels int) string {
	switch channels {
	case 2:
		return "TUPLTYPE GRAYSCALE_ALPHA\n"
	case 4:
		return "TUPLTYPE RGB_ALPHA\n"
	default:
		return ""
	}
}
