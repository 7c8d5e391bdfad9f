package baseline

import "errors"

// ErrPackBitsCorrupted is returned for truncated or oversized PackBits data.
var ErrPackBitsCorrupted = errors.New("baseline: corrupted packbits data")

const (
	packMinRun = 3
	packMaxRun = 127
)

// PackBitsCodec is a byte run-length coder with signed counts:
// -n repeats the next byte n+1 times, +n copies the next n+1 bytes.
type PackBitsCodec struct{}

// NewPackBitsCodec returns a PackBits codec.
func NewPackBitsCodec() *PackBitsCodec { return &PackBitsCodec{} }

// Name implements Codec.
func (*PackBitsCodec) Name() string { return "packbits" }

// Compress implements Codec.
func (*PackBitsCodec) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, 0, len(src)+len(src)/packMaxRun+1)
	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && src[i+run] == src[i] && run < packMaxRun {
			run++
		}
		if run >= packMinRun {
			dst = append(dst, byte(-(run - 1)), src[i])
			i += run
			continue
		}

		start := i
		for i < len(src) && i-start < packMaxRun {
			if i+packMinRun <= len(src) && src[i+1] == src[i] && src[i+2] == src[i] {
				break
			}
			i++
		}
		dst = append(dst, byte(i-start-1))
		dst = append(dst, src[start:i]...)
	}
	return dst, nil
}

// Decompress implements Codec.
func (*PackBitsCodec) Decompress(src []byte, size int) ([]byte, error) {
	dst := make([]byte, 0, size)
	for i := 0; i < len(src); {
		count := int(int8(src[i]))
		i++
		if count < 0 {
			n := 1 - count
			if i >= len(src) || len(dst)+n > size {
				return nil, ErrPackBitsCorrupted
			}
			for range n {
				dst = append(dst, src[i])
			}
			i++
			continue
		}
		n := count + 1
		if i+n > len(src) || len(dst)+n > size {
			return nil, ErrPackBitsCorrupted
		}
		dst = append(dst, src[i:i+n]...)
		i += n
	}
	if len(dst) != size {
		return nil, ErrPackBitsCorrupted
	}
	return dst, nil
}
