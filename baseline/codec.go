// Package baseline measures general-purpose compressors against the dlzw
// codec on the same image, so the diagnostics can show what the
// predictor + LZW pipeline buys over off-the-shelf coders.
//
// Every measurement is round-tripped; a codec that cannot reproduce its
// input is reported with an error instead of a size.
package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/mrjoshuak/go-dlzw/internal/predictor"
	"github.com/mrjoshuak/go-dlzw/raster"
)

// Baseline errors
var (
	ErrMismatch     = errors.New("baseline: round trip mismatch")
	ErrUnknownCodec = errors.New("baseline: unknown codec")
)

// Codec is a byte-oriented lossless compressor.
type Codec interface {
	// Name identifies the codec in reports.
	Name() string

	// Compress returns a newly allocated compressed copy of src.
	Compress(src []byte) ([]byte, error)

	// Decompress reverses Compress. size is the original length.
	Decompress(src []byte, size int) ([]byte, error)
}

// Codecs returns the built-in byte codecs in report order.
func Codecs() []Codec {
	return []Codec{
		NewZlibCodec(zlib.DefaultCompression),
		NewZstdCodec(),
		NewS2Codec(),
		NewLZ4Codec(),
		NewPackBitsCodec(),
	}
}

// Lookup returns the built-in codec with the given name.
func Lookup(name string) (Codec, error) {
	for _, c := range Codecs() {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// Result is one measurement.
type Result struct {
	// Name is the codec name, suffixed with "+pred" when the codec ran on
	// predictor residuals instead of raw samples.
	Name string
	// Size is the compressed size in bytes.
	Size int
	// InputBytes is the raw sample count of the image.
	InputBytes int
	// Elapsed covers compression only.
	Elapsed time.Duration
	// Err is set when the codec failed or did not round trip.
	Err error
}

// Ratio returns InputBytes/Size, or 0 when the measurement failed.
func (r Result) Ratio() float64 {
	if r.Err != nil || r.Size == 0 {
		return 0
	}
	return float64(r.InputBytes) / float64(r.Size)
}

// Measure runs every codec over the raw samples of m and over its
// predictor residuals, followed by JPEG 2000 lossless when m has one or
// three channels.
func Measure(m *raster.Matrix, codecs ...Codec) ([]Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(codecs) == 0 {
		codecs = Codecs()
	}

	residuals := predictedBytes(m)
	results := make([]Result, 0, 2*len(codecs)+2)
	for _, c := range codecs {
		results = append(results, measureBytes(c, c.Name(), m.Pix))
		results = append(results, measureBytes(c, c.Name()+"+pred", residuals))
	}
	if m.Channels == 1 || m.Channels == 3 {
		results = append(results, measureJPEG2000(m, false))
		results = append(results, measureJPEG2000(m, true))
	}
	return results, nil
}

func measureBytes(c Codec, name string, src []byte) Result {
	r := Result{Name: name, InputBytes: len(src)}

	start := time.Now()
	out, err := c.Compress(src)
	r.Elapsed = time.Since(start)
	if err != nil {
		r.Err = err
		return r
	}
	r.Size = len(out)

	back, err := c.Decompress(out, len(src))
	if err != nil {
		r.Err = err
		return r
	}
	if !bytes.Equal(back, src) {
		r.Err = fmt.Errorf("%w: %s", ErrMismatch, name)
	}
	return r
}

// predictedBytes is the residual stream reduced modulo 256, the form a
// byte-oriented coder can take.
func predictedBytes(m *raster.Matrix) []byte {
	res := predictor.Predict(m)
	out := make([]byte, len(res))
	for i, v := range res {
		out[i] = byte(v)
	}
	return out
}
