package baseline

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-dlzw/raster"
)

func gradient(t *testing.T, rows, cols, channels int) *raster.Matrix {
	t.Helper()
	m, err := raster.New(rows, cols, channels)
	require.NoError(t, err)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for k := 0; k < channels; k++ {
				m.Set(y, x, k, uint8(3*x+y+50*k))
			}
		}
	}
	return m
}

func TestCodecsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	noise := make([]byte, 5000)
	rng.Read(noise)

	inputs := map[string][]byte{
		"one byte":  {0x42},
		"zeros":     make([]byte, 10000),
		"noise":     noise,
		"repeating": bytes.Repeat([]byte("dlzw residuals "), 300),
	}

	for _, c := range Codecs() {
		for name, src := range inputs {
			out, err := c.Compress(src)
			require.NoError(t, err, "%s/%s", c.Name(), name)

			back, err := c.Decompress(out, len(src))
			require.NoError(t, err, "%s/%s", c.Name(), name)
			assert.Equal(t, src, back, "%s/%s", c.Name(), name)
		}
	}
}

func TestCodecsCompressZeros(t *testing.T) {
	src := make([]byte, 1<<16)
	for _, c := range Codecs() {
		out, err := c.Compress(src)
		require.NoError(t, err)
		assert.Less(t, len(out), len(src)/10, c.Name())
	}
}

func TestZlibLevels(t *testing.T) {
	src := bytes.Repeat([]byte{1, 2, 3, 4}, 1000)
	for _, level := range []int{
		zlib.HuffmanOnly,
		zlib.NoCompression,
		zlib.BestSpeed,
		zlib.BestCompression,
	} {
		c := NewZlibCodec(level)
		out, err := c.Compress(src)
		require.NoError(t, err, "level %d", level)
		back, err := c.Decompress(out, len(src))
		require.NoError(t, err, "level %d", level)
		assert.Equal(t, src, back)
	}

	_, err := NewZlibCodec(zlib.DefaultCompression).Decompress([]byte{0x00, 0x01}, 4)
	assert.ErrorIs(t, err, ErrZlibCorrupted)
}

func TestPackBits(t *testing.T) {
	c := NewPackBitsCodec()

	out, err := c.Compress([]byte{42, 42, 42, 42, 42})
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(0xfc), 42}, out)

	out, err = c.Compress([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 1, 2, 3, 4}, out)

	out, err = c.Compress([]byte{7, 9, 9, 9, 9, 5})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 7, byte(0xfd), 9, 0, 5}, out)

	out, err = c.Compress(bytes.Repeat([]byte{1}, 300))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 1, 0x82, 1, 0xd3, 1}, out)

	out, err = c.Compress(nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	for _, bad := range [][]byte{
		{0xfc},       // run without value
		{3, 1, 2},    // short literal
		{0xfc, 42},   // 5 bytes into a 4 byte buffer
		{1, 1, 2, 0}, // count without bytes
	} {
		_, err := c.Decompress(bad, 4)
		assert.ErrorIs(t, err, ErrPackBitsCorrupted, "%v", bad)
	}
	_, err = c.Decompress([]byte{0, 1}, 4)
	assert.ErrorIs(t, err, ErrPackBitsCorrupted)
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"zlib", "zstd", "s2", "lz4", "packbits"} {
		c, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
	_, err := Lookup("brotli")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestMeasureGray(t *testing.T) {
	m := gradient(t, 32, 32, 1)
	results, err := Measure(m)
	require.NoError(t, err)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"zlib", "zlib+pred", "zstd", "zstd+pred", "s2", "s2+pred", "lz4", "lz4+pred",
		"packbits", "packbits+pred", "j2k", "htj2k",
	}, names)

	for _, r := range results[:10] {
		require.NoError(t, r.Err, r.Name)
		assert.Equal(t, m.Len(), r.InputBytes)
		assert.Greater(t, r.Size, 0)
		assert.Greater(t, r.Ratio(), 0.0)
	}
}

func TestMeasureSkipsJPEG2000ForOtherChannelCounts(t *testing.T) {
	results, err := Measure(gradient(t, 8, 8, 4), NewS2Codec())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "s2", results[0].Name)
	assert.Equal(t, "s2+pred", results[1].Name)
}

func TestMeasureInvalid(t *testing.T) {
	_, err := Measure(&raster.Matrix{Rows: 1, Cols: 1, Channels: 1})
	assert.ErrorIs(t, err, raster.ErrSizeMismatch)
}

func TestPredictedBytesHelpGradient(t *testing.T) {
	m := gradient(t, 64, 64, 1)
	residuals := predictedBytes(m)
	require.Len(t, residuals, m.Len())
	// Every column after the first differs from its neighbor by 3
	assert.Equal(t, byte(3), residuals[1])
	assert.Equal(t, byte(3), residuals[64+63])
}

func TestResultRatio(t *testing.T) {
	assert.Equal(t, 4.0, Result{Size: 25, InputBytes: 100}.Ratio())
	assert.Equal(t, 0.0, Result{Size: 0, InputBytes: 100}.Ratio())
	assert.Equal(t, 0.0, Result{Size: 10, InputBytes: 100, Err: ErrMismatch}.Ratio())
}

func TestJPEG2000ChannelCheck(t *testing.T) {
	_, err := EncodeJPEG2000(gradient(t, 4, 4, 2), false)
	assert.Error(t, err)
}

func TestJPEG2000Resolutions(t *testing.T) {
	assert.Equal(t, 1, jpeg2000Resolutions(1, 100))
	assert.Equal(t, 2, jpeg2000Resolutions(2, 2))
	assert.Equal(t, 6, jpeg2000Resolutions(512, 512))
	assert.Equal(t, 4, jpeg2000Resolutions(8, 1000))
}
