package pnm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-dlzw/raster"
)

func TestDecodePlainGray(t *testing.T) {
	src := "P2\n# a comment\n3 2\n255\n0 1 2\n 3 4 255"
	m, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, 3, m.Cols)
	assert.Equal(t, 1, m.Channels)
	assert.Equal(t, []uint8{0, 1, 2, 3, 4, 255}, m.Pix)
}

func TestDecodePlainColor(t *testing.T) {
	src := "P3 2 1 100\n1 2 3  4 5 6\n"
	m, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Channels)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, m.Pix)
}

func TestDecodeRawGray(t *testing.T) {
	src := append([]byte("P5\n2 2\n#c\n255\n"), 10, 12, 200, 202)
	m, err := Decode(bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint8{10, 12, 200, 202}, m.Pix)
}

func TestDecodeRawSampleIsWhitespaceByte(t *testing.T) {
	// The first raster byte may itself look like whitespace
	src := append([]byte("P5 2 1 255\n"), '\n', ' ')
	m, err := Decode(bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint8{'\n', ' '}, m.Pix)
}

func TestDecodePAM(t *testing.T) {
	src := "P7\nWIDTH 2\nHEIGHT 1\nDEPTH 4\nMAXVAL 255\nTUPLTYPE RGB_ALPHA\nENDHDR\n"
	m, err := Decode(strings.NewReader(src + "\x01\x02\x03\x04\x05\x06\x07\x08"))
	require.NoError(t, err)
	assert.Equal(t, 4, m.Channels)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6, 7, 8}, m.Pix)
}

func TestDecodeErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":         "",
		"bad magic":     "Q5\n1 1\n255\n\x00",
		"unknown P":     "P9\n1 1\n255\n\x00",
		"zero width":    "P5\n0 1\n255\n",
		"bad number":    "P5\nx 1\n255\n\x00",
		"truncated":     "P6\n2 2\n255\n\x00\x00",
		"sample > max":  "P5\n1 1\n15\n\x10",
		"plain > max":   "P2\n1 1\n15\n16",
		"pam missing":   "P7\nWIDTH 1\nHEIGHT 1\nMAXVAL 255\nENDHDR\n\x00",
		"pam unknown":   "P7\nWIDTH 1\nHEIGHT 1\nDEPTH 1\nFOO 1\nMAXVAL 255\nENDHDR\n\x00",
		"pam truncated": "P7\nWIDTH 1\n",
		"long token":    "P5\n" + strings.Repeat("1", 100) + " 1\n255\n",
	} {
		_, err := Decode(strings.NewReader(src))
		assert.ErrorIs(t, err, ErrFormat, name)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode(strings.NewReader("P5\n1 1\n65535\n\x00\x00"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Decode(strings.NewReader("P4\n8 1\n\x00"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		channels int
		magic    string
	}{
		{1, "P5"}, {2, "P7"}, {3, "P6"}, {4, "P7"}, {5, "P7"},
	} {
		pix := make([]uint8, 3*5*tc.channels)
		for i := range pix {
			pix[i] = uint8(i * 7)
		}
		m, err := raster.FromPix(3, 5, tc.channels, pix)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, m))
		assert.True(t, strings.HasPrefix(buf.String(), tc.magic), "channels=%d", tc.channels)

		got, err := Decode(&buf)
		require.NoError(t, err)
		assert.True(t, m.Equal(got), "channels=%d", tc.channels)
	}
}

func TestEncodeInvalid(t *testing.T) {
	err := Encode(&bytes.Buffer{}, &raster.Matrix{Rows: 1, Cols: 1, Channels: 1})
	assert.ErrorIs(t, err, raster.ErrSizeMismatch)
}
