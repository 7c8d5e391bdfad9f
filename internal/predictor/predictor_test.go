package predictor

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-dlzw/raster"
)

func mustMatrix(t testing.TB, rows, cols, channels int, pix []uint8) *raster.Matrix {
	t.Helper()
	m, err := raster.FromPix(rows, cols, channels, pix)
	require.NoError(t, err)
	return m
}

func TestPredictGray2x2(t *testing.T) {
	m := mustMatrix(t, 2, 2, 1, []uint8{10, 12, 200, 202})
	assert.Equal(t, []int16{10, 2, 200, 2}, Predict(m))
}

func TestPredictIsNotModular(t *testing.T) {
	// 0 - 255 must stay -255, not wrap to 1
	m := mustMatrix(t, 1, 3, 1, []uint8{255, 0, 255})
	assert.Equal(t, []int16{255, -255, 255}, Predict(m))
}

func TestPredictChannelsIndependent(t *testing.T) {
	m := mustMatrix(t, 1, 3, 3, []uint8{
		10, 100, 200,
		11, 90, 200,
		13, 80, 199,
	})
	want := []int16{
		10, 100, 200,
		1, -10, 0,
		2, -10, -1,
	}
	assert.Equal(t, want, Predict(m))
}

func TestPredictRowsIndependent(t *testing.T) {
	// Column 0 of every row is raw, never differenced against the row above
	m := mustMatrix(t, 3, 1, 1, []uint8{7, 9, 4})
	assert.Equal(t, []int16{7, 9, 4}, Predict(m))
}

func TestPredictUniform(t *testing.T) {
	pix := make([]uint8, 4*4*3)
	for i := range pix {
		pix[i] = 128
	}
	res := Predict(mustMatrix(t, 4, 4, 3, pix))
	for i, v := range res {
		col := (i / 3) % 4
		if col == 0 {
			assert.Equal(t, int16(128), v, "index %d", i)
		} else {
			assert.Equal(t, int16(0), v, "index %d", i)
		}
	}
}

func TestReconstructWraps(t *testing.T) {
	m, err := Reconstruct([]int16{255, -255, 255}, 1, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 255}, m.Pix)

	// Residuals that overshoot wrap modulo 256
	m, err = Reconstruct([]int16{250, 10}, 1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{250, 4}, m.Pix)
}

func TestReconstructShortStream(t *testing.T) {
	_, err := Reconstruct([]int16{1, 2, 3}, 2, 2, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortStream))
}

func TestReconstructLongStream(t *testing.T) {
	_, err := Reconstruct([]int16{1, 2, 3, 4, 5}, 2, 2, 1)
	assert.ErrorIs(t, err, ErrLongStream)
}

func TestReconstructInvalidDimensions(t *testing.T) {
	_, err := Reconstruct(nil, 0, 1, 1)
	assert.ErrorIs(t, err, raster.ErrInvalidDimensions)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	shapes := []struct{ rows, cols, channels int }{
		{1, 1, 1},
		{1, 17, 1},
		{17, 1, 1},
		{5, 7, 3},
		{8, 8, 4},
		{3, 9, 2},
	}
	for _, s := range shapes {
		pix := make([]uint8, s.rows*s.cols*s.channels)
		rng.Read(pix)
		m := mustMatrix(t, s.rows, s.cols, s.channels, pix)

		got, err := Reconstruct(Predict(m), s.rows, s.cols, s.channels)
		require.NoError(t, err)
		assert.True(t, m.Equal(got), "%dx%dx%d round trip", s.rows, s.cols, s.channels)
	}
}

func TestRowHelpersIgnoreEmpty(t *testing.T) {
	dst := []int16{9, 9}
	PredictRow(dst, nil, 1)
	assert.Equal(t, []int16{9, 9}, dst)

	out := []uint8{9}
	ReconstructRow(out, []int16{1}, 0)
	assert.Equal(t, []uint8{9}, out)
}

func BenchmarkPredict(b *testing.B) {
	pix := make([]uint8, 1920*1080*3)
	for i := range pix {
		pix[i] = byte(i)
	}
	m := mustMatrix(b, 1080, 1920, 3, pix)

	b.SetBytes(int64(len(pix)))
	for b.Loop() {
		Predict(m)
	}
}

func BenchmarkReconstruct(b *testing.B) {
	pix := make([]uint8, 1920*1080*3)
	for i := range pix {
		pix[i] = byte(i)
	}
	res := Predict(mustMatrix(b, 1080, 1920, 3, pix))

	b.SetBytes(int64(len(pix)))
	for b.Loop() {
		if _, err := Reconstruct(res, 1080, 1920, 3); err != nil {
			b.Fatal(err)
		}
	}
}
