package baseline

import "github.com/klauspost/compress/s2"

// S2Codec is S2 block compression at its best setting.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec returns an s2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Name implements Codec.
func (S2Codec) Name() string {
	return "s2"
}

// Compress implements Codec.
func (S2Codec) Compress(src []byte) ([]byte, error) {
	return s2.EncodeBest(nil, src), nil
}

// Decompress implements Codec.
func (S2Codec) Decompress(src []byte, size int) ([]byte, error) {
	return s2.Decode(make([]byte, size), src)
}
