package baseline

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4.CompressorHC keeps match tables that are worth reusing.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{Level: lz4.Level9}
	},
}

// LZ4Codec is LZ4 block compression in high-compression mode.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec returns an lz4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Name implements Codec.
func (LZ4Codec) Name() string {
	return "lz4"
}

// Compress implements Codec. The destination is sized to the block bound,
// so incompressible input still produces a valid block.
func (LZ4Codec) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))

	c := lz4CompressorPool.Get().(*lz4.CompressorHC)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Decompress implements Codec.
func (LZ4Codec) Decompress(src []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("lz4: inflated %d bytes, want %d", n, size)
	}
	return dst, nil
}
