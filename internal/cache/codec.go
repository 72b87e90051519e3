// Package cache implements C12: a content-addressed cache of decoded
// plaintext images, keyed by the xxhash digest of the input ciphertext and
// stored LZ4-compressed. Grounded on arloliu-mebo's compress package: a
// small stateless Codec struct per algorithm, pooled compressor instances.
package cache

import (
	"sync"

	"github.com/pierrec/lz4/v4"
)

// Codec compresses and decompresses plaintext images for on-disk storage.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, originalSize int) ([]byte, error)
}

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// lz4Codec is the single codec this cache uses.
type lz4Codec struct{}

var _ Codec = lz4Codec{}

// NewCodec returns the LZ4 codec.
func NewCodec() Codec {
	return lz4Codec{}
}

// Compress compresses data with a pooled lz4.Compressor.
func (lz4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Decompress decompresses data into a buffer of exactly originalSize bytes,
// the size recorded alongside the compressed blob at Put time.
func (lz4Codec) Decompress(data []byte, originalSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, originalSize)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
