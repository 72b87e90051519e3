package cache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Digest returns the content-addressing key for a container file's raw
// ciphertext bytes. It is also the join key between this cache and the
// dive index's file_digest column.
func Digest(ciphertext []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(ciphertext))
}

// Store is a directory of LZ4-compressed plaintext images, one file per
// digest, so a second run against the same input file skips the header
// decryption (C4). The dives are still decrypted by the dive iterator (C5)
// on every run.
type Store struct {
	dir   string
	codec Codec
}

// Open returns a Store rooted at dir, creating it if necessary.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	return &Store{dir: dir, codec: NewCodec()}, nil
}

func (s *Store) path(digest string) string {
	return filepath.Join(s.dir, digest+".lz4")
}

// entryHeaderSize is the length of the uncompressed-size prefix each cache
// file starts with.
const entryHeaderSize = 8

// Get returns the cached plaintext image for digest, or ok=false if there
// is no cache entry.
func (s *Store) Get(digest string) (plaintext []byte, ok bool, err error) {
	raw, err := os.ReadFile(s.path(digest))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: read %s: %w", digest, err)
	}
	if len(raw) < entryHeaderSize {
		return nil, false, fmt.Errorf("cache: entry %s truncated", digest)
	}

	originalSize := int(binary.LittleEndian.Uint64(raw[:entryHeaderSize]))
	plaintext, err = s.codec.Decompress(raw[entryHeaderSize:], originalSize)
	if err != nil {
		return nil, false, fmt.Errorf("cache: decompress %s: %w", digest, err)
	}
	return plaintext, true, nil
}

// Put stores plaintext under digest, compressed with the cache's codec.
func (s *Store) Put(digest string, plaintext []byte) error {
	compressed, err := s.codec.Compress(plaintext)
	if err != nil {
		return fmt.Errorf("cache: compress %s: %w", digest, err)
	}

	out := make([]byte, entryHeaderSize+len(compressed))
	binary.LittleEndian.PutUint64(out[:entryHeaderSize], uint64(len(plaintext)))
	copy(out[entryHeaderSize:], compressed)

	tmp := s.path(digest) + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", digest, err)
	}
	return os.Rename(tmp, s.path(digest))
}
