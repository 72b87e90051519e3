package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodec_CompressDecompress_RoundTrip(t *testing.T) {
	codec := NewCodec()
	original := make([]byte, 4096)
	for i := range original {
		original[i] = byte(i % 251)
	}

	compressed, err := codec.Compress(original)
	require.NoError(t, err)

	got, err := codec.Decompress(compressed, len(original))
	require.NoError(t, err)
	require.Equal(t, original, got)
}

func TestCodec_EmptyInput(t *testing.T) {
	codec := NewCodec()
	compressed, err := codec.Compress(nil)
	require.NoError(t, err)
	require.Nil(t, compressed)

	got, err := codec.Decompress(nil, 0)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDigest_SameInputSameDigest(t *testing.T) {
	a := Digest([]byte("same bytes"))
	b := Digest([]byte("same bytes"))
	require.Equal(t, a, b)

	c := Digest([]byte("different bytes"))
	require.NotEqual(t, a, c)
}

func TestStore_PutThenGet_RoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	plaintext := []byte("decoded container plaintext image")
	digest := Digest([]byte("original ciphertext"))

	require.NoError(t, store.Put(digest, plaintext))

	got, ok, err := store.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, plaintext, got)
}

func TestStore_Get_MissReturnsNotOK(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get(Digest([]byte("never stored")))
	require.NoError(t, err)
	require.False(t, ok)
}
