// Package cipher implements the container's per-file additive stream: a
// single primitive shared by the header decoder and the dive iterator.
// plain[i] = cipher[i] + key[(keyOffset + i - start) mod mod], 8-bit
// wraparound addition. Decryption and encryption are the same operation;
// the cipher is self-inverse given the same key and offset.
package cipher

import "github.com/deploymenttheory/go-apfs/internal/interfaces"

// CopyKeyOffset is the sentinel passed as keyOffset to request a verbatim
// copy of the region instead of decryption.
const CopyKeyOffset = -1

// additiveCipher implements interfaces.Cipher.
type additiveCipher struct{}

// New returns the additive stream cipher.
func New() interfaces.Cipher {
	return additiveCipher{}
}

// Apply applies the cipher (or a verbatim copy, when keyOffset is
// CopyKeyOffset) across in[start:end], writing into out at the same
// offsets. end is tolerated past len(in); the region is truncated to the
// input length without error, per the spec's bounds-tolerance requirement.
func (additiveCipher) Apply(in, out []byte, start, end, keyOffset, mod int, key [256]byte) {
	if start < 0 {
		start = 0
	}
	if end > len(in) {
		end = len(in)
	}
	if end > len(out) {
		end = len(out)
	}
	if start >= end {
		return
	}

	if keyOffset == CopyKeyOffset {
		copy(out[start:end], in[start:end])
		return
	}

	if mod <= 0 {
		mod = 1
	}
	if mod > 256 {
		mod = 256
	}

	for i := start; i < end; i++ {
		k := (keyOffset + (i - start)) % mod
		if k < 0 {
			k += mod
		}
		out[i] = in[i] + key[k]
	}
}

// Decrypt is a readable alias for Apply: out = in + key, the operation the
// header decoder and dive iterator use on ciphertext.
func Decrypt(c interfaces.Cipher, ciphertext, plaintext []byte, start, end, keyOffset, mod int, key [256]byte) {
	c.Apply(ciphertext, plaintext, start, end, keyOffset, mod, key)
}

// Encrypt is Apply's arithmetic inverse (out = in - key) over the same
// region and key offset. The core never writes files back; this exists so
// that decode/encode round-trip tests can synthesize ciphertext from a
// known plaintext and key.
func Encrypt(c interfaces.Cipher, plaintext, ciphertext []byte, start, end, keyOffset, mod int, key [256]byte) {
	negated := key
	for i := range negated {
		negated[i] = -negated[i]
	}
	c.Apply(plaintext, ciphertext, start, end, keyOffset, mod, negated)
}
