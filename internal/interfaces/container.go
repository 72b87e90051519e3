// File: internal/interfaces/container.go
package interfaces

import (
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// Cipher is the additive-stream primitive shared by the header decoder and
// the dive iterator: decrypt and encrypt are the same operation run over a
// byte range with a starting key offset.
type Cipher interface {
	// Apply writes into out[start:end] (clamped to len(in)) the result of
	// adding key[(keyOffset+i-start) mod mod] to in[i] for i in [start, end).
	// keyOffset < 0 means copy verbatim.
	Apply(in, out []byte, start, end, keyOffset, mod int, key [256]byte)
}

// ContainerDescriptorBuilder derives a ContainerDescriptor from a file
// variant and the decrypted header bytes.
type ContainerDescriptorBuilder interface {
	Build(variant types.FileVariant, headerBytes []byte) (*types.ContainerDescriptor, error)
}

// HeaderDecoder decrypts the fixed header region of an image in place and
// returns the full decoded image (pointer table + key region + header).
type HeaderDecoder interface {
	DecodeHeader(variant types.FileVariant, ciphertext []byte) ([]byte, *types.ContainerDescriptor, error)
}

// DiveCallback receives one decrypted dive slice at a time. index counts
// live (non-absent) dives in pointer-table order. isInterDiveTail is true
// only for the trailing blob emitted after the last real dive. A non-nil
// return stops iteration and is propagated to the caller.
type DiveCallback func(descriptor *types.ContainerDescriptor, dive []byte, index int, isInterDiveTail bool) error

// DiveIterator walks the pointer table, decrypting each dive blob in place
// and handing it to the callback in pointer-table order.
type DiveIterator interface {
	ForEachDive(plaintext []byte, descriptor *types.ContainerDescriptor, callback DiveCallback) error
}
