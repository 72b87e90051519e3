package container

import (
	"github.com/deploymenttheory/go-apfs/internal/interfaces"
	"github.com/deploymenttheory/go-apfs/internal/parsers/cipher"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// headerDecoder implements interfaces.HeaderDecoder (C4).
type headerDecoder struct {
	cipher  interfaces.Cipher
	builder interfaces.ContainerDescriptorBuilder
}

// NewHeaderDecoder returns the C4 header decoder, wired to the additive
// cipher and the C3 descriptor builder.
func NewHeaderDecoder() interfaces.HeaderDecoder {
	return &headerDecoder{cipher: cipher.New(), builder: NewDescriptorBuilder()}
}

// DecodeHeader decrypts the fixed header region block-by-block, making the
// pointer table and model id legible. The pointer table, format byte,
// modulus byte and key are never themselves encrypted, so the whole image
// is first copied verbatim and only the header region (and, later, each
// dive's segments via the dive iterator) is overwritten in place — image
// size is preserved either way.
func (h *headerDecoder) DecodeHeader(variant types.FileVariant, ciphertext []byte) ([]byte, *types.ContainerDescriptor, error) {
	headerOffset := types.HeaderOffset(variant)
	if len(ciphertext) < headerOffset+0x102 {
		return nil, nil, &types.DecodeError{Kind: types.ErrTruncated, Detail: "image smaller than header_offset + 0x102"}
	}

	image := make([]byte, len(ciphertext))
	copy(image, ciphertext)

	// The format byte, modulus and key live in the pointer-table/key
	// region, which is never encrypted, so they're readable up front.
	descriptor, err := CipherParams(variant, image)
	if err != nil {
		return nil, nil, err
	}

	base := headerOffset + 0x102
	if variant == types.FileVariantANA {
		base = headerOffset + 1 + descriptor.Mod
	}

	headerEnd := headerRegionEnd(image, descriptor, base, len(ciphertext))

	for _, seg := range descriptor.HeaderSchedule {
		end := seg.End
		if end < 0 || base+end > headerEnd {
			end = headerEnd - base
		}
		cipher.Decrypt(h.cipher, image, image, base+seg.Start, base+end, seg.KeyOffset, descriptor.Mod, descriptor.Key)
	}

	// Re-derive the descriptor now that the model id (which lives inside
	// the region just decrypted) is legible.
	descriptor, err = h.builder.Build(variant, image)
	if err != nil {
		return nil, nil, err
	}

	return image, descriptor, nil
}

// headerRegionEnd is where the encrypted header region stops and the
// first dive begins: the first pointer-table entry's value, falling back
// to the table's terminal one-past-last-dive entry, and finally to the
// whole image when the pointer table is empty (the all-zero boundary
// case — there is no dive data to bound the header against).
func headerRegionEnd(image []byte, descriptor *types.ContainerDescriptor, base, imageLen int) int {
	first := readPointer(image, descriptor, 0)
	if first != 0 && first != types.PointerAbsent {
		return int(first)
	}

	terminal := readPointer(image, descriptor, descriptor.PointerCount-2)
	if terminal != 0 && terminal != types.PointerAbsent {
		return int(terminal)
	}

	return imageLen
}
