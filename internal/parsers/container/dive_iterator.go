package container

import (
	"github.com/deploymenttheory/go-apfs/internal/helpers"
	"github.com/deploymenttheory/go-apfs/internal/interfaces"
	"github.com/deploymenttheory/go-apfs/internal/parsers/cipher"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// diveIterator implements interfaces.DiveIterator (C5).
type diveIterator struct {
	cipher interfaces.Cipher
}

// NewDiveIterator returns the C5 dive iterator, wired to the additive cipher.
func NewDiveIterator() interfaces.DiveIterator {
	return &diveIterator{cipher: cipher.New()}
}

func readPointer(image []byte, descriptor *types.ContainerDescriptor, index int) uint32 {
	offset := index * descriptor.PointerWidth
	if descriptor.PointerWidth == 4 {
		return helpers.U32LE(image, offset)
	}
	return helpers.U24LE(image, offset)
}

// ForEachDive walks the pointer table while pointers[i] != 0 and
// i < pointer_count-2, decrypting and handing each live dive blob to the
// callback in pointer-table order, then emits one trailing inter-dive tail
// blob when the image has room for it.
func (it *diveIterator) ForEachDive(plaintext []byte, descriptor *types.ContainerDescriptor, callback interfaces.DiveCallback) error {
	lastEnd := -1
	index := 0

	for i := 0; i < descriptor.PointerCount-2; i++ {
		start := readPointer(plaintext, descriptor, i)
		if start == 0 {
			break
		}
		if start == types.PointerAbsent {
			continue
		}

		end, ok := nextBoundary(plaintext, descriptor, i)
		if !ok {
			break
		}

		if end < start || int(end) > len(plaintext) {
			return &types.DecodeError{Kind: types.ErrCorruptDive, Detail: "pointer range reversed or exceeds image"}
		}

		decryptDive(it.cipher, plaintext, int(start), int(end), descriptor.SegmentTable, descriptor.Mod, descriptor.Key)

		if err := callback(descriptor, plaintext[start:end], index, false); err != nil {
			return err
		}

		lastEnd = int(end)
		index++
	}

	return it.emitInterDiveTail(plaintext, descriptor, lastEnd, index, callback)
}

// nextBoundary finds the next non-absent pointer-table entry after i,
// which becomes the current dive's end offset.
func nextBoundary(image []byte, descriptor *types.ContainerDescriptor, i int) (uint32, bool) {
	for j := i + 1; j < descriptor.PointerCount-1; j++ {
		p := readPointer(image, descriptor, j)
		if p == types.PointerAbsent {
			continue
		}
		return p, true
	}
	return 0, false
}

func decryptDive(c interfaces.Cipher, image []byte, diveStart, diveEnd int, segments []types.Segment, mod int, key [256]byte) {
	size := diveEnd - diveStart
	for _, seg := range segments {
		end := seg.End
		if end < 0 || end > size {
			end = size
		}
		start := seg.Start
		if start > size {
			continue
		}
		keyOffset := seg.KeyOffset
		if seg.Mode == types.SegmentCopy {
			keyOffset = cipher.CopyKeyOffset
		}
		cipher.Decrypt(c, image, image, diveStart+start, diveStart+end, keyOffset, mod, key)
	}
}

// emitInterDiveTail emits the trailing blob after the last real dive, when
// one exists. Its body is decrypted with key offset 0 across its whole
// span and contains only inter-dive events, no logbook.
func (it *diveIterator) emitInterDiveTail(image []byte, descriptor *types.ContainerDescriptor, lastEnd, index int, callback interfaces.DiveCallback) error {
	if lastEnd < 0 {
		return nil
	}

	tailBoundaryIdx := descriptor.PointerCount - 2
	tailEndRaw := readPointer(image, descriptor, tailBoundaryIdx)
	if tailEndRaw == 0 || tailEndRaw == types.PointerAbsent {
		return nil
	}
	tailEnd := int(tailEndRaw) - 1
	if tailEnd <= lastEnd || tailEnd > len(image) {
		return nil
	}

	tail := image[lastEnd:tailEnd]
	cipher.Decrypt(it.cipher, image, image, lastEnd, tailEnd, 0, descriptor.Mod, descriptor.Key)
	return callback(descriptor, tail, index, true)
}
