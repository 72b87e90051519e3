// Package container implements the container layer: deriving the
// ContainerDescriptor from the file variant and decrypted header bytes
// (C3), decrypting the fixed header region to make the pointer table and
// model id legible (C4), and walking the pointer table to decrypt and
// yield each dive blob in turn (C5).
package container

import (
	"fmt"

	"github.com/deploymenttheory/go-apfs/internal/helpers"
	"github.com/deploymenttheory/go-apfs/internal/interfaces"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// descriptorBuilder implements interfaces.ContainerDescriptorBuilder.
type descriptorBuilder struct{}

// NewDescriptorBuilder returns the C3 container-descriptor derivation.
func NewDescriptorBuilder() interfaces.ContainerDescriptorBuilder {
	return descriptorBuilder{}
}

// Build derives layout constants from the variant and decrypted header
// bytes: header offset, pointer width, per-dive segment table, log/profile
// offsets, the resolved family, and the cipher key/modulus. Format 0x4F's
// segment table has one boundary that depends on header[0x32] (the same
// global header region the model id comes from, not anything per-dive);
// patchFormatOBoundary resolves it here, once per file.
//
// headerBytes must already have the header decryption schedule applied —
// the model id this reads lives inside that region. CipherParams below
// reads the fields needed to run that schedule in the first place, which
// all live in the verbatim (never-encrypted) pointer-table/key region.
func (descriptorBuilder) Build(variant types.FileVariant, headerBytes []byte) (*types.ContainerDescriptor, error) {
	d, err := cipherParams(variant, headerBytes)
	if err != nil {
		return nil, err
	}

	modelOffset := d.HeaderOffset + 0x102 + 0x31
	if variant == types.FileVariantANA {
		modelOffset = d.HeaderOffset + d.Mod + 38
	}
	d.Model = helpers.ASCII(headerBytes, modelOffset, 3)

	family, ok := types.LookupFamily(d.Model)
	if !ok {
		return nil, &types.DecodeError{Kind: types.ErrUnknownModel, Detail: fmt.Sprintf("model id %q has no known family", d.Model)}
	}
	d.Family = family
	d.LogSize = family.LogSize()

	if variant != types.FileVariantANA {
		d.SegmentTable = segmentSchedule(d.Format, d.LogSize)
		if d.Format == types.FileFormatO {
			patchFormatOBoundary(d, headerBytes, modelOffset)
		}
	}

	if err := resolveOffsets(d); err != nil {
		return nil, err
	}

	return d, nil
}

// patchFormatOBoundary resolves format 0x4F's third segment boundary from
// header[0x32] — the middle byte of the 3-byte model id (which starts at
// header[0x31]), read from the same global decrypted header region, not
// from any particular dive. '0' selects the GemPNox boundary (0x6F1);
// anything else selects 0x6B9. The boundary ends segment 1 and starts
// segment 2, so both are updated.
func patchFormatOBoundary(d *types.ContainerDescriptor, headerBytes []byte, modelOffset int) {
	discriminator := helpers.B8(headerBytes, modelOffset+1)
	if discriminator == '0' {
		d.SegmentTable[1].End = 0x6F1
	} else {
		d.SegmentTable[1].End = 0x6B9
	}
	d.SegmentTable[2].Start = d.SegmentTable[1].End
}

// CipherParams reads only the fields needed to run the header decryption
// schedule: file format, pointer width, cipher modulus and key. These all
// live in the pointer-table/key region, which is never itself encrypted,
// so this is safe to call before the header region has been decrypted.
func CipherParams(variant types.FileVariant, headerBytes []byte) (*types.ContainerDescriptor, error) {
	return cipherParams(variant, headerBytes)
}

func cipherParams(variant types.FileVariant, headerBytes []byte) (*types.ContainerDescriptor, error) {
	headerOffset := types.HeaderOffset(variant)
	d := &types.ContainerDescriptor{Variant: variant, HeaderOffset: headerOffset}

	if variant == types.FileVariantANA {
		if err := buildANA(d, headerBytes); err != nil {
			return nil, err
		}
		d.PointerCount = d.HeaderOffset / d.PointerWidth
		return d, nil
	}
	if err := buildCanWan(d, headerBytes); err != nil {
		return nil, err
	}
	d.PointerCount = d.HeaderOffset / d.PointerWidth
	return d, nil
}

func buildCanWan(d *types.ContainerDescriptor, headerBytes []byte) error {
	headerOffset := d.HeaderOffset
	if len(headerBytes) < headerOffset+0x102 {
		return &types.DecodeError{Kind: types.ErrTruncated, Detail: "image too small for header region"}
	}

	format := types.FileFormat(helpers.B8(headerBytes, headerOffset))
	if !format.Valid() {
		return &types.DecodeError{Kind: types.ErrUnknownFormat, Detail: fmt.Sprintf("file format byte 0x%02X", byte(format))}
	}
	d.Format = format

	switch format {
	case types.FileFormatE, types.FileFormatF:
		d.PointerWidth = 4
	default:
		d.PointerWidth = 3
	}

	d.Mod = int(helpers.B8(headerBytes, headerOffset+0x101)) + 1
	copy(d.Key[:], helpers.Slice(headerBytes, headerOffset+1, headerOffset+1+256))

	d.HeaderSchedule = headerSchedule(format)
	return nil
}

func buildANA(d *types.ContainerDescriptor, headerBytes []byte) error {
	headerOffset := d.HeaderOffset
	if len(headerBytes) < headerOffset+1 {
		return &types.DecodeError{Kind: types.ErrTruncated, Detail: "image too small for ANA header"}
	}

	d.PointerWidth = 3
	d.Mod = int(helpers.B8(headerBytes, headerOffset)) + 1
	copy(d.Key[:], helpers.Slice(headerBytes, headerOffset+1, headerOffset+1+256))

	d.HeaderSchedule = []types.Segment{
		{Start: 0, End: 0x482, Mode: types.SegmentDecrypt, KeyOffset: 0},
		{Start: 0x482, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0},
	}
	d.SegmentTable = []types.Segment{
		{Start: 0, End: 0x4C3, Mode: types.SegmentCopy},
		{Start: 0x4C3, End: 0x502, Mode: types.SegmentDecrypt, KeyOffset: 0},
		{Start: 0x502, End: 0x540, Mode: types.SegmentDecrypt, KeyOffset: 0x3F},
		{Start: 0x540, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0},
	}
	return nil
}

// headerSchedule returns the boundary list for decrypting the fixed header
// region, keyed by format. Every block uses key offset 0.
func headerSchedule(format types.FileFormat) []types.Segment {
	bounds := func(ends ...int) []types.Segment {
		segs := make([]types.Segment, 0, len(ends))
		start := 0
		for _, e := range ends {
			segs = append(segs, types.Segment{Start: start, End: e, Mode: types.SegmentDecrypt, KeyOffset: 0})
			start = e
		}
		segs = append(segs, types.Segment{Start: start, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0})
		return segs
	}

	switch format {
	case types.FileFormatF:
		return bounds(0x000C, 0x0A12, 0x1A12, 0x2A12, 0x3A12, 0x5312, 0x5D00)
	default: // WAN formats C, E, O share the header schedule per the spec
		return bounds(0x000C, 0x048E)
	}
}

// segmentSchedule returns the per-dive decryption schedule for the given
// format. For format 0x46 the 0x4914+log_size boundary depends on the
// resolved log size, which the caller passes in as logSize.
func segmentSchedule(format types.FileFormat, logSize int) []types.Segment {
	switch format {
	case types.FileFormatF:
		return []types.Segment{
			{Start: 0x0000, End: 0x0FFF, Mode: types.SegmentDecrypt, KeyOffset: 1},
			{Start: 0x0FFF, End: 0x1FFF, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x1FFF, End: 0x2FFF, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x2FFF, End: 0x48FF, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x48FF, End: 0x4914 + logSize, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x4914 + logSize, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0},
		}
	case types.FileFormatC:
		return []types.Segment{
			{Start: 0, End: 0x5DC, Mode: types.SegmentCopy},
			{Start: 0x5DC, End: 0x64A, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x64A, End: 0x659, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x659, End: 0x6B9, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x6B9, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0},
		}
	case types.FileFormatE:
		return []types.Segment{
			{Start: 0, End: 0x5DC, Mode: types.SegmentCopy},
			{Start: 0x5DC, End: 0x6F1, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x6F1, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0},
		}
	case types.FileFormatO:
		// Third boundary depends on header[0x32] ('0' selects 0x6F1,
		// otherwise 0x6B9); patchFormatOBoundary overwrites it once the
		// model-id region has been read. 0x6F1 is just the placeholder.
		return []types.Segment{
			{Start: 0, End: 0x5DC, Mode: types.SegmentCopy},
			{Start: 0x5DC, End: 0x6F1, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x6F1, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0},
		}
	default:
		return nil
	}
}

// resolveOffsets fills in log_offset and profile_offset. It does not touch
// the segment table; format 0x46's log-size-dependent boundary is already
// set by segmentSchedule.
func resolveOffsets(d *types.ContainerDescriptor) error {
	if d.Variant == types.FileVariantANA {
		d.LogOffset = 0x4D8
		d.ProfileOffset = d.LogOffset + d.LogSize
		return nil
	}

	switch d.Format {
	case types.FileFormatF:
		d.LogOffset = 0x4914
		d.ProfileOffset = d.LogOffset + d.LogSize
	case types.FileFormatC, types.FileFormatE, types.FileFormatO:
		d.LogOffset = 0x5F1
		if d.LogSize == 90 {
			d.ProfileOffset = 0x6B9
		} else {
			d.ProfileOffset = 0x6F1
		}
	default:
		return &types.DecodeError{Kind: types.ErrUnknownFormat, Detail: fmt.Sprintf("format 0x%02X", byte(d.Format))}
	}
	return nil
}
