package container

import (
	"testing"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// buildFormatOHeader constructs a minimal decrypted header image for
// FileVariantWAN/FileFormatO: the format byte at header_offset, an
// identity-ish mod/key region, and a 3-byte model id. The discriminator
// patchFormatOBoundary reads is header[0x32], the model id's middle byte,
// so it is written there and must keep the model id a known one.
func buildFormatOHeader(t *testing.T, model string, discriminator byte) []byte {
	t.Helper()

	headerOffset := types.HeaderOffset(types.FileVariantWAN)
	modelOffset := headerOffset + 0x102 + 0x31

	buf := make([]byte, modelOffset+len(model)+1)
	buf[headerOffset] = byte(types.FileFormatO)
	buf[headerOffset+0x101] = 0 // mod-1 == 0 -> mod == 1
	copy(buf[modelOffset:], model)
	buf[modelOffset+1] = discriminator

	return buf
}

func TestBuild_FormatO_BoundaryFromDecryptedHeader(t *testing.T) {
	tests := []struct {
		name          string
		model         string
		discriminator byte
		wantEnd       int
	}{
		{name: "GemPNox discriminator selects 0x6F1", model: "102", discriminator: '0', wantEnd: 0x6F1},
		{name: "any other byte selects 0x6B9", model: "213", discriminator: '1', wantEnd: 0x6B9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			header := buildFormatOHeader(t, tc.model, tc.discriminator)

			d, err := descriptorBuilder{}.Build(types.FileVariantWAN, header)
			if err != nil {
				t.Fatalf("Build returned error: %v", err)
			}

			if d.SegmentTable[1].End != tc.wantEnd {
				t.Fatalf("SegmentTable[1].End = 0x%X, want 0x%X", d.SegmentTable[1].End, tc.wantEnd)
			}
		})
	}
}

// TestBuild_FormatO_BoundaryIsPerFileNotPerDive guards the bug the
// discriminator resolution used to have: the byte must come from the
// decrypted header region (the same range the model id is read from), not
// from anything that varies per dive blob. Build only ever sees the header,
// so a correct implementation can't help but resolve this once per file;
// this test exists to pin that down against regression back to a per-dive
// read.
func TestBuild_FormatO_BoundaryIsPerFileNotPerDive(t *testing.T) {
	header := buildFormatOHeader(t, "102", '0')

	first, err := descriptorBuilder{}.Build(types.FileVariantWAN, header)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	second, err := descriptorBuilder{}.Build(types.FileVariantWAN, header)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if first.SegmentTable[1].End != second.SegmentTable[1].End {
		t.Fatalf("boundary differs across identical header-only Build calls: %d vs %d",
			first.SegmentTable[1].End, second.SegmentTable[1].End)
	}
	if first.SegmentTable[1].End != 0x6F1 {
		t.Fatalf("SegmentTable[1].End = 0x%X, want 0x6F1", first.SegmentTable[1].End)
	}
}
