package container

import (
	"testing"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// putU24LE writes a 24-bit little-endian pointer-table entry.
func putU24LE(data []byte, offset, value int) {
	data[offset] = byte(value)
	data[offset+1] = byte(value >> 8)
	data[offset+2] = byte(value >> 16)
}

// TestForEachDive_UsesDescriptorSegmentTable pins down that the iterator
// decrypts every dive with the descriptor's already-resolved segment table
// (format 0x4F's boundary included) rather than re-deriving anything from
// the dive blob itself. Mod=1 with key[0]=1 makes every decrypted byte of
// the all-zero dive become 1 while copied bytes stay 0, so the dive's bytes
// show where the descriptor's copy/decrypt boundary (20) was applied.
func TestForEachDive_UsesDescriptorSegmentTable(t *testing.T) {
	const (
		diveStart = 9
		diveSize  = 40
		diveEnd   = diveStart + diveSize
	)

	plaintext := make([]byte, diveEnd+10)
	putU24LE(plaintext, 0*3, diveStart)
	putU24LE(plaintext, 1*3, diveEnd)

	descriptor := &types.ContainerDescriptor{
		Format:       types.FileFormatO,
		PointerWidth: 3,
		PointerCount: 3,
		Mod:          1,
		Key:          [256]byte{1},
		SegmentTable: []types.Segment{
			{Start: 0, End: 20, Mode: types.SegmentCopy},
			{Start: 20, End: 0x6F1, Mode: types.SegmentDecrypt, KeyOffset: 0},
			{Start: 0x6F1, End: -1, Mode: types.SegmentDecrypt, KeyOffset: 0},
		},
	}

	it := NewDiveIterator()

	var gotIndex int
	var gotLen int
	var gotTail bool
	calls := 0
	err := it.ForEachDive(plaintext, descriptor, func(_ *types.ContainerDescriptor, dive []byte, index int, isTail bool) error {
		calls++
		gotIndex = index
		gotLen = len(dive)
		gotTail = isTail
		return nil
	})

	if err != nil {
		t.Fatalf("ForEachDive returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
	if gotIndex != 0 {
		t.Fatalf("dive index = %d, want 0", gotIndex)
	}
	if gotLen != diveSize {
		t.Fatalf("dive length = %d, want %d", gotLen, diveSize)
	}
	if gotTail {
		t.Fatalf("unexpected tail callback for a table with no remaining space")
	}
	for i := 0; i < diveSize; i++ {
		want := byte(0)
		if i >= 20 {
			want = 1
		}
		if got := plaintext[diveStart+i]; got != want {
			t.Fatalf("dive byte %d = %d, want %d (copy below 20, decrypt from 20)", i, got, want)
		}
	}
}
