package services

import (
	"testing"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// putU24LE writes a 24-bit little-endian pointer-table entry, the inverse
// of helpers.U24LE.
func putU24LE(data []byte, offset, value int) {
	data[offset] = byte(value)
	data[offset+1] = byte(value >> 8)
	data[offset+2] = byte(value >> 16)
}

func TestScrubKey_ZeroesKeyRegion(t *testing.T) {
	plaintext := make([]byte, 300)
	for i := range plaintext {
		plaintext[i] = 0xAA
	}
	descriptor := &types.ContainerDescriptor{HeaderOffset: 10}

	scrubKey(plaintext, descriptor)

	for i := 11; i < 267; i++ {
		if plaintext[i] != 0 {
			t.Fatalf("byte %d not scrubbed, got %#x", i, plaintext[i])
		}
	}
	if plaintext[10] != 0xAA || plaintext[267] != 0xAA {
		t.Fatalf("scrub touched bytes outside [headerOffset+1, headerOffset+257)")
	}
}

func TestScrubKey_ClampsToImageLength(t *testing.T) {
	plaintext := make([]byte, 50)
	descriptor := &types.ContainerDescriptor{HeaderOffset: 10}

	// Should not panic even though the 256-byte key region runs past the
	// end of a truncated image.
	scrubKey(plaintext, descriptor)
}

// buildTwoEntryImage constructs a minimal synthetic container image with an
// identity cipher (Mod=1, Key all zero, so Decrypt/Encrypt are no-ops) and a
// 4-entry pointer table describing one real dive followed by one
// zero-length phantom dive, matching how dive_iterator.go's nextBoundary
// treats the table.
func buildTwoEntryImage() ([]byte, *types.ContainerDescriptor) {
	const (
		diveStart = 20
		logOffset = 10
		profOff   = 100
		sampleLen = 10
		diveSize  = profOff + sampleLen // 110
		diveEnd   = diveStart + diveSize
	)

	plaintext := make([]byte, diveEnd+10)
	putU24LE(plaintext, 0*3, diveStart)
	putU24LE(plaintext, 1*3, diveEnd)
	putU24LE(plaintext, 2*3, diveEnd)

	for i := 0; i < sampleLen; i++ {
		plaintext[diveStart+profOff+i] = byte(0x40 + i)
	}

	descriptor := &types.ContainerDescriptor{
		PointerWidth:  3,
		PointerCount:  4,
		Mod:           1,
		SegmentTable:  []types.Segment{{End: -1, Mode: types.SegmentCopy}},
		Family:        types.FamilyCommanderI,
		LogOffset:     logOffset,
		ProfileOffset: profOff,
	}
	return plaintext, descriptor
}

func TestForEachDive_ParsesLogbookAndSlicesSamples(t *testing.T) {
	plaintext, descriptor := buildTwoEntryImage()
	image := &Image{Plaintext: plaintext, Descriptor: descriptor}
	svc := NewDecodeService()

	type seen struct {
		index   int
		isTail  bool
		log     *types.Logbook
		samples []byte
	}
	var got []seen

	err := svc.ForEachDive(image, func(index int, log *types.Logbook, sampleBytes []byte, isTail bool) error {
		got = append(got, seen{index, isTail, log, sampleBytes})
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachDive returned error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 dive callbacks (1 real + 1 phantom), got %d", len(got))
	}

	real := got[0]
	if real.isTail {
		t.Fatalf("dive 0 should not be the inter-dive tail")
	}
	if len(real.samples) != 10 {
		t.Fatalf("dive 0 sample slice length = %d, want 10", len(real.samples))
	}
	for i, b := range real.samples {
		if want := byte(0x40 + i); b != want {
			t.Fatalf("dive 0 sample[%d] = %#x, want %#x", i, b, want)
		}
	}
	if real.log == nil {
		t.Fatalf("dive 0 logbook is nil")
	}

	phantom := got[1]
	if phantom.isTail {
		t.Fatalf("phantom dive should not be reported as the inter-dive tail")
	}
	if len(phantom.samples) != 0 {
		t.Fatalf("phantom dive should carry no sample bytes, got %d", len(phantom.samples))
	}
}

func TestParseSamples_DelegatesToProfileParser(t *testing.T) {
	svc := NewDecodeService()
	log := &types.Logbook{ProfileIntervalSec: 10}
	samples := []byte{40, 20, 0x02}

	var sawEndOfStream bool
	err := svc.ParseSamples(types.FamilyCommanderI, log, samples, func(_ int, s types.Sample) error {
		if s.Kind == types.SampleEndOfStream {
			sawEndOfStream = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ParseSamples returned error: %v", err)
	}
	if !sawEndOfStream {
		t.Errorf("expected an end-of-stream sentinel sample")
	}
}
