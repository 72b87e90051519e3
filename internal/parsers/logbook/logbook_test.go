package logbook

import (
	"testing"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

func u16le(b []byte, off int, v uint16) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}

func u32le(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func TestParse_CommanderI(t *testing.T) {
	region := make([]byte, 90)
	u32le(region, 15, 1000) // timestamp offset from epoch
	region[20] = 7          // dive number low byte
	u16le(region, 49, 40)   // max depth, quarter-foot units -> 10ft

	p := New()
	log, err := p.Parse(types.FamilyCommanderI, region, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if log.DiveNumber != 7 {
		t.Errorf("DiveNumber = %d, want 7", log.DiveNumber)
	}
	if log.MaxDepthFt != 10 {
		t.Errorf("MaxDepthFt = %v, want 10", log.MaxDepthFt)
	}
	if log.StartEpoch != 1000+types.SourceEpoch {
		t.Errorf("StartEpoch = %d, want %d", log.StartEpoch, 1000+types.SourceEpoch)
	}
}

func TestParse_CommanderII(t *testing.T) {
	region := make([]byte, 256)
	u16le(region, 68, 42)
	u32le(region, 128, 0xFFFFFFFF) // sentinel profile end

	log, err := New().Parse(types.FamilyCommanderII, region, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if log.DiveNumber != 42 {
		t.Errorf("DiveNumber = %d, want 42", log.DiveNumber)
	}
	if log.ProfileEndOffset != 0xFFFFFFFF {
		t.Errorf("ProfileEndOffset = %d, want sentinel", log.ProfileEndOffset)
	}
}

func TestParse_CommanderIIIGemini_SplitClock(t *testing.T) {
	region := make([]byte, 256)
	region[0] = 30 // minute
	region[1] = 15 // second
	region[2] = 4  // day
	region[3] = 9  // hour
	region[4] = 24 // year (2024)
	region[5] = 7  // month = 6 (1-indexed 7)
	u16le(region, 70, 11)

	for _, fam := range []types.Family{types.FamilyCommanderIII, types.FamilyGemini} {
		log, err := New().Parse(fam, region, 0)
		if err != nil {
			t.Fatalf("Parse(%s) returned error: %v", fam, err)
		}
		if log.StartClock.Year != 2024 || log.StartClock.Month != 6 || log.StartClock.Day != 4 {
			t.Errorf("Parse(%s) StartClock = %+v, want 2024-06-04", fam, log.StartClock)
		}
		if log.DiveNumber != 11 {
			t.Errorf("Parse(%s) DiveNumber = %d, want 11", fam, log.DiveNumber)
		}
	}
}

func TestParse_Nemesis_AltEpoch(t *testing.T) {
	region := make([]byte, 108)
	u32le(region, 15, 500)

	log, err := New().Parse(types.FamilyNemesis, region, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if log.StartEpoch != 500+types.NemesisEpoch {
		t.Errorf("StartEpoch = %d, want %d", log.StartEpoch, 500+types.NemesisEpoch)
	}
}

func TestParse_EMC(t *testing.T) {
	region := make([]byte, 512)
	region[3] = 12 // day
	region[4] = 8  // month
	region[5] = 24 // year
	u16le(region, 86, 3)
	u16le(region, 144, 210) // O2 mix 0 raw -> /256

	log, err := New().Parse(types.FamilyEMC, region, 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if log.DiveNumber != 3 {
		t.Errorf("DiveNumber = %d, want 3", log.DiveNumber)
	}
	if log.StartClock.Day != 12 || log.StartClock.Month != 7 {
		t.Errorf("StartClock = %+v, want day=12 month=7", log.StartClock)
	}
	want := 210.0 / 256.0
	if log.Mixes[0].O2Percent != want {
		t.Errorf("Mixes[0].O2Percent = %v, want %v", log.Mixes[0].O2Percent, want)
	}
}

func TestParse_UnknownFamily(t *testing.T) {
	_, err := New().Parse(types.Family(99), make([]byte, 16), 0)
	if err == nil {
		t.Fatal("expected error for unknown family")
	}
}

func TestLogOffsetRespected(t *testing.T) {
	dive := make([]byte, 200)
	u16le(dive, 100+68, 99) // offset into dive = logOffset(100) + 68

	log, err := New().Parse(types.FamilyCommanderII, dive, 100)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if log.DiveNumber != 99 {
		t.Errorf("DiveNumber = %d, want 99 (logOffset not applied)", log.DiveNumber)
	}
}
