// Package types defines the data model shared by the container, logbook and
// profile decoders: file variants, the family table, the normalized logbook
// and sample records.
package types

import "time"

// FileVariant tags the container extension the caller supplied the bytes
// under. It is never guessed from the bytes themselves.
type FileVariant int

const (
	FileVariantCAN FileVariant = iota
	FileVariantWAN
	FileVariantANA
)

func (v FileVariant) String() string {
	switch v {
	case FileVariantCAN:
		return "CAN"
	case FileVariantWAN:
		return "WAN"
	case FileVariantANA:
		return "ANA"
	default:
		return "UNKNOWN"
	}
}

// FileFormat is the single byte read at header_offset. It selects the
// pointer width and the per-dive segment schedule.
type FileFormat byte

const (
	FileFormatC FileFormat = 0x43 // old WAN
	FileFormatE FileFormat = 0x45
	FileFormatF FileFormat = 0x46 // CAN main
	FileFormatO FileFormat = 0x4F
)

func (f FileFormat) Valid() bool {
	switch f {
	case FileFormatC, FileFormatE, FileFormatF, FileFormatO:
		return true
	default:
		return false
	}
}

// HeaderOffset is where the pointer table ends and the file-format byte
// begins, keyed by variant.
func HeaderOffset(variant FileVariant) int {
	if variant == FileVariantCAN {
		return 0x40000
	}
	return 0x30000
}

// Family groups device models that share logbook layout, sample unit, and
// event conventions.
type Family int

const (
	FamilyCommanderI Family = iota
	FamilyCommanderII
	FamilyCommanderIII
	FamilyGemini
	FamilyNemesis
	FamilyEMC
)

func (f Family) String() string {
	switch f {
	case FamilyCommanderI:
		return "COMMANDER_I"
	case FamilyCommanderII:
		return "COMMANDER_II"
	case FamilyCommanderIII:
		return "COMMANDER_III"
	case FamilyGemini:
		return "GEMINI"
	case FamilyNemesis:
		return "NEMESIS"
	case FamilyEMC:
		return "EMC"
	default:
		return "UNKNOWN"
	}
}

// LogSize is the fixed logbook header size in bytes for the family.
func (f Family) LogSize() int {
	switch f {
	case FamilyCommanderI:
		return 90
	case FamilyCommanderII, FamilyCommanderIII, FamilyGemini:
		return 256
	case FamilyNemesis:
		return 108
	case FamilyEMC:
		return 512
	default:
		return 0
	}
}

// SampleUnit is the byte stride the profile parser advances by after a
// non-event sample.
func (f Family) SampleUnit() int {
	switch f {
	case FamilyCommanderI:
		return 1
	case FamilyCommanderII, FamilyCommanderIII, FamilyGemini, FamilyNemesis:
		return 2
	case FamilyEMC:
		return 3
	default:
		return 0
	}
}

// HasInterDiveEvents reports whether the family's profile stream can open
// with inter-dive event records.
func (f Family) HasInterDiveEvents() bool {
	switch f {
	case FamilyCommanderII, FamilyCommanderIII, FamilyGemini, FamilyEMC:
		return true
	default:
		return false
	}
}

// ModelFamily maps the 3-digit ASCII model id extracted from the decoded
// header to the family controlling its logbook and profile layout.
var ModelFamily = map[string]Family{
	"017": FamilyCommanderI,  // Early Commander
	"120": FamilyCommanderI,  // Early Commander
	"124": FamilyCommanderI,  // Nemo
	"140": FamilyCommanderI,  // AquaNox
	"102": FamilyGemini,      // Early Gemini
	"114": FamilyNemesis,
	"213": FamilyCommanderII, // Pre-21000 Commander
	"215": FamilyCommanderIII,
	"216": FamilyCommanderIII,
	"221": FamilyCommanderIII,
	"300": FamilyEMC,
	"301": FamilyEMC,
	"315": FamilyEMC,
}

// LookupFamily resolves a 3-byte ASCII model id to its family.
func LookupFamily(model string) (Family, bool) {
	f, ok := ModelFamily[model]
	return f, ok
}

// Source epochs, in seconds, added to the raw on-device u32 timestamp.
const (
	// SourceEpoch is 1992-01-01 UTC as observed in the firmware, used by
	// every family except Nemesis.
	SourceEpoch int64 = 694242000
	// NemesisEpoch is Nemesis's alternate epoch offset.
	NemesisEpoch int64 = -2461431600
)

// Epoch returns the source epoch constant for the family.
func (f Family) Epoch() int64 {
	if f == FamilyNemesis {
		return NemesisEpoch
	}
	return SourceEpoch
}

// PointerAbsent is the sentinel pointer-table value (0xFF0000) marking a
// skipped/absent dive slot in Analyst-variant files.
const PointerAbsent = 0xFF0000

// BrokenDownTime is a decoded on-device wall-clock timestamp, reconstructed
// either from a packed epoch offset or from the family's split clock bytes.
type BrokenDownTime struct {
	Year   int // full year, e.g. 2019
	Month  int // 1-12
	Day    int
	Hour   int
	Minute int
	Second int
}

// BrokenDownFromEpoch converts a source-epoch-relative second count into a
// wall-clock breakdown (UTC; the device records local time with no zone of
// its own).
func BrokenDownFromEpoch(epochSeconds int64) BrokenDownTime {
	t := time.Unix(epochSeconds, 0).UTC()
	return BrokenDownTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}
