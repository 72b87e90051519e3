package types

// GasMix is one of the up to three O2/He fraction pairs recorded for a dive.
type GasMix struct {
	O2Percent float64
	HePercent float64
}

// Logbook is the normalized, family-independent view of a dive's fixed
// header region. Every family's parser produces one of these; the source
// byte layout and scaling are family-specific and live in the logbook
// parser, not here.
type Logbook struct {
	DiveNumber     int
	RepetitiveDive int

	StartClock BrokenDownTime
	StartEpoch int64 // seconds since Unix epoch

	SurfaceIntervalSec int
	BottomTimeSec       int

	MaxDepthFt   float64
	AvgDepthFt   float64
	StartDepthFt float64

	MinTempF   float64
	AvgTempF   float64
	StartTempF float64

	TankPressureStartPsi   int
	GasConsumptionStartPsi float64 // psi/min

	Mixes [3]GasMix

	ProfilePreOffset   uint32
	ProfileBeginOffset uint32
	ProfileEndOffset   uint32

	VoltageStart float64
	VoltageEnd   float64

	NDLMin          int
	DecoMaxMin      int
	AscentRateMaxFt float64

	AlarmThresholds [4]int
	Conservatism    float64

	ProfileIntervalSec int

	// Opaque 40-byte tissue-saturation snapshots. The core never
	// interprets these; it only carries them through.
	TissuesStart [40]byte
	TissuesEnd   [40]byte
}

// EffectiveSampleLength returns the number of profile bytes the parser
// should walk, applying the sentinel fallbacks from the spec: a
// profile_end of 0 or 0xFFFFFFFF (or a corrupt/negative span) means "use
// the whole remaining slice".
func (l *Logbook) EffectiveSampleLength(diveSize, profileOffset int) int {
	remaining := diveSize - profileOffset
	if remaining < 0 {
		remaining = 0
	}
	if l.ProfileEndOffset == 0 || l.ProfileEndOffset == 0xFFFFFFFF {
		return remaining
	}
	span := int(l.ProfileEndOffset) - int(l.ProfilePreOffset)
	if span < 0 || span > remaining {
		return remaining
	}
	if span < remaining {
		return span
	}
	return remaining
}
