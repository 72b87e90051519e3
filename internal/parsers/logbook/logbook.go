// Package logbook implements C6: the family-dispatched parse of a dive
// blob's fixed header region into a normalized Logbook record.
package logbook

import (
	"fmt"

	"github.com/deploymenttheory/go-apfs/internal/helpers"
	"github.com/deploymenttheory/go-apfs/internal/interfaces"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// parser implements interfaces.LogbookParser.
type parser struct{}

// New returns the C6 logbook parser.
func New() interfaces.LogbookParser {
	return parser{}
}

var _ interfaces.LogbookParser = parser{}

// Parse extracts the normalized logbook record from dive[logOffset:], using
// the family-specific field layout.
func (parser) Parse(family types.Family, dive []byte, logOffset int) (*types.Logbook, error) {
	region := helpers.Slice(dive, logOffset, len(dive))

	switch family {
	case types.FamilyCommanderI:
		return parseCommanderI(region), nil
	case types.FamilyCommanderII:
		return parseCommanderII(region), nil
	case types.FamilyCommanderIII, types.FamilyGemini:
		return parseCommanderIIIOrGemini(region), nil
	case types.FamilyNemesis:
		return parseNemesis(region), nil
	case types.FamilyEMC:
		return parseEMC(region), nil
	default:
		return nil, &types.DecodeError{Kind: types.ErrUnknownModel, Detail: fmt.Sprintf("family %s has no logbook parser", family)}
	}
}

// voltagePacked decodes the Cochran packed-voltage byte: high 3 bits are
// whole volts, low 5 bits are 32nds of a volt.
func voltagePacked(b byte) float64 {
	return float64(b>>5) + float64(b&0x1f)/32.0
}

// parseCommanderI covers models 017, 120, 124, 140 (90-byte log): alt
// sample format, ndl/deco-missed sharing one slot via a mux byte.
func parseCommanderI(in []byte) *types.Logbook {
	l := &types.Logbook{}

	l.ProfilePreOffset = helpers.U24LE(in, 0)
	l.StartEpoch = int64(helpers.U32LE(in, 15)) + types.FamilyCommanderI.Epoch()
	l.StartClock = types.BrokenDownFromEpoch(l.StartEpoch)

	l.RepetitiveDive = int(helpers.B8(in, 19))
	l.DiveNumber = int(helpers.U16LE(in, 20))
	l.SurfaceIntervalSec = int(helpers.U16LE(in, 24))
	l.VoltageStart = voltagePacked(helpers.B8(in, 32))

	l.BottomTimeSec = int(helpers.U16LE(in, 47))
	l.MaxDepthFt = float64(helpers.U16LE(in, 49)) / 4.0
	l.AvgDepthFt = float64(helpers.U16LE(in, 51)) / 4.0

	// @55 non-zero switches the @53 slot from NDL to deco-ceiling-missed.
	if helpers.B8(in, 55) != 0 {
		l.NDLMin = 0
	} else {
		l.NDLMin = int(helpers.U16LE(in, 53))
	}

	l.DecoMaxMin = int(helpers.U16LE(in, 57))
	l.AscentRateMaxFt = float64(helpers.B8(in, 59))

	l.ProfileIntervalSec = int(helpers.B8(in, 72))
	l.Conservatism = float64(helpers.B8(in, 73)) / 2.55

	l.Mixes[0].O2Percent = float64(helpers.U16LE(in, 74)) / 256.0

	l.MinTempF = float64(helpers.B8(in, 82))
	l.StartTempF = float64(helpers.B8(in, 83))
	l.VoltageEnd = voltagePacked(helpers.B8(in, 84))

	return l
}

// parseCommanderII covers model 213 (pre-21000 Commander): no split
// broken-down clock, epoch timestamp only.
func parseCommanderII(in []byte) *types.Logbook {
	l := &types.Logbook{}

	l.ProfileBeginOffset = helpers.U32LE(in, 0)
	// Two source variants disagree on whether the @8/@10 timestamp already
	// includes the epoch offset; @10+epoch is taken as canonical.
	l.StartEpoch = int64(helpers.U32LE(in, 10)) + types.FamilyCommanderII.Epoch()
	l.StartClock = types.BrokenDownFromEpoch(l.StartEpoch)

	l.ProfilePreOffset = helpers.U32LE(in, 28)
	l.StartTempF = float64(helpers.B8(in, 43))
	l.StartDepthFt = float64(helpers.U16LE(in, 54)) / 4.0
	l.DiveNumber = int(helpers.U16LE(in, 68))

	l.ProfileEndOffset = helpers.U32LE(in, 128)

	l.BottomTimeSec = int(helpers.U16LE(in, 166))
	l.MaxDepthFt = float64(helpers.U16LE(in, 168)) / 4.0
	l.AvgDepthFt = float64(helpers.U16LE(in, 170)) / 4.0

	l.Mixes[0].O2Percent = float64(helpers.U16LE(in, 210)) / 256.0
	l.Mixes[1].O2Percent = float64(helpers.U16LE(in, 212)) / 256.0

	l.MinTempF = float64(helpers.B8(in, 232))
	l.AvgTempF = float64(helpers.B8(in, 233))

	return l
}

// parseCommanderIIIOrGemini covers models 215, 216, 221 (post-21000
// Commander and the matching Gemini generation): split broken-down clock
// in the first six bytes.
func parseCommanderIIIOrGemini(in []byte) *types.Logbook {
	l := &types.Logbook{}

	l.StartClock = types.BrokenDownTime{
		Minute: int(helpers.B8(in, 0)),
		Second: int(helpers.B8(in, 1)),
		Day:    int(helpers.B8(in, 2)),
		Hour:   int(helpers.B8(in, 3)),
	}
	year := int(helpers.B8(in, 4))
	month := int(helpers.B8(in, 5))
	if year < 92 {
		l.StartClock.Year = 2000 + year
	} else {
		l.StartClock.Year = 1900 + year
	}
	l.StartClock.Month = month - 1

	l.ProfileBeginOffset = helpers.U32LE(in, 6)
	l.StartEpoch = int64(helpers.U32LE(in, 10)) + types.FamilyCommanderIII.Epoch()

	l.ProfilePreOffset = helpers.U32LE(in, 30)
	l.VoltageStart = float64(helpers.U16LE(in, 38)) / 256.0
	l.GasConsumptionStartPsi = float64(helpers.U16LE(in, 42)) / 2.0
	l.StartTempF = float64(helpers.B8(in, 45))
	l.StartDepthFt = float64(helpers.U16LE(in, 56)) / 4.0
	l.TankPressureStartPsi = int(helpers.U16LE(in, 62))
	l.SurfaceIntervalSec = int(helpers.U16LE(in, 68))
	l.DiveNumber = int(helpers.U16LE(in, 70))
	l.AlarmThresholds[0] = int(helpers.B8(in, 102))
	l.RepetitiveDive = int(helpers.B8(in, 108))
	copy(l.TissuesStart[:], helpers.Slice(in, 112, 128))

	l.ProfileEndOffset = helpers.U32LE(in, 128)
	l.MinTempF = float64(helpers.B8(in, 153))
	l.BottomTimeSec = int(helpers.U16LE(in, 166))
	l.MaxDepthFt = float64(helpers.U16LE(in, 168)) / 4.0
	l.AvgDepthFt = float64(helpers.U16LE(in, 170)) / 4.0

	l.Mixes[0].O2Percent = float64(helpers.U16LE(in, 210)) / 256.0
	l.Mixes[1].O2Percent = float64(helpers.U16LE(in, 212)) / 256.0
	l.Mixes[2].O2Percent = float64(helpers.U16LE(in, 214)) / 256.0

	l.ProfileIntervalSec = int(helpers.B8(in, 237))
	copy(l.TissuesEnd[:], helpers.Slice(in, 240, 256))

	return l
}

// parseNemesis covers model 114: alternate epoch, its own packed-voltage
// fields, and an 108-byte log.
func parseNemesis(in []byte) *types.Logbook {
	l := &types.Logbook{}

	l.ProfileBeginOffset = helpers.U24LE(in, 0)
	copy(l.TissuesStart[:12], helpers.Slice(in, 3, 15))

	l.StartEpoch = int64(helpers.U32LE(in, 15)) + types.FamilyNemesis.Epoch()
	l.StartClock = types.BrokenDownFromEpoch(l.StartEpoch)

	l.RepetitiveDive = int(helpers.B8(in, 19))
	l.DiveNumber = int(helpers.U16LE(in, 20))

	l.TankPressureStartPsi = int(helpers.U16LE(in, 26))
	l.VoltageStart = voltagePacked(helpers.B8(in, 39))

	l.BottomTimeSec = int(helpers.U16LE(in, 54))
	l.MaxDepthFt = float64(helpers.U16LE(in, 56)) / 4.0
	l.AvgDepthFt = float64(helpers.U16LE(in, 51)) / 4.0
	l.NDLMin = int(helpers.U16LE(in, 64))
	l.DecoMaxMin = int(helpers.B8(in, 68))
	l.AscentRateMaxFt = float64(helpers.B8(in, 67))

	l.ProfileIntervalSec = int(helpers.B8(in, 84))
	l.Conservatism = float64(helpers.B8(in, 85)) / 2.55
	l.Mixes[0].O2Percent = float64(helpers.U16LE(in, 86)) / 256.0
	l.Mixes[1].O2Percent = float64(helpers.U16LE(in, 88)) / 256.0

	l.VoltageEnd = voltagePacked(helpers.B8(in, 92))
	l.AvgTempF = float64(helpers.B8(in, 95))
	l.MinTempF = float64(helpers.B8(in, 96))
	l.StartTempF = float64(helpers.B8(in, 97))

	return l
}

// parseEMC covers models 300, 301, 315: split broken-down clock, three gas
// mixes with He, the 40-byte tissue snapshot.
func parseEMC(in []byte) *types.Logbook {
	l := &types.Logbook{}

	l.StartClock = types.BrokenDownTime{
		Second: int(helpers.B8(in, 0)),
		Minute: int(helpers.B8(in, 1)),
		Hour:   int(helpers.B8(in, 2)),
		Day:    int(helpers.B8(in, 3)),
	}
	year := int(helpers.B8(in, 5))
	if year < 92 {
		l.StartClock.Year = 2000 + year
	} else {
		l.StartClock.Year = 1900 + year
	}
	l.StartClock.Month = int(helpers.B8(in, 4)) - 1

	l.ProfileBeginOffset = helpers.U32LE(in, 6)
	l.StartEpoch = int64(helpers.U32LE(in, 10)) + types.FamilyEMC.Epoch()

	l.ProfilePreOffset = helpers.U32LE(in, 30)
	l.StartDepthFt = float64(helpers.U16LE(in, 42)) / 256.0
	l.VoltageStart = float64(helpers.U16LE(in, 46)) / 256.0
	l.StartTempF = float64(helpers.B8(in, 55))
	l.SurfaceIntervalSec = int(helpers.U16LE(in, 84))
	l.DiveNumber = int(helpers.U16LE(in, 86))

	l.AlarmThresholds[0] = int(float64(helpers.U16LE(in, 142)) / 256.0)
	for i := 0; i < 3; i++ {
		l.Mixes[i].O2Percent = float64(helpers.U16LE(in, 144+i*2)) / 256.0
		l.Mixes[i].HePercent = float64(helpers.U16LE(in, 164+i*2)) / 256.0
	}
	l.AlarmThresholds[1] = int(helpers.U16LE(in, 184))
	l.Conservatism = float64(helpers.B8(in, 200)) / 2.55
	l.RepetitiveDive = int(helpers.B8(in, 203))
	copy(l.TissuesStart[:], helpers.Slice(in, 216, 256))

	l.ProfileEndOffset = helpers.U32LE(in, 256)
	l.MinTempF = float64(helpers.B8(in, 283))
	l.BottomTimeSec = int(helpers.U16LE(in, 304))
	l.MaxDepthFt = float64(helpers.U16LE(in, 306)) / 4.0
	l.AvgDepthFt = float64(helpers.U16LE(in, 310)) / 4.0
	l.NDLMin = int(helpers.U16LE(in, 312))
	l.DecoMaxMin = int(helpers.U16LE(in, 316))
	l.AscentRateMaxFt = float64(helpers.B8(in, 334))
	l.VoltageEnd = float64(helpers.U16LE(in, 394)) / 256.0
	l.ProfileIntervalSec = int(helpers.B8(in, 435))
	copy(l.TissuesEnd[:], helpers.Slice(in, 216, 256))

	return l
}
