// Package profile implements C7: the family-dispatched state-machine walk
// of a dive's decrypted sample stream, emitting a typed sample sequence.
package profile

import (
	"github.com/deploymenttheory/go-apfs/internal/helpers"
	"github.com/deploymenttheory/go-apfs/internal/interfaces"
	"github.com/deploymenttheory/go-apfs/internal/parsers/events"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

const (
	sentinelDiveStart byte = 0x40
	eventBit          byte = 0x80
)

// parser implements interfaces.ProfileParser.
type parser struct {
	catalog interfaces.EventCatalog
	sizer   interfaces.InterDiveSizer
}

// New returns the C7 profile parser, wired to the C8 event catalog and C9
// inter-dive sizing table.
func New() interfaces.ProfileParser {
	return &parser{catalog: events.NewCatalog(), sizer: events.NewInterDiveSizer()}
}

var _ interfaces.ProfileParser = (*parser)(nil)

// Parse dispatches to the family's sample-stream walk and always finishes
// with one SampleEndOfStream callback, per the streaming consumer contract.
func (p *parser) Parse(family types.Family, log *types.Logbook, samples []byte, callback types.SampleCallback) error {
	var err error
	switch family {
	case types.FamilyCommanderI:
		err = p.parseUnitOne(log, samples, callback)
	case types.FamilyCommanderII, types.FamilyCommanderIII, types.FamilyNemesis:
		err = p.parseTwoByte(family, log, samples, callback)
	case types.FamilyGemini:
		err = p.parseGemini(log, samples, callback)
	case types.FamilyEMC:
		err = p.parseEMC(log, samples, callback)
	default:
		err = types.NewDecodeError(types.ErrUnknownModel, "family %s has no profile parser", family)
	}
	if err != nil {
		return err
	}
	return callback(0, types.Sample{Kind: types.SampleEndOfStream})
}

// emit is a small helper so every call site shares the timestamp math:
// sample index times the logbook's profile interval, in seconds.
func emit(callback types.SampleCallback, log *types.Logbook, sampleIdx int, s types.Sample) error {
	s.SampleIdx = sampleIdx
	s.TimeSec = sampleIdx * log.ProfileIntervalSec
	return callback(s.TimeSec, s)
}

// consumeInterDivePreamble walks zero or more inter-dive event records from
// the front of the stream: any run of bytes with bit 0x80 clear and not
// equal to the dive-start sentinel. Each record's length comes from the C9
// sizing table; a 0 result (unrecognized code) ends the preamble even if
// the sentinel byte hasn't been seen yet.
func (p *parser) consumeInterDivePreamble(family types.Family, epoch int64, samples []byte, callback types.SampleCallback) (int, error) {
	offset := 0
	for offset < len(samples) {
		code := samples[offset]
		if code&eventBit != 0 || code == sentinelDiveStart {
			break
		}

		size := p.sizer.Size(family, code)
		if size == 0 {
			break
		}
		if offset+size > len(samples) {
			break
		}

		if size >= 6 {
			rec := samples[offset : offset+size]
			t := epoch + int64(helpers.U32LE(rec, 1))
			info := types.InterDiveInfo{
				Code:    code,
				At:      types.BrokenDownFromEpoch(t),
				Payload: append([]byte(nil), rec[5:]...),
			}
			if err := callback(0, types.Sample{Kind: types.SampleInterDive, RawBytes: rec, InterDive: info}); err != nil {
				return 0, err
			}
		}

		offset += size
	}
	return offset, nil
}

// deltaDepthFt decodes a delta-depth byte: bit 0x40 is sign, remaining bits
// are magnitude in the given unit (half-foot for unit 1/Nemesis, quarter
// foot otherwise).
func deltaDepthFt(b byte, quarterFoot bool) float64 {
	mag := float64(b & 0x3f)
	if !quarterFoot {
		mag /= 2.0
	} else {
		mag /= 4.0
	}
	if b&0x40 != 0 {
		return -mag
	}
	return mag
}

// parseUnitOne implements COMMANDER_I's 1-byte sample stream: no inter-dive
// preamble, initial temp/depth taken from the stream's own first two
// bytes, and a combined event/temp-delta dispatch on the high bit.
func (p *parser) parseUnitOne(log *types.Logbook, samples []byte, callback types.SampleCallback) error {
	if len(samples) < 2 {
		return nil
	}

	offset := 0
	temp := float64(samples[offset]) / 2.0
	offset++
	depth := float64(samples[offset]) / 2.0
	offset++

	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleDepth, Value: depth, RawBytes: samples[1:2]}); err != nil {
		return err
	}
	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleTemp, Value: temp, RawBytes: samples[0:1]}); err != nil {
		return err
	}

	sampleIdx := 0
	var decoCeiling float64
	var decoTime int

	for offset < len(samples) {
		b := samples[offset]
		raw := samples[offset : offset+1]

		switch {
		case b&eventBit != 0 && b&0x60 != 0:
			desc := p.catalog.Describe(b)
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleEvent, RawBytes: raw, Event: types.EventInfo{Code: b, Description: desc}}); err != nil {
				return err
			}

			switch b {
			case 0xAB:
				decoCeiling += 10
			case 0xAD:
				decoCeiling -= 10
			case 0xC5:
				decoTime = 1
			case 0xC8, 0xDB:
				decoTime = 0
			default:
				offset++
				continue
			}

			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDeco, RawBytes: raw, Deco: types.DecoInfo{CeilingFt: decoCeiling, TimeMin: decoTime}}); err != nil {
				return err
			}

		case b&eventBit != 0:
			if b&0x10 != 0 {
				temp -= float64(b&0x0f) / 2.0
			} else {
				temp += float64(b&0x0f) / 2.0
			}
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleTemp, Value: temp, RawBytes: raw}); err != nil {
				return err
			}

		default:
			depth += deltaDepthFt(b, false)
			sampleIdx++
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDepth, Value: depth, RawBytes: raw}); err != nil {
				return err
			}
		}

		offset++
	}

	return nil
}

// parseTwoByte implements the COMMANDER_II/COMMANDER_III/NEMESIS 2-byte
// sample stream: depth + a 2-way (ascent-rate, temp) rotation on the
// second byte. Only COMMANDER_II/III open with an inter-dive preamble.
func (p *parser) parseTwoByte(family types.Family, log *types.Logbook, samples []byte, callback types.SampleCallback) error {
	offset := 0
	if family.HasInterDiveEvents() {
		n, err := p.consumeInterDivePreamble(family, family.Epoch(), samples, callback)
		if err != nil {
			return err
		}
		offset = n
	}

	depth := log.StartDepthFt
	temp := log.StartTempF

	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleDepth, Value: depth}); err != nil {
		return err
	}
	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleTemp, Value: temp}); err != nil {
		return err
	}

	sampleIdx := 0
	var decoCeiling float64
	var decoTime int

	for offset < len(samples) {
		b := samples[offset]

		if b&eventBit != 0 {
			raw := samples[offset : offset+1]
			desc := p.catalog.Describe(b)
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleEvent, RawBytes: raw, Event: types.EventInfo{Code: b, Description: desc}}); err != nil {
				return err
			}

			switch b {
			case 0xAB:
				decoCeiling += 10
			case 0xAD:
				decoCeiling -= 10
			case 0xC5:
				decoTime = 1
			case 0xC8, 0xDB:
				decoTime = 0
			default:
				offset++
				continue
			}

			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDeco, RawBytes: raw, Deco: types.DecoInfo{CeilingFt: decoCeiling, TimeMin: decoTime}}); err != nil {
				return err
			}

			offset++
			continue
		}

		if offset+2 > len(samples) {
			break
		}
		raw := samples[offset : offset+2]

		sampleIdx++
		depth += deltaDepthFt(b, family != types.FamilyNemesis)
		if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDepth, Value: depth, RawBytes: raw}); err != nil {
			return err
		}

		second := raw[1]
		if (sampleIdx-1)%2 == 0 {
			rate := float64(second&0x7f) / 4.0
			if second&0x80 == 0 {
				rate = -rate
			}
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleAscentRate, Value: rate, RawBytes: raw}); err != nil {
				return err
			}
		} else {
			temp = float64(second&0x7f)/2.0 + 20
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleTemp, Value: temp, RawBytes: raw}); err != nil {
				return err
			}
		}

		offset += 2
	}

	return nil
}

// parseGemini implements GEMINI's 2-byte stream with a 4-way second-byte
// rotation (ascent rate, gas consumption, tank pressure, temp) and a
// DECO_FIRST_STOP/DECO payload read on deco-ceiling events.
func (p *parser) parseGemini(log *types.Logbook, samples []byte, callback types.SampleCallback) error {
	offset, err := p.consumeInterDivePreamble(types.FamilyGemini, types.FamilyGemini.Epoch(), samples, callback)
	if err != nil {
		return err
	}

	depth := log.StartDepthFt
	temp := log.StartTempF
	tankPressure := float64(log.TankPressureStartPsi)
	var gasConsumption, decoCeiling float64

	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleDepth, Value: depth}); err != nil {
		return err
	}
	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleTemp, Value: temp}); err != nil {
		return err
	}
	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleTankPressure, Value: tankPressure}); err != nil {
		return err
	}

	sampleIdx := 0

	for offset < len(samples) {
		b := samples[offset]

		if b&eventBit != 0 {
			raw := samples[offset : offset+1]
			desc := p.catalog.Describe(b)
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleEvent, RawBytes: raw, Event: types.EventInfo{Code: b, Description: desc}}); err != nil {
				return err
			}

			switch b {
			case 0xAB, 0xAD:
				if b == 0xAB {
					decoCeiling += 10
				} else {
					decoCeiling -= 10
				}
				if offset+4 < len(samples) {
					payload := samples[offset : offset+5]
					firstStop := int(helpers.U16LE(payload, 1)) + 1
					total := int(helpers.U16LE(payload, 3)) + 1
					if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDecoFirstStop, RawBytes: payload, Deco: types.DecoInfo{CeilingFt: decoCeiling, TimeMin: firstStop}}); err != nil {
						return err
					}
					if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDeco, RawBytes: payload, Deco: types.DecoInfo{CeilingFt: decoCeiling, TimeMin: total}}); err != nil {
						return err
					}
				}
				offset += 4
			case 0xC5, 0xC8, 0xDB:
				// deco-obligation flag only; no extra state carried by Gemini's rotation.
			default:
				offset++
				continue
			}

			offset++
			continue
		}

		if offset+2 > len(samples) {
			break
		}
		raw := samples[offset : offset+2]

		sampleIdx++
		depth += deltaDepthFt(b, true)
		if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDepth, Value: depth, RawBytes: raw}); err != nil {
			return err
		}

		second := raw[1]
		switch (sampleIdx - 1) % 4 {
		case 0:
			rate := float64(second&0x7f) / 4.0
			if second&0x80 == 0 {
				rate = -rate
			}
			err = emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleAscentRate, Value: rate, RawBytes: raw})
		case 1:
			delta := float64(second&0x7f) / 4.0
			if second&0x80 != 0 {
				delta = -delta
			}
			gasConsumption += delta
			err = emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleGasConsumptionRate, Value: gasConsumption, RawBytes: raw})
		case 2:
			delta := float64(second&0x7f) / 4.0
			if second&0x80 != 0 {
				delta = -delta
			}
			tankPressure += delta
			err = emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleTankPressure, Value: tankPressure, RawBytes: raw})
		case 3:
			temp = float64(second&0x7f)/2.0 + 20
			err = emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleTemp, Value: temp, RawBytes: raw})
		}
		if err != nil {
			return err
		}

		offset += 2
	}

	return nil
}

// parseEMC implements EMC's 3-byte stream: a 2-way second-byte rotation
// (ascent rate, temp) plus a mod-24 third-byte sub-stream carrying
// tissues, NDL and deco times.
func (p *parser) parseEMC(log *types.Logbook, samples []byte, callback types.SampleCallback) error {
	offset, err := p.consumeInterDivePreamble(types.FamilyEMC, types.FamilyEMC.Epoch(), samples, callback)
	if err != nil {
		return err
	}

	depth := log.StartDepthFt
	temp := log.StartTempF
	var decoCeiling float64
	var decoFlag bool

	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleDepth, Value: depth}); err != nil {
		return err
	}
	if err := emit(callback, log, 0, types.Sample{Kind: types.SampleTemp, Value: temp}); err != nil {
		return err
	}

	sampleIdx := 0

	for offset < len(samples) {
		b := samples[offset]

		if b&eventBit != 0 {
			raw := samples[offset : offset+1]
			desc := p.catalog.Describe(b)
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleEvent, RawBytes: raw, Event: types.EventInfo{Code: b, Description: desc}}); err != nil {
				return err
			}

			switch b {
			case 0xAB, 0xAD:
				if b == 0xAB {
					decoCeiling += 10
				} else {
					decoCeiling -= 10
				}
				if offset+4 < len(samples) {
					payload := samples[offset : offset+5]
					firstStop := int(helpers.U16LE(payload, 1)) + 1
					total := int(helpers.U16LE(payload, 3)) + 1
					if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDecoFirstStop, RawBytes: payload, Deco: types.DecoInfo{CeilingFt: decoCeiling, TimeMin: firstStop}}); err != nil {
						return err
					}
					if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDeco, RawBytes: payload, Deco: types.DecoInfo{CeilingFt: decoCeiling, TimeMin: total}}); err != nil {
						return err
					}
				}
				offset += 4
			case 0xC5:
				decoFlag = true
			case 0xC8, 0xDB:
				decoFlag = false
			default:
				offset++
				continue
			}

			offset++
			continue
		}

		if offset+3 > len(samples) {
			break
		}
		raw := samples[offset : offset+3]

		sampleIdx++
		depth += deltaDepthFt(b, true)
		if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDepth, Value: depth, RawBytes: raw}); err != nil {
			return err
		}

		switch (sampleIdx - 1) % 2 {
		case 0:
			rate := float64(raw[1]&0x7f) / 4.0
			if raw[1]&0x80 == 0 {
				rate = -rate
			}
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleAscentRate, Value: rate, RawBytes: raw}); err != nil {
				return err
			}
		case 1:
			temp = float64(raw[1]&0x7f)/2.0 + 20
			if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleTemp, Value: temp, RawBytes: raw}); err != nil {
				return err
			}
		}

		if err := p.emcThirdByteSubStream(log, samples, offset, sampleIdx, decoFlag, decoCeiling, callback); err != nil {
			return err
		}

		offset += 3
	}

	return nil
}

// emcThirdByteSubStream decodes the mod-24 rotation carried by the third
// byte of every EMC sample: tissues at mod 19 (which falls through into
// the mod-20 NDL/deco-first-stop action on the same sample, mirroring the
// source's missing-break behavior), and total stop time at mod 22.
func (p *parser) emcThirdByteSubStream(log *types.Logbook, samples []byte, offset, sampleIdx int, decoFlag bool, decoCeiling float64, callback types.SampleCallback) error {
	const sampleUnit = 3
	mod := (sampleIdx - 1) % 24
	raw := samples[offset : offset+3]

	if mod == 19 {
		var tissues [20]byte
		for i := 0; i < 20; i++ {
			srcOffset := offset + 2 - (19-i)*sampleUnit
			tissues[i] = helpers.B8(samples, srcOffset)
		}
		if err := emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleTissues, RawBytes: raw, Tissues: tissues}); err != nil {
			return err
		}
	}

	if mod == 19 || mod == 20 {
		if offset+6 > len(samples) {
			return nil
		}
		value := int(samples[offset+2]) + int(samples[offset+5])<<8 + 1
		if decoFlag {
			return emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDecoFirstStop, RawBytes: raw, Deco: types.DecoInfo{CeilingFt: decoCeiling, TimeMin: value}})
		}
		return emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleNDL, RawBytes: raw, Value: float64(value)})
	}

	if mod == 22 && decoFlag {
		if offset+6 > len(samples) {
			return nil
		}
		value := int(samples[offset+2]) + int(samples[offset+5])<<8 + 1
		return emit(callback, log, sampleIdx, types.Sample{Kind: types.SampleDeco, RawBytes: raw, Deco: types.DecoInfo{TimeMin: value}})
	}

	return nil
}
