package events

import (
	"github.com/deploymenttheory/go-apfs/internal/interfaces"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// cmdrInterDiveBytes is the Commander-II/III/Gemini inter-dive code→payload
// size table (bytes following the code byte itself).
var cmdrInterDiveBytes = map[byte]int{
	0x00: 16, 0x01: 20, 0x02: 17, 0x03: 16,
	0x06: 18, 0x07: 18, 0x08: 18, 0x09: 18, 0x0a: 18,
	0x0b: 18, 0x0c: 18, 0x0d: 18, 0x0e: 18,
	0x10: 20,
}

// emcInterDiveBytes is the EMC inter-dive code→payload size table.
var emcInterDiveBytes = map[byte]int{
	0x00: 18, 0x01: 22, 0x02: 19, 0x03: 18,
	0x06: 20, 0x07: 20, 0x0a: 20, 0x0b: 20,
	0x0f: 18, 0x10: 20,
}

// interDiveSizer implements interfaces.InterDiveSizer.
type interDiveSizer struct{}

// NewInterDiveSizer returns the C9 family-keyed inter-dive sizing table.
func NewInterDiveSizer() interfaces.InterDiveSizer {
	return interDiveSizer{}
}

var _ interfaces.InterDiveSizer = interDiveSizer{}

// Size returns the inter-dive record's total length in bytes, including
// its leading code byte. 0 means the code is unrecognized (or the family
// has no inter-dive events), signaling the preamble has ended.
func (interDiveSizer) Size(family types.Family, code byte) int {
	var table map[byte]int
	switch family {
	case types.FamilyCommanderII, types.FamilyCommanderIII, types.FamilyGemini:
		table = cmdrInterDiveBytes
	case types.FamilyEMC:
		table = emcInterDiveBytes
	default:
		return 0
	}

	payload, ok := table[code]
	if !ok {
		return 0
	}
	return payload + 1
}
