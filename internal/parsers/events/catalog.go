// Package events implements C8 (the event catalog) and C9 (inter-dive
// event sizing), both fixed tables keyed by event code.
package events

import "github.com/deploymenttheory/go-apfs/internal/interfaces"

const unknownEventDescription = "Unknown event"

// catalog is the fixed code→description table shared by every family.
var catalog = map[byte]string{
	0xA8: "Entered PDI mode",
	0xA9: "Exited PDI mode",
	0xAB: "Deco ceiling lowered",
	0xAD: "Deco ceiling raised",
	0xBD: "Switched to normal PO2 setting",
	0xC0: "Switched to FO2 21% mode",
	0xC1: "Ascent rate greater than limit",
	0xC2: "Low battery warning",
	0xC3: "CNS oxygen toxicity warning",
	0xC4: "Depth exceeds user set point",
	0xC5: "Entered decompression mode",
	0xC7: "Entered gauge mode",
	0xC8: "PO2 too high",
	0xCC: "Low cylinder 1 pressure",
	0xCD: "Switched to deco blend",
	0xCE: "Non-decompression warning",
	0xD0: "Breathing rate alarm",
	0xD3: "Low gas 1 flow rate",
	0xD6: "Depth is less than ceiling",
	0xD8: "End decompression mode",
	0xE1: "End ascent rate warning",
	0xE2: "Low SBAT battery warning",
	0xE3: "Switched to FO2 mode",
	0xE5: "Switched to PO2 mode",
	0xEE: "End non-decompression warning",
	0xEF: "Switch to blend 2",
	0xF0: "Breathing rate alarm",
	0xF3: "Switch to blend 1",
	0xF6: "End depth is less than ceiling",
}

// eventCatalog implements interfaces.EventCatalog.
type eventCatalog struct{}

// NewCatalog returns the C8 event catalog.
func NewCatalog() interfaces.EventCatalog {
	return eventCatalog{}
}

var _ interfaces.EventCatalog = eventCatalog{}

// Describe returns the event code's human-readable description, or the
// sentinel "Unknown event" string for codes outside the fixed table.
func (eventCatalog) Describe(code byte) string {
	if desc, ok := catalog[code]; ok {
		return desc
	}
	return unknownEventDescription
}
