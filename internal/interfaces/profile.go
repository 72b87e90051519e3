// File: internal/interfaces/profile.go
package interfaces

import "github.com/deploymenttheory/go-apfs/internal/types"

// ProfileParser walks a dive's variable-length sample stream and emits a
// typed, time-ordered sample sequence via callback, dispatched by family.
type ProfileParser interface {
	Parse(family types.Family, log *types.Logbook, samples []byte, callback types.SampleCallback) error
}

// EventCatalog maps single-byte event codes to human descriptions.
type EventCatalog interface {
	Describe(code byte) string
}

// InterDiveSizer maps a family and inter-dive event code to the record's
// total length in bytes, including the code byte itself. A result of 0
// means the code is unrecognized and the inter-dive preamble has ended.
type InterDiveSizer interface {
	Size(family types.Family, code byte) int
}
