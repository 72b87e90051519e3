// File: internal/interfaces/logbook.go
package interfaces

import "github.com/deploymenttheory/go-apfs/internal/types"

// LogbookParser parses the fixed-offset logbook header within a decrypted
// dive blob into a normalized Logbook, dispatched by family.
type LogbookParser interface {
	Parse(family types.Family, dive []byte, logOffset int) (*types.Logbook, error)
}
