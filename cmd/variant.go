package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// variantFromFlagOrPath resolves an explicit --variant flag, or guesses the
// container variant from the file's extension when the flag is empty.
func variantFromFlagOrPath(flag, path string) (types.FileVariant, error) {
	s := flag
	if s == "" {
		s = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch strings.ToLower(s) {
	case "can":
		return types.FileVariantCAN, nil
	case "wan":
		return types.FileVariantWAN, nil
	case "ana":
		return types.FileVariantANA, nil
	default:
		return 0, fmt.Errorf("unknown container variant %q (want can, wan, or ana)", s)
	}
}
