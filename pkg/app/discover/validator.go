package discover

import (
	"os"
	"strings"

	"github.com/deploymenttheory/go-apfs/internal/types"
	"github.com/deploymenttheory/go-apfs/pkg/app"
)

// Validate checks the request is well-formed and the file is readable,
// before any decoding is attempted.
func (r *Request) Validate() error {
	if r.FilePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "file path is required", nil)
	}
	if _, err := os.Stat(r.FilePath); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "cannot access file", err)
	}
	if r.Variant != "" {
		if _, err := variantFromString(r.Variant); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid variant", err)
		}
	}
	return nil
}

// variantFromString maps a CLI/extension string to a types.FileVariant.
func variantFromString(s string) (types.FileVariant, error) {
	switch strings.ToLower(s) {
	case "can":
		return types.FileVariantCAN, nil
	case "wan":
		return types.FileVariantWAN, nil
	case "ana":
		return types.FileVariantANA, nil
	default:
		return 0, app.NewError(app.ErrCodeInvalidInput, "unknown variant "+s+" (want can, wan, or ana)", nil)
	}
}

// resolveVariant returns the request's explicit variant, or guesses one
// from the file's extension.
func resolveVariant(r *Request) (types.FileVariant, error) {
	if r.Variant != "" {
		return variantFromString(r.Variant)
	}
	ext := strings.ToLower(strings.TrimPrefix(fileExt(r.FilePath), "."))
	return variantFromString(ext)
}

func fileExt(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
