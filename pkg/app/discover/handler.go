package discover

import (
	"fmt"
	"os"
	"time"

	"github.com/deploymenttheory/go-apfs/internal/services"
	"github.com/deploymenttheory/go-apfs/pkg/app"
)

// Handle validates the request, decodes just the container header (C3/C4),
// and reports what it found without walking any dives.
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx.Log(fmt.Sprintf("Discovering container at: %s", req.FilePath))
	ctx.Progress("Reading file...", 10)

	variant, err := resolveVariant(req)
	if err != nil {
		return nil, err
	}

	ciphertext, err := os.ReadFile(req.FilePath)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "cannot read file", err)
	}

	ctx.Progress("Decoding header...", 50)

	svc := services.NewDecodeService()
	image, err := svc.DecodeFile(variant, ciphertext)
	if err != nil {
		return nil, app.NewError(app.ErrCodeDecodeFailure, "header decode failed", err)
	}

	d := image.Descriptor
	response := &Response{
		FilePath:     req.FilePath,
		Variant:      d.Variant.String(),
		Format:       fmt.Sprintf("%#x", byte(d.Format)),
		Model:        d.Model,
		Family:       d.Family.String(),
		LogSize:      d.LogSize,
		PointerCount: d.PointerCount,
		SearchTime:   time.Since(startTime),
	}

	ctx.Progress("Complete", 100)
	ctx.Log(fmt.Sprintf("Discovery completed: %s/%s model %s in %v", response.Variant, response.Family, response.Model, response.SearchTime))

	return response, nil
}
