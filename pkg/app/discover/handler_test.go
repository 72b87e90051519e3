package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-apfs/pkg/app"
)

func TestHandle_RejectsInvalidRequest(t *testing.T) {
	ctx := app.NewContext()
	_, err := Handle(ctx, &Request{})
	require.Error(t, err)

	var appErr *app.CommonError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, app.ErrCodeInvalidInput, appErr.Code)
}

func TestHandle_ReportsDecodeFailureOnGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.can")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02, 0x03}, 0o644))

	ctx := app.NewContext()
	_, err := Handle(ctx, &Request{FilePath: path})
	require.Error(t, err)

	var appErr *app.CommonError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, app.ErrCodeDecodeFailure, appErr.Code)
}

func TestHandle_ReportsProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.can")
	require.NoError(t, os.WriteFile(path, []byte{0x01}, 0o644))

	ctx := app.NewContext()
	var messages []string
	ctx.SetProgress(func(msg string, _ int) { messages = append(messages, msg) })

	_, _ = Handle(ctx, &Request{FilePath: path})

	require.NotEmpty(t, messages)
	assert.Contains(t, messages, "Reading file...")
}
