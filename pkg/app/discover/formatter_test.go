package discover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleResponse() *Response {
	return &Response{
		FilePath:     "/dives/log.can",
		Variant:      "CAN",
		Format:       "0x43",
		Model:        "Commander I",
		Family:       "commander-i",
		LogSize:      4096,
		PointerCount: 128,
		SearchTime:   10 * time.Millisecond,
	}
}

func TestFormatOutput_Table(t *testing.T) {
	err := FormatOutput(sampleResponse(), "table")
	assert.NoError(t, err)
}

func TestFormatOutput_JSON(t *testing.T) {
	err := FormatOutput(sampleResponse(), "json")
	assert.NoError(t, err)
}

func TestFormatOutput_YAML(t *testing.T) {
	err := FormatOutput(sampleResponse(), "yaml")
	assert.NoError(t, err)
}

func TestFormatOutput_UnsupportedFormat(t *testing.T) {
	err := FormatOutput(sampleResponse(), "xml")
	assert.Error(t, err)
}
