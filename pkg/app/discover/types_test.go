package discover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponse_Structure(t *testing.T) {
	response := Response{
		FilePath:     "/dives/log.can",
		Variant:      "CAN",
		Format:       "0x43",
		Model:        "Commander I",
		Family:       "commander-i",
		LogSize:      4096,
		PointerCount: 128,
		SearchTime:   42 * time.Millisecond,
	}

	assert.Equal(t, "/dives/log.can", response.FilePath)
	assert.Equal(t, "CAN", response.Variant)
	assert.Equal(t, "0x43", response.Format)
	assert.Equal(t, "Commander I", response.Model)
	assert.Equal(t, "commander-i", response.Family)
	assert.Equal(t, 4096, response.LogSize)
	assert.Equal(t, 128, response.PointerCount)
	assert.Equal(t, 42*time.Millisecond, response.SearchTime)
}

func TestRequest_Structure(t *testing.T) {
	req := Request{FilePath: "/dives/log.wan", Variant: "wan"}
	assert.Equal(t, "/dives/log.wan", req.FilePath)
	assert.Equal(t, "wan", req.Variant)
}
