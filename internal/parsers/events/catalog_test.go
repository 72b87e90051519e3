package events

import "testing"

func TestDescribe_Known(t *testing.T) {
	c := NewCatalog()
	if got := c.Describe(0xC5); got != "Entered decompression mode" {
		t.Errorf("Describe(0xC5) = %q", got)
	}
}

func TestDescribe_Unknown(t *testing.T) {
	c := NewCatalog()
	if got := c.Describe(0x01); got != unknownEventDescription {
		t.Errorf("Describe(0x01) = %q, want sentinel", got)
	}
}
