// Package services wires the container, logbook and profile decoders (C4-C9)
// behind the two calls a caller actually needs: decode a file once, then walk
// its dives.
package services

import (
	"github.com/deploymenttheory/go-apfs/internal/interfaces"
	"github.com/deploymenttheory/go-apfs/internal/parsers/container"
	"github.com/deploymenttheory/go-apfs/internal/parsers/logbook"
	"github.com/deploymenttheory/go-apfs/internal/parsers/profile"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// Image is the result of decoding a container file: the full plaintext byte
// image plus the descriptor C3/C4 derived from it.
type Image struct {
	Plaintext  []byte
	Descriptor *types.ContainerDescriptor
}

// DiveHandler receives one dive's normalized logbook and its raw sample
// bytes. isInterDiveTail dives carry no logbook (nil) and no samples.
type DiveHandler func(index int, logbook *types.Logbook, sampleBytes []byte, isInterDiveTail bool) error

// DecodeService is the C10 façade: DecodeFile runs C4 (header decrypt) and
// C3 (descriptor derivation), ForEachDive runs C5 (dive iteration) and, for
// every live dive, C6 (logbook parse) ahead of handing the caller the raw
// sample bytes to run C7 over themselves (or not, if they only want the
// logbook).
type DecodeService struct {
	header  interfaces.HeaderDecoder
	dives   interfaces.DiveIterator
	logbook interfaces.LogbookParser
}

// NewDecodeService wires the C4/C5/C6 decoders together.
func NewDecodeService() *DecodeService {
	return &DecodeService{
		header:  container.NewHeaderDecoder(),
		dives:   container.NewDiveIterator(),
		logbook: logbook.New(),
	}
}

// DecodeFile decrypts the header and derives the container descriptor. It
// does not walk dives; call ForEachDive for that.
func (s *DecodeService) DecodeFile(variant types.FileVariant, ciphertext []byte) (*Image, error) {
	plaintext, descriptor, err := s.header.DecodeHeader(variant, ciphertext)
	if err != nil {
		return nil, err
	}
	scrubKey(plaintext, descriptor)
	return &Image{Plaintext: plaintext, Descriptor: descriptor}, nil
}

// scrubKey zeroes the 256-byte key region in the plaintext image after
// decryption (spec's key-scrub invariant: a deliberate scrub, not a
// security guarantee, since the key is already visible to anyone who
// decoded this far).
func scrubKey(plaintext []byte, descriptor *types.ContainerDescriptor) {
	start := descriptor.HeaderOffset + 1
	end := start + 256
	if end > len(plaintext) {
		end = len(plaintext)
	}
	for i := start; i < end && i >= 0; i++ {
		plaintext[i] = 0
	}
}

// ForEachDive walks every dive in the decoded image, parsing each live
// dive's logbook and handing the handler the dive's raw sample-stream
// bytes (sliced to the logbook's effective sample length). The
// inter-dive tail, if present, is handed to the callback with a nil
// logbook and nil sample bytes.
func (s *DecodeService) ForEachDive(image *Image, handler DiveHandler) error {
	d := image.Descriptor
	return s.dives.ForEachDive(image.Plaintext, d, func(_ *types.ContainerDescriptor, dive []byte, index int, isTail bool) error {
		if isTail {
			return handler(index, nil, nil, true)
		}

		log, err := s.logbook.Parse(d.Family, dive, d.LogOffset)
		if err != nil {
			return err
		}

		length := log.EffectiveSampleLength(len(dive), d.ProfileOffset)
		end := d.ProfileOffset + length
		if end > len(dive) {
			end = len(dive)
		}
		start := d.ProfileOffset
		if start > end {
			start = end
		}

		return handler(index, log, dive[start:end], false)
	})
}

// ParseSamples runs C7 over a dive's raw sample bytes, invoking callback for
// every emitted sample plus a final end-of-stream sentinel.
func (s *DecodeService) ParseSamples(family types.Family, log *types.Logbook, sampleBytes []byte, callback types.SampleCallback) error {
	return profile.New().Parse(family, log, sampleBytes, callback)
}
