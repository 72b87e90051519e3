package cmd

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-apfs/internal/cache"
	"github.com/deploymenttheory/go-apfs/internal/parsers/container"
	"github.com/deploymenttheory/go-apfs/internal/services"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

// decodeWithCache decodes containerPath's header, reusing the plaintext
// cache when a prior run already decoded this exact ciphertext. On a cache
// hit it re-derives the descriptor straight from the cached plaintext
// (container.NewDescriptorBuilder) instead of re-running the cipher over
// the header region. The cached image has its key region scrubbed, so the
// key is read from the ciphertext, where it is stored unencrypted.
func decodeWithCache(containerPath string, variant types.FileVariant) (*services.Image, string, error) {
	ciphertext, err := os.ReadFile(containerPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", containerPath, err)
	}

	digest := cache.Digest(ciphertext)

	store, err := cache.Open(GetConfig().CacheDir)
	if err != nil {
		return nil, "", fmt.Errorf("opening plaintext cache: %w", err)
	}

	if plaintext, ok, err := store.Get(digest); err == nil && ok {
		descriptor, err := container.NewDescriptorBuilder().Build(variant, plaintext)
		if err == nil {
			var params *types.ContainerDescriptor
			if params, err = container.CipherParams(variant, ciphertext); err == nil {
				descriptor.Key = params.Key
				return &services.Image{Plaintext: plaintext, Descriptor: descriptor}, digest, nil
			}
		}
		if GetVerbose() {
			fmt.Fprintf(os.Stderr, "warning: cached plaintext for %s unusable, redecoding: %v\n", containerPath, err)
		}
	}

	image, err := services.NewDecodeService().DecodeFile(variant, ciphertext)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", containerPath, err)
	}
	if err := store.Put(digest, image.Plaintext); err != nil && GetVerbose() {
		fmt.Fprintf(os.Stderr, "warning: caching plaintext for %s: %v\n", containerPath, err)
	}

	return image, digest, nil
}
