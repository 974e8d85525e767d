// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import "errors"

// Sentinel errors returned by the pipeline's recoverable error
// conditions.
var (
	// ErrCapacity is returned by the node backing store's acquire
	// when all configured slots are already in use. At init time
	// this is fatal (the caller mis-sized MaxPatches); at runtime
	// the residency controller logs it and skips the split, leaving
	// the parent's LOD in place.
	ErrCapacity = errors.New("planet: node backing store at capacity")

	// ErrProviderPoisoned is returned by queue once a worker has
	// panicked. The provider is no longer accepting requests;
	// residency continues to render whatever is already resident.
	ErrProviderPoisoned = errors.New("planet: async provider poisoned by a worker panic")

	// ErrMappingFailed is returned during renderer construction
	// when a persistently-mapped GPU buffer could not be obtained
	// host-visible. Unlike the other two, this is never expected
	// to be handled; it surfaces as a fatal construction error.
	ErrMappingFailed = errors.New("planet: failed to map a persistent GPU buffer")
)
