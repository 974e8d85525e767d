// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package planet implements the adaptive level-of-detail pipeline
// for rendering a cube-sphere planet: face mapping, an asynchronous
// geometry oracle, a fixed-capacity GPU node backing store, a
// quadtree residency controller, a per-frame LOD selector, a draw
// packer, and frustum/horizon culling.
package planet

import (
	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config holds the tunables of the pipeline. Use DefaultConfig to
// obtain a Config with sensible defaults, then override only the
// fields that need to change.
type Config struct {
	// MaxPatches is the fixed capacity of the node backing store.
	// It bounds the number of simultaneously Resident quadtree
	// nodes across all six faces.
	MaxPatches int

	// VerticesPerPatch is V, the number of vertices along one edge
	// of a patch's position/color grid. It must be of the form
	// 2^k+1 so that adjacent patches share edge vertices.
	VerticesPerPatch int

	// NormalGridScale is m, such that the normal grid is
	// (m*(VerticesPerPatch-1)+1) vertices per edge: finer than the
	// position grid so normals are not interpolated from it.
	NormalGridScale int

	// Workers is the number of goroutines in the async provider's
	// worker pool.
	Workers int

	// MaxLOD is the deepest quadtree level a face may split to.
	MaxLOD int

	// SplitDistanceBase is splitDistance[MaxLOD-1], the split
	// distance of the finest level. Coarser levels double it
	// (ratio 2).
	SplitDistanceBase float32

	// LogZConstant is the logarithmic-depth constant (k in
	// z = 2*log(w*k+1)/log(far*k+1)-1) written into FrameLayout.
	LogZConstant float32

	// Radius is the planet's mean radius in planet-space units.
	Radius float32

	// Log receives structured diagnostics for recoverable error
	// conditions (capacity exhaustion, provider poisoning). A zero
	// value discards all log output.
	Log zerolog.Logger
}

// Size limits shared by every Config, independent of tuning.
const (
	// MinPatches is the smallest accepted MaxPatches.
	MinPatches = 512

	// dfltMaxPatches is the recommended capacity of the node
	// backing store.
	dfltMaxPatches = 2048

	// dfltVerticesPerPatch is the recommended V, the vertex grid
	// edge length (k=5, V=2^5+1=33).
	dfltVerticesPerPatch = 33

	// dfltNormalGridScale is the recommended normal-grid scale m.
	dfltNormalGridScale = 2

	dfltWorkers           = 3
	dfltMaxLOD            = 12
	dfltSplitDistanceBase = 64
	dfltLogZConstant      = 0.01
	dfltRadius            = 1000
)

// DefaultConfig returns a Config populated with recommended
// defaults.
func DefaultConfig() Config {
	return Config{
		MaxPatches:        dfltMaxPatches,
		VerticesPerPatch:  dfltVerticesPerPatch,
		NormalGridScale:   dfltNormalGridScale,
		Workers:           dfltWorkers,
		MaxLOD:            dfltMaxLOD,
		SplitDistanceBase: dfltSplitDistanceBase,
		LogZConstant:      dfltLogZConstant,
		Radius:            dfltRadius,
		Log:               zerolog.Nop(),
	}
}

// tomlConfig mirrors the subset of Config that can be overridden
// from a TOML file; Log is excluded since a logger has no useful
// textual representation.
type tomlConfig struct {
	MaxPatches        int
	VerticesPerPatch  int
	NormalGridScale   int
	Workers           int
	MaxLOD            int
	SplitDistanceBase float32
	LogZConstant      float32
	Radius            float32
}

// LoadConfig reads a TOML document from path, applying any present
// field as an override over DefaultConfig. Fields absent from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	var t tomlConfig
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return c, err
	}
	if t.MaxPatches != 0 {
		c.MaxPatches = t.MaxPatches
	}
	if t.VerticesPerPatch != 0 {
		c.VerticesPerPatch = t.VerticesPerPatch
	}
	if t.NormalGridScale != 0 {
		c.NormalGridScale = t.NormalGridScale
	}
	if t.Workers != 0 {
		c.Workers = t.Workers
	}
	if t.MaxLOD != 0 {
		c.MaxLOD = t.MaxLOD
	}
	if t.SplitDistanceBase != 0 {
		c.SplitDistanceBase = t.SplitDistanceBase
	}
	if t.LogZConstant != 0 {
		c.LogZConstant = t.LogZConstant
	}
	if t.Radius != 0 {
		c.Radius = t.Radius
	}
	return c, nil
}

// NormalGridSize returns N, the number of vertices along one edge
// of the normal grid.
func (c *Config) NormalGridSize() int {
	return c.NormalGridScale*(c.VerticesPerPatch-1) + 1
}

// splitDistances returns the splitDistance table indexed directly
// by LOD level L (root = 0), decreasing as L grows: index
// MaxLOD-1 (the finest level a node can still split from) holds
// SplitDistanceBase, and each coarser level doubles it. This is
// the opposite direction from "index 0 = finest" (see DESIGN.md
// for why): the residency and selector code below index the table
// with the quadtree depth directly, so the root - which covers an
// entire face - needs the largest threshold, not the smallest.
func (c *Config) splitDistances() []float32 {
	d := make([]float32, c.MaxLOD+1)
	v := c.SplitDistanceBase
	for i := c.MaxLOD - 1; i >= 0; i-- {
		d[i] = v
		v *= 2
	}
	return d
}
