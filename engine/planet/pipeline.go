// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"fmt"

	"github.com/arcusgl/spherelod/driver"
)

// Planet ties the whole pipeline together: the async geometry
// provider, the node backing store, per-face residency, and the
// draw packer. Callers drive it once per frame via Render.
type Planet struct {
	cfg *Config

	provider *Provider
	store    *NodeStore
	res      *Residency
	packer   *DrawPacker

	splitDist []float32
}

// New validates cfg, then constructs every pipeline stage: the
// worker pool, the backing store's GPU resources, the six
// permanently-resident quadtree roots, and the draw packer's
// persistent buffers.
func New(gpu driver.GPU, cfg Config) (*Planet, error) {
	if cfg.MaxPatches < MinPatches {
		return nil, fmt.Errorf("planet: MaxPatches must be at least %d", MinPatches)
	}

	provider := NewProvider(&cfg)

	store, err := NewNodeStore(gpu, &cfg)
	if err != nil {
		provider.Close()
		return nil, err
	}

	res, err := NewResidency(&cfg, provider, store)
	if err != nil {
		provider.Close()
		return nil, err
	}

	packer, err := NewDrawPacker(gpu, &cfg)
	if err != nil {
		provider.Close()
		return nil, err
	}

	return &Planet{
		cfg:       &cfg,
		provider:  provider,
		store:     store,
		res:       res,
		packer:    packer,
		splitDist: cfg.splitDistances(),
	}, nil
}

// Close shuts down the worker pool, joining every goroutine. GPU
// resources are reclaimed by the caller's driver.GPU teardown.
func (p *Planet) Close() error {
	return p.provider.Close()
}

// Render runs one full frame: residency split/merge and pending
// promotion, LOD selection per face, and draw packing. It does not
// submit the command buffer; the caller does that via Submit once
// it has recorded the render pass.
func (p *Planet) Render(pose *Pose) {
	camPos := pose.Position.ToV3()
	vp := pose.ViewProjection()
	frustum := ExtractFrustum(&vp)
	cone := NewHorizonCone(camPos, p.cfg.Radius)

	p.res.Update(camPos, frustum)

	var all []Contribution
	for _, f := range Faces() {
		all = append(all, Select(p.res.Root(f), camPos, frustum, cone, p.cfg, p.splitDist)...)
	}

	p.packer.Pack(all, p.store, pose)
}

// Submit issues the frame's single multi-draw call into cb, which
// must already be within an active render pass with the planet's
// pipeline and descriptor table bound.
func (p *Planet) Submit(cb driver.CmdBuffer) {
	p.packer.Submit(cb)
}
