// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"fmt"
	"math"

	"github.com/arcusgl/spherelod/linear"
)

// AABB is an axis-aligned bounding box in planet space.
type AABB struct {
	Min, Max linear.V3
}

// Center returns the AABB's midpoint.
func (a AABB) Center() linear.V3 {
	var c linear.V3
	c.Add(&a.Min, &a.Max)
	c.Scale(0.5, &c)
	return c
}

// Corners returns the AABB's eight corners.
func (a AABB) Corners() [8]linear.V3 {
	return [8]linear.V3{
		{a.Min[0], a.Min[1], a.Min[2]},
		{a.Max[0], a.Min[1], a.Min[2]},
		{a.Min[0], a.Max[1], a.Min[2]},
		{a.Max[0], a.Max[1], a.Min[2]},
		{a.Min[0], a.Min[1], a.Max[2]},
		{a.Max[0], a.Min[1], a.Max[2]},
		{a.Min[0], a.Max[1], a.Max[2]},
		{a.Max[0], a.Max[1], a.Max[2]},
	}
}

// distToPoint returns the Euclidean distance from p to the closest
// point of a (0 if p is inside a).
func (a AABB) distToPoint(p linear.V3) float32 {
	var d float32
	for i := 0; i < 3; i++ {
		c := p[i]
		if c < a.Min[i] {
			d += (a.Min[i] - c) * (a.Min[i] - c)
		} else if c > a.Max[i] {
			d += (c - a.Max[i]) * (c - a.Max[i])
		}
	}
	return sqrtf32(d)
}

func boundsOf(pts []linear.V3) AABB {
	a := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < a.Min[i] {
				a.Min[i] = p[i]
			}
			if p[i] > a.Max[i] {
				a.Max[i] = p[i]
			}
		}
	}
	return a
}

// Vec3d is a double-precision 3-vector, used only where float32
// would lose too much precision at planet scale: a patch's origin
// and the camera position. Everything else (grid spacing, culling,
// GPU-bound data) stays in linear.V3.
type Vec3d [3]float64

// Sub returns a-b.
func (a Vec3d) Sub(b Vec3d) Vec3d {
	return Vec3d{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// ToV3 narrows v to float32, for use where double precision isn't
// needed (culling, distance tests).
func (v Vec3d) ToV3() linear.V3 { return linear.V3{float32(v[0]), float32(v[1]), float32(v[2])} }

// V3ToVec3d widens v to double precision.
func V3ToVec3d(v linear.V3) Vec3d { return Vec3d{float64(v[0]), float64(v[1]), float64(v[2])} }

// Frame is a patch's local reference frame: origin is one corner
// in planet space (kept in double precision so a camera-relative
// subtraction doesn't lose significance far from the world
// origin), and Basis's columns are (tangent, binormal, normal), an
// orthonormal rotation whose Z axis is the patch normal.
type Frame struct {
	Origin Vec3d
	Basis  linear.M3
}

// nodeState distinguishes a quadtree node awaiting geometry from
// one whose geometry is resident in the backing store.
type nodeState int

const (
	statePending nodeState = iota
	stateResident
)

// Node is one quadtree node: either Pending (requested, not yet
// resident) or Resident (occupying a backing-store slot). A node
// has either zero or exactly four children.
type Node struct {
	Loc   PatchLocation
	State nodeState

	// Valid when State == stateResident.
	Slot     int
	AABB     AABB
	Frame    Frame
	Children [4]*Node

	// Valid when State == statePending.
	RequestID uint64
	Priority  *Priority
}

// Residency owns, per face, a quadtree whose root is permanently
// resident after construction, and drives per-frame split/merge
// decisions by camera distance.
type Residency struct {
	cfg      *Config
	provider *Provider
	store    *NodeStore

	roots   [6]*Node
	pending map[uint64]*Node

	splitDist []float32
}

// NewResidency synchronously materialises the six root patches
// (one whole face each) and returns a Residency ready to be
// updated every frame via Update.
func NewResidency(cfg *Config, provider *Provider, store *NodeStore) (*Residency, error) {
	r := &Residency{
		cfg:       cfg,
		provider:  provider,
		store:     store,
		pending:   make(map[uint64]*Node),
		splitDist: cfg.splitDistances(),
	}
	for _, f := range Faces() {
		loc := RootLocation(f)
		geo := computeGeometry(loc, cfg)
		node, err := r.materialize(loc, geo)
		if err != nil {
			return nil, fmt.Errorf("planet: materialising root for face %v: %w", f, err)
		}
		r.roots[f] = node
	}
	return r, nil
}

// Root returns face's permanently-resident quadtree root.
func (r *Residency) Root(f Face) *Node { return r.roots[f] }

// Update runs the residency pass for every face: recursive
// split/merge descent driven by camera distance, followed by
// draining the provider's completed results into Pending→Resident
// promotions.
func (r *Residency) Update(cameraPos linear.V3, frustum *Frustum) {
	for _, f := range Faces() {
		r.descend(r.roots[f], cameraPos, frustum)
	}
	r.provider.ReceiveAll(r.promote)
}

// descend implements the recursive split/merge rule: nodes within
// splitDistance[L] of the camera acquire (or keep) four children;
// nodes beyond it merge away any existing children.
func (r *Residency) descend(n *Node, cameraPos linear.V3, frustum *Frustum) {
	if n == nil || n.State != stateResident {
		return
	}
	if n.Loc.LODLevel >= r.cfg.MaxLOD {
		return
	}

	d := n.AABB.distToPoint(cameraPos)
	if d > r.splitDist[n.Loc.LODLevel] {
		r.merge(n)
		return
	}

	for q := Quadrant(0); q < 4; q++ {
		if n.Children[q] == nil {
			r.requestChild(n, q)
		}
	}
	for _, c := range n.Children {
		if c != nil && c.State == stateResident {
			r.descend(c, cameraPos, frustum)
		} else if c != nil && c.State == statePending {
			r.reprioritize(c, frustum)
		}
	}
}

// merge destroys all four children of n recursively, cancelling
// any pending requests and releasing every resident slot.
func (r *Residency) merge(n *Node) {
	for q, c := range n.Children {
		if c == nil {
			continue
		}
		switch c.State {
		case statePending:
			c.Priority.Set(0)
			delete(r.pending, c.RequestID)
		case stateResident:
			r.merge(c)
			r.store.Release(c.Slot)
		}
		n.Children[q] = nil
	}
}

// requestChild creates a Pending node for quadrant q of parent and
// queues its geometry with the provider.
func (r *Residency) requestChild(parent *Node, q Quadrant) {
	loc := parent.Loc.Split(q)
	pr, id, err := r.provider.Queue(loc, priorityFor(loc.LODLevel, false))
	if err != nil {
		r.cfg.Log.Warn().Err(err).Msg("could not queue child patch")
		return
	}
	child := &Node{Loc: loc, State: statePending, RequestID: id, Priority: pr}
	parent.Children[q] = child
	r.pending[id] = child
}

// reprioritize recomputes a Pending node's priority from its LOD
// level and whether its expected AABB may be in view; see
// priorityFor for how the two are weighed.
func (r *Residency) reprioritize(n *Node, frustum *Frustum) {
	inFrustum := frustum == nil || frustum.MayBeVisible(expectedAABB(n.Loc, r.cfg.Radius))
	n.Priority.Set(priorityFor(n.Loc.LODLevel, inFrustum))
}

// priorityFor encodes (lodLevel, inFrustum) into a single priority
// value: deeper LOD and in-frustum both raise priority, with the
// frustum bit dominating so any in-view request preempts all
// out-of-view ones regardless of level.
func priorityFor(lodLevel int, inFrustum bool) int32 {
	p := int32(lodLevel + 1)
	if inFrustum {
		p += 1 << 16
	}
	return p
}

// promote looks up requestId in the pending map, materialises its
// geometry into a fresh slot, and replaces the node's variant with
// Resident. A requestId absent from the map (the request was
// cancelled after completing) is dropped silently.
func (r *Residency) promote(id uint64, geo PatchGeometry) {
	n, ok := r.pending[id]
	if !ok {
		return
	}
	delete(r.pending, id)

	resident, err := r.materialize(n.Loc, geo)
	if err != nil {
		r.cfg.Log.Warn().Err(err).Msg("could not materialise patch, parent LOD stays in use")
		return
	}
	*n = *resident
}

// materialize acquires a backing-store slot for loc's geometry,
// derives its local frame and AABB, and uploads the vertex/height/
// normal data.
func (r *Residency) materialize(loc PatchLocation, geo PatchGeometry) (*Node, error) {
	slot, err := r.store.Acquire()
	if err != nil {
		return nil, err
	}

	frame := frameOf(geo.Positions, r.cfg.VerticesPerPatch)
	verts := toVertices(geo, frame, r.cfg.VerticesPerPatch)
	r.store.WriteVertices(slot, verts)

	n := r.cfg.NormalGridSize()
	heightData := make([]float32, r.cfg.VerticesPerPatch*r.cfg.VerticesPerPatch)
	for i, p := range geo.Positions {
		heightData[i] = p.Len() - r.cfg.Radius
	}
	if err := r.store.WriteHeight(slot, heightData); err != nil {
		r.store.Release(slot)
		return nil, err
	}

	mip0 := flattenV3(geo.Normals)
	if err := r.store.WriteNormals(slot, 0, mip0); err != nil {
		r.store.Release(slot)
		return nil, err
	}
	mip1 := downsampleNormals(geo.Normals, n)
	if err := r.store.WriteNormals(slot, 1, mip1); err != nil {
		r.store.Release(slot)
		return nil, err
	}

	return &Node{
		Loc:   loc,
		State: stateResident,
		Slot:  slot,
		AABB:  boundsOf(geo.Positions),
		Frame: frame,
	}, nil
}

// frameOf derives a patch's local frame from its position grid:
// origin is the (0,0) corner, tangent/binormal come from the two
// edge vectors at that corner, and the normal completes a
// right-handed orthonormal basis.
func frameOf(positions []linear.V3, v int) Frame {
	origin := positions[0]
	var tangent, binormal linear.V3
	tangent.Sub(&positions[1], &origin)
	binormal.Sub(&positions[v], &origin)
	tangent.Norm(&tangent)
	binormal.Norm(&binormal)
	var normal linear.V3
	normal.Cross(&tangent, &binormal)
	normal.Norm(&normal)
	// Re-derive binormal so the basis is exactly orthonormal.
	binormal.Cross(&normal, &tangent)
	return Frame{Origin: V3ToVec3d(origin), Basis: linear.M3{tangent, binormal, normal}}
}

// toVertices projects positions and morph targets into frame-local
// (x,y) coordinates, per the vertex-buffer contract.
func toVertices(geo PatchGeometry, frame Frame, v int) []Vertex {
	verts := make([]Vertex, v*v)
	for y := 0; y < v; y++ {
		for x := 0; x < v; x++ {
			i := y*v + x
			verts[i] = Vertex{
				Position:      localXY(geo.Positions[i], frame),
				MorphTarget:   localXY(geo.MorphTargets[i], frame),
				LocalTexcoord: linear.V2{float32(x) / float32(v-1), float32(y) / float32(v-1)},
				Color:         [3]float32{geo.Colors[i][0], geo.Colors[i][1], geo.Colors[i][2]},
			}
		}
	}
	return verts
}

func localXY(p linear.V3, frame Frame) linear.V2 {
	origin := frame.Origin.ToV3()
	var rel linear.V3
	rel.Sub(&p, &origin)
	return linear.V2{rel.Dot(&frame.Basis[0]), rel.Dot(&frame.Basis[1])}
}

func flattenV3(vs []linear.V3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// downsampleNormals box-filters the N×N normal grid down to
// (N/2)×(N/2) for mip level 1, renormalising each averaged normal.
func downsampleNormals(normals []linear.V3, n int) []float32 {
	half := n / 2
	out := make([]float32, 0, half*half*3)
	for y := 0; y < half; y++ {
		for x := 0; x < half; x++ {
			var sum linear.V3
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					v := normals[(y*2+dy)*n+(x*2+dx)]
					sum.Add(&sum, &v)
				}
			}
			sum.Norm(&sum)
			out = append(out, sum[0], sum[1], sum[2])
		}
	}
	return out
}

func sqrtf32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(x)))
}
