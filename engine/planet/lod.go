// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import "github.com/arcusgl/spherelod/linear"

// selectResult is the outcome of classifying one quadtree node
// during selection; only resSelected propagates a contribution.
type selectResult int

const (
	resSelected selectResult = iota
	resOutOfFrustum
	resOutOfRange
	resPending
)

// Contribution is one patch's worth of draw work: either the
// node's whole index range, or just one quadrant of it (used to
// fill the hole left by a not-yet-resident child).
type Contribution struct {
	Node       *Node
	Whole      bool
	Quadrant   Quadrant // meaningful only when !Whole
	MorphRange [2]float32
}

// Select runs the per-frame LOD selection pass over one face's
// quadtree, returning every contribution that should be drawn this
// frame.
func Select(root *Node, cameraPos linear.V3, frustum *Frustum, cone HorizonCone, cfg *Config, splitDist []float32) []Contribution {
	var out []Contribution
	selectNode(root, cameraPos, frustum, cone, cfg, splitDist, false, &out)
	return out
}

// selectNode implements the classification rule: frustum- and
// horizon-cull, report the node out of range when it lies beyond
// the split distance of the level above it (splitDist[l-1]), and
// either recurse into children when it is within its own split
// distance (filling any unselected quadrant from this node) or
// emit this node whole.
func selectNode(n *Node, cameraPos linear.V3, frustum *Frustum, cone HorizonCone, cfg *Config, splitDist []float32, parentInside bool, out *[]Contribution) selectResult {
	if n == nil || n.State == statePending {
		return resPending
	}

	inside := parentInside
	if !parentInside {
		switch frustum.Classify(n.AABB) {
		case Outside:
			return resOutOfFrustum
		case Inside:
			inside = true
		}
	}
	if cone.Contains(n.AABB) {
		return resOutOfFrustum
	}

	l := n.Loc.LODLevel
	d := n.AABB.distToPoint(cameraPos)
	if l > 0 && d > splitDist[l-1] {
		return resOutOfRange
	}

	hasChildren := n.Children[0] != nil
	if l < cfg.MaxLOD && d <= splitDist[l] && hasChildren {
		var childRes [4]selectResult
		anySelected := false
		for q := Quadrant(0); q < 4; q++ {
			childRes[q] = selectNode(n.Children[q], cameraPos, frustum, cone, cfg, splitDist, inside, out)
			if childRes[q] == resSelected {
				anySelected = true
			}
		}
		if !anySelected {
			emit(n, true, 0, splitDist, out)
			return resSelected
		}
		for q, res := range childRes {
			if res != resSelected {
				emit(n, false, Quadrant(q), splitDist, out)
			}
		}
		return resSelected
	}

	emit(n, true, 0, splitDist, out)
	return resSelected
}

func emit(n *Node, whole bool, q Quadrant, splitDist []float32, out *[]Contribution) {
	*out = append(*out, Contribution{
		Node:       n,
		Whole:      whole,
		Quadrant:   q,
		MorphRange: morphRangeFor(n.Loc.LODLevel, splitDist),
	})
}

// morphRangeFor computes (t0, t1) for a contribution emitted at
// level l: t1 is the split distance one level coarser (or l's own,
// at the root), and t0 is the last 10% of that range, over which
// the GPU interpolates toward the coarser LOD.
func morphRangeFor(l int, splitDist []float32) [2]float32 {
	t1 := splitDist[l]
	if l > 0 {
		t1 = splitDist[l-1]
	}
	return [2]float32{t1 * 0.9, t1}
}
