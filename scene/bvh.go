package scene

import (
	"sort"

	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask"
)

// bvhNode is either internal with both children set or a leaf referencing one object.
type bvhNode struct {
	bb          ms3.Box
	left, right *bvhNode
	obj         int // Object index for leaves, -1 for internal nodes.
	count       int // Objects under node.
}

// BVH is a bounding volume hierarchy over a fixed set of objects,
// built by median split along the longest axis.
type BVH struct {
	root    *bvhNode
	objects []Object
}

// BVHStats summarises the shape of a [BVH].
type BVHStats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
}

// NewBVH builds a hierarchy over objects. The slice is not modified.
// An empty slice results in a BVH that never hits.
func NewBVH(objects []Object) *BVH {
	bvh := &BVH{objects: append([]Object(nil), objects...)}
	if len(objects) == 0 {
		return bvh
	}
	idx := make([]int, len(objects))
	for i := range idx {
		idx[i] = i
	}
	bvh.root = bvh.build(idx)
	return bvh
}

func (bvh *BVH) build(idx []int) *bvhNode {
	bb := bvh.objects[idx[0]].Bounds()
	for _, i := range idx[1:] {
		bb = bb.Union(bvh.objects[i].Bounds())
	}
	if len(idx) == 1 {
		return &bvhNode{bb: bb, obj: idx[0], count: 1}
	}
	axis := longestAxis(bb)
	sort.SliceStable(idx, func(i, j int) bool {
		ci := bvh.objects[idx[i]].Bounds().Center()
		cj := bvh.objects[idx[j]].Bounds().Center()
		return component(ci, axis) < component(cj, axis)
	})
	mid := len(idx) / 2
	return &bvhNode{
		bb:    bb,
		left:  bvh.build(idx[:mid]),
		right: bvh.build(idx[mid:]),
		obj:   -1,
		count: len(idx),
	}
}

// longestAxis returns 0, 1 or 2 for x, y or z. Ties prefer the lower axis.
func longestAxis(bb ms3.Box) int {
	sz := bb.Size()
	switch {
	case sz.X >= sz.Y && sz.X >= sz.Z:
		return 0
	case sz.Y >= sz.Z:
		return 1
	default:
		return 2
	}
}

func component(v ms3.Vec, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Hit returns the color of an object containing p. The left subtree is
// searched first; the right is searched only when the left misses.
func (bvh *BVH) Hit(p ms3.Vec) (ms3.Vec, bool) {
	if bvh.root == nil {
		return ms3.Vec{}, false
	}
	return bvh.hitNode(bvh.root, p)
}

func (bvh *BVH) hitNode(node *bvhNode, p ms3.Vec) (ms3.Vec, bool) {
	if !swc2mask.BoxContains(node.bb, p) {
		return ms3.Vec{}, false
	}
	if node.obj >= 0 {
		return bvh.objects[node.obj].Hit(p)
	}
	if c, ok := bvh.hitNode(node.left, p); ok {
		return c, true
	}
	return bvh.hitNode(node.right, p)
}

// Bounds returns the box enclosing every object. ok is false for an empty hierarchy.
func (bvh *BVH) Bounds() (bb ms3.Box, ok bool) {
	if bvh.root == nil {
		return ms3.Box{}, false
	}
	return bvh.root.bb, true
}

// Len returns the amount of objects in the hierarchy.
func (bvh *BVH) Len() int {
	if bvh.root == nil {
		return 0
	}
	return bvh.root.count
}

// Stats walks the hierarchy and counts its nodes.
func (bvh *BVH) Stats() (stats BVHStats) {
	if bvh.root != nil {
		collectStats(bvh.root, 1, &stats)
	}
	return stats
}

func collectStats(node *bvhNode, depth int, stats *BVHStats) {
	stats.Nodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	if node.obj >= 0 {
		stats.Leaves++
		return
	}
	collectStats(node.left, depth+1, stats)
	collectStats(node.right, depth+1, stats)
}
