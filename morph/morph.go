// Package morph converts skeleton trees into renderable scene objects.
package morph

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask"
	"github.com/yzx9/swc2mask/scene"
	"github.com/yzx9/swc2mask/swc"
)

const colorEps = 1e-6

// DecayFunc maps the path length walked from the start node to a color.
type DecayFunc func(pathLength float32) ms3.Vec

// LinearDecay returns a DecayFunc interpolating from `from` at length 0 to `to`
// at length distance and beyond. A non-positive distance yields `to` everywhere.
func LinearDecay(from, to ms3.Vec, distance float32) DecayFunc {
	return func(l float32) ms3.Vec {
		if distance <= 0 {
			return to
		}
		k := math32.Max(0, math32.Min(1, l/distance))
		return ms3.Add(from, ms3.Scale(k, ms3.Sub(to, from)))
	}
}

// Flat returns one object per edge of the root's subtree in depth first order.
// All objects share material m.
func Flat(t *swc.Tree, m scene.Material) ([]scene.Object, error) {
	rootID, ok := t.RootID()
	if !ok {
		return nil, swc.ErrNoRoot
	}
	bld := swc2mask.Builder{NoDimensionPanic: true}
	var objs []scene.Object
	seen := map[int]bool{rootID: true}
	var walk func(id int)
	walk = func(id int) {
		n, _ := t.Node(id)
		for _, cid := range t.Children(id) {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			c, _ := t.Node(cid)
			objs = append(objs, scene.NewSDFObject(edgeShape(&bld, n, c), m))
			walk(cid)
		}
	}
	walk(rootID)
	if err := bld.Err(); err != nil {
		return nil, err
	}
	return objs, nil
}

// FlatUnion joins every edge of the root's subtree into a single object.
// A tree with a lone root results in a sphere at the root.
func FlatUnion(t *swc.Tree, m scene.Material) (scene.Object, error) {
	rootID, ok := t.RootID()
	if !ok {
		return nil, swc.ErrNoRoot
	}
	bld := swc2mask.Builder{NoDimensionPanic: true}
	seen := map[int]bool{rootID: true}
	var subtree func(id int) swc2mask.Shape
	subtree = func(id int) swc2mask.Shape {
		n, _ := t.Node(id)
		var s swc2mask.Shape
		for _, cid := range t.Children(id) {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			c, _ := t.Node(cid)
			branch := bld.Compose(edgeShape(&bld, n, c), subtree(cid))
			s = bld.Compose(s, branch)
		}
		return s
	}
	s := subtree(rootID)
	if s == nil {
		root, _ := t.Node(rootID)
		s = bld.NewSphere(root.Pos, root.Radius)
	}
	if err := bld.Err(); err != nil {
		return nil, err
	}
	return scene.NewSDFObject(s, m), nil
}

// PathDecay walks the root's subtree outward from startID in both directions,
// colouring each edge with a [scene.Gradient] between the decay colors at
// its two ends. Edges where either color vanishes produce no object.
// Every node is entered at most once.
func PathDecay(t *swc.Tree, startID int, decay DecayFunc) ([]scene.Object, error) {
	start, ok := t.Find(startID)
	if !ok {
		return nil, fmt.Errorf("path decay start node %d: %w", startID, swc.ErrNodeMissing)
	}
	bld := swc2mask.Builder{NoDimensionPanic: true}
	var objs []scene.Object
	visited := map[int]bool{start.ID: true}
	var walk func(n swc.Node, acc float32)
	walk = func(n swc.Node, acc float32) {
		var next []int
		if pid, ok := t.Parent(n.ID); ok && !visited[pid] {
			visited[pid] = true
			next = append(next, pid)
		}
		for _, cid := range t.Children(n.ID) {
			if !visited[cid] {
				visited[cid] = true
				next = append(next, cid)
			}
		}
		from := decay(acc)
		for _, id := range next {
			nb, _ := t.Node(id)
			accNext := acc + ms3.Norm(ms3.Sub(n.Pos, nb.Pos))
			to := decay(accNext)
			if ms3.Norm(from) > colorEps && ms3.Norm(to) > colorEps {
				m := scene.Gradient{From: from, To: to}
				objs = append(objs, scene.NewSDFObject(edgeShape(&bld, n, nb), m))
			}
			walk(nb, accNext)
		}
	}
	walk(start, 0)
	if err := bld.Err(); err != nil {
		return nil, err
	}
	return objs, nil
}

// edgeShape joins a and b with a round cone, or returns a sphere at the
// larger endpoint when one swallows the other.
func edgeShape(bld *swc2mask.Builder, a, b swc.Node) swc2mask.Shape {
	if swc2mask.RoundConeDegenerate(a.Pos, a.Radius, b.Pos, b.Radius) {
		if a.Radius >= b.Radius {
			return bld.NewSphere(a.Pos, a.Radius)
		}
		return bld.NewSphere(b.Pos, b.Radius)
	}
	return bld.NewRoundCone(a.Pos, a.Radius, b.Pos, b.Radius)
}
