package swc2mask

import (
	"fmt"

	"github.com/soypat/geometry/ms3"
)

type opMin struct {
	a, b Shape
	bb   ms3.Box
}

// Min joins two shapes into one. Is exact.
func (bld *Builder) Min(a, b Shape) Shape {
	if a == nil || b == nil {
		bld.nilsdf("Min")
	}
	return &opMin{a: a, b: b, bb: a.Bounds().Union(b.Bounds())}
}

// Compose returns whichever of a and b is non-nil, their [Builder.Min] if both are present
// or nil if both are absent. Useful for folding optional per-edge shapes into one.
func (bld *Builder) Compose(a, b Shape) Shape {
	switch {
	case a != nil && b != nil:
		return bld.Min(a, b)
	case a != nil:
		return a
	default:
		return b
	}
}

// Union folds shapes into a single shape with [Builder.Compose]. Returns nil for no shapes.
func (bld *Builder) Union(shapes ...Shape) Shape {
	var s Shape
	for i, shape := range shapes {
		if shape == nil {
			bld.nilsdf(fmt.Sprintf("nil arg[%d] to Union", i))
		}
		s = bld.Compose(s, shape)
	}
	return s
}

func (u *opMin) SignedDistance(p ms3.Vec) float32 {
	return minf(u.a.SignedDistance(p), u.b.SignedDistance(p))
}

func (u *opMin) Bounds() ms3.Box {
	return u.bb
}

// Hit returns the hit of the closer shape. Exact ties resolve to the first shape.
func (u *opMin) Hit(p ms3.Vec) Hit {
	ha := u.a.Hit(p)
	hb := u.b.Hit(p)
	if ha.Distance <= hb.Distance {
		return ha
	}
	return hb
}
