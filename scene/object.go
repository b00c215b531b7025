// Package scene holds renderable objects, their materials and the bounding
// volume hierarchy used to classify points against them.
package scene

import (
	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask"
)

// Object is a solid with a color. Hit reports the color at p and
// whether p lies inside the object.
type Object interface {
	Hit(p ms3.Vec) (ms3.Vec, bool)
	Bounds() ms3.Box
}

// Material maps surface parameters of a hit to a color.
type Material interface {
	Color(u, v float32) ms3.Vec
}

// SDFObject is an [Object] backed by a signed distance shape.
type SDFObject struct {
	shape    swc2mask.Shape
	material Material
}

// NewSDFObject returns an object that is inside wherever shape's distance is non positive.
func NewSDFObject(shape swc2mask.Shape, material Material) *SDFObject {
	return &SDFObject{shape: shape, material: material}
}

func (o *SDFObject) Hit(p ms3.Vec) (ms3.Vec, bool) {
	hit := o.shape.Hit(p)
	if hit.Distance > 0 {
		return ms3.Vec{}, false
	}
	return o.material.Color(hit.U, hit.V), true
}

func (o *SDFObject) Bounds() ms3.Box { return o.shape.Bounds() }

// Shape returns the underlying shape.
func (o *SDFObject) Shape() swc2mask.Shape { return o.shape }

// SolidColor is a constant material.
type SolidColor struct {
	RGB ms3.Vec
}

func (m SolidColor) Color(u, v float32) ms3.Vec { return m.RGB }

// Gradient interpolates linearly from From at v=0 to To at v=1. v is clamped to [0,1].
type Gradient struct {
	From, To ms3.Vec
}

func (m Gradient) Color(u, v float32) ms3.Vec {
	switch {
	case v <= 0:
		return m.From
	case v >= 1:
		return m.To
	}
	return ms3.Add(m.From, ms3.Scale(v, ms3.Sub(m.To, m.From)))
}
