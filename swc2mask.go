// Package swc2mask implements the signed distance shapes used to turn
// skeleton edges into solids.
package swc2mask

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

const (
	// epstol is used to check for badly conditioned denominators
	// such as segment lengths used for normalization.
	epstol = 6e-7
)

// Shape is a 3D signed distance field queried one point at a time.
// Shapes are immutable once built and safe for concurrent use.
type Shape interface {
	// SignedDistance returns the distance from p to the shape surface.
	// Negative inside, zero on the surface and positive outside.
	SignedDistance(p ms3.Vec) float32
	// Bounds returns the shape's bounding box such that all of the shape is contained within.
	Bounds() ms3.Box
	// Hit returns the signed distance at p along with shape-local surface parameters.
	Hit(p ms3.Vec) Hit
}

// Hit is the result of querying a [Shape] at a point.
// U and V are surface parameters consumed by materials, their meaning is shape specific.
type Hit struct {
	Distance float32
	U, V     float32
}

// Contains reports whether p lies strictly inside s. Points outside
// the bounding box are rejected without evaluating the distance.
func Contains(s Shape, p ms3.Vec) bool {
	return BoxContains(s.Bounds(), p) && s.SignedDistance(p) < 0
}

// BoxContains reports whether p lies inside bb or on its boundary.
func BoxContains(bb ms3.Box, p ms3.Vec) bool {
	return p.X >= bb.Min.X && p.Y >= bb.Min.Y && p.Z >= bb.Min.Z &&
		p.X <= bb.Max.X && p.Y <= bb.Max.Y && p.Z <= bb.Max.Z
}

// Builder wraps all SDF primitive and operation creation.
// Provides error handling strategies with panics or error accumulation during shape generation.
type Builder struct {
	NoDimensionPanic bool
	accumErrs        []error
}

// Err returns all errors accumulated since the last call to ClearErrors joined
// together, or nil. Errors only accumulate when NoDimensionPanic is set.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if !bld.NoDimensionPanic {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func (*Builder) nilsdf(msg string) {
	panic("nil SDF argument: " + msg)
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func signf(a float32) float32 {
	if a == 0 {
		return 0
	}
	return math32.Copysign(1, a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func absf(a float32) float32 {
	return math32.Abs(a)
}
