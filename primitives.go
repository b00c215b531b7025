package swc2mask

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

type sphere struct {
	c  ms3.Vec
	r  float32
	bb ms3.Box
}

// NewSphere creates a sphere centered at c of radius r. A zero radius is permitted.
func (bld *Builder) NewSphere(c ms3.Vec, r float32) Shape {
	if r < 0 || math32.IsNaN(r) {
		bld.shapeErrorf("negative sphere radius %v", r)
	}
	return &sphere{
		c: c,
		r: r,
		bb: ms3.Box{
			Min: ms3.AddScalar(-r, c),
			Max: ms3.AddScalar(r, c),
		},
	}
}

func (s *sphere) SignedDistance(p ms3.Vec) float32 {
	return ms3.Norm(ms3.Sub(p, s.c)) - s.r
}

func (s *sphere) Bounds() ms3.Box {
	return s.bb
}

func (s *sphere) Hit(p ms3.Vec) Hit {
	return Hit{Distance: s.SignedDistance(p)}
}

// roundCone is a cone with rounded caps whose radius interpolates linearly
// from ra at a to rb at b. Equal radii result in a capsule.
type roundCone struct {
	a, b   ms3.Vec
	ra, rb float32
	// Terms below depend only on shape.
	ba  ms3.Vec
	l2  float32
	rr  float32
	a2  float32
	il2 float32
	bb  ms3.Box
}

// NewRoundCone creates a round cone joining sphere (a, ra) and sphere (b, rb).
// Endpoints so close that one sphere swallows the other, |b-a| <= |ra-rb|,
// describe no cone and are reported as a dimension error; use [Builder.NewSphere] instead.
func (bld *Builder) NewRoundCone(a ms3.Vec, ra float32, b ms3.Vec, rb float32) Shape {
	if ra < 0 || rb < 0 {
		bld.shapeErrorf("negative round cone radius %v, %v", ra, rb)
	}
	ba := ms3.Sub(b, a)
	l2 := ms3.Dot(ba, ba)
	rr := ra - rb
	if RoundConeDegenerate(a, ra, b, rb) {
		bld.shapeErrorf("degenerate round cone: length %v with radii %v, %v", math32.Sqrt(l2), ra, rb)
	}
	bbA := ms3.Box{Min: ms3.AddScalar(-ra, a), Max: ms3.AddScalar(ra, a)}
	bbB := ms3.Box{Min: ms3.AddScalar(-rb, b), Max: ms3.AddScalar(rb, b)}
	return &roundCone{
		a: a, b: b,
		ra: ra, rb: rb,
		ba:  ba,
		l2:  l2,
		rr:  rr,
		a2:  l2 - rr*rr,
		il2: 1 / l2,
		bb:  bbA.Union(bbB),
	}
}

// RoundConeDegenerate reports whether the spheres (a, ra) and (b, rb) are so close
// that one contains the other, in which case no round cone joins them.
func RoundConeDegenerate(a ms3.Vec, ra float32, b ms3.Vec, rb float32) bool {
	ba := ms3.Sub(b, a)
	l2 := ms3.Dot(ba, ba)
	return l2 < epstol || math32.Sqrt(l2) <= absf(ra-rb)+1e-6
}

func (s *roundCone) SignedDistance(p ms3.Vec) float32 {
	pa := ms3.Sub(p, s.a)
	y := ms3.Dot(pa, s.ba)
	z := y - s.l2
	xv := ms3.Sub(ms3.Scale(s.l2, pa), ms3.Scale(y, s.ba))
	x2 := ms3.Dot(xv, xv)
	y2 := y * y * s.l2
	z2 := z * z * s.l2

	// Single square root.
	k := signf(s.rr) * s.rr * s.rr * x2
	switch {
	case signf(z)*s.a2*z2 > k:
		return math32.Sqrt(x2+z2)*s.il2 - s.rb
	case signf(y)*s.a2*y2 < k:
		return math32.Sqrt(x2+y2)*s.il2 - s.ra
	default:
		return (math32.Sqrt(x2*s.a2*s.il2)+y*s.rr)*s.il2 - s.ra
	}
}

func (s *roundCone) Bounds() ms3.Box {
	return s.bb
}

// Hit returns the clamped distance as U and the clamped axial position as V,
// where V is 0 at a and 1 at b.
func (s *roundCone) Hit(p ms3.Vec) Hit {
	d := s.SignedDistance(p)
	return Hit{
		Distance: d,
		U:        clampf(d, 0, 1),
		V:        clampf(s.axial(p), 0, 1),
	}
}

// axial returns the projection of p onto the a→b axis normalized by the axis length.
// Negative beyond a and greater than 1 beyond b.
func (s *roundCone) axial(p ms3.Vec) float32 {
	return ms3.Dot(ms3.Sub(p, s.a), s.ba) * s.il2
}
