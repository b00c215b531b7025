package swc2mask_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask"
)

const tol = 1e-3

func randVec(rng *rand.Rand, scale float32) ms3.Vec {
	return ms3.Vec{
		X: scale * (2*rng.Float32() - 1),
		Y: scale * (2*rng.Float32() - 1),
		Z: scale * (2*rng.Float32() - 1),
	}
}

func capsuleDistance(p, a, b ms3.Vec, r float32) float32 {
	pa := ms3.Sub(p, a)
	ba := ms3.Sub(b, a)
	h := ms3.Dot(pa, ba) / ms3.Dot(ba, ba)
	h = math32.Max(0, math32.Min(1, h))
	return ms3.Norm(ms3.Sub(pa, ms3.Scale(h, ba))) - r
}

func TestSphere(t *testing.T) {
	var bld swc2mask.Builder
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		c := randVec(rng, 20)
		r := 0.1 + 5*rng.Float32()
		s := bld.NewSphere(c, r)
		if d := s.SignedDistance(c); math32.Abs(d+r) > tol {
			t.Errorf("sphere(%v, %v) at center: got %v, want %v", c, r, d, -r)
		}
		dir := ms3.Unit(randVec(rng, 1))
		surface := ms3.Add(c, ms3.Scale(r, dir))
		if d := s.SignedDistance(surface); math32.Abs(d) > tol {
			t.Errorf("sphere(%v, %v) on surface: got %v, want 0", c, r, d)
		}
		bb := s.Bounds()
		want := ms3.Box{Min: ms3.AddScalar(-r, c), Max: ms3.AddScalar(r, c)}
		if bb != want {
			t.Errorf("sphere bounds: got %v, want %v", bb, want)
		}
		hit := s.Hit(c)
		if hit.U != 0 || hit.V != 0 {
			t.Errorf("sphere hit parameters should be zero, got %+v", hit)
		}
	}
}

func TestRoundConeEqualRadiiIsCapsule(t *testing.T) {
	var bld swc2mask.Builder
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		a := randVec(rng, 10)
		b := ms3.Add(a, ms3.Scale(2+5*rng.Float32(), ms3.Unit(randVec(rng, 1))))
		r := 0.2 + 2*rng.Float32()
		s := bld.NewRoundCone(a, r, b, r)
		for j := 0; j < 100; j++ {
			p := randVec(rng, 15)
			got := s.SignedDistance(p)
			want := capsuleDistance(p, a, b, r)
			if math32.Abs(got-want) > tol {
				t.Fatalf("capsule a=%v b=%v r=%v at %v: got %v, want %v", a, b, r, p, got, want)
			}
		}
	}
}

func TestRoundCone(t *testing.T) {
	var bld swc2mask.Builder
	a := ms3.Vec{}
	b := ms3.Vec{Z: 10}
	s := bld.NewRoundCone(a, 2, b, 1)
	for _, test := range []struct {
		p    ms3.Vec
		want float32
	}{
		{p: a, want: -2},
		{p: b, want: -1},
		{p: ms3.Vec{Z: -5}, want: 3}, // Below a along axis.
		{p: ms3.Vec{Z: 14}, want: 3}, // Above b along axis.
		{p: ms3.Vec{X: 2, Z: 0}, want: 0},
	} {
		got := s.SignedDistance(test.p)
		if math32.Abs(got-test.want) > tol {
			t.Errorf("round cone at %v: got %v, want %v", test.p, got, test.want)
		}
	}
	// Lateral surface lies between the two radii.
	mid := s.SignedDistance(ms3.Vec{Z: 5})
	if mid > -1 || mid < -2 {
		t.Errorf("round cone mid axis distance %v not within radii", mid)
	}
	bb := s.Bounds()
	want := ms3.Box{Min: ms3.Vec{X: -2, Y: -2, Z: -2}, Max: ms3.Vec{X: 2, Y: 2, Z: 11}}
	if bb != want {
		t.Errorf("round cone bounds: got %v, want %v", bb, want)
	}

	hit := s.Hit(ms3.Vec{Z: 5})
	if math32.Abs(hit.V-0.5) > tol {
		t.Errorf("expected V=0.5 at mid axis, got %v", hit.V)
	}
	if hit.U != 0 {
		t.Errorf("expected U clamped to 0 inside shape, got %v", hit.U)
	}
	hit = s.Hit(ms3.Vec{Z: 30})
	if hit.V != 1 || hit.U != 1 {
		t.Errorf("expected U and V clamped to 1 far beyond b, got %+v", hit)
	}
	hit = s.Hit(ms3.Vec{Z: -30})
	if hit.V != 0 {
		t.Errorf("expected V clamped to 0 far beyond a, got %v", hit.V)
	}
}

func TestMin(t *testing.T) {
	var bld swc2mask.Builder
	rng := rand.New(rand.NewSource(3))
	s1 := bld.NewSphere(ms3.Vec{X: -3}, 2)
	s2 := bld.NewRoundCone(ms3.Vec{X: 1}, 1.5, ms3.Vec{X: 4, Y: 3}, 0.5)
	u := bld.Min(s1, s2)
	for i := 0; i < 500; i++ {
		p := randVec(rng, 8)
		got := u.SignedDistance(p)
		want := math32.Min(s1.SignedDistance(p), s2.SignedDistance(p))
		if got != want {
			t.Fatalf("min at %v: got %v, want %v", p, got, want)
		}
		hit := u.Hit(p)
		if hit.Distance != want {
			t.Fatalf("min hit distance at %v: got %v, want %v", p, hit.Distance, want)
		}
	}
	bb := u.Bounds()
	want := s1.Bounds().Union(s2.Bounds())
	if bb != want {
		t.Errorf("min bounds: got %v, want %v", bb, want)
	}
}

func TestCompose(t *testing.T) {
	var bld swc2mask.Builder
	s1 := bld.NewSphere(ms3.Vec{}, 1)
	s2 := bld.NewSphere(ms3.Vec{X: 3}, 1)
	if bld.Compose(nil, nil) != nil {
		t.Error("compose of two absent shapes should be absent")
	}
	if bld.Compose(s1, nil) != s1 {
		t.Error("compose should return the left operand when right is absent")
	}
	if bld.Compose(nil, s2) != s2 {
		t.Error("compose should return the right operand when left is absent")
	}
	both := bld.Compose(s1, s2)
	if both == nil || both == s1 || both == s2 {
		t.Fatal("compose of two shapes should be their union")
	}
	if !swc2mask.Contains(both, ms3.Vec{X: 3}) || !swc2mask.Contains(both, ms3.Vec{}) {
		t.Error("union should contain both sphere centers")
	}
	if bld.Union() != nil {
		t.Error("empty union should be nil")
	}
	u := bld.Union(s1, s2, bld.NewSphere(ms3.Vec{Y: 5}, 1))
	if !swc2mask.Contains(u, ms3.Vec{Y: 5}) {
		t.Error("folded union lost a shape")
	}
}

func TestContains(t *testing.T) {
	var bld swc2mask.Builder
	s := bld.NewSphere(ms3.Vec{}, 1)
	if !swc2mask.Contains(s, ms3.Vec{X: 0.5}) {
		t.Error("expected point inside sphere")
	}
	if swc2mask.Contains(s, ms3.Vec{X: 1}) {
		t.Error("surface point is not strictly inside")
	}
	if swc2mask.Contains(s, ms3.Vec{X: 0.9, Y: 0.9}) {
		t.Error("point in box corner but outside sphere reported inside")
	}
	if swc2mask.Contains(s, ms3.Vec{Z: 7}) {
		t.Error("point outside bounding box reported inside")
	}
}

func TestBuilderErrors(t *testing.T) {
	bld := swc2mask.Builder{NoDimensionPanic: true}
	s := bld.NewSphere(ms3.Vec{}, -1)
	if s == nil {
		t.Error("expecting non-nil shape")
	}
	if bld.Err() == nil {
		t.Error("expected error for negative sphere radius")
	}
	bld.ClearErrors()
	if bld.Err() != nil {
		t.Error("expected builder error to be cleared")
	}
	bld.NewRoundCone(ms3.Vec{}, 3, ms3.Vec{X: 1}, 1)
	err := bld.Err()
	if err == nil || !strings.Contains(err.Error(), "degenerate") {
		t.Errorf("expected degenerate round cone error, got %v", err)
	}

	var panicking swc2mask.Builder
	defer func() {
		if recover() == nil {
			t.Error("expected panic with default builder")
		}
	}()
	panicking.NewSphere(ms3.Vec{}, -2)
}
