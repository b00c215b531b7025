package scene

import (
	"errors"

	"github.com/soypat/geometry/ms3"
)

// ErrSceneBuilt is returned when mutating a scene after [Objects.Build].
var ErrSceneBuilt = errors.New("scene already built")

// Scene classifies points into colors. Bounds reports the region occupied
// by the scene's objects, ok is false when the scene is empty.
type Scene interface {
	Hit(p ms3.Vec) ms3.Vec
	Bounds() (bb ms3.Box, ok bool)
}

// Objects is a [Scene] that collects objects and, once built, queries them through a [BVH].
// The zero value is an empty unbuilt scene with a black background.
type Objects struct {
	batch      []Object
	bvh        *BVH
	background ms3.Vec
}

var _ Scene = (*Objects)(nil)

// Add appends objects to the batch.
func (s *Objects) Add(objs ...Object) error {
	if s.bvh != nil {
		return ErrSceneBuilt
	}
	s.batch = append(s.batch, objs...)
	return nil
}

// Build moves the batch into a [BVH]. Calling Build twice is an error.
func (s *Objects) Build() error {
	if s.bvh != nil {
		return ErrSceneBuilt
	}
	s.bvh = NewBVH(s.batch)
	s.batch = nil
	return nil
}

// Built reports whether Build has been called.
func (s *Objects) Built() bool { return s.bvh != nil }

// BVH returns the hierarchy built by Build or nil.
func (s *Objects) BVH() *BVH { return s.bvh }

// SetBackground sets the color returned for points outside every object.
func (s *Objects) SetBackground(c ms3.Vec) { s.background = c }

// Hit returns the color of the first object containing p or the background color.
func (s *Objects) Hit(p ms3.Vec) ms3.Vec {
	if s.bvh != nil {
		if c, ok := s.bvh.Hit(p); ok {
			return c
		}
		return s.background
	}
	for _, obj := range s.batch {
		if c, ok := obj.Hit(p); ok {
			return c
		}
	}
	return s.background
}

func (s *Objects) Bounds() (ms3.Box, bool) {
	if s.bvh != nil {
		return s.bvh.Bounds()
	}
	if len(s.batch) == 0 {
		return ms3.Box{}, false
	}
	bb := s.batch[0].Bounds()
	for _, obj := range s.batch[1:] {
		bb = bb.Union(obj.Bounds())
	}
	return bb, true
}

// Len returns the amount of objects in the scene.
func (s *Objects) Len() int {
	if s.bvh != nil {
		return s.bvh.Len()
	}
	return len(s.batch)
}
