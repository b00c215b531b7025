package render

import (
	"errors"

	"github.com/soypat/geometry/ms3"
)

// MSAA is the amount of samples taken per voxel. Valid values are cubes of 1 to 4.
type MSAA int

const (
	MSAA1  MSAA = 1
	MSAA8  MSAA = 8
	MSAA27 MSAA = 27
	MSAA64 MSAA = 64
)

var ErrInvalidMSAA = errors.New("msaa must be one of 1, 8, 27 or 64")

// Validate returns [ErrInvalidMSAA] if m is not a supported sample count.
func (m MSAA) Validate() error {
	if m.k() == 0 {
		return ErrInvalidMSAA
	}
	return nil
}

func (m MSAA) k() int {
	switch m {
	case MSAA1:
		return 1
	case MSAA8:
		return 2
	case MSAA27:
		return 3
	case MSAA64:
		return 4
	}
	return 0
}

// Offsets returns the voxel-relative sample positions in [0,1)³. Samples form a
// k×k×k lattice evenly spaced inside the voxel, so MSAA1 samples the voxel centre.
func (m MSAA) Offsets() ([]ms3.Vec, error) {
	k := m.k()
	if k == 0 {
		return nil, ErrInvalidMSAA
	}
	n := k * k * k
	div := float32(k + 1)
	offsets := make([]ms3.Vec, n)
	for i := range offsets {
		offsets[i] = ms3.Vec{
			X: float32((i/(k*k))%k+1) / div,
			Y: float32((i/k)%k+1) / div,
			Z: float32(i%k+1) / div,
		}
	}
	return offsets, nil
}
