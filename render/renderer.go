// Package render classifies a scene voxel by voxel into a stack of grayscale slices.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"
	"sort"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask/log"
	"github.com/yzx9/swc2mask/scene"
)

// Limits on stack dimensions in voxels.
const (
	maxStackDim    = 1 << 20
	maxSlicePixels = 1 << 30
)

// bandsPerWorker sets how many bands each worker gets per slice on average.
const bandsPerWorker = 4

var errClosed = errors.New("renderer closed")

var logger = log.New("render")

// DefaultRange is used when no range is configured and the scene is empty.
var DefaultRange = ms3.Box{
	Min: ms3.Vec{X: -100, Y: -100, Z: -100},
	Max: ms3.Vec{X: 100, Y: 100, Z: 100},
}

// Config controls sampling of a [StackRenderer]. Zero values select defaults.
type Config struct {
	// Resolution is the voxel size along each axis. Defaults to (1,1,1).
	Resolution ms3.Vec
	// Range is the rendered region. Defaults to the scene bounds padded by
	// half a voxel on every side, or DefaultRange for an empty scene.
	Range *ms3.Box
	// MSAA defaults to MSAA1.
	MSAA MSAA
	// Workers defaults to the number of CPUs.
	Workers int
}

// Stats describes the layout of a render.
type Stats struct {
	Width, Height, Slices int
	Workers               int
	Bands                 int
	Samples               int
	Range                 ms3.Box
}

// StackRenderer renders a scene one z slice at a time. It is not safe for
// concurrent use; parallelism happens within each slice.
type StackRenderer struct {
	smp        sampler
	rng        ms3.Box
	width      int
	slices     int
	workers    int
	bandHeight int
	bands      int

	pool *workerPool
	next int
	err  error
}

// NewStackRenderer validates cfg and starts the renderer's worker pool. Callers
// should call Close when done, though exhausting the renderer also stops the pool.
func NewStackRenderer(s scene.Scene, cfg Config) (*StackRenderer, error) {
	if s == nil {
		return nil, errors.New("nil scene")
	}
	res := cfg.Resolution
	if res == (ms3.Vec{}) {
		res = ms3.Vec{X: 1, Y: 1, Z: 1}
	}
	if !finite(res) || res.X <= 0 || res.Y <= 0 || res.Z <= 0 {
		return nil, fmt.Errorf("resolution must be positive and finite, got %v", res)
	}
	msaa := cfg.MSAA
	if msaa == 0 {
		msaa = MSAA1
	}
	offsets, err := msaa.Offsets()
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	switch {
	case workers < 0:
		return nil, fmt.Errorf("negative worker count %d", workers)
	case workers == 0:
		workers = runtime.NumCPU()
	}

	var rng ms3.Box
	switch bb, ok := s.Bounds(); {
	case cfg.Range != nil:
		rng = *cfg.Range
	case ok:
		half := ms3.Scale(0.5, res)
		rng = ms3.Box{Min: ms3.Sub(bb.Min, half), Max: ms3.Add(bb.Max, half)}
	default:
		rng = DefaultRange
	}
	if !finite(rng.Min) || !finite(rng.Max) {
		return nil, fmt.Errorf("range must be finite, got %v", rng)
	}
	if !(rng.Min.X < rng.Max.X && rng.Min.Y < rng.Max.Y && rng.Min.Z < rng.Max.Z) {
		return nil, fmt.Errorf("range min must be below max on every axis, got %v", rng)
	}

	span := rng.Size()
	dims := ms3.Vec{
		X: math32.Ceil(span.X / res.X),
		Y: math32.Ceil(span.Y / res.Y),
		Z: math32.Ceil(span.Z / res.Z),
	}
	if !finite(dims) || dims.X < 1 || dims.Y < 1 || dims.Z < 1 ||
		dims.X > maxStackDim || dims.Y > maxStackDim || dims.Z > maxStackDim ||
		dims.X*dims.Y > maxSlicePixels {
		return nil, fmt.Errorf("range %v at resolution %v gives unsupported stack size %v", rng, res, dims)
	}
	width := int(dims.X)
	height := int(dims.Y)
	slices := int(dims.Z)
	bandHeight := ceilDiv(height, bandsPerWorker*workers)
	bands := ceilDiv(height, bandHeight)

	r := &StackRenderer{
		smp: sampler{
			scene:   s,
			min:     rng.Min,
			res:     res,
			height:  height,
			offsets: offsets,
		},
		rng:        rng,
		width:      width,
		slices:     slices,
		workers:    workers,
		bandHeight: bandHeight,
		bands:      bands,
	}
	r.pool = newWorkerPool(&r.smp, workers, bands)
	r.pool.Start()
	logger.Debugf("stack %dx%dx%d, %d bands of %d rows, %d samples per voxel",
		width, height, slices, bands, bandHeight, len(offsets))
	return r, nil
}

// Next renders the next slice. It returns io.EOF after the last slice. A failed
// slice is returned as an error by this and all subsequent calls.
func (r *StackRenderer) Next() (*image.Gray, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.next >= r.slices {
		r.Close()
		return nil, io.EOF
	}
	if r.pool == nil {
		return nil, errClosed
	}
	slice := r.next
	img, err := r.renderSlice(slice)
	if err != nil {
		r.err = fmt.Errorf("slice %d: %w", slice, err)
		r.Close()
		return nil, r.err
	}
	r.next++
	logger.Debugf("slice %d/%d done", r.next, r.slices)
	return img, nil
}

func (r *StackRenderer) renderSlice(slice int) (*image.Gray, error) {
	h := r.smp.height
	for i := 0; i < r.bands; i++ {
		y0 := i * r.bandHeight
		y1 := min(y0+r.bandHeight, h)
		r.pool.Submit(bandTask{
			Bounds: image.Rect(0, y0, r.width, y1),
			Slice:  slice,
			TaskID: i,
		})
	}
	results := make([]bandResult, r.bands)
	for i := range results {
		results[i] = r.pool.Result()
	}
	sort.Slice(results, func(i, j int) bool { return results[i].TaskID < results[j].TaskID })

	var errs []error
	img := image.NewGray(image.Rect(0, 0, r.width, h))
	off := 0
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		off += copy(img.Pix[off:], res.Pix)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return img, nil
}

// Close stops the worker pool. It is safe to call more than once.
func (r *StackRenderer) Close() error {
	if r.pool != nil {
		r.pool.Stop()
		r.pool = nil
	}
	return nil
}

// Len returns the amount of slices not yet rendered.
func (r *StackRenderer) Len() int { return r.slices - r.next }

// Bounds returns the size of each slice in pixels.
func (r *StackRenderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.smp.height)
}

// Stats returns the layout the renderer was configured with.
func (r *StackRenderer) Stats() Stats {
	return Stats{
		Width:   r.width,
		Height:  r.smp.height,
		Slices:  r.slices,
		Workers: r.workers,
		Bands:   r.bands,
		Samples: len(r.smp.offsets),
		Range:   r.rng,
	}
}

// RenderAll reads all remaining slices of r. It does not return io.EOF.
func RenderAll(r *StackRenderer) ([]*image.Gray, error) {
	result := make([]*image.Gray, 0, r.Len())
	for {
		img, err := r.Next()
		if err == io.EOF {
			return result, nil
		} else if err != nil {
			return result, err
		}
		result = append(result, img)
	}
}

// quantize maps an average luma in [0,1] to a gray level.
func quantize(v float32) uint8 {
	q := math32.Round(255 * v)
	switch {
	case q <= 0 || math32.IsNaN(q):
		return 0
	case q >= 255:
		return 255
	}
	return uint8(q)
}

func finite(v ms3.Vec) bool {
	for _, f := range [3]float32{v.X, v.Y, v.Z} {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
