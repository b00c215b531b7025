package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask/scene"
)

// bandTask is a horizontal strip of one slice.
type bandTask struct {
	Bounds image.Rectangle
	Slice  int
	TaskID int // Band index, used to reassemble the slice in order.
}

type bandResult struct {
	TaskID int
	Pix    []uint8 // Row-major, Bounds.Dx() bytes per row.
	Err    error
}

// sampler holds the read-only parameters shared by all workers.
type sampler struct {
	scene   scene.Scene
	min     ms3.Vec
	res     ms3.Vec
	height  int
	offsets []ms3.Vec
}

// workerPool is a fixed set of goroutines rendering bands.
type workerPool struct {
	taskQueue   chan bandTask
	resultQueue chan bandResult
	numWorkers  int
	wg          sync.WaitGroup
	smp         *sampler
}

func newWorkerPool(smp *sampler, numWorkers, queueSize int) *workerPool {
	return &workerPool{
		taskQueue:   make(chan bandTask, queueSize),
		resultQueue: make(chan bandResult, queueSize),
		numWorkers:  numWorkers,
		smp:         smp,
	}
}

func (wp *workerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop waits for in-flight tasks and shuts down all workers.
func (wp *workerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

func (wp *workerPool) Submit(task bandTask) {
	wp.taskQueue <- task
}

func (wp *workerPool) Result() bandResult {
	return <-wp.resultQueue
}

func (wp *workerPool) run() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		wp.resultQueue <- wp.smp.renderBand(task)
	}
}

// renderBand classifies every pixel of the band. A panic while sampling the
// scene is returned as the result's error.
func (smp *sampler) renderBand(task bandTask) (result bandResult) {
	result.TaskID = task.TaskID
	defer func() {
		if r := recover(); r != nil {
			result.Pix = nil
			result.Err = fmt.Errorf("band %d of slice %d panicked: %v", task.TaskID, task.Slice, r)
		}
	}()
	b := task.Bounds
	w := b.Dx()
	pix := make([]uint8, w*b.Dy())
	z := float32(task.Slice)
	n := float32(len(smp.offsets))
	for row := b.Min.Y; row < b.Max.Y; row++ {
		y := float32(smp.height - 1 - row)
		for x := b.Min.X; x < b.Max.X; x++ {
			var sum float32
			for _, o := range smp.offsets {
				p := ms3.Add(smp.min, ms3.MulElem(smp.res, ms3.Vec{X: float32(x) + o.X, Y: y + o.Y, Z: z + o.Z}))
				sum += luma(smp.scene.Hit(p))
			}
			pix[(row-b.Min.Y)*w+x-b.Min.X] = quantize(sum / n)
		}
	}
	result.Pix = pix
	return result
}

func luma(c ms3.Vec) float32 {
	return 0.2126*c.X + 0.7152*c.Y + 0.0722*c.Z
}
