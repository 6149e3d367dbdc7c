package portalcast

import (
	"runtime"
	"sync"
)

// PixelFormat selects the byte order Renderer.Draw packs pixels into.
type PixelFormat int

const (
	// PixelFormatARGB8888 packs 0xFF000000 | (R<<16) | (G<<8) | B.
	PixelFormatARGB8888 PixelFormat = iota
	// PixelFormatABGR8888 packs 0xFF000000 | (B<<16) | (G<<8) | R.
	PixelFormatABGR8888
)

// FrameBuffer is the renderer's output: a flat pixel array in row-major
// order at the given byte order.
type FrameBuffer struct {
	Width, Height int
	Pixels        []uint32

	format PixelFormat
}

func newFrameBuffer(w, h int, format PixelFormat) *FrameBuffer {
	return &FrameBuffer{Width: w, Height: h, Pixels: make([]uint32, w*h), format: format}
}

func (fb *FrameBuffer) set(x, y int, v uint32) {
	fb.Pixels[y*fb.Width+x] = v
}

func (fb *FrameBuffer) pack(rgb [3]uint8, brightness float64) uint32 {
	if fb.format == PixelFormatABGR8888 {
		return packABGR(rgb, brightness)
	}
	return PackARGB(rgb, brightness)
}

// columnPixels copies column x's pixels out of the frame buffer's
// row-major storage into a contiguous top-to-bottom slice, for
// Renderer.Draw's column hook.
func (fb *FrameBuffer) columnPixels(x int) []uint32 {
	buf := make([]uint32, fb.Height)
	for y := 0; y < fb.Height; y++ {
		buf[y] = fb.Pixels[y*fb.Width+x]
	}
	return buf
}

// Renderer owns the output frame buffer, the per-row depth reciprocal
// table (original_source/src/renderer.c: init_depth_values), and the
// sampler every draw call uses, and dispatches one ray trace plus column
// render per screen column.
type Renderer struct {
	fb      *FrameBuffer
	depth   []float64
	sampler Sampler
	hook    ColumnHook
}

// NewRenderer creates a renderer targeting a w x h ARGB8888 frame buffer,
// defaulting to PlaceholderSampler until SetSampler wires a real one.
func NewRenderer(w, h int) *Renderer {
	r := &Renderer{sampler: PlaceholderSampler{}}
	r.Init(w, h)
	return r
}

// Init (re)allocates the frame buffer and depth table for size w x h,
// keeping the current pixel format, per original_source/src/renderer.c:
// renderer_init.
func (r *Renderer) Init(w, h int) {
	format := PixelFormatARGB8888
	if r.fb != nil {
		format = r.fb.format
	}
	r.fb = newFrameBuffer(w, h, format)
	r.rebuildDepth()
}

// Resize is Init's live-renderer counterpart, per renderer_resize.
func (r *Renderer) Resize(w, h int) { r.Init(w, h) }

func (r *Renderer) rebuildDepth() {
	r.depth = make([]float64, r.fb.Height)
	for y := range r.depth {
		r.depth[y] = 1 / float64(y+1)
	}
}

// Destroy releases the renderer's buffers; Draw must not be called again
// until Init reallocates them.
func (r *Renderer) Destroy() {
	r.fb = nil
	r.depth = nil
}

// Buffer returns the renderer's current frame buffer.
func (r *Renderer) Buffer() *FrameBuffer { return r.fb }

// SetSampler wires the texture sampling capability every draw call uses.
func (r *Renderer) SetSampler(s Sampler) { r.sampler = s }

// SetPixelFormat selects the byte order subsequent draws pack pixels into.
func (r *Renderer) SetPixelFormat(format PixelFormat) {
	if r.fb != nil {
		r.fb.format = format
	}
}

// SetColumnHook installs a debug callback invoked once per column, after
// that column is fully rendered, for a single-step render inspector. Only
// fires while Draw is running sequentially; dormant under parallel
// rendering, since firing a caller-supplied callback from concurrent
// goroutines would hand it unsynchronized access to shared state with no
// way for Draw to guarantee safety. Pass nil to remove it.
func (r *Renderer) SetColumnHook(hook ColumnHook) { r.hook = hook }

// Draw traces and renders every screen column for lv and cam into the
// renderer's frame buffer, per original_source/src/renderer.c:
// renderer_draw. When cfg.ParallelRendering is set, columns are dispatched
// across a worker pool bounded by cfg.MaxWorkers (or runtime.GOMAXPROCS(0)
// when zero) using a buffered semaphore, grounded on the teacher corpus's
// raycaster worker pool; every column only ever reads shared level state
// and writes its own buffer column, so the frame is bit-identical to the
// sequential path regardless of goroutine interleaving (testable property
// 9).
func (r *Renderer) Draw(lv *Level, cam *Camera, cfg Config) {
	proj := cam.Projection(r.fb.Width, r.fb.Height)
	root := cam.Sector()
	los := losTesterFor(lv, cfg)
	sky := lv.SkyTexture()

	draw := func(x int) {
		rayDir := cam.rayDirection(x, r.fb.Width)
		list := TraceColumn(lv, cfg, proj, root, cam.Position, cam.Direction, rayDir)
		ctx := &columnContext{
			lv: lv, cfg: cfg, proj: proj, sampler: r.sampler, fb: r.fb, x: x,
			depth: r.depth, skyTexture: sky, los: los,
		}
		renderColumn(ctx, list)
	}

	if !cfg.ParallelRendering {
		for x := 0; x < r.fb.Width; x++ {
			draw(x)
			if r.hook != nil {
				r.hook(x, r.fb.columnPixels(x))
			}
		}
		return
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for x := 0; x < r.fb.Width; x++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(x int) {
			defer wg.Done()
			defer func() { <-sem }()
			draw(x)
		}(x)
	}
	wg.Wait()
}
