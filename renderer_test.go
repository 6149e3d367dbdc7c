package portalcast

import "testing"

func TestNewRendererAllocatesFrameBuffer(t *testing.T) {
	r := NewRenderer(64, 48)
	fb := r.Buffer()
	if fb == nil {
		t.Fatal("Buffer() is nil after NewRenderer")
	}
	if fb.Width != 64 || fb.Height != 48 {
		t.Errorf("frame buffer size = %dx%d, want 64x48", fb.Width, fb.Height)
	}
	if len(fb.Pixels) != 64*48 {
		t.Errorf("len(Pixels) = %d, want %d", len(fb.Pixels), 64*48)
	}
}

func TestRendererResizeReallocates(t *testing.T) {
	r := NewRenderer(64, 48)
	r.Resize(32, 32)
	fb := r.Buffer()
	if fb.Width != 32 || fb.Height != 32 {
		t.Errorf("size after Resize = %dx%d, want 32x32", fb.Width, fb.Height)
	}
}

func TestRendererDestroyClearsBuffers(t *testing.T) {
	r := NewRenderer(16, 16)
	r.Destroy()
	if r.Buffer() != nil {
		t.Error("Buffer() should be nil after Destroy")
	}
}

func TestRendererSetPixelFormatAffectsPacking(t *testing.T) {
	r := NewRenderer(4, 4)
	fb := r.Buffer()
	argb := fb.pack([3]uint8{10, 20, 30}, 1.0)
	r.SetPixelFormat(PixelFormatABGR8888)
	abgr := r.Buffer().pack([3]uint8{10, 20, 30}, 1.0)
	if argb == abgr {
		t.Error("switching pixel format should change how channels are packed")
	}
}

func TestRendererDrawSequentialMatchesParallel(t *testing.T) {
	cfg := DefaultConfig()
	lv, _ := buildBoxLevel(t)
	cache := BuildMapCache(lv, 50)
	lv.AttachCache(cache)
	cam := NewCamera(lv, Vec2{X: 50, Y: 50}, 40, Vec2{X: 1, Y: 0})

	seq := NewRenderer(64, 48)
	seq.SetSampler(PlaceholderSampler{})
	seq.Draw(lv, cam, cfg)

	par := NewRenderer(64, 48)
	par.SetSampler(PlaceholderSampler{})
	parCfg := cfg
	parCfg.ParallelRendering = true
	parCfg.MaxWorkers = 4
	par.Draw(lv, cam, parCfg)

	seqPixels := seq.Buffer().Pixels
	parPixels := par.Buffer().Pixels
	if len(seqPixels) != len(parPixels) {
		t.Fatalf("buffer sizes differ: %d vs %d", len(seqPixels), len(parPixels))
	}
	for i := range seqPixels {
		if seqPixels[i] != parPixels[i] {
			t.Fatalf("pixel %d differs: sequential=%08x parallel=%08x", i, seqPixels[i], parPixels[i])
		}
	}
}

func TestRendererDrawInvokesColumnHook(t *testing.T) {
	cfg := DefaultConfig()
	lv, _ := buildBoxLevel(t)
	cache := BuildMapCache(lv, 50)
	lv.AttachCache(cache)
	cam := NewCamera(lv, Vec2{X: 50, Y: 50}, 40, Vec2{X: 1, Y: 0})

	r := NewRenderer(32, 24)
	r.SetSampler(PlaceholderSampler{})
	calls := 0
	r.SetColumnHook(func(col int, buf []uint32) {
		if len(buf) != 24 {
			t.Errorf("column hook buf length = %d, want 24", len(buf))
		}
		calls++
	})
	r.Draw(lv, cam, cfg)
	if calls != 32 {
		t.Errorf("column hook called %d times, want 32 (one per column, sequential rendering)", calls)
	}
}

func TestRendererDrawSkipsColumnHookWhenParallel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParallelRendering = true
	cfg.MaxWorkers = 4
	lv, _ := buildBoxLevel(t)
	cache := BuildMapCache(lv, 50)
	lv.AttachCache(cache)
	cam := NewCamera(lv, Vec2{X: 50, Y: 50}, 40, Vec2{X: 1, Y: 0})

	r := NewRenderer(32, 24)
	r.SetSampler(PlaceholderSampler{})
	calls := 0
	r.SetColumnHook(func(col int, buf []uint32) {
		calls++
	})
	r.Draw(lv, cam, cfg)
	if calls != 0 {
		t.Errorf("column hook called %d times under parallel rendering, want 0", calls)
	}
}
