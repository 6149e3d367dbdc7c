package portalcast

import "math"

// ColumnHook is invoked once per fully-rendered screen column, after that
// column's pixels are painted, with a copy of its pixel column. Installed via
// Renderer.SetColumnHook for a single-step debug inspector; only fired when
// Renderer.Draw is running sequentially (Config.ParallelRendering false),
// since a non-parallel debug hook has no safe way to observe a
// concurrently-rendered frame. Nil by default and skipped entirely in that
// case (SPEC_FULL.md §4).
type ColumnHook func(col int, buf []uint32)

// columnContext is the per-column working state threaded through the draw
// functions below: everything find_sector_intersections's caller
// (renderer_draw) closed over as locals, lifted into a struct so a column
// can be rendered from any goroutine without touching renderer state.
type columnContext struct {
	lv      *Level
	cfg     Config
	proj    Projection
	sampler Sampler
	fb      *FrameBuffer
	x       int
	depth   []float64

	skyTexture TextureRef
	los        losTester

	topLimit, bottomLimit float64
	finished              bool

	lightBuf [MaxLightsPerCell]*Light
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mipStepDistance is the world-unit span of one mip/dimming step, used by
// the floor and ceiling kernels to derive a sampler mip hint from a
// per-pixel distance the same way the wall kernel's precomputed
// RayIntersection.DistanceSteps does.
func mipStepDistance(cfg Config) float64 {
	steps := cfg.LightSteps
	if steps <= 0 {
		steps = 4
	}
	return cfg.DimmingDistance / float64(steps)
}

// losTesterFor builds the shader's line-of-sight callback for dynamic
// shadow mode, or nil when shadows are static (resolved once at light
// attachment time) or no cache is attached yet.
func losTesterFor(lv *Level, cfg Config) losTester {
	if !cfg.DynamicShadows {
		return nil
	}
	cache := lv.Cache()
	if cache == nil {
		return nil
	}
	return cache.intersect3D
}

// renderColumn resets the draw-region band to the full buffer height and
// paints list head-first, per original_source/src/renderer.c:
// renderer_draw's per-column loop body.
func renderColumn(ctx *columnContext, list []RayIntersection) {
	ctx.topLimit = 0
	ctx.bottomLimit = float64(ctx.fb.Height)
	ctx.finished = false
	drawIntersection(ctx, list, 0)
	fillRemainder(ctx)
}

// drawIntersection is draw_column_intersection: dispatch on whether this
// hit terminated in a mirror, has a further hit behind it (segmented
// portal), or is the column's sole full wall.
func drawIntersection(ctx *columnContext, list []RayIntersection, i int) {
	if i >= len(list) {
		return
	}
	cur := &list[i]
	switch {
	case cur.IsMirror:
		drawMirror(ctx, list, i)
	case i+1 < len(list):
		drawSegmented(ctx, list, i)
	default:
		drawFullWall(ctx, cur)
	}
}

// fillRemainder paints whatever rows the draw region never reached with
// opaque black. A no-op when the column already finished naturally, since
// topLimit/bottomLimit have collapsed to the same value by then.
func fillRemainder(ctx *columnContext) {
	fillBlack(ctx, int(ctx.topLimit), int(ctx.bottomLimit))
}

func fillBlack(ctx *columnContext, from, to int) {
	if from < 0 {
		from = 0
	}
	if to > ctx.fb.Height {
		to = ctx.fb.Height
	}
	for y := from; y < to; y++ {
		ctx.fb.set(ctx.x, y, 0xFF000000)
	}
}

// drawFullWall is draw_full_wall: paint the wall's middle texture across
// its full projected span, the sector's ceiling/sky above, and floor
// below, then close the column off. Any of the three bands left
// unpainted by an absent texture (a sector with no floor texture, for
// instance) is painted black directly, rather than left for
// fillRemainder, so a painted middle band is never mistaken for
// unpainted and blacked out in its place.
func drawFullWall(ctx *columnContext, cur *RayIntersection) {
	ld := ctx.lv.Linedef(cur.Line)
	fside := &ld.Sides[cur.Side]
	front := ctx.lv.Sector(cur.FrontSector)

	sy := math.Ceil(math.Max(cur.CzLocal, ctx.topLimit))
	ey := clampf(cur.FzLocal, ctx.topLimit, ctx.bottomLimit)

	if fside.Middle != TextureNone {
		drawWallSegment(ctx, cur, fside, int(sy), int(ey), sy-float64(ctx.proj.HalfH)-cur.VzScaled, fside.Middle)
	} else {
		fillBlack(ctx, int(sy), int(ey))
	}

	if front.CeilingTexture != TextureNone {
		drawCeilingSegment(ctx, cur, int(ctx.topLimit), int(math.Min(sy, ctx.bottomLimit)))
	} else if ctx.skyTexture != TextureNone {
		drawSkySegment(ctx, cur, int(ctx.topLimit), int(math.Min(sy, ctx.bottomLimit)))
	} else {
		fillBlack(ctx, int(ctx.topLimit), int(math.Min(sy, ctx.bottomLimit)))
	}

	if front.FloorTexture != TextureNone && ctx.proj.ViewZ >= float64(front.FloorHeight) {
		drawFloorSegment(ctx, cur, int(ey), int(ctx.bottomLimit))
	} else {
		fillBlack(ctx, int(ey), int(ctx.bottomLimit))
	}

	ctx.topLimit = ctx.bottomLimit
	ctx.finished = true
}

// drawSegmented is draw_segmented_wall: paint the top and bottom sub-walls
// exposed by a portal whose neighboring sector has a different floor
// and/or ceiling height, shrink the draw region to what remains visible
// through the opening, recurse into the next (farther) intersection, and
// finally overpaint a transparent middle texture back-to-front.
//
// Only FlagPinBottom is consulted for the sub-wall texture origin on both
// the top and bottom pieces — FlagPinTop is defined on LinedefSide but
// left inert here, matching the grounded formulas verbatim.
func drawSegmented(ctx *columnContext, list []RayIntersection, i int) {
	cur := &list[i]
	ld := ctx.lv.Linedef(cur.Line)
	fside := &ld.Sides[cur.Side]
	front := ctx.lv.Sector(cur.FrontSector)
	back := ctx.lv.Sector(cur.BackSector)

	topH := (float64(front.CeilingHeight) - float64(back.CeilingHeight)) * cur.DepthScaleFactor
	bottomH := (float64(back.FloorHeight) - float64(front.FloorHeight)) * cur.DepthScaleFactor

	tsY := math.Ceil(clampf(cur.CzLocal, ctx.topLimit, ctx.bottomLimit))
	teY := math.Ceil(clampf(cur.CzLocal+topH, ctx.topLimit, ctx.bottomLimit))
	beY := clampf(cur.FzLocal, ctx.topLimit, ctx.bottomLimit)
	bsY := clampf(cur.FzLocal-bottomH, ctx.topLimit, ctx.bottomLimit)

	backHasSky := back.CeilingTexture == TextureNone

	nTop := ctx.topLimit
	nBottom := ctx.bottomLimit

	if !backHasSky {
		if topH > 0 {
			texSy := tsY - float64(ctx.proj.HalfH) - cur.VzScaled
			if fside.hasFlag(FlagPinBottom) {
				texSy -= topH
			}
			drawWallSegment(ctx, cur, fside, int(tsY), int(teY), texSy, fside.Top)
			if fside.Top == TextureNone {
				fillBlack(ctx, int(tsY), int(teY))
			}
			nTop = teY
		} else {
			nTop = tsY
		}
	}

	if bottomH > 0 {
		texSy := bsY - float64(ctx.proj.HalfH) - cur.VzScaled
		if fside.hasFlag(FlagPinBottom) {
			texSy += bottomH
		}
		drawWallSegment(ctx, cur, fside, int(bsY), int(beY), texSy, fside.Bottom)
		if fside.Bottom == TextureNone {
			fillBlack(ctx, int(bsY), int(beY))
		}
		nBottom = bsY
	} else {
		nBottom = beY
	}

	if front.CeilingTexture != TextureNone {
		drawCeilingSegment(ctx, cur, int(ctx.topLimit), int(tsY))
		if backHasSky {
			nTop = tsY
		}
	} else if ctx.skyTexture != TextureNone {
		drawSkySegment(ctx, cur, int(ctx.topLimit), int(math.Max(tsY, ctx.topLimit)))
	} else {
		fillBlack(ctx, int(ctx.topLimit), int(math.Max(tsY, ctx.topLimit)))
	}

	if front.FloorTexture != TextureNone && ctx.proj.ViewZ >= float64(front.FloorHeight) {
		drawFloorSegment(ctx, cur, int(beY), int(ctx.bottomLimit))
	} else {
		fillBlack(ctx, int(beY), int(ctx.bottomLimit))
	}

	ctx.topLimit = nTop
	ctx.bottomLimit = nBottom

	collapsed := int(ctx.topLimit) == int(ctx.bottomLimit)
	if !collapsed && !back.IsClosed() {
		drawIntersection(ctx, list, i+1)
	} else {
		fillBlack(ctx, int(ctx.topLimit), int(ctx.bottomLimit))
		ctx.topLimit = ctx.bottomLimit
		ctx.finished = true
	}

	if fside.Middle != TextureNone {
		drawWallSegment(ctx, cur, fside, int(nTop), int(nBottom), nTop-float64(ctx.proj.HalfH)-cur.VzScaled, fside.Middle)
	}
}

// drawMirror paints the surrounding sector (ceiling/sky above, floor
// below) up to the mirror's own projected wall extent, recurses into the
// reflected ray's continuation within that same band, and finally
// overpaints the mirror's own transparent middle texture on top — the
// reflection shows through wherever the mirror's texture is masked out,
// and the silvered texture wins wherever it isn't.
func drawMirror(ctx *columnContext, list []RayIntersection, i int) {
	cur := &list[i]
	ld := ctx.lv.Linedef(cur.Line)
	fside := &ld.Sides[cur.Side]
	front := ctx.lv.Sector(cur.FrontSector)

	sy := math.Ceil(math.Max(cur.CzLocal, ctx.topLimit))
	ey := clampf(cur.FzLocal, ctx.topLimit, ctx.bottomLimit)

	if front.CeilingTexture != TextureNone {
		drawCeilingSegment(ctx, cur, int(ctx.topLimit), int(math.Min(sy, ctx.bottomLimit)))
	} else if ctx.skyTexture != TextureNone {
		drawSkySegment(ctx, cur, int(ctx.topLimit), int(math.Min(sy, ctx.bottomLimit)))
	} else {
		fillBlack(ctx, int(ctx.topLimit), int(math.Min(sy, ctx.bottomLimit)))
	}

	if front.FloorTexture != TextureNone && ctx.proj.ViewZ >= float64(front.FloorHeight) {
		drawFloorSegment(ctx, cur, int(ey), int(ctx.bottomLimit))
	} else {
		fillBlack(ctx, int(ey), int(ctx.bottomLimit))
	}

	ctx.topLimit = sy
	ctx.bottomLimit = ey

	collapsed := int(ctx.topLimit) == int(ctx.bottomLimit)
	if !collapsed && i+1 < len(list) {
		drawIntersection(ctx, list, i+1)
	} else {
		fillBlack(ctx, int(ctx.topLimit), int(ctx.bottomLimit))
		ctx.topLimit = ctx.bottomLimit
		ctx.finished = true
	}

	if fside.Middle != TextureNone {
		drawWallSegment(ctx, cur, fside, int(sy), int(ey), sy-float64(ctx.proj.HalfH)-cur.VzScaled, fside.Middle)
	}
}

// drawWallSegment is draw_wall_segment: step down the column sampling one
// vertical texture column, shading each opaque pixel with whichever
// linedef segment's light list covers the intersection's position along
// the wall.
func drawWallSegment(ctx *columnContext, cur *RayIntersection, fside *LinedefSide, from, to int, textureStartY float64, tex TextureRef) {
	if from >= to || tex == TextureNone {
		return
	}
	if from < 0 {
		from = 0
	}
	if to > ctx.fb.Height {
		to = ctx.fb.Height
	}

	ld := ctx.lv.Linedef(cur.Line)
	textureStep := cur.PlanarDistance / ctx.proj.UnitSize
	textureX := cur.LineDet * ld.Length

	segIdx := int(math.Floor(float64(len(fside.Segments)) * cur.LineDet))
	if segIdx >= len(fside.Segments) {
		segIdx = len(fside.Segments) - 1
	}
	if segIdx < 0 {
		segIdx = 0
	}
	lights := ctx.lv.lightsInto(fside.Segments[segIdx].Lights(), ctx.lightBuf[:])

	front := ctx.lv.Sector(cur.FrontSector)
	pointDistance := 1 / cur.PointDistanceInverse

	var cached float64
	if len(lights) == 0 {
		cached = BasicBrightness(front.Brightness, pointDistance, ctx.cfg)
	}

	mip := uint8(1 + cur.DistanceSteps)
	textureY := textureStartY * textureStep

	for y := from; y < to; y++ {
		rgb, mask := ctx.sampler.SampleScaled(tex, textureX, textureY, mip)
		if mask != 0 {
			light := cached
			if len(lights) > 0 {
				pos := vec3{cur.Point.X, cur.Point.Y, -textureY}
				light = VerticalSurfaceLight(front.Brightness, pos, lights, pointDistance, ctx.cfg, ctx.los)
			}
			ctx.fb.set(ctx.x, y, ctx.fb.pack(rgb, light))
		}
		textureY += textureStep
	}
}

// drawFloorSegment is draw_floor_segment: cast each remaining row's depth
// via the precomputed 1/(y+1) table, blend between the intersection point
// and the ray's perspective origin by that row's distance, and sample the
// floor texture and per-cell lights at the resulting world position.
func drawFloorSegment(ctx *columnContext, cur *RayIntersection, from, to int) {
	front := ctx.lv.Sector(cur.FrontSector)
	if from >= to || ctx.proj.ViewZ < float64(front.FloorHeight) || front.FloorTexture == TextureNone {
		return
	}
	if from < 0 {
		from = 0
	}
	if to > ctx.fb.Height {
		to = ctx.fb.Height
	}

	distanceFromView := (ctx.proj.ViewZ - float64(front.FloorHeight)) * ctx.proj.UnitSize
	stepDist := mipStepDistance(ctx.cfg)

	for y := from; y < to; y++ {
		idx := y - ctx.proj.HalfH
		if idx < 0 {
			idx = 0
		} else if idx >= len(ctx.depth) {
			idx = len(ctx.depth) - 1
		}
		distance := distanceFromView * ctx.depth[idx]
		weight := distance * cur.PointDistanceInverse
		if weight > 1 {
			weight = 1
		}
		wx := weight*cur.Point.X + (1-weight)*cur.RayOrigin.X
		wy := weight*cur.Point.Y + (1-weight)*cur.RayOrigin.Y

		var lights []*Light
		if cache := ctx.lv.Cache(); cache != nil {
			if hs, _, ok := cache.CellAt(Vec2{wx, wy}); ok {
				lights = ctx.lv.lightsInto(hs, ctx.lightBuf[:])
			}
		}

		mip := uint8(1 + int(distance/stepDist))
		rgb, _ := ctx.sampler.SampleScaled(front.FloorTexture, wx, wy, mip)

		light := BasicBrightness(front.Brightness, distance, ctx.cfg)
		if len(lights) > 0 {
			light = HorizontalSurfaceLight(front.Brightness, vec3{wx, wy, float64(front.FloorHeight)}, true, lights, distance, ctx.cfg, ctx.los)
		}
		ctx.fb.set(ctx.x, y, ctx.fb.pack(rgb, light))
	}
}

// drawCeilingSegment mirrors drawFloorSegment, walking from the horizon
// upward instead of downward.
func drawCeilingSegment(ctx *columnContext, cur *RayIntersection, from, to int) {
	front := ctx.lv.Sector(cur.FrontSector)
	if from >= to || ctx.proj.ViewZ > float64(front.CeilingHeight) || front.CeilingTexture == TextureNone {
		return
	}
	if from < 0 {
		from = 0
	}
	if to > ctx.fb.Height {
		to = ctx.fb.Height
	}

	distanceFromView := (float64(front.CeilingHeight) - ctx.proj.ViewZ) * ctx.proj.UnitSize
	stepDist := mipStepDistance(ctx.cfg)

	yz := ctx.proj.HalfH - from - 1
	for y := from; y < to; y++ {
		idx := yz
		yz--
		if idx < 0 {
			idx = 0
		} else if idx >= len(ctx.depth) {
			idx = len(ctx.depth) - 1
		}
		distance := distanceFromView * ctx.depth[idx]
		weight := distance * cur.PointDistanceInverse
		if weight > 1 {
			weight = 1
		}
		wx := weight*cur.Point.X + (1-weight)*cur.RayOrigin.X
		wy := weight*cur.Point.Y + (1-weight)*cur.RayOrigin.Y

		var lights []*Light
		if cache := ctx.lv.Cache(); cache != nil {
			if hs, _, ok := cache.CellAt(Vec2{wx, wy}); ok {
				lights = ctx.lv.lightsInto(hs, ctx.lightBuf[:])
			}
		}

		mip := uint8(1 + int(distance/stepDist))
		rgb, _ := ctx.sampler.SampleScaled(front.CeilingTexture, wx, wy, mip)

		light := BasicBrightness(front.Brightness, distance, ctx.cfg)
		if len(lights) > 0 {
			light = HorizontalSurfaceLight(front.Brightness, vec3{wx, wy, float64(front.CeilingHeight)}, false, lights, distance, ctx.cfg, ctx.los)
		}
		ctx.fb.set(ctx.x, y, ctx.fb.pack(rgb, light))
	}
}

// drawSkySegment paints the level's sky texture, sampled by the ray's
// azimuth (normalized to a horizontal scroll coordinate) and the row's
// vertical position relative to the pitch-adjusted horizon.
func drawSkySegment(ctx *columnContext, cur *RayIntersection, from, to int) {
	if from >= to || ctx.skyTexture == TextureNone {
		return
	}
	if from < 0 {
		from = 0
	}
	if to > ctx.fb.Height {
		to = ctx.fb.Height
	}

	angle := math.Atan2(cur.RayDirection.X, cur.RayDirection.Y)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	skyX := angle / (2 * math.Pi)
	h := float64(ctx.fb.Height)

	for y := from; y < to; y++ {
		v := math.Min(1, 0.5+float64(y-ctx.proj.PitchOffset)/h)
		rgb, _ := ctx.sampler.SampleNormalized(ctx.skyTexture, skyX, v, 1)
		ctx.fb.set(ctx.x, y, ctx.fb.pack(rgb, 1.0))
	}
}
