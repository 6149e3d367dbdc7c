package portalcast

// MaxSectorHistory bounds how many distinct sectors a single column's ray
// walk may visit before the tracer stops descending through portals.
const MaxSectorHistory = 64

// MaxLineHitsPerColumn bounds how many intersections a single column's
// trace may record, across every sector visited and every mirror bounce.
const MaxLineHitsPerColumn = 48

// Ray is the per-column (and, after a mirror bounce, per-reflection) ray
// state the tracer walks with: Start is where the next sector-intersection
// search begins, Origin is the perspective origin used for the column
// renderer's floor/ceiling perspective blend and reflected by mirrors
// independently of Start, ViewDirection is a unit vector, Direction is the
// column's ray direction (not unit length: its component along
// ViewDirection is 1), and ThetaInverse is the perspective-correction
// factor 1/(viewDir . dir).
type Ray struct {
	Origin        Vec2
	Start         Vec2
	Direction     Vec2
	ViewDirection Vec2
	ThetaInverse  float64
}

// RayIntersection is one ray/linedef hit, carrying everything the column
// renderer and shader need without re-deriving geometry (spec §4.3).
type RayIntersection struct {
	Point                Vec2
	PlanarDistance       float64
	PointDistanceInverse float64
	DepthScaleFactor     float64
	CzLocal, FzLocal     float64
	VzScaled             float64
	// LineDet is the intersection's fraction along the linedef (the
	// line_det of spec §4.3), used as the wall texture's u-coordinate.
	LineDet     float64
	Line        LinedefHandle
	FrontSector SectorHandle
	// BackSector is invalidHandle for a full (non-portal) wall.
	BackSector SectorHandle
	Side       int
	// DistanceSteps is the light-step index (distance/step); it is always
	// set and serves as the wall sampler's mip hint. LightFalloff is the
	// continuous analog, set only when Config.LightSteps is 0. The shading
	// kernels read neither; they take the distance directly.
	DistanceSteps int
	LightFalloff  float64
	// IsMirror marks an intersection that terminated a sub-walk at a
	// mirror surface; its Next entry (by list order) is the reflected
	// ray's first hit, not a portal continuation.
	IsMirror bool
	// RayOrigin/RayDirection are the Ray.Origin/Direction in effect when
	// this intersection was found, carried per-hit because they change
	// across mirror bounces within the same column.
	RayOrigin    Vec2
	RayDirection Vec2
}

// lineSide is the oriented cross-product test used for linedef back-face
// culling: the sign of (b-a) x (p-a). Matches the convention the level
// builder's winding-flip relies on (sector.go: signedArea), so side 0
// culls when positive and side 1 culls when negative, symmetrically.
func lineSide(a, b, p Vec2) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}

// tracer holds one column's bounded working set: the intersection list
// (append-ordered), its sorted index (insertion-sorted by planar
// distance), and the sector-history set for the current sub-walk. All
// three are reused across mirror bounces within the column, so the hot
// path allocates only these three slices, once in TraceColumn, plus the
// returned result slice.
type tracer struct {
	lv   *Level
	cfg  Config
	proj Projection

	list    []RayIntersection
	order   []int
	history []SectorHandle

	fullWall int // index into list for the current sub-walk, or -1
}

// TraceColumn casts one screen column's ray through the level starting in
// rootSector, returning the ordered intersection list the column renderer
// consumes head-first (spec §4.3). Mirror recursion (spec §4.3/§9) is
// driven by the outer loop: each pass walks one ray until it terminates at
// a full wall, and continues reflecting through mirror walls until a
// non-mirror terminator is hit or a budget is exhausted.
func TraceColumn(lv *Level, cfg Config, proj Projection, rootSector SectorHandle, viewPos, viewDir, rayDir Vec2) []RayIntersection {
	t := &tracer{
		lv:      lv,
		cfg:     cfg,
		proj:    proj,
		list:    make([]RayIntersection, 0, MaxLineHitsPerColumn),
		order:   make([]int, 0, MaxLineHitsPerColumn),
		history: make([]SectorHandle, 0, MaxSectorHistory),
	}

	ray := Ray{
		Origin:        viewPos,
		Start:         viewPos,
		Direction:     rayDir,
		ViewDirection: viewDir,
	}
	ray.ThetaInverse = 1 / viewDir.Dot(rayDir)

	sector := rootSector
	accum := 0.0

	for sector != invalidHandle && len(t.list) < MaxLineHitsPerColumn {
		t.history = t.history[:0]
		t.fullWall = -1

		t.walk(sector, ray, accum)

		if t.fullWall < 0 {
			break
		}
		t.insertSorted(t.fullWall)
		// Anything farther than this bounce's terminator was recorded
		// speculatively before the terminator's own distance was known
		// (find_sector_intersections can still shrink full_wall after a
		// portal has already been queued); drop it the way the original
		// renderer does by truncating the chain right after full_wall.
		for i, idx := range t.order {
			if idx == t.fullWall {
				t.order = t.order[:i+1]
				break
			}
		}

		fw := &t.list[t.fullWall]
		ld := t.lv.Linedef(fw.Line)
		side := &ld.Sides[fw.Side]
		if !side.hasFlag(FlagMirror) {
			break
		}

		a := t.lv.Vertex(ld.V0).Point
		b := t.lv.Vertex(ld.V1).Point

		fw.IsMirror = true
		accum = fw.PlanarDistance / t.cfg.DrawDistance
		ray.Origin = reflectPointAboutLine(ray.Origin, a, b)
		ray.Start = fw.Point
		ray.Direction = ray.Direction.Reflect(side.Normal)
		ray.ViewDirection = ray.ViewDirection.Reflect(side.Normal)
		ray.ThetaInverse = 1 / ray.ViewDirection.Dot(ray.Direction)
		sector = fw.FrontSector
	}

	result := make([]RayIntersection, len(t.order))
	for i, idx := range t.order {
		result[i] = t.list[idx]
	}
	return result
}

// walk is find_sector_intersections (spec §4.3): it visits sect once per
// sub-walk, intersecting the ray against every one of its linedefs,
// inserting portal hits into the sorted list and recursing into their
// back sector, and tracking the closest non-portal (or closed-back)
// terminator in t.fullWall.
func (t *tracer) walk(sect SectorHandle, ray Ray, accum float64) {
	if len(t.history) >= MaxSectorHistory {
		return
	}
	for _, s := range t.history {
		if s == sect {
			return
		}
	}
	t.history = append(t.history, sect)

	secPtr := t.lv.Sector(sect)
	rayVec := ray.Direction.Scale(t.cfg.DrawDistance)

	for _, lh := range secPtr.Linedefs {
		if len(t.list) >= MaxLineHitsPerColumn {
			return
		}
		ld := t.lv.Linedef(lh)
		side := ld.sideOf(sect)
		if side < 0 {
			continue
		}
		a := t.lv.Vertex(ld.V0).Point
		b := t.lv.Vertex(ld.V1).Point

		s := lineSide(a, b, ray.Start)
		backFacing := (side == 0 && s > 0) || (side == 1 && s < 0)
		if backFacing && !ld.Sides[side].hasFlag(FlagStaticDetail) {
			continue
		}

		rayDet, lineDet, ok := segmentIntersect(ray.Start, rayVec, a, b)
		if !ok || rayDet <= 0 || lineDet < 0 || lineDet > 1 {
			continue
		}

		planarDistance := (accum + rayDet) * t.cfg.DrawDistance
		if planarDistance > t.cfg.DrawDistance {
			break
		}

		point := ray.Start.Add(rayVec.Scale(rayDet))
		pointDistance := planarDistance * ray.ThetaInverse
		depthScale := t.proj.UnitSize / planarDistance
		czScaled := float64(secPtr.CeilingHeight) * depthScale
		fzScaled := float64(secPtr.FloorHeight) * depthScale
		vzScaled := t.proj.ViewZ * depthScale

		ri := RayIntersection{
			Point:                point,
			PlanarDistance:       planarDistance,
			PointDistanceInverse: 1 / pointDistance,
			DepthScaleFactor:     depthScale,
			CzLocal:              float64(t.proj.HalfH) - czScaled + vzScaled,
			FzLocal:              float64(t.proj.HalfH) - fzScaled + vzScaled,
			VzScaled:             vzScaled,
			LineDet:              lineDet,
			Line:                 lh,
			FrontSector:          sect,
			BackSector:           invalidHandle,
			Side:                 side,
			RayOrigin:            ray.Origin,
			RayDirection:         ray.Direction,
		}
		// DistanceSteps is always derived (it doubles as the sampler's mip
		// hint regardless of dimming mode); a step count of 4 stands in
		// for "no quantized dimming" the way the original engine's
		// LIGHT_STEP_DISTANCE_INVERSE falls back to DIMMING_DISTANCE/4.
		steps := t.cfg.LightSteps
		if steps <= 0 {
			steps = 4
		}
		ri.DistanceSteps = int(pointDistance / (t.cfg.DimmingDistance / float64(steps)))
		if t.cfg.LightSteps <= 0 {
			ri.LightFalloff = pointDistance / t.cfg.DimmingDistance
		}

		idx := len(t.list)
		t.list = append(t.list, ri)

		back := ld.Sides[1-side].Sector
		closer := t.fullWall < 0 || planarDistance < t.list[t.fullWall].PlanarDistance
		if back != invalidHandle && !t.lv.Sector(back).IsClosed() {
			t.list[idx].BackSector = back
			if closer {
				t.insertSorted(idx)
				t.walk(back, ray, accum)
			}
		} else if closer {
			t.fullWall = idx
		}
	}
}

// insertSorted inserts t.list[idx] into t.order keeping it sorted
// ascending by planar distance, ties broken by insertion order (spec's
// ordering guarantee).
func (t *tracer) insertSorted(idx int) {
	d := t.list[idx].PlanarDistance
	pos := len(t.order)
	for i, oidx := range t.order {
		if t.list[oidx].PlanarDistance > d {
			pos = i
			break
		}
	}
	t.order = append(t.order, 0)
	copy(t.order[pos+1:], t.order[pos:])
	t.order[pos] = idx
}
