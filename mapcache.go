package portalcast

import "math"

// DefaultCellSize is the grid cell edge used by BuildMapCache when none is
// supplied.
const DefaultCellSize = 256.0

// MaxLightsPerCell bounds how many lights a single cache cell may list
// (invariant 6: "lights per cache cell likewise bounded").
const MaxLightsPerCell = 16

// cacheCell stores the linedefs whose AABB touches it and the lights whose
// disc overlaps it, per spec §4.2.
type cacheCell struct {
	linedefs []LinedefHandle
	lights   []LightHandle
}

// MapCache is a regular 2-D grid over a level's bounds, offering O(1)
// point-to-cell lookup and a grid-accelerated 3-D line-of-sight test.
type MapCache struct {
	level    *Level
	cellSize float64
	minX, minY float64
	cols, rows int
	cells      []cacheCell
}

// BuildMapCache constructs a grid over lv's current linedef bounds with the
// given cell edge length, scans every linedef into its overlapping cells,
// and attaches itself to lv so UpdateLights can register lights.
func BuildMapCache(lv *Level, cellSize float64) *MapCache {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range lv.linedefs {
		ld := &lv.linedefs[i]
		minX = math.Min(minX, ld.MinX)
		minY = math.Min(minY, ld.MinY)
		maxX = math.Max(maxX, ld.MaxX)
		maxY = math.Max(maxY, ld.MaxY)
	}
	if math.IsInf(minX, 1) {
		minX, minY, maxX, maxY = 0, 0, cellSize, cellSize
	}

	cols := int(math.Ceil((maxX-minX)/cellSize)) + 1
	rows := int(math.Ceil((maxY-minY)/cellSize)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	mc := &MapCache{
		level:    lv,
		cellSize: cellSize,
		minX:     minX,
		minY:     minY,
		cols:     cols,
		rows:     rows,
		cells:    make([]cacheCell, cols*rows),
	}

	for i := range lv.linedefs {
		ld := &lv.linedefs[i]
		mc.forEachCellInRect(ld.MinX, ld.MinY, ld.MaxX, ld.MaxY, func(idx int) {
			mc.cells[idx].linedefs = append(mc.cells[idx].linedefs, LinedefHandle(i))
		})
	}

	lv.AttachCache(mc)
	return mc
}

func (mc *MapCache) cellIndex(col, row int) int { return row*mc.cols + col }

func (mc *MapCache) colRow(p Vec2) (col, row int) {
	col = int((p.X - mc.minX) / mc.cellSize)
	row = int((p.Y - mc.minY) / mc.cellSize)
	return
}

func (mc *MapCache) inBounds(col, row int) bool {
	return col >= 0 && col < mc.cols && row >= 0 && row < mc.rows
}

// CellAt returns the cache cell covering world point p, or ok=false if p is
// outside the grid.
func (mc *MapCache) CellAt(p Vec2) (lights []LightHandle, linedefs []LinedefHandle, ok bool) {
	col, row := mc.colRow(p)
	if !mc.inBounds(col, row) {
		return nil, nil, false
	}
	c := &mc.cells[mc.cellIndex(col, row)]
	return c.lights, c.linedefs, true
}

func (mc *MapCache) forEachCellInRect(minX, minY, maxX, maxY float64, fn func(cellIndex int)) {
	minCol, minRow := mc.colRow(Vec2{minX, minY})
	maxCol, maxRow := mc.colRow(Vec2{maxX, maxY})
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !mc.inBounds(col, row) {
				continue
			}
			fn(mc.cellIndex(col, row))
		}
	}
}

func (mc *MapCache) clearLights() {
	for i := range mc.cells {
		mc.cells[i].lights = mc.cells[i].lights[:0]
	}
}

// processLight re-registers light h into every cell its disc overlaps,
// replacing any stale registration left by a previous UpdateLights pass
// (the caller clears all cell light lists first).
func (mc *MapCache) processLight(lv *Level, h LightHandle) {
	light := &lv.lights[h]
	minX, minY := light.Position.X-light.Radius, light.Position.Y-light.Radius
	maxX, maxY := light.Position.X+light.Radius, light.Position.Y+light.Radius

	mc.forEachCellInRect(minX, minY, maxX, maxY, func(idx int) {
		cell := &mc.cells[idx]
		for _, existing := range cell.lights {
			if existing == h {
				return
			}
		}
		if len(cell.lights) >= MaxLightsPerCell {
			return
		}
		cell.lights = append(cell.lights, h)
	})
}

// intersect3D reports whether the 3-D segment from a to b is blocked by a
// linedef at the point where the segment's 2-D projection crosses it: a
// one-sided wall blocks within [MaxFloorHeight, MinCeilingHeight], a portal
// blocks outside that opening. A crossing exactly at a (a start point lying
// on a linedef, such as a wall segment's own corner) does not count.
func (mc *MapCache) intersect3D(a, b vec3) bool {
	a2 := Vec2{a.X, a.Y}
	b2 := Vec2{b.X, b.Y}
	d := b2.Sub(a2)

	seen := make(map[LinedefHandle]bool)
	blocked := false
	mc.forEachCellInRect(
		math.Min(a2.X, b2.X), math.Min(a2.Y, b2.Y),
		math.Max(a2.X, b2.X), math.Max(a2.Y, b2.Y),
		func(idx int) {
			if blocked {
				return
			}
			for _, lh := range mc.cells[idx].linedefs {
				if seen[lh] {
					continue
				}
				seen[lh] = true
				ld := mc.level.Linedef(lh)
				p0 := mc.level.Vertex(ld.V0).Point
				p1 := mc.level.Vertex(ld.V1).Point

				rayT, lineT, ok := segmentIntersect(a2, d, p0, p1)
				if !ok || rayT <= 0 || rayT > 1 || lineT < 0 || lineT > 1 {
					continue
				}
				z := a.Z + rayT*(b.Z-a.Z)
				inBand := z >= float64(ld.MaxFloorHeight) && z <= float64(ld.MinCeilingHeight)
				if inBand != ld.IsPortal() {
					blocked = true
					return
				}
			}
		},
	)
	return blocked
}
