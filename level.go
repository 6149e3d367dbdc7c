package portalcast

import "fmt"

// Level owns every geometric primitive and light in the scene: vertex,
// linedef, and sector arenas indexed by integer handles, plus the point
// lights. This replaces the original engine's pointer-cycle model
// (sector <-> linedef <-> sector) with a level-owned arena and (kind,
// index) handles, per the rearchitecting note in the design notes: handles
// stay valid across slice growth because they are indices, not pointers,
// and the whole level is trivially test-friendly (deep-equal, serializable).
type Level struct {
	vertices []Vertex
	linedefs []Linedef
	sectors  []Sector
	lights   []Light

	linedefIndex map[[2]VertexHandle]LinedefHandle

	cache      *MapCache
	config     Config
	skyTexture TextureRef

	builder []openSector
}

// openSector is one frame of the level builder's explicit open-sector
// stack, replacing the original engine's file-scope "open_context" global
// (design note: the builder is modeled as an explicit state machine, not
// module-level state).
type openSector struct {
	handle SectorHandle
}

// NewLevel creates an empty level ready for sector construction.
func NewLevel(config Config) *Level {
	return &Level{config: config}
}

// AttachCache binds a map cache to the level so UpdateLights can register
// light/cell overlaps. Build the cache after all level geometry is final.
func (lv *Level) AttachCache(cache *MapCache) { lv.cache = cache }

// Cache returns the level's attached map cache, or nil if none has been
// built yet.
func (lv *Level) Cache() *MapCache { return lv.cache }

// SetSkyTexture sets the level-wide sky texture sampled whenever a
// sector's ceiling texture is TextureNone, matching the original engine's
// single shared `level->sky_texture` (original_source/src/include/
// renderer.h: frame_info.sky_texture).
func (lv *Level) SetSkyTexture(tex TextureRef) { lv.skyTexture = tex }

// SkyTexture returns the level-wide sky texture.
func (lv *Level) SkyTexture() TextureRef { return lv.skyTexture }

// lightsInto resolves light handles to their *Light values into the
// caller-provided scratch buffer, returning the filled prefix. Used by the
// column renderer's hot path to avoid a fresh allocation per pixel row.
func (lv *Level) lightsInto(hs []LightHandle, buf []*Light) []*Light {
	n := 0
	for _, h := range hs {
		if n >= len(buf) {
			break
		}
		buf[n] = lv.Light(h)
		n++
	}
	return buf[:n]
}

// LineOp tags a line DTO endpoint as either an explicit point or one of the
// two original sentinel behaviors, modeled as a Go tagged variant instead
// of the NaN-encoded sentinel floats of the source engine (design note).
type LineOp int

const (
	// LineOpPoint marks an endpoint as an explicit Vec2 point.
	LineOpPoint LineOp = iota
	// LineOpAppend (valid only on V0) reuses the previous line's V1 in
	// this batch.
	LineOpAppend
	// LineOpFinish (valid only on V1) closes the polygon back to the
	// first line's V0 in this batch.
	LineOpFinish
)

// LineEndpoint is one endpoint of a LineDTO: either an explicit point or a
// sentinel op.
type LineEndpoint struct {
	Op    LineOp
	Point Vec2
}

// LinePoint constructs an explicit-point endpoint.
func LinePoint(p Vec2) LineEndpoint { return LineEndpoint{Op: LineOpPoint, Point: p} }

// LineAppend constructs an APPEND endpoint: "reuse the previous line's v1".
func LineAppend() LineEndpoint { return LineEndpoint{Op: LineOpAppend} }

// LineFinish constructs a FINISH endpoint: "close to the first vertex of
// the batch".
func LineFinish() LineEndpoint { return LineEndpoint{Op: LineOpFinish} }

// LineDTO describes one linedef within an UpdateSectorLines batch.
type LineDTO struct {
	V0, V1              LineEndpoint
	Top, Middle, Bottom TextureRef
	Flags               LinedefFlags
}

// BeginSector creates a new sector and pushes it onto the builder's open
// stack; subsequent UpdateSectorLines calls with no explicit sector target
// this one.
func (lv *Level) BeginSector(floorHeight, ceilingHeight int, brightness float64, floorTex, ceilTex TextureRef) SectorHandle {
	lv.sectors = append(lv.sectors, Sector{
		FloorHeight:   floorHeight,
		CeilingHeight: ceilingHeight,
		Brightness:    brightness,
		FloorTexture:  floorTex,
		CeilingTexture: ceilTex,
	})
	h := SectorHandle(len(lv.sectors) - 1)
	lv.builder = append(lv.builder, openSector{handle: h})
	return h
}

// currentSector returns the sector on top of the builder stack, or
// invalidHandle if the stack is empty.
func (lv *Level) currentSector() SectorHandle {
	if len(lv.builder) == 0 {
		return invalidHandle
	}
	return lv.builder[len(lv.builder)-1].handle
}

// EndSector pops the builder's open-sector stack and validates that the
// popped sector's linedef loop is closed: every vertex it touches must be
// incident to exactly two of its linedefs (invariant 3).
func (lv *Level) EndSector() error {
	if len(lv.builder) == 0 {
		return ErrNoOpenSector
	}
	h := lv.builder[len(lv.builder)-1].handle
	lv.builder = lv.builder[:len(lv.builder)-1]

	sec := &lv.sectors[h]
	degree := make(map[VertexHandle]int, len(sec.Linedefs)*2)
	for _, lh := range sec.Linedefs {
		ld := lv.Linedef(lh)
		degree[ld.V0]++
		degree[ld.V1]++
	}
	for _, d := range degree {
		if d != 2 {
			return fmt.Errorf("%w: sector %d", ErrUnclosedSector, h)
		}
	}
	return nil
}

// UpdateSectorLines processes a batch of line DTOs against the given
// sector (or the builder's current open sector if sector is
// invalidHandle). See spec §4.1 for the full winding-flip and
// vertex/linedef dedup algorithm.
func (lv *Level) UpdateSectorLines(sector SectorHandle, lines []LineDTO) error {
	if sector == invalidHandle {
		sector = lv.currentSector()
	}
	if sector == invalidHandle {
		return ErrNoOpenSector
	}
	if len(lines) == 0 {
		return nil
	}

	type resolved struct {
		p0, p1 Vec2
		dto    LineDTO
	}
	batch := make([]resolved, len(lines))

	var firstP0, prevP1 Vec2
	for i, dto := range lines {
		var p0, p1 Vec2
		switch dto.V0.Op {
		case LineOpPoint:
			p0 = dto.V0.Point
		case LineOpAppend:
			if i == 0 {
				return fmt.Errorf("%w: APPEND on first line", ErrInvalidLineBatch)
			}
			p0 = prevP1
		default:
			return fmt.Errorf("%w: invalid V0 op", ErrInvalidLineBatch)
		}
		if i == 0 {
			firstP0 = p0
		}
		switch dto.V1.Op {
		case LineOpPoint:
			p1 = dto.V1.Point
		case LineOpFinish:
			p1 = firstP0
		default:
			return fmt.Errorf("%w: invalid V1 op", ErrInvalidLineBatch)
		}
		batch[i] = resolved{p0: p0, p1: p1, dto: dto}
		prevP1 = p1
	}

	sec := &lv.sectors[sector]

	// Determine whether the batch, as given, winds the convention
	// direction expected for its role: clockwise (negative signed area)
	// for the sector's first batch, counter-clockwise (positive signed
	// area) for a subsequent hole batch. If not, flip every line so side
	// 0 still ends up belonging to the calling sector. Only a closed
	// batch carries a meaningful winding at all, so an open batch (one
	// that doesn't loop back to its own start) is left exactly as given.
	pts := make([]Vec2, len(batch))
	for i, r := range batch {
		pts[i] = r.p0
	}
	closed := len(batch) >= 3 && batch[0].p0 == batch[len(batch)-1].p1
	if closed {
		isFirstBatch := len(sec.Linedefs) == 0
		area := signedArea(pts)
		flip := area > 0
		if !isFirstBatch {
			flip = area < 0
		}
		if flip {
			for i, j := 0, len(batch)-1; i < j; i, j = i+1, j-1 {
				batch[i], batch[j] = batch[j], batch[i]
			}
			for i := range batch {
				batch[i].p0, batch[i].p1 = batch[i].p1, batch[i].p0
			}
		}
	}

	for _, r := range batch {
		v0 := lv.getOrAddVertex(r.p0)
		v1 := lv.getOrAddVertex(r.p1)

		lh, created, err := lv.getOrCreateLinedef(v0, v1)
		if err != nil {
			return err
		}
		ld := lv.Linedef(lh)

		sideIdx := 1
		if created {
			sideIdx = 0
		}
		normal := ld.Direction.Perpendicular()
		if sideIdx == 1 {
			normal = normal.Scale(-1)
		}
		if ld.Sides[sideIdx].Segments == nil {
			ld.Sides[sideIdx].Segments = buildSegments(ld.Length)
		}
		ld.Sides[sideIdx].Sector = sector
		ld.Sides[sideIdx].Top = r.dto.Top
		ld.Sides[sideIdx].Middle = r.dto.Middle
		ld.Sides[sideIdx].Bottom = r.dto.Bottom
		ld.Sides[sideIdx].Flags = r.dto.Flags
		ld.Sides[sideIdx].Normal = normal

		if r.dto.Flags&FlagDoubleSided != 0 {
			other := 1 - sideIdx
			if ld.Sides[other].Sector != invalidHandle {
				ld.Sides[other].Flags |= FlagTransparentMiddle | FlagDoubleSided
			}
		}

		sec.Linedefs = append(sec.Linedefs, lh)
		lv.refreshLinedefHeightLimits(ld)
	}
	return nil
}
