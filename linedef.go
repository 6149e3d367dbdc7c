package portalcast

import "math"

// segmentLength is the target world-unit length of a linedef segment; a
// linedef is split into ceil(length/segmentLength) segments.
const segmentLength = 128.0

// MaxLightsPerSurface bounds how many lights may attach to a single
// linedef segment side.
const MaxLightsPerSurface = 4

// LinedefFlags is a bitmask of per-side linedef behavior flags.
type LinedefFlags uint8

const (
	// FlagTransparentMiddle marks the middle texture as masked. The tracer
	// and renderer do not read it: occlusion depends only on whether the
	// linedef is a portal, and a middle texture is overpainted on a portal
	// whenever its side has one.
	FlagTransparentMiddle LinedefFlags = 1 << iota
	// FlagDoubleSided, when set on a side configured after the opposite
	// side already has a sector, also sets FlagTransparentMiddle and
	// FlagDoubleSided on that opposite side. The renderer does not read it;
	// each side paints only its own Middle texture.
	FlagDoubleSided
	// FlagPinTop marks the vertical texture origin as anchored to the upper
	// edge. The column renderer does not consult it; only FlagPinBottom
	// changes the sub-wall texture origin.
	FlagPinTop
	// FlagPinBottom anchors the vertical texture origin to the lower edge.
	FlagPinBottom
	// FlagMirror marks this side as reflective; the ray tracer enters
	// mirror recursion on contact.
	FlagMirror
	// FlagStaticDetail marks a decorative linedef (e.g. a billboard) that
	// the tracer does not back-face cull. Occlusion is otherwise decided as
	// for any linedef: a one-sided static-detail line terminates the ray
	// like a solid wall.
	FlagStaticDetail
)

// TextureRef identifies an externally-owned texture. The zero value does
// not mean "no texture" — use TextureNone for that, matching the original
// engine's explicit no-texture sentinel rather than relying on Go's zero
// value (0 is a perfectly valid texture index).
type TextureRef int32

// TextureNone marks the absence of a texture. On a sector ceiling it means
// "render the sky" instead.
const TextureNone TextureRef = -1

// LinedefSegment is a uniform ~128-unit slice of one side of a linedef, the
// granularity at which dynamic lights attach to walls.
type LinedefSegment struct {
	// T0, T1 are the segment's start/end fraction along the linedef, in [0,1].
	T0, T1 float64
	lights [MaxLightsPerSurface]LightHandle
	nLights int
}

// Lights returns the light handles currently attached to this segment.
func (s *LinedefSegment) Lights() []LightHandle { return s.lights[:s.nLights] }

func (s *LinedefSegment) hasLight(h LightHandle) bool {
	for i := 0; i < s.nLights; i++ {
		if s.lights[i] == h {
			return true
		}
	}
	return false
}

func (s *LinedefSegment) addLight(h LightHandle) bool {
	if s.hasLight(h) {
		return true
	}
	if s.nLights >= MaxLightsPerSurface {
		return false
	}
	s.lights[s.nLights] = h
	s.nLights++
	return true
}

func (s *LinedefSegment) clearLights() {
	s.nLights = 0
}

// LinedefSide holds the per-side rendering state of a linedef: the sector
// it belongs to (invalidHandle for an un-owned side 1), textures, flags,
// outward normal, and its segments.
type LinedefSide struct {
	Sector  SectorHandle
	Top, Middle, Bottom TextureRef
	Flags   LinedefFlags
	// Normal points away from Sector, perpendicular to the linedef.
	Normal   Vec2
	Segments []LinedefSegment
}

func (s *LinedefSide) hasFlag(f LinedefFlags) bool { return s.Flags&f != 0 }

// LinedefHandle indexes into a Level's linedef arena.
type LinedefHandle int32

// Linedef is an undirected segment between two vertices with up to two
// sides. A linedef with both sides owning a sector is a portal; otherwise
// it is a solid wall.
type Linedef struct {
	V0, V1 VertexHandle
	Sides  [2]LinedefSide

	// Direction is the unit vector from V0 to V1.
	Direction Vec2
	Length    float64

	// MinX, MinY, MaxX, MaxY are the axis-aligned bounding extents.
	MinX, MinY, MaxX, MaxY float64

	// MaxFloorHeight/MinCeilingHeight are derived from the two adjacent
	// sectors (invariant 4): max(side0.floor, side1.floor) and
	// min(side0.ceiling, side1.ceiling). For a one-sided wall the
	// missing side contributes nothing.
	MaxFloorHeight   int
	MinCeilingHeight int
}

// IsPortal reports whether both sides of the linedef own a sector.
func (l *Linedef) IsPortal() bool {
	return l.Sides[0].Sector != invalidHandle && l.Sides[1].Sector != invalidHandle
}

// sideOf returns the side index (0 or 1) of the linedef that belongs to
// sector sh, or -1 if neither side does.
func (l *Linedef) sideOf(sh SectorHandle) int {
	if l.Sides[0].Sector == sh {
		return 0
	}
	if l.Sides[1].Sector == sh {
		return 1
	}
	return -1
}

// vertexPairKey produces an order-independent key for two vertex handles,
// used to find-or-create a linedef keyed on the unordered vertex pair.
func vertexPairKey(a, b VertexHandle) [2]VertexHandle {
	if a <= b {
		return [2]VertexHandle{a, b}
	}
	return [2]VertexHandle{b, a}
}

func buildSegments(length float64) []LinedefSegment {
	n := int(math.Ceil(length / segmentLength))
	if n < 1 {
		n = 1
	}
	segs := make([]LinedefSegment, n)
	for i := 0; i < n; i++ {
		segs[i] = LinedefSegment{
			T0: float64(i) / float64(n),
			T1: float64(i+1) / float64(n),
		}
	}
	return segs
}

// getOrCreateLinedef returns the handle of the linedef between v0 and v1,
// creating it (with side 0 unassigned) if it doesn't already exist.
// Returns ErrDegenerate if v0 == v1.
func (lv *Level) getOrCreateLinedef(v0, v1 VertexHandle) (LinedefHandle, bool, error) {
	if v0 == v1 {
		return invalidHandle, false, ErrDegenerate
	}
	key := vertexPairKey(v0, v1)
	if h, ok := lv.linedefIndex[key]; ok {
		return h, false, nil
	}

	p0 := lv.vertices[v0].Point
	p1 := lv.vertices[v1].Point
	dir := p1.Sub(p0)
	length := dir.Length()
	if length == 0 {
		return invalidHandle, false, ErrDegenerate
	}
	ld := Linedef{
		V0: v0, V1: v1,
		Direction: dir.Normalize(),
		Length:    length,
		MinX:      math.Min(p0.X, p1.X),
		MinY:      math.Min(p0.Y, p1.Y),
		MaxX:      math.Max(p0.X, p1.X),
		MaxY:      math.Max(p0.Y, p1.Y),
	}
	ld.Sides[0].Sector = invalidHandle
	ld.Sides[1].Sector = invalidHandle

	lv.linedefs = append(lv.linedefs, ld)
	h := LinedefHandle(len(lv.linedefs) - 1)
	if lv.linedefIndex == nil {
		lv.linedefIndex = make(map[[2]VertexHandle]LinedefHandle)
	}
	lv.linedefIndex[key] = h
	return h, true, nil
}

// Linedef returns the linedef for h.
func (lv *Level) Linedef(h LinedefHandle) *Linedef { return &lv.linedefs[h] }

// LinedefCount returns the number of linedefs owned by the level.
func (lv *Level) LinedefCount() int { return len(lv.linedefs) }

// FindLinedef looks up the linedef between p0 and p1 by unordered vertex
// identity, deduplicating each point the same way UpdateSectorLines does.
// Returns ErrInvalidLinedef if no such linedef exists.
func (lv *Level) FindLinedef(p0, p1 Vec2) (LinedefHandle, error) {
	v0 := lv.findVertex(p0)
	v1 := lv.findVertex(p1)
	if v0 == invalidHandle || v1 == invalidHandle {
		return invalidHandle, ErrInvalidLinedef
	}
	key := vertexPairKey(v0, v1)
	h, ok := lv.linedefIndex[key]
	if !ok {
		return invalidHandle, ErrInvalidLinedef
	}
	return h, nil
}

func (lv *Level) findVertex(p Vec2) VertexHandle {
	tolSq := vertexMergeTolerance * vertexMergeTolerance
	for i := range lv.vertices {
		if lv.vertices[i].Point.DistanceSq(p) <= tolSq {
			return VertexHandle(i)
		}
	}
	return invalidHandle
}

// SetMiddleTexture sets the middle texture on side 0 of the given linedef.
func (lv *Level) SetMiddleTexture(h LinedefHandle, tex TextureRef) error {
	if int(h) < 0 || int(h) >= len(lv.linedefs) {
		return ErrInvalidLinedef
	}
	lv.linedefs[h].Sides[0].Middle = tex
	return nil
}

// refreshLinedefHeightLimits recomputes MaxFloorHeight/MinCeilingHeight
// for ld from its two adjacent sectors (invariant 4). Called whenever an
// adjacent sector's floor/ceiling height changes.
func (lv *Level) refreshLinedefHeightLimits(ld *Linedef) {
	hasFloor, hasCeil := false, false
	var maxFloor, minCeil int

	for side := 0; side < 2; side++ {
		sh := ld.Sides[side].Sector
		if sh == invalidHandle {
			continue
		}
		sec := &lv.sectors[sh]
		if !hasFloor || sec.FloorHeight > maxFloor {
			maxFloor = sec.FloorHeight
			hasFloor = true
		}
		if !hasCeil || sec.CeilingHeight < minCeil {
			minCeil = sec.CeilingHeight
			hasCeil = true
		}
	}
	ld.MaxFloorHeight = maxFloor
	ld.MinCeilingHeight = minCeil
}
