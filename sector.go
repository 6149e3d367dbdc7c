package portalcast

// SectorHandle indexes into a Level's sector arena.
type SectorHandle int32

// Sector is a closed, simple polygon implied by its ordered linedef loop,
// with a floor height, ceiling height, textures, and a base brightness.
type Sector struct {
	FloorHeight, CeilingHeight int
	FloorTexture, CeilingTexture TextureRef
	// Brightness is the sector's base scalar brightness in [0, 4].
	Brightness float64

	// Linedefs lists, in winding order, the handles of the linedefs that
	// bound this sector. This sector owns side 0 of a linedef it created
	// and side 1 of one it shares with an earlier sector (see sideOf).
	Linedefs []LinedefHandle
}

// IsClosed reports whether the sector's floor and ceiling coincide,
// meaning it behaves as a solid wall rather than a space the camera/ray
// can occupy (invariant 5).
func (s *Sector) IsClosed() bool { return s.FloorHeight >= s.CeilingHeight }

// PointInside reports whether p lies within the sector's polygon, using an
// even-odd ray-casting scan over the sector's linedef loop.
func (s *Sector) PointInside(lv *Level, p Vec2) bool {
	inside := false
	for _, lh := range s.Linedefs {
		ld := lv.Linedef(lh)
		a := lv.Vertex(ld.V0).Point
		b := lv.Vertex(ld.V1).Point
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// signedArea computes twice the signed area of the polygon traced by pts
// in order; positive means counter-clockwise in a standard (X right, Y up)
// orientation, negative means clockwise.
func signedArea(pts []Vec2) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}

// UpdateFloorCeilingLimits mutates the sector's floor/ceiling heights and
// refreshes MaxFloorHeight/MinCeilingHeight on every adjacent linedef, per
// invariant 4. This is the only sanctioned way to change sector heights
// between frames (§5: mutations must run this before the next draw).
func (lv *Level) UpdateFloorCeilingLimits(sh SectorHandle, floorHeight, ceilingHeight int) {
	sec := &lv.sectors[sh]
	sec.FloorHeight = floorHeight
	sec.CeilingHeight = ceilingHeight

	for _, lh := range sec.Linedefs {
		lv.refreshLinedefHeightLimits(lv.Linedef(lh))
	}
	// A linedef's other side may belong to a different sector than the
	// one that just moved; refresh through every linedef referencing
	// this sector on either side.
	for i := range lv.linedefs {
		ld := &lv.linedefs[i]
		if ld.Sides[0].Sector == sh || ld.Sides[1].Sector == sh {
			lv.refreshLinedefHeightLimits(ld)
		}
	}
}

// Sector returns the sector for h.
func (lv *Level) Sector(h SectorHandle) *Sector { return &lv.sectors[h] }

// SectorCount returns the number of sectors owned by the level.
func (lv *Level) SectorCount() int { return len(lv.sectors) }
