package portalcast

// MaxLights bounds the number of point lights a single level may own.
const MaxLights = 64

// LightHandle indexes into a Level's light arena.
type LightHandle int32

// Light is a point light with a 3-D position, a radius, and a scalar
// strength. RadiusSq and InvRadiusSq are cached at insertion/move time so
// the shader's hot path never computes them per pixel.
type Light struct {
	Position Vec2
	Z        float64
	Radius   float64
	Strength float64

	RadiusSq    float64
	InvRadiusSq float64
}

func (l *Light) recompute() {
	l.RadiusSq = l.Radius * l.Radius
	if l.RadiusSq > 0 {
		l.InvRadiusSq = 1 / l.RadiusSq
	} else {
		l.InvRadiusSq = 0
	}
}

// AddLight inserts a new point light, bounded to MaxLights per level. On
// overflow it returns ErrLightCapacity and an invalid handle, per the
// capacity-exceeded error policy (§7): the caller's excess light is simply
// not added. The level's segment/cell attachments are not updated until
// UpdateLights is called.
func (lv *Level) AddLight(position Vec2, z, radius, strength float64) (LightHandle, error) {
	if len(lv.lights) >= MaxLights {
		return invalidHandle, ErrLightCapacity
	}
	l := Light{Position: position, Z: z, Radius: radius, Strength: strength}
	l.recompute()
	lv.lights = append(lv.lights, l)
	return LightHandle(len(lv.lights) - 1), nil
}

// Light returns the light for h.
func (lv *Level) Light(h LightHandle) *Light { return &lv.lights[h] }

// LightCount returns the number of lights owned by the level.
func (lv *Level) LightCount() int { return len(lv.lights) }

// MoveLight repositions an existing light. Callers must run UpdateLights
// before the next draw for the light's segment/cell attachments to catch up
// (§5: shared-resource policy).
func (lv *Level) MoveLight(h LightHandle, position Vec2, z float64) {
	l := &lv.lights[h]
	l.Position = position
	l.Z = z
}

// UpdateLights recomputes every segment's and every cache cell's light
// attachment list from scratch (§4.4). It must be called after any light is
// added or moved, and before the next Draw.
func (lv *Level) UpdateLights() {
	for i := range lv.linedefs {
		ld := &lv.linedefs[i]
		for side := 0; side < 2; side++ {
			for si := range ld.Sides[side].Segments {
				ld.Sides[side].Segments[si].clearLights()
			}
		}
	}
	if lv.cache != nil {
		lv.cache.clearLights()
	}

	for lh := range lv.lights {
		lv.attachLight(LightHandle(lh))
		if lv.cache != nil {
			lv.cache.processLight(lv, LightHandle(lh))
		}
	}
}

// attachLight attaches light h to every qualifying segment across the
// level: the sector must be on the correct side of the linedef relative to
// the light, and (in static shadow mode) at least one of the segment's four
// corner 3-D points must have line-of-sight to the light.
func (lv *Level) attachLight(h LightHandle) {
	light := lv.lights[h]

	for li := range lv.linedefs {
		ld := &lv.linedefs[li]
		a := lv.vertices[ld.V0].Point
		b := lv.vertices[ld.V1].Point

		for side := 0; side < 2; side++ {
			if ld.Sides[side].Sector == invalidHandle {
				continue
			}
			normal := ld.Sides[side].Normal
			toLight := light.Position.Sub(a)
			if normal.Dot(toLight) >= 0 {
				// Light is on the far side of the line from this side's
				// sector (in front of the outward normal).
				continue
			}

			sec := &lv.sectors[ld.Sides[side].Sector]
			for si := range ld.Sides[side].Segments {
				seg := &ld.Sides[side].Segments[si]
				p0 := lerpVec2(a, b, seg.T0)
				p1 := lerpVec2(a, b, seg.T1)

				if !lv.config.DynamicShadows {
					if !lv.segmentHasLOS(p0, p1, sec, &light) {
						continue
					}
				} else {
					if p0.DistanceSq(light.Position) > light.RadiusSq &&
						p1.DistanceSq(light.Position) > light.RadiusSq {
						continue
					}
				}
				seg.addLight(h)
			}
		}
	}
}

// segmentHasLOS implements the static-shadow-mode attachment test: at
// least one of the segment's four corner 3-D points (two endpoints times
// floor/ceiling height) must see the light through the map cache.
func (lv *Level) segmentHasLOS(p0, p1 Vec2, sec *Sector, light *Light) bool {
	if lv.cache == nil {
		// No cache attached yet; fall back to an unconditional attach so
		// tests that build lights before the cache still see lighting.
		return true
	}
	corners := [4]Vec2{p0, p1, p0, p1}
	heights := [4]float64{float64(sec.FloorHeight), float64(sec.FloorHeight), float64(sec.CeilingHeight), float64(sec.CeilingHeight)}
	lightPos3 := vec3{light.Position.X, light.Position.Y, light.Z}
	for i := 0; i < 4; i++ {
		p3 := vec3{corners[i].X, corners[i].Y, heights[i]}
		if !lv.cache.intersect3D(p3, lightPos3) {
			return true
		}
	}
	return false
}

func lerpVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// vec3 is a minimal 3-D point used only by the map cache's line-of-sight
// test; the rest of the renderer keeps 2-D position and height separate.
type vec3 struct{ X, Y, Z float64 }
