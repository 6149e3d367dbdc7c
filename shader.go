package portalcast

import "math"

// losTester reports whether the straight line from a to b is blocked by
// solid geometry; passed into the lighting kernels so they stay pure
// functions of their explicit inputs rather than reaching into a *Level
// (needed for §5's "bit-identical under any column interleaving"
// property — a kernel that closed over shared mutable state would not
// qualify as pure).
type losTester func(a, b vec3) bool

// dimDistance folds the per-pixel distance term into a brightness value
// already at its physically-lit level, per spec §4.6: quantized mode
// rounds the lit value down to a LightSteps-wide band and subtracts one
// band per STEP of distance traveled; continuous mode subtracts a linear
// falloff. Both clamp at zero.
func dimDistance(v, distance float64, cfg Config) float64 {
	if cfg.LightSteps > 0 {
		n := float64(cfg.LightSteps)
		stepDist := cfg.DimmingDistance / n
		steps := math.Floor(distance / stepDist)
		quantized := math.Floor(v*n) / n
		return math.Max(0, quantized-steps/n)
	}
	return math.Max(0, v-distance/cfg.DimmingDistance)
}

// BasicBrightness is the unlit-surface kernel: the sector's base
// brightness with distance dimming applied, no light list consulted.
func BasicBrightness(sectorBrightness, distance float64, cfg Config) float64 {
	return dimDistance(sectorBrightness, distance, cfg)
}

// VerticalSurfaceLight shades a wall pixel at world position pos (texture
// depth encoded in pos.Z by the caller), starting from sectorBrightness
// and taking the max contribution of every light in lights that reaches
// pos within its radius. los is consulted only when cfg.DynamicShadows is
// set; pass nil when not needed.
func VerticalSurfaceLight(sectorBrightness float64, pos vec3, lights []*Light, distance float64, cfg Config, los losTester) float64 {
	v := sectorBrightness
	for _, lt := range lights {
		lpos := vec3{lt.Position.X, lt.Position.Y, lt.Z}
		dsq := distanceSq3(pos, lpos)
		if dsq > lt.RadiusSq {
			continue
		}
		if cfg.DynamicShadows && los != nil && los(pos, lpos) {
			continue
		}
		contribution := lt.Strength * (1 - dsq*lt.InvRadiusSq)
		v = math.Max(v, contribution)
	}
	return dimDistance(v, distance, cfg)
}

// HorizontalSurfaceLight shades a floor or ceiling pixel at world position
// pos (Z = the surface's own height), fading contributions by vertical
// proximity to each light in addition to 2-D falloff.
func HorizontalSurfaceLight(sectorBrightness float64, pos vec3, isFloor bool, lights []*Light, distance float64, cfg Config, los losTester) float64 {
	v := sectorBrightness
	for _, lt := range lights {
		var dz float64
		if isFloor {
			dz = lt.Z - pos.Z
		} else {
			dz = pos.Z - lt.Z
		}
		if dz < 0 {
			continue
		}
		lpos := vec3{lt.Position.X, lt.Position.Y, lt.Z}
		dsq := distanceSq3(pos, lpos)
		if dsq > lt.RadiusSq {
			continue
		}
		if cfg.DynamicShadows && los != nil && los(pos, lpos) {
			continue
		}
		fade := dz / cfg.VerticalFadeDist
		if fade > 1 {
			fade = 1
		}
		contribution := lt.Strength * fade * (1 - dsq*lt.InvRadiusSq)
		v = math.Max(v, contribution)
	}
	return dimDistance(v, distance, cfg)
}

func distanceSq3(a, b vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

// clamp255 converts a brightness-scaled channel to a clamped byte, per
// spec §4.6's `min(255, channel*L)`.
func clamp255(channel uint8, brightness float64) uint32 {
	v := float64(channel) * brightness
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint32(v)
}

// PackARGB composes the final opaque pixel from a sampled color and a
// scalar brightness, per spec §4.6/§6: 0xFF000000 | (R<<16) | (G<<8) | B.
func PackARGB(rgb [3]uint8, brightness float64) uint32 {
	r := clamp255(rgb[0], brightness)
	g := clamp255(rgb[1], brightness)
	b := clamp255(rgb[2], brightness)
	return 0xFF000000 | (r << 16) | (g << 8) | b
}

// packABGR composes the same pixel in ABGR8888 byte order, for hosts that
// request it (spec §6: "unless the host indicates ABGR8888").
func packABGR(rgb [3]uint8, brightness float64) uint32 {
	r := clamp255(rgb[0], brightness)
	g := clamp255(rgb[1], brightness)
	b := clamp255(rgb[2], brightness)
	return 0xFF000000 | (b << 16) | (g << 8) | r
}
