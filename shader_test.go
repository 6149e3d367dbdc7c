package portalcast

import "testing"

func TestDimDistanceQuantizedSteps(t *testing.T) {
	cfg := Config{LightSteps: 4, DimmingDistance: 100}
	v := dimDistance(1.0, 0, cfg)
	if v != 1.0 {
		t.Errorf("dimDistance at zero distance = %v, want 1.0", v)
	}
	v = dimDistance(1.0, 100, cfg)
	if v < 0 {
		t.Errorf("dimDistance should clamp at zero, got %v", v)
	}
}

func TestDimDistanceContinuousFalloff(t *testing.T) {
	cfg := Config{LightSteps: 0, DimmingDistance: 100}
	v := dimDistance(1.0, 50, cfg)
	if v != 0.5 {
		t.Errorf("dimDistance(1.0, 50, ...) = %v, want 0.5", v)
	}
	v = dimDistance(1.0, 500, cfg)
	if v != 0 {
		t.Errorf("dimDistance beyond range should clamp to 0, got %v", v)
	}
}

func TestBasicBrightnessUsesSectorValue(t *testing.T) {
	cfg := Config{LightSteps: 0, DimmingDistance: 100}
	got := BasicBrightness(0.8, 0, cfg)
	if got != 0.8 {
		t.Errorf("BasicBrightness at zero distance = %v, want 0.8", got)
	}
}

func TestVerticalSurfaceLightIgnoresLightsOutOfRadius(t *testing.T) {
	cfg := Config{LightSteps: 0, DimmingDistance: 1000}
	far := &Light{Position: Vec2{X: 1000, Y: 1000}, Z: 0, RadiusSq: 10, InvRadiusSq: 0.1, Strength: 1}
	got := VerticalSurfaceLight(0.2, vec3{0, 0, 0}, []*Light{far}, 0, cfg, nil)
	if got != 0.2 {
		t.Errorf("got %v, want base brightness 0.2 when no light reaches the pixel", got)
	}
}

func TestVerticalSurfaceLightTakesMaxContribution(t *testing.T) {
	cfg := Config{LightSteps: 0, DimmingDistance: 1000}
	near := &Light{Position: Vec2{X: 0, Y: 0}, Z: 0, Radius: 10, Strength: 1}
	near.recompute()
	got := VerticalSurfaceLight(0.1, vec3{0, 0, 0}, []*Light{near}, 0, cfg, nil)
	if got <= 0.1 {
		t.Errorf("a coincident light should raise brightness above the base, got %v", got)
	}
}

func TestHorizontalSurfaceLightFadesWithHeight(t *testing.T) {
	// dz (the light's height above the floor point) ramps fade linearly up
	// to 1 at VerticalFadeDist; a point near the light's own height gets
	// almost no vertical contribution even though it's geometrically close.
	cfg := Config{LightSteps: 0, DimmingDistance: 1000, VerticalFadeDist: 50}
	lt := &Light{Position: Vec2{X: 0, Y: 0}, Z: 200, Radius: 500, Strength: 1}
	lt.recompute()
	closeInHeight := HorizontalSurfaceLight(0, vec3{0, 0, 190}, true, []*Light{lt}, 0, cfg, nil)
	atFadeDistance := HorizontalSurfaceLight(0, vec3{0, 0, 150}, true, []*Light{lt}, 0, cfg, nil)
	if atFadeDistance <= closeInHeight {
		t.Errorf("a floor point at the full fade distance should be brighter than one near the light's height: atFadeDistance=%v closeInHeight=%v", atFadeDistance, closeInHeight)
	}
}

func TestHorizontalSurfaceLightSkipsWrongSideOfPlane(t *testing.T) {
	cfg := Config{LightSteps: 0, DimmingDistance: 1000, VerticalFadeDist: 100}
	lt := &Light{Position: Vec2{X: 0, Y: 0}, Z: 0, Radius: 500, Strength: 1}
	lt.recompute()
	// isFloor=true but the light sits below the floor point: dz < 0, skip.
	got := HorizontalSurfaceLight(0.3, vec3{0, 0, 50}, true, []*Light{lt}, 0, cfg, nil)
	if got != 0.3 {
		t.Errorf("got %v, want base brightness 0.3 when the light is behind the surface", got)
	}
}

func TestPackARGBOpaqueAlpha(t *testing.T) {
	px := PackARGB([3]uint8{10, 20, 30}, 1.0)
	if px>>24 != 0xFF {
		t.Errorf("alpha byte = %x, want 0xFF", px>>24)
	}
	if (px>>16)&0xFF != 10 || (px>>8)&0xFF != 20 || px&0xFF != 30 {
		t.Errorf("PackARGB channels wrong: %08x", px)
	}
}

func TestPackABGRSwapsRedAndBlue(t *testing.T) {
	px := packABGR([3]uint8{10, 20, 30}, 1.0)
	if (px>>16)&0xFF != 30 || (px>>8)&0xFF != 20 || px&0xFF != 10 {
		t.Errorf("packABGR channels wrong: %08x", px)
	}
}

func TestClamp255Clamps(t *testing.T) {
	if v := clamp255(200, 2.0); v != 255 {
		t.Errorf("clamp255(200, 2.0) = %d, want 255", v)
	}
	if v := clamp255(200, -1.0); v != 0 {
		t.Errorf("clamp255(200, -1.0) = %d, want 0", v)
	}
}
