package portalcast

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fovAnim holds an active FOV tween, mirroring the teacher's scrollAnim
// single-tween-plus-done-flag shape (camera.go: scrollAnim) but driving
// Camera.SetFOV instead of world-position scroll — a first-person
// raycaster camera has no "follow a node" concept to animate toward.
type fovAnim struct {
	tween *gween.Tween
	done  bool
}

// pitchAnim is the pitch-axis counterpart of fovAnim, used for e.g. a
// head-bob easing effect.
type pitchAnim struct {
	tween *gween.Tween
	done  bool
}

// Projection is the set of per-frame constants derived from a Camera that
// every screen column's ray trace and column render share, computed once
// by Renderer.Draw rather than once per column (original_source/src/
// renderer.c: renderer_draw precomputes exactly these into
// renderer.frame_info before the per-column loop).
type Projection struct {
	HalfW, HalfH int
	PitchOffset  int
	UnitSize     float64
	ViewZ        float64
}

// Camera is the view state the ray tracer and column renderer read each
// frame: position, eye height, unit direction, FOV-scaled projection
// plane, pitch, and the sector the camera currently occupies.
type Camera struct {
	Position  Vec2
	Z         float64
	Direction Vec2
	Plane     Vec2
	FOV       float64
	// Pitch is the screen-space vertical look offset in half-heights,
	// clamped to [-1, 1] when Projection is computed.
	Pitch float64

	level   *Level
	sector  SectorHandle
	fovAnim *fovAnim
	pitch   *pitchAnim
}

// NewCamera creates a camera at position/direction with a 90-degree-ish
// default FOV of 1.0, matching original_source/src/camera.c: camera_init,
// and locates its initial containing sector by linear scan.
func NewCamera(lv *Level, position Vec2, z float64, direction Vec2) *Camera {
	c := &Camera{
		Position:  position,
		Z:         z,
		Direction: direction.Normalize(),
		FOV:       1.0,
		level:     lv,
		sector:    invalidHandle,
	}
	c.Plane = planeFromDirection(c.Direction, c.FOV)
	c.findCurrentSector()
	return c
}

func planeFromDirection(dir Vec2, fov float64) Vec2 {
	return Vec2{dir.Y * fov, -dir.X * fov}
}

// Sector returns the sector the camera currently occupies, or invalidHandle
// if it hasn't been located (e.g. the camera starts outside every sector).
func (c *Camera) Sector() SectorHandle { return c.sector }

// Move translates the camera forward/strafe along its current direction
// and perpendicular axis, then re-locates the containing sector only if
// movement left it — grounded on original_source/src/camera.c:
// camera_move, which checks the cached sector before rescanning.
func (c *Camera) Move(forward, strafe float64) {
	c.Position = c.Position.Add(c.Direction.Scale(forward))
	c.Position = c.Position.Add(c.Direction.Perpendicular().Scale(strafe))

	if c.level == nil {
		return
	}
	if c.sector == invalidHandle || !c.level.Sector(c.sector).PointInside(c.level, c.Position) {
		c.findCurrentSector()
	}
}

// findCurrentSector rescans the level's sector list in table order,
// skipping the currently-cached sector, and caches the first match — the
// scan order SPEC_FULL.md §4 resolves from find_current_sector.
func (c *Camera) findCurrentSector() {
	for i := 0; i < c.level.SectorCount(); i++ {
		sh := SectorHandle(i)
		if sh == c.sector {
			continue
		}
		if c.level.Sector(sh).PointInside(c.level, c.Position) {
			c.sector = sh
			return
		}
	}
}

// Rotate applies rotation radians to both Direction and Plane
// simultaneously, per original_source/src/camera.c: camera_rotate.
func (c *Camera) Rotate(rotation float64) {
	c.Direction = c.Direction.Rotate(rotation)
	c.Plane = c.Plane.Rotate(rotation)
}

// SetFOV changes the field of view and recomputes Plane from the current
// Direction, per original_source/src/camera.c: camera_set_fov.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.Plane = planeFromDirection(c.Direction, fov)
}

// AnimateFOV tweens FOV from its current value to target over duration
// seconds, advanced by Advance. New to portalcast (SPEC_FULL.md §3):
// reuses the teacher's gween-tween-plus-done-flag shape from
// camera.go: Camera.ScrollTo, repointed at FOV instead of world position.
func (c *Camera) AnimateFOV(target float64, duration float32, easeFn ease.TweenFunc) {
	c.fovAnim = &fovAnim{tween: gween.New(float32(c.FOV), float32(target), duration, easeFn)}
}

// AnimatePitch tweens Pitch from its current value to target over
// duration seconds, advanced by Advance.
func (c *Camera) AnimatePitch(target float64, duration float32, easeFn ease.TweenFunc) {
	c.pitch = &pitchAnim{tween: gween.New(float32(c.Pitch), float32(target), duration, easeFn)}
}

// Advance steps any active FOV/pitch tweens by dt seconds. Call once per
// frame before Draw, analogous to the teacher's Camera.update(dt).
func (c *Camera) Advance(dt float32) {
	if c.fovAnim != nil && !c.fovAnim.done {
		val, done := c.fovAnim.tween.Update(dt)
		c.SetFOV(float64(val))
		c.fovAnim.done = done
		if done {
			c.fovAnim = nil
		}
	}
	if c.pitch != nil && !c.pitch.done {
		val, done := c.pitch.tween.Update(dt)
		c.Pitch = float64(val)
		c.pitch.done = done
		if done {
			c.pitch = nil
		}
	}
}

// rayDirection returns the ray direction for screen column x of width w:
// dir + plane * ((2x/w) - 1), per spec §4.3. The result is not normalized;
// its component along Direction is 1.
func (c *Camera) rayDirection(x, w int) Vec2 {
	camX := (2*float64(x)/float64(w) - 1)
	return Vec2{
		c.Direction.X + c.Plane.X*camX,
		c.Direction.Y + c.Plane.Y*camX,
	}
}

// Projection computes the per-frame constants shared by every column for
// an output buffer of size w x h, per original_source/src/renderer.c:
// renderer_draw's frame_info setup.
func (c *Camera) Projection(w, h int) Projection {
	halfH := h >> 1
	pitch := math.Max(-1, math.Min(1, c.Pitch))
	pitchOffset := int(math.Floor(pitch * float64(halfH)))
	return Projection{
		HalfW:       w >> 1,
		HalfH:       halfH + pitchOffset,
		PitchOffset: pitchOffset,
		UnitSize:    float64(w>>1) / c.FOV,
		ViewZ:       c.Z,
	}
}
