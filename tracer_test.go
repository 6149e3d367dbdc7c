package portalcast

import (
	"math"
	"testing"
)

func projFor(cam *Camera) Projection {
	return cam.Projection(320, 240)
}

func TestTraceColumnHitsFullWallInSingleRoom(t *testing.T) {
	lv, sh := buildBoxLevel(t)
	cfg := DefaultConfig()
	cam := NewCamera(lv, Vec2{X: 50, Y: 50}, 40, Vec2{X: 0, Y: -1})
	if cam.Sector() != sh {
		t.Fatalf("camera did not locate the box sector: got %d", cam.Sector())
	}

	rayDir := cam.rayDirection(160, 320)
	list := TraceColumn(lv, cfg, projFor(cam), cam.Sector(), cam.Position, cam.Direction, rayDir)
	if len(list) == 0 {
		t.Fatal("expected at least one intersection against the box's north wall")
	}
	last := list[len(list)-1]
	if last.BackSector != invalidHandle {
		t.Error("a one-room box's terminating wall should have no back sector")
	}
}

func TestTraceColumnOrdersByAscendingDistance(t *testing.T) {
	lv, sh := buildBoxLevel(t)
	cfg := DefaultConfig()
	cam := NewCamera(lv, Vec2{X: 50, Y: 50}, 40, Vec2{X: 0, Y: -1})
	if cam.Sector() != sh {
		t.Fatalf("camera did not locate the box sector: got %d", cam.Sector())
	}
	rayDir := cam.rayDirection(160, 320)
	list := TraceColumn(lv, cfg, projFor(cam), cam.Sector(), cam.Position, cam.Direction, rayDir)
	for i := 1; i < len(list); i++ {
		if list[i].PlanarDistance < list[i-1].PlanarDistance {
			t.Errorf("intersection %d is closer than %d, order not ascending", i, i-1)
		}
	}
}

// buildMirrorBoxLevel is buildBoxLevel with its north wall (y=0) flagged
// FlagMirror, so a ray fired north from inside the box reflects south and
// terminates on the opposite wall instead of the mirror itself.
func buildMirrorBoxLevel(t *testing.T) (*Level, SectorHandle) {
	t.Helper()
	lv := NewLevel(DefaultConfig())
	sh := lv.BeginSector(0, 128, 1.0, TextureNone, TextureNone)
	if err := lv.UpdateSectorLines(sh, []LineDTO{
		{V0: LinePoint(Vec2{X: 0, Y: 0}), V1: LinePoint(Vec2{X: 100, Y: 0}), Middle: TextureRef(0), Flags: FlagMirror},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 100, Y: 100})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 0, Y: 100}), Middle: TextureRef(0)},
		{V0: LineAppend(), V1: LineFinish()},
	}); err != nil {
		t.Fatalf("UpdateSectorLines error: %v", err)
	}
	if err := lv.EndSector(); err != nil {
		t.Fatalf("EndSector error: %v", err)
	}
	return lv, sh
}

func TestTraceColumnMirrorReflectsRayAndAccumulatesDistance(t *testing.T) {
	lv, sh := buildMirrorBoxLevel(t)
	cfg := DefaultConfig()
	cam := NewCamera(lv, Vec2{X: 50, Y: 80}, 40, Vec2{X: 0, Y: -1})
	if cam.Sector() != sh {
		t.Fatalf("camera did not locate the box sector: got %d", cam.Sector())
	}

	rayDir := cam.rayDirection(160, 320)
	list := TraceColumn(lv, cfg, projFor(cam), cam.Sector(), cam.Position, cam.Direction, rayDir)
	if len(list) != 2 {
		t.Fatalf("expected the mirror hit plus the reflected ray's far-wall hit, got %d intersections", len(list))
	}

	mirror := list[0]
	if !mirror.IsMirror {
		t.Error("the mirror wall's own intersection should be flagged IsMirror")
	}
	if math.Abs(mirror.PlanarDistance-80) > 1e-6 {
		t.Errorf("mirror.PlanarDistance = %v, want 80", mirror.PlanarDistance)
	}

	far := list[1]
	if far.IsMirror {
		t.Error("the reflected ray's terminating wall should not itself be flagged as a mirror")
	}
	if far.RayDirection.Y <= 0 {
		t.Errorf("the reflected ray should now point south (+Y), got %+v", far.RayDirection)
	}
	// accum += ray_det across the bounce: 80 units to reach the mirror,
	// then another 100 to cross from the mirror to the far wall, summed
	// rather than reset at the reflection point.
	if math.Abs(far.PlanarDistance-180) > 1e-6 {
		t.Errorf("far.PlanarDistance = %v, want 180 (80 + 100 accumulated across the mirror bounce)", far.PlanarDistance)
	}
}

func buildTwoRoomLevel(t *testing.T) (*Level, SectorHandle, SectorHandle) {
	t.Helper()
	lv := NewLevel(DefaultConfig())

	roomA := lv.BeginSector(0, 128, 1.0, TextureNone, TextureNone)
	if err := lv.UpdateSectorLines(roomA, []LineDTO{
		{V0: LinePoint(Vec2{X: 0, Y: 0}), V1: LinePoint(Vec2{X: 100, Y: 0})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 100, Y: 100})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 0, Y: 100})},
		{V0: LineAppend(), V1: LineFinish()},
	}); err != nil {
		t.Fatalf("roomA UpdateSectorLines error: %v", err)
	}
	if err := lv.EndSector(); err != nil {
		t.Fatalf("roomA EndSector error: %v", err)
	}

	roomB := lv.BeginSector(0, 128, 1.0, TextureNone, TextureNone)
	if err := lv.UpdateSectorLines(roomB, []LineDTO{
		{V0: LinePoint(Vec2{X: 200, Y: 0}), V1: LinePoint(Vec2{X: 200, Y: 100})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 100, Y: 100})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 100, Y: 0})},
		{V0: LineAppend(), V1: LineFinish()},
	}); err != nil {
		t.Fatalf("roomB UpdateSectorLines error: %v", err)
	}
	if err := lv.EndSector(); err != nil {
		t.Fatalf("roomB EndSector error: %v", err)
	}
	return lv, roomA, roomB
}

func TestTraceColumnCrossesPortalIntoSecondRoom(t *testing.T) {
	lv, roomA, _ := buildTwoRoomLevel(t)
	cfg := DefaultConfig()
	cam := NewCamera(lv, Vec2{X: 50, Y: 50}, 40, Vec2{X: 1, Y: 0})
	if cam.Sector() != roomA {
		t.Fatalf("camera did not locate roomA: got %d", cam.Sector())
	}

	rayDir := cam.rayDirection(160, 320)
	list := TraceColumn(lv, cfg, projFor(cam), cam.Sector(), cam.Position, cam.Direction, rayDir)
	if len(list) < 2 {
		t.Fatalf("expected the portal hit plus a far-wall hit, got %d intersections", len(list))
	}
	if list[0].BackSector == invalidHandle {
		t.Error("the first intersection crossing into roomB should carry a back sector")
	}
	if list[len(list)-1].BackSector != invalidHandle {
		t.Error("the final intersection should terminate on a solid wall")
	}
}
