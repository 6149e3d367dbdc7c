package portalcast

import "testing"

func TestIsClosedWhenFloorMeetsCeiling(t *testing.T) {
	s := Sector{FloorHeight: 64, CeilingHeight: 64}
	if !s.IsClosed() {
		t.Error("equal floor/ceiling should be closed")
	}
	s.CeilingHeight = 128
	if s.IsClosed() {
		t.Error("ceiling above floor should not be closed")
	}
}

func TestPointInsideSquareRoom(t *testing.T) {
	lv := NewLevel(DefaultConfig())
	sh := lv.BeginSector(0, 128, 1.0, TextureNone, TextureNone)
	err := lv.UpdateSectorLines(sh, []LineDTO{
		{V0: LinePoint(Vec2{X: 0, Y: 0}), V1: LinePoint(Vec2{X: 100, Y: 0})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 100, Y: 100})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 0, Y: 100})},
		{V0: LineAppend(), V1: LineFinish()},
	})
	if err != nil {
		t.Fatalf("UpdateSectorLines error: %v", err)
	}
	if err := lv.EndSector(); err != nil {
		t.Fatalf("EndSector error: %v", err)
	}

	sec := lv.Sector(sh)
	if !sec.PointInside(lv, Vec2{X: 50, Y: 50}) {
		t.Error("center point should be inside the room")
	}
	if sec.PointInside(lv, Vec2{X: 500, Y: 500}) {
		t.Error("far point should not be inside the room")
	}
}
