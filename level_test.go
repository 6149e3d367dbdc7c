package portalcast

import "testing"

func TestUpdateSectorLinesSharesPortalLinedef(t *testing.T) {
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

	shared, err := lv.FindLinedef(Vec2{X: 100, Y: 0}, Vec2{X: 100, Y: 100})
	if err != nil {
		t.Fatalf("FindLinedef error: %v", err)
	}
	ld := lv.Linedef(shared)
	if !ld.IsPortal() {
		t.Error("shared edge between two closed rooms should be a portal")
	}
	if ld.sideOf(roomA) == -1 || ld.sideOf(roomB) == -1 {
		t.Error("portal linedef should own a side for each adjacent sector")
	}
}

func TestEndSectorRejectsUnclosedLoop(t *testing.T) {
	lv := NewLevel(DefaultConfig())
	sh := lv.BeginSector(0, 128, 1.0, TextureNone, TextureNone)
	if err := lv.UpdateSectorLines(sh, []LineDTO{
		{V0: LinePoint(Vec2{X: 0, Y: 0}), V1: LinePoint(Vec2{X: 100, Y: 0})},
		{V0: LineAppend(), V1: LinePoint(Vec2{X: 100, Y: 100})},
	}); err != nil {
		t.Fatalf("UpdateSectorLines error: %v", err)
	}
	if err := lv.EndSector(); err == nil {
		t.Error("an open polyline should fail EndSector")
	}
}

func TestUpdateSectorLinesWithoutOpenSectorFails(t *testing.T) {
	lv := NewLevel(DefaultConfig())
	err := lv.UpdateSectorLines(invalidHandle, []LineDTO{
		{V0: LinePoint(Vec2{X: 0, Y: 0}), V1: LinePoint(Vec2{X: 1, Y: 0})},
	})
	if err != ErrNoOpenSector {
		t.Errorf("err = %v, want ErrNoOpenSector", err)
	}
}

func TestLightsIntoFillsScratchBuffer(t *testing.T) {
	lv := NewLevel(DefaultConfig())
	h1, _ := lv.AddLight(Vec2{X: 0, Y: 0}, 0, 100, 1)
	h2, _ := lv.AddLight(Vec2{X: 10, Y: 10}, 0, 100, 1)

	var buf [4]*Light
	got := lv.lightsInto([]LightHandle{h1, h2}, buf[:])
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0] != lv.Light(h1) || got[1] != lv.Light(h2) {
		t.Error("lightsInto should resolve handles in order")
	}
}
