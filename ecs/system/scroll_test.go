package system

import (
	"context"
	"testing"

	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/room"
)

func newTestScroll(t *testing.T, env *testEnv, req ecs.RoomRequest) *Scroll {
	t.Helper()
	if _, err := env.loader.LoadRoom(context.Background(), req); err != nil {
		t.Fatalf("load: %v", err)
	}
	env.w.Events().Drain()
	return NewScroll(env.w, env.pack, env.events, env.persist, env.cfg)
}

// runScroll updates until the transition ends and returns how many updates
// each phase took.
func runScroll(t *testing.T, s *Scroll) map[ScrollPhase]int {
	t.Helper()
	counts := map[ScrollPhase]int{}
	for i := 0; s.Active(); i++ {
		if i > 1000 {
			t.Fatalf("scroll never finished, phase %s", s.Phase())
		}
		counts[s.Phase()]++
		s.Update()
	}
	return counts
}

func TestScrollSuccess(t *testing.T) {
	env := newTestEnv(t)
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 0, PlayerX: 150, PlayerY: 56})

	if !s.Start(frame.DirRight) {
		t.Fatalf("start refused")
	}
	s.Update()
	if !env.w.Frozen() || s.Phase() != ScrollLoop {
		t.Fatalf("after setup: frozen=%v phase=%s", env.w.Frozen(), s.Phase())
	}
	if got := len(s.visible); got != 2 {
		t.Fatalf("visible = %d, want the slime and the incoming bat", got)
	}
	if env.count(t, "slime") != 0 {
		t.Fatalf("source entities not cleared")
	}

	counts := runScroll(t, s)
	if counts[ScrollLoop] != room.ScreenWidth/env.cfg.ScrollSpeedX {
		t.Fatalf("loop frames = %d", counts[ScrollLoop])
	}
	w := env.w
	if w.Low.RoomX != 1 || w.Low.RoomY != 0 {
		t.Fatalf("location = (%d,%d)", w.Low.RoomX, w.Low.RoomY)
	}
	x, y := w.Store.Pos(ecs.Player)
	if x != uint8(env.cfg.EdgeOffset) || y != 56 {
		t.Fatalf("player at (%d,%d)", x, y)
	}
	if env.count(t, "bat") != 1 {
		t.Fatalf("destination not spawned")
	}
	if w.Frozen() {
		t.Fatalf("world left frozen")
	}
	b, _ := w.Backup()
	if d, bx, _ := b.Location(); d != 0 || bx != 1 {
		t.Fatalf("backup not refreshed")
	}
	if got := drainKinds(w, ecs.EventScrolled); len(got) != 1 {
		t.Fatalf("scrolled events = %d", len(got))
	}
}

// liveSet counts the non-player entities by position and type.
func liveSet(w *ecs.World) map[[3]uint8]int {
	out := map[[3]uint8]int{}
	for _, e := range w.Active.Active() {
		if e == ecs.Player {
			continue
		}
		x, y := w.Store.Pos(e)
		out[[3]uint8{x, y, uint8(w.Store.Type[e])}]++
	}
	return out
}

func sameSet(a, b map[[3]uint8]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, n := range a {
		if b[k] != n {
			return false
		}
	}
	return true
}

func TestScrollRollbackIsSymmetric(t *testing.T) {
	env := newTestEnv(t)
	// Caves (2,0) is walled on its west side. The player starts on the
	// east doorway, outside the edge margin.
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 1, RoomX: 1, PlayerX: 158, PlayerY: 56})
	w := env.w
	before := w.Room
	spawns := w.Room.Spawns()
	live := liveSet(w)
	if len(live) == 0 {
		t.Fatalf("source room spawned nothing")
	}

	if !s.Start(frame.DirRight) {
		t.Fatalf("start refused")
	}
	counts := runScroll(t, s)
	if counts[ScrollLoop] != env.cfg.ScrollDelay+1 {
		t.Fatalf("loop frames = %d, want %d", counts[ScrollLoop], env.cfg.ScrollDelay+1)
	}
	if counts[ScrollRollback] != counts[ScrollLoop] {
		t.Fatalf("rollback took %d frames, forward took %d", counts[ScrollRollback], counts[ScrollLoop])
	}
	if w.Room != before {
		t.Fatalf("room not restored verbatim")
	}
	if w.Low.RoomX != 1 {
		t.Fatalf("location = (%d,%d)", w.Low.RoomX, w.Low.RoomY)
	}
	x, y := w.Store.Pos(ecs.Player)
	if int(x) != room.ScreenWidth-1-env.cfg.EdgeOffset || y != 56 {
		t.Fatalf("player at (%d,%d), want clamp to x=%d", x, y, room.ScreenWidth-1-env.cfg.EdgeOffset)
	}
	after := w.Room.Spawns()
	if len(after) != len(spawns) {
		t.Fatalf("spawn table = %v, want %v", after, spawns)
	}
	for i := range spawns {
		if after[i] != spawns[i] {
			t.Fatalf("spawn %d = %+v, want %+v", i, after[i], spawns[i])
		}
	}
	if got := liveSet(w); !sameSet(got, live) {
		t.Fatalf("respawned %v, want %v", got, live)
	}
	if w.Frozen() {
		t.Fatalf("world left frozen")
	}
	if got := drainKinds(w, ecs.EventRollback); len(got) != 1 {
		t.Fatalf("rollback events = %d", len(got))
	}
}

func TestScrollFastPanStillTestsLandingTile(t *testing.T) {
	env := newTestEnv(t)
	// Five frames per pan, fewer than the delay.
	env.cfg.ScrollSpeedX = 32
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 1, RoomX: 1, PlayerX: 150, PlayerY: 56})
	w := env.w
	before := w.Room

	if !s.Start(frame.DirRight) {
		t.Fatalf("start refused")
	}
	counts := runScroll(t, s)
	if want := room.ScreenWidth / 32; counts[ScrollLoop] != want || counts[ScrollRollback] != want {
		t.Fatalf("loop=%d rollback=%d, want %d each", counts[ScrollLoop], counts[ScrollRollback], want)
	}
	if w.Room != before || w.Low.RoomX != 1 {
		t.Fatalf("walled destination was entered: room (%d,%d)", w.Low.RoomX, w.Low.RoomY)
	}
	checkUsable(t, w)
	if got := drainKinds(w, ecs.EventRollback); len(got) != 1 {
		t.Fatalf("rollback events = %d", len(got))
	}
}

func TestScrollFastPanIntoOpenRoom(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.ScrollSpeedX = 32
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 0, PlayerX: 150, PlayerY: 56})

	if !s.Start(frame.DirRight) {
		t.Fatalf("start refused")
	}
	counts := runScroll(t, s)
	if counts[ScrollLoop] != room.ScreenWidth/32 || counts[ScrollRollback] != 0 {
		t.Fatalf("counts = %v", counts)
	}
	if env.w.Low.RoomX != 1 {
		t.Fatalf("location = (%d,%d)", env.w.Low.RoomX, env.w.Low.RoomY)
	}
	checkUsable(t, env.w)
}

func TestScrollMissingDestination(t *testing.T) {
	env := newTestEnv(t)
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 0, PlayerX: 72, PlayerY: 120})
	env.w.PlacePlayer(72, 2, 0)

	if s.Start(frame.DirUp) {
		t.Fatalf("start accepted a missing room")
	}
	if s.Active() {
		t.Fatalf("scroll active")
	}
	if _, y := env.w.Store.Pos(ecs.Player); int(y) != env.cfg.EdgeOffset {
		t.Fatalf("player y = %d, want clamp to %d", y, env.cfg.EdgeOffset)
	}
}

func TestScrollWrapsInInfiniteDungeon(t *testing.T) {
	env := newTestEnv(t)
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 2, PlayerX: 8, PlayerY: 56})
	if !s.Start(frame.DirLeft) {
		t.Fatalf("start refused")
	}
	runScroll(t, s)
	if env.w.Low.RoomX != 1 {
		t.Fatalf("room x = %d, want wrap to 1", env.w.Low.RoomX)
	}
	if x, _ := env.w.Store.Pos(ecs.Player); int(x) != room.ScreenWidth-1-env.cfg.EdgeOffset {
		t.Fatalf("player x = %d", x)
	}
}

func TestScrollIntoPortalQueuesLoad(t *testing.T) {
	env := newTestEnv(t)
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 0, RoomY: 1, PlayerX: 150, PlayerY: 56})
	if !s.Start(frame.DirRight) {
		t.Fatalf("start refused")
	}
	runScroll(t, s)
	req, ok := env.w.TakeLoadRequest()
	if !ok {
		t.Fatalf("no load request queued")
	}
	if req.Dungeon != 1 || !req.Fade {
		t.Fatalf("request = %+v", req)
	}
}

func TestScrollPresent(t *testing.T) {
	env := newTestEnv(t)
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 0, PlayerX: 72, PlayerY: 120})
	origin := env.w.Room.Tiles()
	if !s.Start(frame.DirDown) {
		t.Fatalf("start refused")
	}
	s.Update()
	for i := 0; i < 3; i++ {
		s.Update()
	}

	var f frame.Frame
	s.Present(&f)
	if f.Scroll != frame.DirDown || f.CameraY != 3*env.cfg.ScrollSpeedY || f.CameraX != 0 {
		t.Fatalf("camera = (%d,%d) dir %s", f.CameraX, f.CameraY, f.Scroll)
	}
	if f.Prev != origin || f.Tiles != env.w.Room.Tiles() {
		t.Fatalf("tile buffers not set")
	}
	var player *frame.Sprite
	for i := range f.Visible.Sprites {
		if f.Visible.Sprites[i].Flags&frame.SpritePlayer != 0 {
			player = &f.Visible.Sprites[i]
		}
	}
	if player == nil {
		t.Fatalf("player missing from visible list")
	}
	if player.X != 72 {
		t.Fatalf("player sprite x = %d", player.X)
	}
}

func TestScrollCancel(t *testing.T) {
	env := newTestEnv(t)
	s := newTestScroll(t, env, ecs.RoomRequest{Dungeon: 0, PlayerX: 150, PlayerY: 56})
	s.Start(frame.DirRight)
	s.Update()
	s.Cancel()
	if s.Active() || env.w.Frozen() {
		t.Fatalf("cancel left scroll active=%v frozen=%v", s.Active(), env.w.Frozen())
	}
}
