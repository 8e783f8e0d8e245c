package entity

import (
	"testing"

	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/prefabs"
	"github.com/milk9111/dungeoncore/room"
)

func newTestWorld(t *testing.T) (*ecs.World, *prefabs.CatalogSpec) {
	t.Helper()
	table, cat, err := LoadTable()
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	w := ecs.NewWorld(table, 7)
	w.PlacePlayer(16, 16, 0)
	return w, cat
}

func typeID(t *testing.T, cat *prefabs.CatalogSpec, name string) ecs.TypeID {
	t.Helper()
	id, ok := cat.TypeID(name)
	if !ok {
		t.Fatalf("no type %q", name)
	}
	return ecs.TypeID(id)
}

func TestBuildTable(t *testing.T) {
	w, cat := newTestWorld(t)
	types := w.Types()
	if types.NumTypes() != len(cat.Types) {
		t.Fatalf("types = %d, want %d", types.NumTypes(), len(cat.Types))
	}
	player, _ := types.Type(ecs.TypePlayer)
	if player.Behavior == ecs.BehaviorNone || player.Draw == ecs.DrawNone {
		t.Fatalf("player defaults = %+v", player)
	}
	if w.Store.Behavior(ecs.Player) != player.Behavior {
		t.Fatalf("player slot behavior not installed")
	}
	spawner, _ := types.Type(typeID(t, cat, "spawner"))
	if spawner.Init == nil || spawner.Health != 0 {
		t.Fatalf("spawner defaults = %+v", spawner)
	}
	slime, _ := types.Type(typeID(t, cat, "slime"))
	if slime.Death == ecs.DeathNone {
		t.Fatalf("slime has no death handler")
	}
}

func TestBuildTableRejectsUnknownNames(t *testing.T) {
	cases := map[string]prefabs.EntitySpec{
		"behavior": {Name: "x", Behavior: "teleport"},
		"death":    {Name: "x", Death: "explode"},
		"draw":     {Name: "x", Draw: "hologram"},
		"init":     {Name: "x", Init: "summon"},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			cat := &prefabs.CatalogSpec{Types: []prefabs.EntitySpec{{Name: "player"}, spec}}
			if _, err := BuildTable(cat); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSlimeDeathBecomesPoof(t *testing.T) {
	w, cat := newTestWorld(t)
	slime, ok := w.Spawn(80, 64, typeID(t, cat, "slime"), 0)
	if !ok {
		t.Fatalf("spawn failed")
	}
	w.Kill(slime)
	w.Dispatch()

	if w.Active.IndexOf(slime) < 0 {
		t.Fatalf("slime was despawned instead of transformed")
	}
	if got := w.Store.Type[slime]; got != typeID(t, cat, "poof") {
		t.Fatalf("type after death = %d", got)
	}
	if w.Store.Attack[slime] != 0 {
		t.Fatalf("poof should be harmless")
	}

	for i := 0; i < 11; i++ {
		w.Dispatch()
	}
	if w.Active.IndexOf(slime) < 0 {
		t.Fatalf("poof expired early")
	}
	w.Dispatch()
	if w.Active.IndexOf(slime) >= 0 {
		t.Fatalf("poof outlived its lifetime")
	}
}

func TestSpawnerSpawnsChildrenAndGoesInert(t *testing.T) {
	w, cat := newTestWorld(t)
	sp, ok := w.Spawn(80, 64, typeID(t, cat, "spawner"), 2)
	if !ok {
		t.Fatalf("spawn failed")
	}
	if w.Active.Len() != 4 {
		t.Fatalf("active = %d, want player + spawner + 2 slimes", w.Active.Len())
	}
	if w.Store.Behavior(sp) != ecs.BehaviorNone || w.Store.Draw[sp] != ecs.DrawNone {
		t.Fatalf("spawner not inert")
	}
	slimes := 0
	for _, e := range w.Active.Active() {
		if w.Store.Type[e] == typeID(t, cat, "slime") {
			slimes++
		}
	}
	if slimes != 2 {
		t.Fatalf("slimes = %d", slimes)
	}

	w.Dispatch()
	if w.Active.IndexOf(sp) >= 0 || w.Active.Len() != 3 {
		t.Fatalf("spawner still active after dispatch, len=%d", w.Active.Len())
	}
}

func TestKeyPickup(t *testing.T) {
	w, cat := newTestWorld(t)
	w.PlacePlayer(80, 64, 0)
	key, _ := w.Spawn(84, 64, typeID(t, cat, "key"), 0)
	w.Dispatch()
	if w.Low.Flags&ecs.FlagHasKey == 0 {
		t.Fatalf("key not collected")
	}
	if w.Active.IndexOf(key) >= 0 {
		t.Fatalf("key still active")
	}
}

func TestPlayerMovement(t *testing.T) {
	tests := []struct {
		name    string
		x, y    uint8
		input   frame.Buttons
		wall    [2]int
		wantX   ecs.Fixed
		wantDir frame.Direction
		scroll  frame.Direction
	}{
		{"walk_right", 80, 64, frame.ButtonRight, [2]int{-1, -1}, ecs.FixedFromInt(80) + 384, frame.DirRight, frame.DirNone},
		{"walk_left", 80, 64, frame.ButtonLeft, [2]int{-1, -1}, ecs.FixedFromInt(80) - 384, frame.DirLeft, frame.DirNone},
		{"blocked_by_wall", 90, 72, frame.ButtonRight, [2]int{6, 4}, ecs.FixedFromInt(90), frame.DirRight, frame.DirNone},
		{"right_edge_scrolls", 154, 64, frame.ButtonRight, [2]int{-1, -1}, ecs.FixedFromInt(154), frame.DirRight, frame.DirRight},
		{"top_edge_scrolls", 80, 5, frame.ButtonUp, [2]int{-1, -1}, ecs.FixedFromInt(80), frame.DirUp, frame.DirUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := newTestWorld(t)
			w.PlacePlayer(tt.x, tt.y, 0)
			if tt.wall[0] >= 0 {
				w.Room.SetTile(tt.wall[0], tt.wall[1], room.TileWall)
			}
			w.Input = tt.input
			w.Dispatch()
			if got := w.Store.X[ecs.Player]; got != tt.wantX {
				t.Fatalf("x = %d, want %d", got, tt.wantX)
			}
			if got := frame.Direction(w.Store.Direction[ecs.Player]); got != tt.wantDir {
				t.Fatalf("direction = %v, want %v", got, tt.wantDir)
			}
			if got := w.TakeScrollRequest(); got != tt.scroll {
				t.Fatalf("scroll = %v, want %v", got, tt.scroll)
			}
		})
	}
}

func TestPlayerContactDamage(t *testing.T) {
	w, cat := newTestWorld(t)
	w.PlacePlayer(80, 64, 0)
	w.Spawn(80, 64, typeID(t, cat, "bat"), 0)
	full := w.Store.Health[ecs.Player]

	w.Dispatch()
	if got := w.Store.Health[ecs.Player]; got != full-1 {
		t.Fatalf("health = %d, want %d", got, full-1)
	}
	if w.Store.State[ecs.Player] != PlayerHurt {
		t.Fatalf("state = %d, want hurt", w.Store.State[ecs.Player])
	}
	w.Dispatch()
	if got := w.Store.Health[ecs.Player]; got != full-1 {
		t.Fatalf("damaged again while invulnerable: %d", got)
	}
}

func TestPlayerStrike(t *testing.T) {
	w, cat := newTestWorld(t)
	w.PlacePlayer(80, 64, 0)
	w.Store.Direction[ecs.Player] = uint8(frame.DirRight)
	slime, _ := w.Spawn(93, 64, typeID(t, cat, "slime"), 0)
	before := w.Store.Health[slime]

	w.Input = frame.ButtonA
	w.Dispatch()
	if got := w.Store.Health[slime]; got != before-1 {
		t.Fatalf("slime health = %d, want %d", got, before-1)
	}
	if w.Store.State[ecs.Player] != PlayerAttack {
		t.Fatalf("state = %d, want attack", w.Store.State[ecs.Player])
	}

	w.Dispatch()
	if got := w.Store.Health[slime]; got != before-1 {
		t.Fatalf("attack ignored its cooldown: health %d", got)
	}
}

func TestBatChasesWithinVision(t *testing.T) {
	w, cat := newTestWorld(t)
	w.PlacePlayer(80, 64, 0)
	bat, _ := w.Spawn(110, 64, typeID(t, cat, "bat"), 0)
	start := w.Store.X[bat]
	w.Dispatch()
	if w.Store.X[bat] >= start {
		t.Fatalf("bat did not approach: %d -> %d", start, w.Store.X[bat])
	}
	if w.Store.Y[bat] != ecs.FixedFromInt(64) {
		t.Fatalf("bat drifted vertically")
	}
}

func TestDrawPlayerBlinksWhileInvulnerable(t *testing.T) {
	w, _ := newTestWorld(t)
	var buf frame.DrawBuffer
	w.DrawPass(&buf)
	if len(buf.Sprites) != 1 || buf.Sprites[0].Flags&frame.SpritePlayer == 0 {
		t.Fatalf("sprites = %+v", buf.Sprites)
	}

	w.Store.Scratch[scratchInvulnerable][ecs.Player] = 10
	w.Frame = 2
	buf.Reset()
	w.DrawPass(&buf)
	if len(buf.Sprites) != 0 {
		t.Fatalf("player drawn on a blink frame")
	}
}
