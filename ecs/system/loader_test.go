package system

import (
	"context"
	"errors"
	"testing"

	"github.com/milk9111/dungeoncore/collision"
	"github.com/milk9111/dungeoncore/config"
	"github.com/milk9111/dungeoncore/dungeon"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/ecs/entity"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/levels"
	"github.com/milk9111/dungeoncore/prefabs"
	"github.com/milk9111/dungeoncore/room"
)

type fakePresenter struct {
	frames     int
	holdFrames int
	hold       bool
	fades      []int
	err        error
}

func (p *fakePresenter) Present(ctx context.Context) error {
	p.frames++
	if p.hold {
		p.holdFrames++
	}
	return p.err
}

func (p *fakePresenter) SetFade(level int) { p.fades = append(p.fades, level) }
func (p *fakePresenter) SetHold(hold bool) { p.hold = hold }

type fakePersistence struct {
	saved []ecs.Backup
}

func (p *fakePersistence) BackupGameState(b ecs.Backup) error {
	p.saved = append(p.saved, b)
	return nil
}

type songLog struct {
	songs []uint8
}

func (a *songLog) ChangeSong(id uint8) { a.songs = append(a.songs, id) }

type testEnv struct {
	w       *ecs.World
	cat     *prefabs.CatalogSpec
	pack    *levels.Pack
	present *fakePresenter
	persist *fakePersistence
	audio   *songLog
	events  *RoomEvents
	loader  *Loader
	cfg     config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	table, cat, err := entity.LoadTable()
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	pack, err := levels.NewPack(cat)
	if err != nil {
		t.Fatalf("new pack: %v", err)
	}
	env := &testEnv{
		w:       ecs.NewWorld(table, 1),
		cat:     cat,
		pack:    pack,
		present: &fakePresenter{},
		persist: &fakePersistence{},
		audio:   &songLog{},
		cfg:     config.Default(),
	}
	env.events = NewRoomEvents(env.audio, NewEventScripts(pack))
	env.loader = NewLoader(env.w, LoaderDeps{
		Resources:   pack,
		Audio:       env.audio,
		Persistence: env.persist,
		Events:      env.events,
		Presenter:   env.present,
	}, env.cfg)
	return env
}

func (env *testEnv) typeID(t *testing.T, name string) ecs.TypeID {
	t.Helper()
	id, ok := env.cat.TypeID(name)
	if !ok {
		t.Fatalf("no type %q", name)
	}
	return ecs.TypeID(id)
}

func (env *testEnv) count(t *testing.T, name string) int {
	t.Helper()
	id := env.typeID(t, name)
	n := 0
	for _, e := range env.w.Active.Active() {
		if env.w.Store.Type[e] == id && env.w.Store.Health[e] > 0 {
			n++
		}
	}
	return n
}

// openBlob returns an all-floor room with no spawns.
func openBlob() [room.BlobSize]byte {
	var st room.State
	st.ClearRoom()
	var b [room.BlobSize]byte
	copy(b[:], st.Blob())
	return b
}

func putDungeon(t *testing.T, pack *levels.Pack, id int, desc dungeon.Descriptor, cells ...dungeon.Cell) {
	t.Helper()
	data, err := dungeon.Encode(desc, cells)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	pack.Put(levels.KindDungeon, id, data)
}

func selfPortalRoom(dungeonID uint8) [room.BlobSize]byte {
	blob := openBlob()
	var st room.State
	st.LoadBlob(blob[:])
	st.SetEvent(room.EventPortal)
	st.SetEventParam(0, dungeonID)
	st.SetEventParam(1, 0)
	st.SetEventParam(2, 0)
	st.SetEventParam(3, room.KeepPosition)
	copy(blob[:], st.Blob())
	return blob
}

func drainKinds(w *ecs.World, kind ecs.EventKind) []ecs.Event {
	var out []ecs.Event
	for _, evt := range w.Events().Drain() {
		if evt.Kind == kind {
			out = append(out, evt)
		}
	}
	return out
}

func checkUsable(t *testing.T, w *ecs.World) {
	t.Helper()
	if !w.Low.RoomLoaded() {
		t.Fatalf("room not marked loaded")
	}
	x, y := w.Store.Pos(ecs.Player)
	if !collision.PlacementValid(&w.Room, int(x), int(y)) {
		t.Fatalf("player at (%d,%d) stands on tile %#x", x, y, w.Room.TileAtPixel(int(x), int(y)))
	}
	if w.Frozen() {
		t.Fatalf("world left frozen")
	}
}

func TestLoadRoomTerminatesForAdversarialRequests(t *testing.T) {
	cases := []struct {
		name     string
		req      ecs.RoomRequest
		wantType RoomType
		dungeon  uint8
	}{
		{"unknown_dungeon", ecs.RoomRequest{Dungeon: 255, RoomX: 255, RoomY: 255, PlayerX: 255, PlayerY: 255}, DungeonZeroDefaultRoom, 0},
		{"finite_out_of_bounds", ecs.RoomRequest{Dungeon: 1, RoomX: 255, RoomY: 255, PlayerX: 80, PlayerY: 64}, DefaultRoom, 1},
		{"infinite_wraps", ecs.RoomRequest{Dungeon: 2, RoomX: 255, RoomY: 255, PlayerX: 80, PlayerY: 24}, RoomToLoad, 2},
		{"player_off_screen", ecs.RoomRequest{Dungeon: 0, RoomX: 1, RoomY: 0, PlayerX: 255, PlayerY: 255}, DefaultRoom, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newTestEnv(t)
			res, err := env.loader.LoadRoom(context.Background(), c.req)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if res.Attempts > env.cfg.MaxRetries {
				t.Fatalf("attempts = %d, budget %d", res.Attempts, env.cfg.MaxRetries)
			}
			if res.Type != c.wantType || res.Dungeon != c.dungeon {
				t.Fatalf("result = %+v", res)
			}
			checkUsable(t, env.w)
		})
	}
}

func TestLoadDungeonClampsOutOfRangeArguments(t *testing.T) {
	cases := []struct {
		name     string
		dungeon  int
		roomType RoomType
	}{
		{"both_out_of_range", 255, RoomType(255)},
		{"unknown_dungeon", 255, DefaultRoom},
		{"unknown_room_type", 1, RoomType(9)},
		{"negative_dungeon", -1, RoomToLoad},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newTestEnv(t)
			res, err := env.loader.LoadDungeon(context.Background(), c.dungeon, c.roomType)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if res.Attempts < 1 || res.Attempts > env.cfg.MaxRetries {
				t.Fatalf("attempts = %d, budget %d", res.Attempts, env.cfg.MaxRetries)
			}
			if res.Type != DungeonZeroDefaultRoom || res.Dungeon != 0 || res.Builtin {
				t.Fatalf("result = %+v", res)
			}
			checkUsable(t, env.w)
		})
	}
}

func TestOneByOneDungeonFallsBackOnce(t *testing.T) {
	env := newTestEnv(t)
	putDungeon(t, env.pack, 3, dungeon.Descriptor{Width: 1, Height: 1}, dungeon.Cell{Blob: openBlob()})

	res, err := env.loader.LoadRoom(context.Background(), ecs.RoomRequest{Dungeon: 3, RoomX: 5, RoomY: 5, PlayerX: 80, PlayerY: 64})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Type != DefaultRoom || res.Attempts != 2 || res.Dungeon != 3 {
		t.Fatalf("result = %+v", res)
	}
	fallbacks := drainKinds(env.w, ecs.EventFallback)
	if len(fallbacks) != 1 {
		t.Fatalf("fallbacks = %d, want 1", len(fallbacks))
	}
	fb := fallbacks[0].Data.(Fallback)
	if fb.From != RoomToLoad || fb.To != DefaultRoom || !errors.Is(fb.Err, dungeon.ErrOutOfBounds) {
		t.Fatalf("fallback = %+v", fb)
	}
}

func TestFallbackSkipsRetryOfSameCell(t *testing.T) {
	env := newTestEnv(t)
	// The only cell is the default cell and it is missing.
	putDungeon(t, env.pack, 3, dungeon.Descriptor{Width: 2, Height: 1, DefaultX: 1}, dungeon.Cell{Blob: openBlob()})

	res, err := env.loader.LoadRoom(context.Background(), ecs.RoomRequest{Dungeon: 3, RoomX: 1, PlayerX: 80, PlayerY: 64})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []RoomType{RoomToLoad, DungeonZeroDefaultRoom}
	if len(res.Path) != len(want) || res.Path[0] != want[0] || res.Path[1] != want[1] {
		t.Fatalf("path = %v, want %v", res.Path, want)
	}
}

func TestSelfPortalIsBoundedByBudget(t *testing.T) {
	cases := []struct {
		name    string
		dungeon int
	}{
		{"portal_in_dungeon_three", 3},
		{"portal_in_terminal_dungeon", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newTestEnv(t)
			putDungeon(t, env.pack, c.dungeon, dungeon.Descriptor{Width: 1, Height: 1}, dungeon.Cell{Blob: selfPortalRoom(uint8(c.dungeon))})

			res, err := env.loader.LoadRoom(context.Background(), ecs.RoomRequest{Dungeon: uint8(c.dungeon), PlayerX: 80, PlayerY: 64})
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if res.Attempts != env.cfg.MaxRetries {
				t.Fatalf("attempts = %d, want %d", res.Attempts, env.cfg.MaxRetries)
			}
			if res.Type != DungeonZeroDefaultRoom {
				t.Fatalf("type = %s", res.Type)
			}
			checkUsable(t, env.w)
		})
	}
}

func TestInvalidPlacementRetriesBackup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.loader.LoadDefaultRoom(ctx, 1); err != nil {
		t.Fatalf("load default: %v", err)
	}
	env.w.Events().Drain()

	// (8, 8) is the corner wall of caves (1,0).
	res, err := env.loader.LoadRoom(ctx, ecs.RoomRequest{Dungeon: 1, RoomX: 1, PlayerX: 8, PlayerY: 8})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Type != RoomstateBackup || res.RoomX != 0 || res.Dungeon != 1 {
		t.Fatalf("result = %+v", res)
	}
	if env.present.holdFrames != env.cfg.PauseFrames {
		t.Fatalf("held %d frames, want %d", env.present.holdFrames, env.cfg.PauseFrames)
	}
	if env.present.hold {
		t.Fatalf("hold left on")
	}
	x, y := env.w.Store.Pos(ecs.Player)
	if x != room.ScreenWidth/2 || y != room.ScreenHeight/2 {
		t.Fatalf("player at (%d,%d), want backup position", x, y)
	}
	checkUsable(t, env.w)
}

func TestInvalidPlacementWithoutBackupUsesDefault(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.loader.LoadRoom(context.Background(), ecs.RoomRequest{Dungeon: 1, RoomX: 1, PlayerX: 8, PlayerY: 8})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Type != DefaultRoom || res.RoomX != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestBrokenTerminalDungeonUsesBuiltinRoom(t *testing.T) {
	env := newTestEnv(t)
	env.pack.Put(levels.KindDungeon, 0, []byte{1, 2, 3})

	res, err := env.loader.LoadDefaultRoom(context.Background(), 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Builtin || res.Type != DungeonZeroDefaultRoom || res.Attempts != 2 {
		t.Fatalf("result = %+v", res)
	}
	if env.w.Room.Tile(0, 0) != room.TileWall || env.w.Room.Tile(5, 4) != room.TileFloor {
		t.Fatalf("builtin room is not a bordered empty room")
	}
	checkUsable(t, env.w)
}

func TestTerminalRoomRelocatesPlayer(t *testing.T) {
	env := newTestEnv(t)
	blob := openBlob()
	var st room.State
	st.LoadBlob(blob[:])
	st.SetTile(5, 4, room.TileRock)
	copy(blob[:], st.Blob())
	putDungeon(t, env.pack, 0, dungeon.Descriptor{Width: 1, Height: 1}, dungeon.Cell{Blob: blob})

	res, err := env.loader.LoadDefaultRoom(context.Background(), 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Relocated {
		t.Fatalf("result = %+v", res)
	}
	x, y := env.w.Store.Pos(ecs.Player)
	if x != 72 || y != 56 {
		t.Fatalf("player at (%d,%d), want (72,56)", x, y)
	}
	checkUsable(t, env.w)
}

func TestLoadSetsUpRoom(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.loader.LoadDefaultRoom(context.Background(), 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Type != DefaultRoom || res.Attempts != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := env.count(t, "slime"); got != 2 {
		t.Fatalf("slimes = %d, want 2 from the spawner", got)
	}
	if got := env.count(t, "key"); got != 1 {
		t.Fatalf("keys = %d", got)
	}
	if len(env.audio.songs) != 1 || env.audio.songs[0] != 2 {
		t.Fatalf("songs = %v", env.audio.songs)
	}
	if len(env.persist.saved) != 1 {
		t.Fatalf("backups persisted = %d", len(env.persist.saved))
	}
	d, x, y := env.persist.saved[0].Location()
	if d != 1 || x != 0 || y != 0 {
		t.Fatalf("persisted location = %d (%d,%d)", d, x, y)
	}
	loaded := drainKinds(env.w, ecs.EventRoomLoaded)
	if len(loaded) != 1 {
		t.Fatalf("room_loaded events = %d", len(loaded))
	}
}

func TestFadeSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.loader.LoadDefaultRoom(ctx, 0); err != nil {
		t.Fatalf("first load: %v", err)
	}
	// Starting dark, the first load only fades in.
	want := []int{3, 2, 1, 0, 0}
	if len(env.present.fades) != len(want) {
		t.Fatalf("fades = %v, want %v", env.present.fades, want)
	}
	env.present.fades = nil

	if _, err := env.loader.LoadRoom(ctx, ecs.RoomRequest{Dungeon: 0, RoomX: 1, PlayerX: 80, PlayerY: 64, Fade: true}); err != nil {
		t.Fatalf("second load: %v", err)
	}
	want = []int{1, 2, 3, 4, 4, 3, 2, 1, 0, 0}
	for i := range want {
		if i >= len(env.present.fades) || env.present.fades[i] != want[i] {
			t.Fatalf("fades = %v, want %v", env.present.fades, want)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.loader.LoadRoom(ctx, ecs.RoomRequest{Dungeon: 0, RoomX: 0, RoomY: 1, PlayerX: 40, PlayerY: 100}); err != nil {
		t.Fatalf("load: %v", err)
	}
	save, ok := env.w.Backup()
	if !ok {
		t.Fatalf("no backup after load")
	}

	fresh := newTestEnv(t)
	res, err := fresh.loader.RestoreBackup(ctx, save)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Type != RoomstateBackup || res.Dungeon != 0 || res.RoomY != 1 {
		t.Fatalf("result = %+v", res)
	}
	x, y := fresh.w.Store.Pos(ecs.Player)
	if x != 40 || y != 100 {
		t.Fatalf("player at (%d,%d)", x, y)
	}
	if fresh.w.Room != env.w.Room {
		t.Fatalf("restored room differs")
	}
}

func TestLoadHonorsContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := env.loader.LoadDefaultRoom(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("load with canceled ctx = %v", err)
	}

	env.present.err = frame.ErrStopped
	if _, err := env.loader.LoadDefaultRoom(context.Background(), 0); !errors.Is(err, frame.ErrStopped) {
		t.Fatalf("load with stopped clock = %v", err)
	}
}

func TestRoomTypeString(t *testing.T) {
	if RoomstateBackup.String() != "roomstate_backup" || RoomType(9).String() != "room_type(9)" {
		t.Fatalf("unexpected names")
	}
}

func dungeonDesc1x1() dungeon.Descriptor {
	return dungeon.Descriptor{Width: 1, Height: 1}
}

func dungeonCell(blob [room.BlobSize]byte) dungeon.Cell {
	return dungeon.Cell{Blob: blob}
}
