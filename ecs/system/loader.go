package system

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/dungeoncore/collision"
	"github.com/milk9111/dungeoncore/config"
	"github.com/milk9111/dungeoncore/dungeon"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/room"
)

// RoomType is the loader state: which room a dungeon load attempts.
type RoomType uint8

const (
	RoomToLoad RoomType = iota
	RoomstateBackup
	DefaultRoom
	// DungeonZeroDefaultRoom is the terminal fallback. It always loads.
	DungeonZeroDefaultRoom

	numRoomTypes
)

func (t RoomType) String() string {
	switch t {
	case RoomToLoad:
		return "room_to_load"
	case RoomstateBackup:
		return "roomstate_backup"
	case DefaultRoom:
		return "default_room"
	case DungeonZeroDefaultRoom:
		return "dungeon_zero_default_room"
	}
	return fmt.Sprintf("room_type(%d)", uint8(t))
}

// LoadResult describes how a load ended.
type LoadResult struct {
	// Attempts counts inner room-load attempts, redirects included.
	Attempts int
	// Type is the state that produced the loaded room.
	Type RoomType
	// Path lists every state attempted, in order.
	Path []RoomType

	Dungeon uint8
	RoomX   uint8
	RoomY   uint8

	// Builtin is set when the terminal room had to be synthesized.
	Builtin bool
	// Relocated is set when the player was moved off a solid tile.
	Relocated bool
}

// Fallback is the payload of an EventFallback.
type Fallback struct {
	From    RoomType
	To      RoomType
	Dungeon int
	Err     error
}

// Loader owns the dungeon/room loading state machine.
type Loader struct {
	w       *ecs.World
	res     Resources
	display Display
	audio   Audio
	persist Persistence
	events  *RoomEvents
	present Presenter

	maxRetries  int
	fadeFrames  int
	pauseFrames int

	pending ecs.RoomRequest
	dark    bool

	// onReset runs when transient state is reset at the start of an
	// attempt.
	onReset func()
}

type LoaderDeps struct {
	Resources   Resources
	Display     Display
	Audio       Audio
	Persistence Persistence
	Events      *RoomEvents
	Presenter   Presenter
}

func NewLoader(w *ecs.World, deps LoaderDeps, cfg config.Config) *Loader {
	l := &Loader{
		w:           w,
		res:         deps.Resources,
		display:     deps.Display,
		audio:       deps.Audio,
		persist:     deps.Persistence,
		events:      deps.Events,
		present:     deps.Presenter,
		maxRetries:  cfg.MaxRetries,
		fadeFrames:  cfg.FadeFrames,
		pauseFrames: cfg.PauseFrames,
		dark:        true,
	}
	if l.display == nil {
		l.display = NopDisplay{}
	}
	if l.audio == nil {
		l.audio = NopAudio{}
	}
	if l.persist == nil {
		l.persist = NopPersistence{}
	}
	if l.maxRetries < 2 {
		l.maxRetries = 2
	}
	return l
}

// OnReset registers a hook run whenever transient state is cleared.
func (l *Loader) OnReset(fn func()) {
	l.onReset = fn
}

// Dark reports whether the presentation is faded out.
func (l *Loader) Dark() bool {
	return l.dark
}

// LoadRoom loads the requested cell. Failure degrades to a fallback room.
func (l *Loader) LoadRoom(ctx context.Context, req ecs.RoomRequest) (LoadResult, error) {
	l.pending = req
	return l.load(ctx, int(req.Dungeon), RoomToLoad, req.Fade)
}

// LoadDefaultRoom loads a dungeon's default cell.
func (l *Loader) LoadDefaultRoom(ctx context.Context, dungeonID int) (LoadResult, error) {
	return l.load(ctx, dungeonID, DefaultRoom, true)
}

// RestoreBackup installs b and loads it.
func (l *Loader) RestoreBackup(ctx context.Context, b ecs.Backup) (LoadResult, error) {
	l.w.SetBackup(b)
	d, _, _ := b.Location()
	return l.load(ctx, int(d), RoomstateBackup, true)
}

// LoadDungeon runs the state machine from roomType. The returned error is
// only ever the context's.
func (l *Loader) LoadDungeon(ctx context.Context, dungeonID int, roomType RoomType) (LoadResult, error) {
	return l.load(ctx, dungeonID, roomType, true)
}

func (l *Loader) load(ctx context.Context, d int, t RoomType, fade bool) (LoadResult, error) {
	w := l.w
	var res LoadResult
	budget := l.maxRetries

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if t == RoomstateBackup && w.HasBackup() {
			b, _ := w.Backup()
			bd, _, _ := b.Location()
			d = int(bd)
		}
		terminal := budget <= 1
		if terminal || d < 0 || d >= l.res.NumDungeons() || t >= numRoomTypes {
			d, t = 0, DungeonZeroDefaultRoom
		}
		budget--
		res.Attempts++
		res.Path = append(res.Path, t)

		if fade {
			if err := l.fadeOut(ctx); err != nil {
				return res, err
			}
		}
		fade = true
		l.resetTransient()

		dg, err := loadDungeon(l.res, d)
		if err == nil {
			w.Room.SetHeader(descBytes(dg.Desc))
		}
		w.Low.Flags &^= ecs.FlagRoomLoaded

		var attempted cell
		if err == nil {
			attempted, err = l.attempt(dg, d, t)
		}
		if err != nil {
			if t != DungeonZeroDefaultRoom {
				next := l.nextFallback(t, d, dg, attempted)
				l.fallback(t, next, d, err)
				t = next
				continue
			}
			log.Printf("loader: terminal room failed: %v; using built-in room", err)
			dg = builtinDungeon()
			l.installBuiltin(dg)
			res.Builtin = true
		}

		w.Low.Flags |= ecs.FlagRoomLoaded
		l.display.SetupDisplayLayers(dg.Desc)
		l.audio.ChangeSong(dg.Desc.Song)
		w.SpawnRoom()

		if redirect, ok := l.events.Enter(w); ok {
			if budget > 0 {
				l.pending = redirect.Request
				d, t = int(redirect.Request.Dungeon), RoomToLoad
				fade = redirect.Fade
				continue
			}
			log.Printf("loader: load budget spent, ignoring portal to dungeon %d (%d,%d)",
				redirect.Request.Dungeon, redirect.Request.RoomX, redirect.Request.RoomY)
		}

		if !l.placementValid() {
			switch t {
			case RoomToLoad:
				if err := l.pause(ctx); err != nil {
					return res, err
				}
				next := RoomstateBackup
				if !w.HasBackup() {
					next = DefaultRoom
				}
				l.fallback(t, next, d, errInvalidPlacement)
				t, fade = next, false
				continue
			case DungeonZeroDefaultRoom:
				l.relocatePlayer()
				res.Relocated = true
			default:
				next := l.nextFallback(t, d, dg, attempted)
				l.fallback(t, next, d, errInvalidPlacement)
				t, fade = next, false
				continue
			}
		}

		res.Type = t
		res.Dungeon, res.RoomX, res.RoomY = w.Low.Dungeon, w.Low.RoomX, w.Low.RoomY
		if err := l.fadeIn(ctx); err != nil {
			return res, err
		}
		w.SnapshotRoomstate()
		if b, ok := w.Backup(); ok {
			if err := l.persist.BackupGameState(b); err != nil {
				log.Printf("loader: backup game state: %v", err)
			}
		}
		w.Events().Push(ecs.Event{Kind: ecs.EventRoomLoaded, Data: res})
		return res, nil
	}
}

type cell struct {
	set     bool
	dungeon int
	x, y    int
}

var errInvalidPlacement = errors.New("loader: player placed on a solid tile")

// attempt fills the room container for state t and reports the cell it
// tried.
func (l *Loader) attempt(dg *dungeon.Dungeon, d int, t RoomType) (cell, error) {
	w := l.w
	var req ecs.RoomRequest
	switch t {
	case RoomstateBackup:
		b, ok := w.Backup()
		if !ok {
			return cell{}, fmt.Errorf("loader: no roomstate backup")
		}
		_, bx, by := b.Location()
		w.RestoreRoomstate()
		return cell{set: true, dungeon: d, x: int(bx), y: int(by)}, nil
	case RoomToLoad:
		req = l.pending
	default:
		req = defaultRequest(d, dg.Desc.DefaultX, dg.Desc.DefaultY)
	}

	c := cell{set: true, dungeon: d, x: int(req.RoomX), y: int(req.RoomY)}
	cx, cy, err := dg.Resolve(int(req.RoomX), int(req.RoomY))
	if err != nil {
		return c, err
	}
	blob, err := dg.Room(cx, cy)
	if err != nil {
		return c, err
	}
	if err := w.Room.LoadBlob(blob); err != nil {
		return c, err
	}
	c.x, c.y = cx, cy

	w.Low.Dungeon, w.Low.RoomX, w.Low.RoomY = uint8(d), uint8(cx), uint8(cy)
	w.PlacePlayer(req.PlayerX, req.PlayerY, req.PlayerZ)
	w.Store.State[ecs.Player] = req.PlayerState
	w.Store.Direction[ecs.Player] = req.PlayerDirection
	return c, nil
}

// nextFallback advances the state, jumping to the terminal fallback when
// the next state would retry the cell just attempted.
func (l *Loader) nextFallback(t RoomType, d int, dg *dungeon.Dungeon, attempted cell) RoomType {
	switch t {
	case RoomToLoad, RoomstateBackup:
		if dg == nil {
			return DungeonZeroDefaultRoom
		}
		def := cell{set: true, dungeon: d, x: int(dg.Desc.DefaultX), y: int(dg.Desc.DefaultY)}
		if attempted.set {
			if ax, ay, err := dg.Resolve(attempted.x, attempted.y); err == nil {
				attempted.x, attempted.y = ax, ay
			}
			if attempted == def {
				return DungeonZeroDefaultRoom
			}
		}
		return DefaultRoom
	}
	return DungeonZeroDefaultRoom
}

func (l *Loader) fallback(from, to RoomType, d int, err error) {
	log.Printf("loader: dungeon %d %s failed (%v), falling back to %s", d, from, err, to)
	l.w.Events().Push(ecs.Event{Kind: ecs.EventFallback, Data: Fallback{From: from, To: to, Dungeon: d, Err: err}})
}

func (l *Loader) resetTransient() {
	w := l.w
	w.ClearEntities()
	w.TakeScrollRequest()
	w.Freeze(false)
	if l.onReset != nil {
		l.onReset()
	}
}

func (l *Loader) placementValid() bool {
	x, y := l.w.Store.Pos(ecs.Player)
	return collision.PlacementValid(&l.w.Room, int(x), int(y))
}

// relocatePlayer moves the player to the first non-solid tile, scanning
// rings outward from the screen center. A room with no such tile gets its
// center cleared.
func (l *Loader) relocatePlayer() {
	w := l.w
	cx, cy := room.Width/2, room.Height/2
	for r := 0; r < room.Width; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				tx, ty := cx+dx, cy+dy
				if tx < 0 || ty < 0 || tx >= room.Width || ty >= room.Height {
					continue
				}
				if room.IsSolid(w.Room.Tile(tx, ty)) {
					continue
				}
				w.PlacePlayer(uint8(tx*room.TileSize+room.TileSize/2), uint8(ty*room.TileSize+room.TileSize/2), 0)
				return
			}
		}
	}
	w.Room.SetTile(cx, cy, room.TileFloor)
	w.PlacePlayer(uint8(cx*room.TileSize+room.TileSize/2), uint8(cy*room.TileSize+room.TileSize/2), 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (l *Loader) fadeOut(ctx context.Context) error {
	if l.dark || l.present == nil {
		l.dark = true
		return nil
	}
	for i := 1; i <= l.fadeFrames; i++ {
		l.present.SetFade(i * frame.FadeMax / l.fadeFrames)
		if err := l.present.Present(ctx); err != nil {
			return err
		}
	}
	l.present.SetFade(frame.FadeMax)
	l.dark = true
	return nil
}

func (l *Loader) fadeIn(ctx context.Context) error {
	l.dark = false
	if l.present == nil {
		return nil
	}
	for i := l.fadeFrames - 1; i >= 0; i-- {
		l.present.SetFade(i * frame.FadeMax / l.fadeFrames)
		if err := l.present.Present(ctx); err != nil {
			return err
		}
	}
	l.present.SetFade(0)
	return nil
}

// pause holds the last image for the configured number of frames.
func (l *Loader) pause(ctx context.Context) error {
	if l.present == nil {
		return nil
	}
	l.present.SetHold(true)
	defer l.present.SetHold(false)
	for i := 0; i < l.pauseFrames; i++ {
		if err := l.present.Present(ctx); err != nil {
			return err
		}
	}
	return nil
}

func descBytes(d dungeon.Descriptor) []byte {
	b := d.Bytes()
	return b[:]
}

// builtinDungeon describes the synthesized terminal room.
func builtinDungeon() *dungeon.Dungeon {
	return &dungeon.Dungeon{Desc: dungeon.Descriptor{Width: 1, Height: 1}}
}

// installBuiltin writes a walled empty room into the container.
func (l *Loader) installBuiltin(dg *dungeon.Dungeon) {
	w := l.w
	w.Room.SetHeader(descBytes(dg.Desc))
	w.Room.ClearRoom()
	for y := 0; y < room.Height; y++ {
		for x := 0; x < room.Width; x++ {
			if x == 0 || y == 0 || x == room.Width-1 || y == room.Height-1 {
				w.Room.SetTile(x, y, room.TileWall)
			}
		}
	}
	w.Low.Dungeon, w.Low.RoomX, w.Low.RoomY = 0, 0, 0
	w.PlacePlayer(room.ScreenWidth/2, room.ScreenHeight/2, 0)
}
