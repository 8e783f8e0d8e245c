package ecs

import (
	"math/rand/v2"

	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/room"
)

// RoomRequest asks the loader for a room. Coordinates are whole pixels.
type RoomRequest struct {
	Dungeon         uint8
	RoomX           uint8
	RoomY           uint8
	PlayerX         uint8
	PlayerY         uint8
	PlayerZ         uint8
	PlayerState     uint8
	PlayerDirection uint8
	// Fade asks for a visible fade-out before the load.
	Fade bool
}

// World owns the entity store, the active index, the room state container
// and the lowram block for one session. It is created once and reset on new
// game or continue.
type World struct {
	Store  Store
	Active ActiveIndex
	Room   room.State
	Low    Lowram

	// Input is the joypad state for the current frame.
	Input frame.Buttons
	// Frame counts dispatch passes.
	Frame uint64
	Rand  *rand.Rand

	types  *Table
	events EventQueue

	backup    Backup
	hasBackup bool

	dispatching bool
	fresh       [Capacity]bool
	frozen      bool

	scrollReq frame.Direction
	loadReq   *RoomRequest
}

// NewWorld creates a world using types for all indirect dispatch.
func NewWorld(types *Table, seed uint64) *World {
	w := &World{types: types}
	w.Rand = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	w.Reset()
	return w
}

// Reset returns the world to a fresh session: only the player is active,
// the room is empty and no backup exists.
func (w *World) Reset() {
	if w == nil {
		return
	}
	w.Store = Store{}
	w.Active.Reset()
	w.Room = room.State{}
	w.Room.ClearRoom()
	w.Low = Lowram{}
	w.backup = Backup{}
	w.hasBackup = false
	w.fresh = [Capacity]bool{}
	w.frozen = false
	w.scrollReq = frame.DirNone
	w.loadReq = nil
	w.events.flush()
	w.ResetPlayer()
}

// ResetPlayer reinstalls the player defaults in slot 0, keeping its
// position.
func (w *World) ResetPlayer() {
	if w == nil {
		return
	}
	s := &w.Store
	def, _ := w.types.Type(TypePlayer)
	x, y, z := s.X[Player], s.Y[Player], s.Z[Player]
	s.clear(Player)
	s.X[Player], s.Y[Player], s.Z[Player] = x, y, z
	s.Type[Player] = TypePlayer
	s.setPlayerBehavior(def.Behavior)
	s.Death[Player] = def.Death
	s.Draw[Player] = def.Draw
	s.Health[Player] = def.Health
	s.Attack[Player] = def.Attack
	s.Vision[Player] = def.Vision
	s.Frameset[Player] = def.Frameset
}

// Types returns the function tables.
func (w *World) Types() *Table {
	if w == nil {
		return nil
	}
	return w.types
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Freeze suspends entity dispatch, e.g. while the camera pans.
func (w *World) Freeze(v bool) {
	if w == nil {
		return
	}
	w.frozen = v
}

// Frozen reports whether dispatch is suspended.
func (w *World) Frozen() bool {
	return w != nil && w.frozen
}

// RequestScroll asks for a scrolling transition in dir. The last request in
// a frame wins.
func (w *World) RequestScroll(dir frame.Direction) {
	if w == nil {
		return
	}
	w.scrollReq = dir
}

// TakeScrollRequest returns and clears the pending scroll request.
func (w *World) TakeScrollRequest() frame.Direction {
	if w == nil {
		return frame.DirNone
	}
	d := w.scrollReq
	w.scrollReq = frame.DirNone
	return d
}

// RequestLoad asks the loader for a room at the next frame boundary.
func (w *World) RequestLoad(req RoomRequest) {
	if w == nil {
		return
	}
	w.loadReq = &req
}

// TakeLoadRequest returns and clears the pending load request.
func (w *World) TakeLoadRequest() (RoomRequest, bool) {
	if w == nil || w.loadReq == nil {
		return RoomRequest{}, false
	}
	req := *w.loadReq
	w.loadReq = nil
	return req, true
}

// PlacePlayer moves the player to whole pixels.
func (w *World) PlacePlayer(x, y, z uint8) {
	w.Store.SetPos(Player, x, y)
	w.Store.Z[Player] = FixedFromInt(z)
}
