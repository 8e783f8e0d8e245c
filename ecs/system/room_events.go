package system

import (
	"log"

	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/room"
)

// Redirect is a portal's rewrite of the pending room request.
type Redirect struct {
	Request ecs.RoomRequest
	// Fade asks for a visible transition; otherwise the reload is
	// transparent.
	Fade bool
}

// RoomEvents runs a room's entry event once its entities are spawned.
type RoomEvents struct {
	audio   Audio
	scripts *EventScripts
}

func NewRoomEvents(audio Audio, scripts *EventScripts) *RoomEvents {
	if audio == nil {
		audio = NopAudio{}
	}
	return &RoomEvents{audio: audio, scripts: scripts}
}

// Enter runs the current room's entry event. A portal reports where to go
// instead of acting on it.
func (r *RoomEvents) Enter(w *ecs.World) (Redirect, bool) {
	if r == nil || w == nil {
		return Redirect{}, false
	}
	st := &w.Room
	p := func(i int) uint8 { return st.EventParam(i) }

	switch st.Event() {
	case room.EventNone:
	case room.EventPortal, room.EventFadePortal:
		return Redirect{
			Request: portalRequest(w, p(0), p(1), p(2), p(3)),
			Fade:    st.Event() == room.EventFadePortal,
		}, true
	case room.EventSetTile:
		if p(3) == 1 && w.Low.Flags&ecs.FlagHasKey == 0 {
			return Redirect{}, false
		}
		st.SetTile(int(p(0)), int(p(1)), p(2))
	case room.EventSpawn:
		w.Spawn(p(1), p(2), ecs.TypeID(p(0)), p(3))
	case room.EventScript:
		if r.scripts == nil {
			return Redirect{}, false
		}
		out, err := r.scripts.Run(w, int(p(0)), r.audio)
		if err != nil {
			log.Printf("events: script %d: %v", p(0), err)
			return Redirect{}, false
		}
		if out.Redirect != nil {
			return *out.Redirect, true
		}
	case room.EventSong:
		r.audio.ChangeSong(p(0))
	default:
		log.Printf("events: room (%d,%d) has unknown event %d", w.Low.RoomX, w.Low.RoomY, st.Event())
	}
	return Redirect{}, false
}

// portalRequest builds the request a portal rewrites to. Tile KeepPosition
// leaves the player where it stands.
func portalRequest(w *ecs.World, dungeonID, x, y, tile uint8) ecs.RoomRequest {
	s := &w.Store
	px, py := s.Pos(ecs.Player)
	if tile != room.KeepPosition {
		px, py = room.TileCenter(tile)
	}
	return ecs.RoomRequest{
		Dungeon:         dungeonID,
		RoomX:           x,
		RoomY:           y,
		PlayerX:         px,
		PlayerY:         py,
		PlayerZ:         s.Z[ecs.Player].Int(),
		PlayerState:     s.State[ecs.Player],
		PlayerDirection: s.Direction[ecs.Player],
	}
}

// defaultRequest places the player at screen center of a dungeon's default
// cell.
func defaultRequest(dungeonID int, defX, defY uint8) ecs.RoomRequest {
	return ecs.RoomRequest{
		Dungeon:         uint8(dungeonID),
		RoomX:           defX,
		RoomY:           defY,
		PlayerX:         room.ScreenWidth / 2,
		PlayerY:         room.ScreenHeight / 2,
		PlayerDirection: uint8(frame.DirDown),
	}
}
