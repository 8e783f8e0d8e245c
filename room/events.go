package room

// Room entry event ids, stored in the room's event byte.
const (
	EventNone uint8 = iota
	// EventPortal moves to another room without a fade.
	// Params: dungeon, room x, room y, player tile (ty*Width+tx, 0xFF keeps
	// the current position).
	EventPortal
	// EventFadePortal is EventPortal behind a fade.
	EventFadePortal
	// EventSetTile writes a tile. Params: x, y, tile, and 1 to require the
	// key.
	EventSetTile
	// EventSpawn spawns one extra entity. Params: type, x, y, param.
	EventSpawn
	// EventScript runs a script resource. Params: script id.
	EventScript
	// EventSong overrides the dungeon song. Params: song id.
	EventSong

	NumEvents
)

// KeepPosition in a portal's tile parameter leaves the player where it is.
const KeepPosition = 0xFF

var eventNames = [NumEvents]string{"none", "portal", "fade_portal", "set_tile", "spawn", "script", "song"}

// EventName returns the YAML name of an event id.
func EventName(id uint8) string {
	if int(id) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[id]
}

// EventByName looks an event id up by its YAML name.
func EventByName(name string) (uint8, bool) {
	if name == "" {
		return EventNone, true
	}
	for i, n := range eventNames {
		if n == name {
			return uint8(i), true
		}
	}
	return 0, false
}

// TileCenter returns the pixel center of packed tile index idx.
func TileCenter(idx uint8) (x, y uint8) {
	tx, ty := int(idx)%Width, int(idx)/Width
	return uint8(tx*TileSize + TileSize/2), uint8(ty*TileSize + TileSize/2)
}
