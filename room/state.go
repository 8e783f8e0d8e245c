package room

import "fmt"

const (
	Width    = 10
	Height   = 8
	TileSize = 16

	ScreenWidth  = Width * TileSize
	ScreenHeight = Height * TileSize

	MaxSpawns     = 8
	SpawnSentinel = 0xFF
	EventParams   = 4
	Layer2Params  = 2

	// HeaderSize is the size of the dungeon header region at the start of
	// the container.
	HeaderSize = 10
	// BlobSize is the size of one packed room, and of the room region.
	BlobSize  = tilesSize + 1 + 1 + EventParams + Layer2Params + MaxSpawns*spawnSize
	StateSize = HeaderSize + BlobSize
)

const (
	tilesSize = Width * Height
	spawnSize = 4

	offTileset = tilesSize
	offEvent   = offTileset + 1
	offParams  = offEvent + 1
	offLayer2  = offParams + EventParams
	offSpawns  = offLayer2 + Layer2Params
)

// Spawn is one entity spawn descriptor embedded in a room.
type Spawn struct {
	X     uint8
	Y     uint8
	Type  uint8
	Param uint8
}

// Used reports whether the descriptor names an entity.
func (s Spawn) Used() bool {
	return s.Type != SpawnSentinel
}

// State is the room state container: a fixed block holding the dungeon
// header followed by the currently loaded room. It is a value type, so
// assignment is a verbatim block copy.
type State [StateSize]byte

// Header returns the dungeon header region.
func (s *State) Header() []byte {
	return s[:HeaderSize]
}

// SetHeader overwrites the dungeon header region.
func (s *State) SetHeader(h []byte) {
	copy(s[:HeaderSize], h)
}

// Blob returns the room region. It aliases the container.
func (s *State) Blob() []byte {
	return s[HeaderSize:]
}

// LoadBlob overwrites the room region with a packed room.
func (s *State) LoadBlob(b []byte) error {
	if len(b) < BlobSize {
		return fmt.Errorf("room: blob is %d bytes, want %d", len(b), BlobSize)
	}
	copy(s[HeaderSize:], b[:BlobSize])
	return nil
}

// ClearRoom zeroes the room region and marks every spawn slot unused.
func (s *State) ClearRoom() {
	r := s.Blob()
	for i := range r {
		r[i] = 0
	}
	for i := 0; i < MaxSpawns; i++ {
		s.SetSpawn(i, Spawn{Type: SpawnSentinel})
	}
}

func (s *State) room() []byte {
	return s[HeaderSize:]
}

// Tile returns the tile at (x, y). Out-of-range coordinates read as solid.
func (s *State) Tile(x, y int) uint8 {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return TileWall
	}
	return s.room()[y*Width+x]
}

// SetTile writes the tile at (x, y); out-of-range writes are dropped.
func (s *State) SetTile(x, y int, t uint8) {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return
	}
	s.room()[y*Width+x] = t
}

// Tiles copies the tile grid out.
func (s *State) Tiles() [Height][Width]uint8 {
	var out [Height][Width]uint8
	r := s.room()
	for y := 0; y < Height; y++ {
		copy(out[y][:], r[y*Width:(y+1)*Width])
	}
	return out
}

func (s *State) Tileset() uint8     { return s.room()[offTileset] }
func (s *State) SetTileset(v uint8) { s.room()[offTileset] = v }
func (s *State) Event() uint8       { return s.room()[offEvent] }
func (s *State) SetEvent(v uint8)   { s.room()[offEvent] = v }

// EventParam returns room-event parameter i (0..3).
func (s *State) EventParam(i int) uint8 {
	if i < 0 || i >= EventParams {
		return 0
	}
	return s.room()[offParams+i]
}

func (s *State) SetEventParam(i int, v uint8) {
	if i < 0 || i >= EventParams {
		return
	}
	s.room()[offParams+i] = v
}

// Layer2Param returns second-layer effect parameter i (0..1).
func (s *State) Layer2Param(i int) uint8 {
	if i < 0 || i >= Layer2Params {
		return 0
	}
	return s.room()[offLayer2+i]
}

func (s *State) SetLayer2Param(i int, v uint8) {
	if i < 0 || i >= Layer2Params {
		return
	}
	s.room()[offLayer2+i] = v
}

// Spawn returns spawn descriptor i.
func (s *State) Spawn(i int) Spawn {
	if i < 0 || i >= MaxSpawns {
		return Spawn{Type: SpawnSentinel}
	}
	b := s.room()[offSpawns+i*spawnSize:]
	return Spawn{X: b[0], Y: b[1], Type: b[2], Param: b[3]}
}

func (s *State) SetSpawn(i int, sp Spawn) {
	if i < 0 || i >= MaxSpawns {
		return
	}
	b := s.room()[offSpawns+i*spawnSize:]
	b[0], b[1], b[2], b[3] = sp.X, sp.Y, sp.Type, sp.Param
}

// Spawns returns the used descriptors in table order, stopping at the first
// sentinel.
func (s *State) Spawns() []Spawn {
	out := make([]Spawn, 0, MaxSpawns)
	for i := 0; i < MaxSpawns; i++ {
		sp := s.Spawn(i)
		if !sp.Used() {
			break
		}
		out = append(out, sp)
	}
	return out
}
