package frame

import "github.com/milk9111/dungeoncore/room"

// Buttons is the joypad state sampled once per frame.
type Buttons uint8

const (
	ButtonUp Buttons = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonStart
	ButtonSelect
)

// Has reports whether every bit in b is held.
func (p Buttons) Has(b Buttons) bool {
	return p&b == b
}

// Input is what the driver hands the core when a frame boundary passes.
type Input struct {
	Buttons Buttons
	// MenuDungeon is the dungeon picked in the menu this frame, or -1.
	MenuDungeon int
}

// NoInput is an idle frame.
var NoInput = Input{MenuDungeon: -1}

// Direction of a scrolling transition.
type Direction uint8

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Delta returns the room-grid step for d.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "none"
}

// Sprite is one entry of the entity draw buffer, in screen pixels.
type Sprite struct {
	X, Y     int
	Frameset uint8
	Frame    uint8
	Flags    uint8
}

const (
	SpritePlayer uint8 = 1 << iota
	SpriteFlash
)

// DrawBuffer collects sprites for one frame.
type DrawBuffer struct {
	Sprites []Sprite
}

// Add appends a sprite.
func (b *DrawBuffer) Add(s Sprite) {
	if b == nil {
		return
	}
	b.Sprites = append(b.Sprites, s)
}

// Reset empties the buffer, keeping its storage.
func (b *DrawBuffer) Reset() {
	if b == nil {
		return
	}
	b.Sprites = b.Sprites[:0]
}

// Layers mirrors the display setup derived from a dungeon header.
type Layers struct {
	Palette     uint8
	Tileset     uint8
	Layer2      uint8
	Spritesheet uint8
}

// Frame is the presentation snapshot handed to the driver at every frame
// boundary.
type Frame struct {
	Number uint64

	Layers Layers
	Tiles  [room.Height][room.Width]uint8
	// Prev holds the source room's tiles while a scroll is in progress.
	Prev    [room.Height][room.Width]uint8
	Scroll  Direction
	CameraX int
	CameraY int

	Entities DrawBuffer
	// Visible is the transition's visible entity list, camera-relative.
	Visible DrawBuffer

	// Fade is 0 for fully visible up to FadeMax for black.
	Fade int
	// Hold asks the driver to keep showing the previous image.
	Hold bool

	Songs []uint8

	Dungeon uint8
	RoomX   uint8
	RoomY   uint8
}

const FadeMax = 4

// Clone returns a deep copy safe to hand to another goroutine.
func (f *Frame) Clone() Frame {
	out := *f
	out.Entities.Sprites = append([]Sprite(nil), f.Entities.Sprites...)
	out.Visible.Sprites = append([]Sprite(nil), f.Visible.Sprites...)
	out.Songs = append([]uint8(nil), f.Songs...)
	return out
}

// QueueSong records a song change for dispatch at the frame boundary.
func (f *Frame) QueueSong(id uint8) {
	if f == nil {
		return
	}
	f.Songs = append(f.Songs, id)
}
