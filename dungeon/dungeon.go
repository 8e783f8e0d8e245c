package dungeon

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/milk9111/dungeoncore/room"
)

const HeaderSize = room.HeaderSize

// FlagInfinite makes room coordinates wrap instead of going out of bounds.
const FlagInfinite = 1 << 0

var (
	ErrMalformed   = errors.New("dungeon: malformed resource")
	ErrOutOfBounds = errors.New("dungeon: room out of bounds")
	ErrNoRoom      = errors.New("dungeon: no room at cell")
)

// Descriptor is the fixed dungeon header.
type Descriptor struct {
	Flags       uint8
	Width       uint8
	Height      uint8
	DefaultX    uint8
	DefaultY    uint8
	Palette     uint8
	Tileset     uint8
	Layer2      uint8
	Spritesheet uint8
	Song        uint8
}

// Infinite reports whether coordinates wrap.
func (d Descriptor) Infinite() bool {
	return d.Flags&FlagInfinite != 0
}

// Bytes packs the header.
func (d Descriptor) Bytes() [HeaderSize]byte {
	return [HeaderSize]byte{d.Flags, d.Width, d.Height, d.DefaultX, d.DefaultY, d.Palette, d.Tileset, d.Layer2, d.Spritesheet, d.Song}
}

// DecodeDescriptor unpacks a header.
func DecodeDescriptor(b []byte) (Descriptor, error) {
	if len(b) < HeaderSize {
		return Descriptor{}, fmt.Errorf("%w: header is %d bytes", ErrMalformed, len(b))
	}
	return Descriptor{
		Flags:       b[0],
		Width:       b[1],
		Height:      b[2],
		DefaultX:    b[3],
		DefaultY:    b[4],
		Palette:     b[5],
		Tileset:     b[6],
		Layer2:      b[7],
		Spritesheet: b[8],
		Song:        b[9],
	}, nil
}

// Dungeon is a parsed dungeon resource: header, cell offset table and the
// packed room blobs it points into.
type Dungeon struct {
	Desc Descriptor
	data []byte
}

// Parse validates a dungeon resource. Offsets pointing past the end are
// reported lazily by Room so that one bad cell does not poison the rest.
func Parse(data []byte) (*Dungeon, error) {
	desc, err := DecodeDescriptor(data)
	if err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: empty grid %dx%d", ErrMalformed, desc.Width, desc.Height)
	}
	d := &Dungeon{Desc: desc, data: data}
	if len(data) < d.tableEnd() {
		return nil, fmt.Errorf("%w: offset table truncated", ErrMalformed)
	}
	return d, nil
}

// tableEnd is the first byte past the offset table, where blobs may start.
func (d *Dungeon) tableEnd() int {
	return HeaderSize + 2*int(d.Desc.Width)*int(d.Desc.Height)
}

// Resolve maps requested coordinates onto the grid. Out-of-range
// coordinates fail unless the dungeon is infinite, in which case they wrap.
func (d *Dungeon) Resolve(x, y int) (int, int, error) {
	if d == nil {
		return 0, 0, ErrMalformed
	}
	w, h := int(d.Desc.Width), int(d.Desc.Height)
	if x >= 0 && y >= 0 && x < w && y < h {
		return x, y, nil
	}
	if !d.Desc.Infinite() {
		return 0, 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, w, h)
	}
	return mod(x, w), mod(y, h), nil
}

// Room returns the packed blob for the cell at (x, y).
func (d *Dungeon) Room(x, y int) ([]byte, error) {
	cx, cy, err := d.Resolve(x, y)
	if err != nil {
		return nil, err
	}
	at := HeaderSize + 2*(cy*int(d.Desc.Width)+cx)
	off := int(binary.LittleEndian.Uint16(d.data[at:]))
	if off == 0 {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrNoRoom, cx, cy)
	}
	if off < d.tableEnd() {
		return nil, fmt.Errorf("%w: cell (%d,%d) offset %d inside header", ErrMalformed, cx, cy, off)
	}
	if off+room.BlobSize > len(d.data) {
		return nil, fmt.Errorf("%w: cell (%d,%d) offset %d past end", ErrMalformed, cx, cy, off)
	}
	return d.data[off : off+room.BlobSize], nil
}

// HasRoom reports whether (x, y) resolves to a loadable cell.
func (d *Dungeon) HasRoom(x, y int) bool {
	_, err := d.Room(x, y)
	return err == nil
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
