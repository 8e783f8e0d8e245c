package dungeon

import (
	"encoding/binary"
	"fmt"

	"github.com/milk9111/dungeoncore/room"
)

// Cell is one room placed on the grid.
type Cell struct {
	X, Y uint8
	Blob [room.BlobSize]byte
}

// Encode packs a descriptor and its rooms into the resource format. Cells
// not listed get a zero offset.
func Encode(desc Descriptor, cells []Cell) ([]byte, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: empty grid %dx%d", ErrMalformed, desc.Width, desc.Height)
	}
	w, h := int(desc.Width), int(desc.Height)
	tableEnd := HeaderSize + 2*w*h
	size := tableEnd + len(cells)*room.BlobSize
	if size > 0xFFFF {
		return nil, fmt.Errorf("%w: %d bytes exceeds 16-bit offsets", ErrMalformed, size)
	}

	out := make([]byte, size)
	hdr := desc.Bytes()
	copy(out, hdr[:])

	seen := make(map[int]bool, len(cells))
	for i, c := range cells {
		if int(c.X) >= w || int(c.Y) >= h {
			return nil, fmt.Errorf("%w: cell (%d,%d) outside %dx%d", ErrOutOfBounds, c.X, c.Y, w, h)
		}
		idx := int(c.Y)*w + int(c.X)
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate cell (%d,%d)", ErrMalformed, c.X, c.Y)
		}
		seen[idx] = true

		off := tableEnd + i*room.BlobSize
		binary.LittleEndian.PutUint16(out[HeaderSize+2*idx:], uint16(off))
		copy(out[off:], c.Blob[:])
	}
	return out, nil
}
