// Package collision answers tile overlap questions for entities moving
// through a room.
package collision

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/dungeoncore/room"
)

// skin shrinks hitboxes so that touching a tile edge is not an overlap.
const skin = 0.01

// HitBox returns the box of half extents (hw, hh) centered on (x, y).
func HitBox(x, y, hw, hh float64) cp.BB {
	return cp.NewBBForExtents(cp.Vector{X: x, Y: y}, hw-skin, hh-skin)
}

// TileBox returns the box covering tile (tx, ty).
func TileBox(tx, ty int) cp.BB {
	l := float64(tx * room.TileSize)
	b := float64(ty * room.TileSize)
	return cp.BB{L: l, B: b, R: l + room.TileSize, T: b + room.TileSize}
}

// Blocked reports whether a hitbox centered on (x, y) overlaps a tile that
// blocks placement.
func Blocked(st *room.State, x, y, hw, hh float64) bool {
	if st == nil {
		return false
	}
	bb := HitBox(x, y, hw, hh)
	x0 := int(math.Floor(bb.L / room.TileSize))
	x1 := int(math.Floor(bb.R / room.TileSize))
	y0 := int(math.Floor(bb.B / room.TileSize))
	y1 := int(math.Floor(bb.T / room.TileSize))
	for ty := y0; ty <= y1; ty++ {
		for tx := x0; tx <= x1; tx++ {
			if !room.Blocks(st.Tile(tx, ty)) {
				continue
			}
			if bb.Intersects(TileBox(tx, ty)) {
				return true
			}
		}
	}
	return false
}

// Overlaps reports whether two hitboxes touch.
func Overlaps(ax, ay, bx, by, hw, hh float64) bool {
	return HitBox(ax, ay, hw, hh).Intersects(HitBox(bx, by, hw, hh))
}

// TileUnder returns the tile beneath pixel (x, y).
func TileUnder(st *room.State, x, y int) uint8 {
	if st == nil {
		return room.TileWall
	}
	return st.TileAtPixel(x, y)
}

// PlacementValid reports whether an entity may stand with its center on
// (x, y): the tile there must not be solid unless it is a doorway.
func PlacementValid(st *room.State, x, y int) bool {
	return !room.Blocks(TileUnder(st, x, y))
}
