package room

// Tile ids are grouped by range: floor below 0x80, solid from 0x80, and the
// top sixteen solid ids are doorways.
const (
	TileFloor = 0x00
	TileGrass = 0x01
	TileWater = 0x88
	TileWall  = 0x90
	TileRock  = 0x91
	TileDoor  = 0xF0

	solidFrom   = 0x80
	doorwayFrom = 0xF0
)

// IsSolid reports whether t blocks walking.
func IsSolid(t uint8) bool {
	return t >= solidFrom
}

// IsDoorway reports whether t is a doorway tile. Doorways are solid for
// walking but are valid landing tiles for a transition.
func IsDoorway(t uint8) bool {
	return t >= doorwayFrom
}

// Blocks reports whether an entity may not be placed on t.
func Blocks(t uint8) bool {
	return IsSolid(t) && !IsDoorway(t)
}

// TileAtPixel returns the tile under pixel (px, py).
func (s *State) TileAtPixel(px, py int) uint8 {
	if px < 0 || py < 0 {
		return TileWall
	}
	return s.Tile(px/TileSize, py/TileSize)
}
