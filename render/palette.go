package render

import (
	"image/color"

	"github.com/milk9111/dungeoncore/room"
)

// palette colors one dungeon's tiles.
type palette struct {
	floor, grass, water, wall, rock, door color.RGBA
}

var palettes = []palette{
	{
		floor: color.RGBA{R: 0xd8, G: 0xc8, B: 0x88, A: 0xff},
		grass: color.RGBA{R: 0x6a, G: 0xb0, B: 0x4c, A: 0xff},
		water: color.RGBA{R: 0x3a, G: 0x7c, B: 0xc8, A: 0xff},
		wall:  color.RGBA{R: 0x2e, G: 0x6b, B: 0x30, A: 0xff},
		rock:  color.RGBA{R: 0x7a, G: 0x6a, B: 0x5a, A: 0xff},
		door:  color.RGBA{R: 0x2a, G: 0x1a, B: 0x10, A: 0xff},
	},
	{
		floor: color.RGBA{R: 0x5c, G: 0x4a, B: 0x3c, A: 0xff},
		grass: color.RGBA{R: 0x4a, G: 0x5c, B: 0x3c, A: 0xff},
		water: color.RGBA{R: 0x22, G: 0x44, B: 0x66, A: 0xff},
		wall:  color.RGBA{R: 0x2c, G: 0x22, B: 0x1c, A: 0xff},
		rock:  color.RGBA{R: 0x8c, G: 0x7c, B: 0x6c, A: 0xff},
		door:  color.RGBA{R: 0x0a, G: 0x08, B: 0x06, A: 0xff},
	},
	{
		floor: color.RGBA{R: 0x9c, G: 0x8c, B: 0xb8, A: 0xff},
		grass: color.RGBA{R: 0x8c, G: 0xa8, B: 0x9c, A: 0xff},
		water: color.RGBA{R: 0x4c, G: 0x5c, B: 0xa8, A: 0xff},
		wall:  color.RGBA{R: 0x3c, G: 0x2c, B: 0x5c, A: 0xff},
		rock:  color.RGBA{R: 0x6c, G: 0x5c, B: 0x7c, A: 0xff},
		door:  color.RGBA{R: 0x14, G: 0x0c, B: 0x20, A: 0xff},
	},
}

// TileColor returns the fill color of tile t in palette id.
func TileColor(id, t uint8) color.RGBA {
	p := palettes[int(id)%len(palettes)]
	switch {
	case room.IsDoorway(t):
		return p.door
	case t == room.TileWater:
		return p.water
	case t == room.TileRock:
		return p.rock
	case room.IsSolid(t):
		return p.wall
	case t == room.TileGrass:
		return p.grass
	}
	return p.floor
}

var fallbackSprite = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}

// spriteColors maps framesets to the colors the catalog gives their types.
func spriteColors(types []typeColor) map[uint8]color.Color {
	out := map[uint8]color.Color{}
	for _, t := range types {
		if t.color == nil {
			continue
		}
		if _, ok := out[t.frameset]; !ok {
			out[t.frameset] = t.color
		}
	}
	return out
}

type typeColor struct {
	frameset uint8
	color    color.Color
}
