// Package render draws published frames with ebiten: tiles, sprites, the
// fade overlay and a small HUD.
package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/prefabs"
	"github.com/milk9111/dungeoncore/room"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const spriteHalf = 6

// Renderer draws frames at the room's native resolution.
type Renderer struct {
	sprites map[uint8]color.Color
	face    text.Face
	names   func(id uint8) string

	// HUD toggles the location line.
	HUD bool
}

// NewRenderer takes sprite colors from the entity catalogue. names labels
// dungeons in the HUD and may be nil.
func NewRenderer(cat *prefabs.CatalogSpec, names func(id uint8) string) *Renderer {
	var types []typeColor
	if cat != nil {
		for _, t := range cat.Types {
			tc := typeColor{frameset: uint8(t.Frameset)}
			if t.Color != nil {
				tc.color = t.Color.Color
			}
			types = append(types, tc)
		}
	}
	return &Renderer{
		sprites: spriteColors(types),
		face:    text.NewGoXFace(basicfont.Face7x13),
		names:   names,
		HUD:     true,
	}
}

// Draw renders f onto screen.
func (r *Renderer) Draw(screen *ebiten.Image, f *frame.Frame) {
	for _, l := range TileLayers(f) {
		r.drawTiles(screen, f.Layers.Palette, l)
	}

	sprites := f.Entities.Sprites
	if f.Scroll != frame.DirNone {
		sprites = f.Visible.Sprites
	}
	for _, sp := range sprites {
		r.drawSprite(screen, sp)
	}

	if a := FadeAlpha(f.Fade); a > 0 {
		vector.FillRect(screen, 0, 0, room.ScreenWidth, room.ScreenHeight, color.RGBA{A: a}, false)
	}
	if r.HUD && f.Fade < frame.FadeMax {
		r.drawHUD(screen, f)
	}
}

// TileLayer is one room's tiles placed relative to the screen.
type TileLayer struct {
	Tiles [room.Height][room.Width]uint8
	X, Y  int
}

// TileLayers returns the rooms visible in f: the current room alone, or the
// source and destination rooms while a scroll pans between them.
func TileLayers(f *frame.Frame) []TileLayer {
	if f.Scroll == frame.DirNone {
		return []TileLayer{{Tiles: f.Tiles}}
	}
	dx, dy := f.Scroll.Delta()
	return []TileLayer{
		{Tiles: f.Prev, X: -f.CameraX, Y: -f.CameraY},
		{Tiles: f.Tiles, X: dx*room.ScreenWidth - f.CameraX, Y: dy*room.ScreenHeight - f.CameraY},
	}
}

// FadeAlpha converts a fade level to overlay alpha.
func FadeAlpha(level int) uint8 {
	level = max(0, min(level, frame.FadeMax))
	return uint8(level * 0xff / frame.FadeMax)
}

func (r *Renderer) drawTiles(screen *ebiten.Image, pal uint8, l TileLayer) {
	for ty := 0; ty < room.Height; ty++ {
		for tx := 0; tx < room.Width; tx++ {
			t := l.Tiles[ty][tx]
			x := float32(l.X + tx*room.TileSize)
			y := float32(l.Y + ty*room.TileSize)
			vector.FillRect(screen, x, y, room.TileSize, room.TileSize, TileColor(pal, t), false)
			if t == room.TileRock {
				vector.StrokeRect(screen, x+2, y+2, room.TileSize-4, room.TileSize-4, 1, colornames.Black, false)
			}
		}
	}
}

func (r *Renderer) drawSprite(screen *ebiten.Image, sp frame.Sprite) {
	clr, ok := r.sprites[sp.Frameset]
	if !ok {
		clr = fallbackSprite
	}
	if sp.Flags&frame.SpriteFlash != 0 {
		clr = colornames.White
	}
	x := float32(sp.X - spriteHalf)
	y := float32(sp.Y - spriteHalf)
	h := float32(2 * spriteHalf)
	if sp.Frame&1 == 1 {
		y++
		h--
	}
	vector.FillRect(screen, x, y, 2*spriteHalf, h, clr, false)
	if sp.Flags&frame.SpritePlayer != 0 {
		vector.StrokeRect(screen, x, y, 2*spriteHalf, h, 1, colornames.Black, false)
	}
}

func (r *Renderer) drawHUD(screen *ebiten.Image, f *frame.Frame) {
	name := fmt.Sprintf("dungeon %d", f.Dungeon)
	if r.names != nil {
		if n := r.names(f.Dungeon); n != "" {
			name = n
		}
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(2, 1)
	op.ColorScale.ScaleWithColor(colornames.White)
	text.Draw(screen, fmt.Sprintf("%s (%d,%d)", name, f.RoomX, f.RoomY), r.face, op)
}
