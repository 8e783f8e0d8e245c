package main

import (
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/prefabs"
	"github.com/milk9111/dungeoncore/room"
)

// Each terminal cell covers half a tile horizontally and a full tile
// vertically, which keeps tiles roughly square in most fonts.
const (
	cellW = room.TileSize / 2
	cellH = room.TileSize
	cols  = room.ScreenWidth / cellW
	rows  = room.ScreenHeight / cellH
)

type cell struct {
	r     rune
	style tcell.Style
}

// Grid is one rendered frame in terminal cells.
type Grid [rows][cols]cell

// View turns frames into terminal cells.
type View struct {
	glyphs map[uint8]rune
	names  func(id uint8) string
}

// NewView labels sprites with the first letter of their type name.
func NewView(cat *prefabs.CatalogSpec, names func(id uint8) string) *View {
	v := &View{glyphs: make(map[uint8]rune), names: names}
	if cat == nil {
		return v
	}
	for _, t := range cat.Types {
		fs := uint8(t.Frameset)
		if _, ok := v.glyphs[fs]; ok || t.Name == "" {
			continue
		}
		v.glyphs[fs] = unicode.ToUpper([]rune(t.Name)[0])
	}
	return v
}

func tileCell(t uint8) cell {
	switch {
	case room.IsDoorway(t):
		return cell{' ', tcell.StyleDefault.Background(tcell.ColorOlive)}
	case t == room.TileRock:
		return cell{'o', tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorGray)}
	case t == room.TileWater:
		return cell{'~', tcell.StyleDefault.Foreground(tcell.ColorAqua).Background(tcell.ColorNavy)}
	case room.IsSolid(t):
		return cell{'#', tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorGray)}
	case t == room.TileGrass:
		return cell{'"', tcell.StyleDefault.Foreground(tcell.ColorGreen)}
	}
	return cell{'.', tcell.StyleDefault.Foreground(tcell.ColorDarkGray)}
}

// tileAt samples the visible rooms of f at screen pixel (px, py). Pixels no
// room covers read as empty.
func tileAt(f *frame.Frame, px, py int) (uint8, bool) {
	type layer struct {
		tiles *[room.Height][room.Width]uint8
		x, y  int
	}
	layers := []layer{{tiles: &f.Tiles}}
	if f.Scroll != frame.DirNone {
		dx, dy := f.Scroll.Delta()
		layers = []layer{
			{tiles: &f.Prev, x: -f.CameraX, y: -f.CameraY},
			{tiles: &f.Tiles, x: dx*room.ScreenWidth - f.CameraX, y: dy*room.ScreenHeight - f.CameraY},
		}
	}
	for _, l := range layers {
		lx, ly := px-l.x, py-l.y
		if lx < 0 || ly < 0 || lx >= room.ScreenWidth || ly >= room.ScreenHeight {
			continue
		}
		return l.tiles[ly/room.TileSize][lx/room.TileSize], true
	}
	return 0, false
}

// Compose renders f into a grid.
func (v *View) Compose(f *frame.Frame) Grid {
	var g Grid
	for cy := range rows {
		for cx := range cols {
			t, ok := tileAt(f, cx*cellW+cellW/2, cy*cellH+cellH/2)
			if !ok {
				g[cy][cx] = cell{' ', tcell.StyleDefault}
				continue
			}
			g[cy][cx] = tileCell(t)
		}
	}

	sprites := f.Entities.Sprites
	if f.Scroll != frame.DirNone {
		sprites = f.Visible.Sprites
	}
	for _, sp := range sprites {
		if sp.X < 0 || sp.Y < 0 || sp.X >= room.ScreenWidth || sp.Y >= room.ScreenHeight {
			continue
		}
		c := &g[sp.Y/cellH][sp.X/cellW]
		c.r = v.glyph(sp)
		c.style = c.style.Foreground(tcell.ColorYellow).Bold(true)
		if sp.Flags&frame.SpritePlayer != 0 {
			c.style = c.style.Foreground(tcell.ColorRed)
		}
		if sp.Flags&frame.SpriteFlash != 0 {
			c.style = c.style.Reverse(true)
		}
	}

	// Fade dims the whole room; full fade blanks it.
	if f.Fade >= frame.FadeMax {
		for cy := range rows {
			for cx := range cols {
				g[cy][cx] = cell{' ', tcell.StyleDefault}
			}
		}
	} else if f.Fade > 0 {
		for cy := range rows {
			for cx := range cols {
				g[cy][cx].style = g[cy][cx].style.Dim(true)
			}
		}
	}
	return g
}

func (v *View) glyph(sp frame.Sprite) rune {
	if sp.Flags&frame.SpritePlayer != 0 {
		return '@'
	}
	if r, ok := v.glyphs[sp.Frameset]; ok {
		return r
	}
	return '?'
}

// Status is the line printed under the room.
func (v *View) Status(f *frame.Frame) string {
	name := fmt.Sprintf("dungeon %d", f.Dungeon)
	if v.names != nil {
		if n := v.names(f.Dungeon); n != "" {
			name = n
		}
	}
	return fmt.Sprintf("%s (%d,%d)  frame %d", name, f.RoomX, f.RoomY, f.Number)
}

// Draw writes the grid and status line to the top-left of screen.
func (v *View) Draw(screen tcell.Screen, f *frame.Frame) {
	g := v.Compose(f)
	for cy := range rows {
		for cx := range cols {
			c := g[cy][cx]
			screen.SetContent(cx, cy, c.r, nil, c.style)
		}
	}
	for i, r := range []rune(v.Status(f)) {
		screen.SetContent(i, rows, r, nil, tcell.StyleDefault)
	}
}
