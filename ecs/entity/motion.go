package entity

import (
	"math"

	"github.com/milk9111/dungeoncore/collision"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/room"
)

const (
	defaultHalfExtent = 6
	fixedOne          = 256
)

func position(s *ecs.Store, e ecs.Entity) (float64, float64) {
	return float64(s.X[e]) / fixedOne, float64(s.Y[e]) / fixedOne
}

// moveWithTiles applies (vx, vy) one axis at a time and reports which axes
// were stopped by a tile.
func moveWithTiles(w *ecs.World, e ecs.Entity, vx, vy int16, hw, hh float64) (blockedX, blockedY bool) {
	s := &w.Store
	if vx != 0 {
		nx := s.X[e].Add(vx)
		_, y := position(s, e)
		if collision.Blocked(&w.Room, float64(nx)/fixedOne, y, hw, hh) {
			blockedX = true
		} else {
			s.X[e] = nx
		}
	}
	if vy != 0 {
		ny := s.Y[e].Add(vy)
		x, _ := position(s, e)
		if collision.Blocked(&w.Room, x, float64(ny)/fixedOne, hw, hh) {
			blockedY = true
		} else {
			s.Y[e] = ny
		}
	}
	return blockedX, blockedY
}

// overlapsPlayer reports whether e's box touches the player's.
func overlapsPlayer(w *ecs.World, e ecs.Entity, hw, hh float64) bool {
	s := &w.Store
	x, y := position(s, e)
	px, py := position(s, ecs.Player)
	return collision.Overlaps(x, y, px, py, hw, hh)
}

func clampPixel(v float64, lo, hi int) uint8 {
	return uint8(math.Max(float64(lo), math.Min(float64(hi), math.Round(v))))
}

func inRoomX(v float64) uint8 { return clampPixel(v, 0, room.ScreenWidth-1) }
func inRoomY(v float64) uint8 { return clampPixel(v, 0, room.ScreenHeight-1) }

func sign(v float64) int16 {
	switch {
	case v > 0.5:
		return 1
	case v < -0.5:
		return -1
	}
	return 0
}

func animate(s *ecs.Store, e ecs.Entity, moving bool, period uint8) {
	if !moving {
		s.AnimTimer[e] = 0
		return
	}
	s.AnimTimer[e]++
	if s.AnimTimer[e] >= period {
		s.AnimTimer[e] = 0
		s.Frame[e] ^= 1
	}
}
