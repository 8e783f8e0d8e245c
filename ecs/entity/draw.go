package entity

import (
	"errors"

	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
)

var errSpawnPlayer = errors.New("entity: spawner child cannot be the player")

func sprite(w *ecs.World, e ecs.Entity) frame.Sprite {
	s := &w.Store
	x, y := s.Pos(e)
	return frame.Sprite{
		X:        int(x),
		Y:        int(y) - int(s.Z[e].Int()),
		Frameset: s.Frameset[e],
		Frame:    s.Frame[e],
	}
}

func drawSprite(w *ecs.World, e ecs.Entity, buf *frame.DrawBuffer) {
	buf.Add(sprite(w, e))
}

func drawFlicker(w *ecs.World, e ecs.Entity, buf *frame.DrawBuffer) {
	sp := sprite(w, e)
	if (w.Frame/4)%2 == 1 {
		sp.Flags |= frame.SpriteFlash
	}
	buf.Add(sp)
}

// drawPlayer blinks while the player is invulnerable.
func drawPlayer(w *ecs.World, e ecs.Entity, buf *frame.DrawBuffer) {
	if w.Store.Scratch[scratchInvulnerable][e] > 0 && (w.Frame/2)%2 == 1 {
		return
	}
	sp := sprite(w, e)
	sp.Flags |= frame.SpritePlayer
	buf.Add(sp)
}
