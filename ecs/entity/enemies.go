package entity

import (
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/prefabs"
)

const scratchTurn = 0

type wanderParams struct {
	Speed      int `yaml:"speed"`
	TurnFrames int `yaml:"turn_frames"`
}

// buildWander walks in a random direction, picking a new one when the
// timer runs out or a wall is hit.
func buildWander(ctx *buildContext) (ecs.BehaviorFunc, error) {
	p, err := prefabs.DecodeParams[wanderParams](ctx.Spec.Params)
	if err != nil {
		return nil, err
	}
	if p.Speed <= 0 {
		p.Speed = fixedOne / 2
	}
	if p.TurnFrames <= 0 {
		p.TurnFrames = 32
	}
	speed := int16(p.Speed)

	return func(w *ecs.World, e ecs.Entity) {
		s := &w.Store
		if s.Scratch[scratchTurn][e] == 0 {
			s.Scratch[scratchTurn][e] = uint16(p.TurnFrames)
			s.Direction[e] = uint8(w.Rand.IntN(5))
		} else {
			s.Scratch[scratchTurn][e]--
		}
		dx, dy := frame.Direction(s.Direction[e]).Delta()
		s.VX[e], s.VY[e] = int16(dx)*speed, int16(dy)*speed
		bx, by := moveWithTiles(w, e, s.VX[e], s.VY[e], defaultHalfExtent, defaultHalfExtent)
		if bx || by {
			s.Scratch[scratchTurn][e] = 0
		}
		animate(s, e, dx != 0 || dy != 0, 12)
	}, nil
}

type chaseParams struct {
	Speed int `yaml:"speed"`
}

// buildChase flies at the player while it is within vision and hovers
// otherwise.
func buildChase(ctx *buildContext) (ecs.BehaviorFunc, error) {
	p, err := prefabs.DecodeParams[chaseParams](ctx.Spec.Params)
	if err != nil {
		return nil, err
	}
	if p.Speed <= 0 {
		p.Speed = fixedOne / 2
	}
	speed := int16(p.Speed)

	return func(w *ecs.World, e ecs.Entity) {
		s := &w.Store
		x, y := position(s, e)
		px, py := position(s, ecs.Player)
		dx, dy := px-x, py-y
		vision := float64(s.Vision[e])

		var vx, vy int16
		if dx*dx+dy*dy <= vision*vision {
			vx, vy = sign(dx)*speed, sign(dy)*speed
		} else if (w.Frame/32)%2 == 0 {
			vx = speed / 2
		} else {
			vx = -speed / 2
		}
		s.VX[e], s.VY[e] = vx, vy
		moveWithTiles(w, e, vx, vy, defaultHalfExtent, defaultHalfExtent)
		animate(s, e, true, 4)
	}, nil
}
