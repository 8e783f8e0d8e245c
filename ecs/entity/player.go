package entity

import (
	"github.com/milk9111/dungeoncore/collision"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/prefabs"
	"github.com/milk9111/dungeoncore/room"
)

// Player states, stored in the state attribute and in lowram.
const (
	PlayerIdle uint8 = iota
	PlayerWalk
	PlayerAttack
	PlayerHurt
)

// Player scratch words.
const (
	scratchInvulnerable = 0
	scratchCooldown     = 1
)

const attackCooldown = 16

type playerParams struct {
	Speed        int `yaml:"speed"`
	HalfWidth    int `yaml:"half_width"`
	HalfHeight   int `yaml:"half_height"`
	Invulnerable int `yaml:"invulnerable_frames"`
	Reach        int `yaml:"reach"`
}

func buildPlayer(ctx *buildContext) (ecs.BehaviorFunc, error) {
	p, err := prefabs.DecodeParams[playerParams](ctx.Spec.Params)
	if err != nil {
		return nil, err
	}
	if p.Speed <= 0 {
		p.Speed = fixedOne
	}
	if p.HalfWidth <= 0 {
		p.HalfWidth = defaultHalfExtent
	}
	if p.HalfHeight <= 0 {
		p.HalfHeight = defaultHalfExtent
	}
	if p.Reach <= 0 {
		p.Reach = room.TileSize
	}
	hw, hh := float64(p.HalfWidth), float64(p.HalfHeight)
	speed := int16(p.Speed)

	return func(w *ecs.World, e ecs.Entity) {
		s := &w.Store
		if s.Scratch[scratchInvulnerable][e] > 0 {
			s.Scratch[scratchInvulnerable][e]--
		}
		if s.Scratch[scratchCooldown][e] > 0 {
			s.Scratch[scratchCooldown][e]--
		}

		in := w.Input
		dir := frame.Direction(s.Direction[e])
		var vx, vy int16
		switch {
		case in.Has(frame.ButtonLeft):
			vx, dir = -speed, frame.DirLeft
		case in.Has(frame.ButtonRight):
			vx, dir = speed, frame.DirRight
		}
		switch {
		case in.Has(frame.ButtonUp):
			vy = -speed
			if vx == 0 {
				dir = frame.DirUp
			}
		case in.Has(frame.ButtonDown):
			vy = speed
			if vx == 0 {
				dir = frame.DirDown
			}
		}
		s.VX[e], s.VY[e] = vx, vy
		s.Direction[e] = uint8(dir)

		x, y := position(s, e)
		nx, ny := x+float64(vx)/fixedOne, y+float64(vy)/fixedOne
		switch {
		case vx < 0 && nx-hw < 0:
			w.RequestScroll(frame.DirLeft)
			return
		case vx > 0 && nx+hw > room.ScreenWidth:
			w.RequestScroll(frame.DirRight)
			return
		case vy < 0 && ny-hh < 0:
			w.RequestScroll(frame.DirUp)
			return
		case vy > 0 && ny+hh > room.ScreenHeight:
			w.RequestScroll(frame.DirDown)
			return
		}

		moveWithTiles(w, e, vx, vy, hw, hh)
		moving := vx != 0 || vy != 0
		animate(s, e, moving, 8)

		switch {
		case in.Has(frame.ButtonA) && s.Scratch[scratchCooldown][e] == 0:
			s.Scratch[scratchCooldown][e] = attackCooldown
			s.State[e] = PlayerAttack
			playerStrike(w, e, dir, float64(p.Reach))
		case s.Scratch[scratchCooldown][e] > attackCooldown/2:
			s.State[e] = PlayerAttack
		case s.Scratch[scratchInvulnerable][e] > uint16(p.Invulnerable)/2:
			s.State[e] = PlayerHurt
		case moving:
			s.State[e] = PlayerWalk
		default:
			s.State[e] = PlayerIdle
		}

		if s.Scratch[scratchInvulnerable][e] == 0 {
			playerContact(w, e, hw, hh, uint16(p.Invulnerable))
		}
	}, nil
}

// playerStrike damages every hostile entity in the box in front of the
// player.
func playerStrike(w *ecs.World, e ecs.Entity, dir frame.Direction, reach float64) {
	s := &w.Store
	x, y := position(s, e)
	dx, dy := dir.Delta()
	hx, hy := x+float64(dx)*reach, y+float64(dy)*reach
	for i := 1; i < w.Active.Len(); i++ {
		o := w.Active.At(i)
		if s.Attack[o] == 0 || s.Health[o] == 0 {
			continue
		}
		ox, oy := position(s, o)
		if !collision.Overlaps(hx, hy, ox, oy, defaultHalfExtent, defaultHalfExtent) {
			continue
		}
		s.Health[o] = damage(s.Health[o], s.Attack[e])
	}
}

// playerContact applies contact damage from the first hostile overlapping
// the player.
func playerContact(w *ecs.World, e ecs.Entity, hw, hh float64, invulnerable uint16) {
	s := &w.Store
	x, y := position(s, e)
	for i := 1; i < w.Active.Len(); i++ {
		o := w.Active.At(i)
		if s.Attack[o] == 0 || s.Health[o] == 0 {
			continue
		}
		ox, oy := position(s, o)
		if !collision.Overlaps(x, y, ox, oy, hw, hh) {
			continue
		}
		s.Health[e] = damage(s.Health[e], s.Attack[o])
		s.Scratch[scratchInvulnerable][e] = invulnerable
		s.State[e] = PlayerHurt
		return
	}
}

func damage(health, attack uint8) uint8 {
	if attack >= health {
		return 0
	}
	return health - attack
}
