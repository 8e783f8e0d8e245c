package entity

import (
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/prefabs"
)

const scratchLife = 0

type particleParams struct {
	Lifetime int `yaml:"lifetime"`
}

// buildParticle counts down a lifetime and then dies.
func buildParticle(ctx *buildContext) (ecs.BehaviorFunc, error) {
	p, err := prefabs.DecodeParams[particleParams](ctx.Spec.Params)
	if err != nil {
		return nil, err
	}
	if p.Lifetime <= 0 {
		p.Lifetime = 8
	}
	return func(w *ecs.World, e ecs.Entity) {
		s := &w.Store
		if s.State[e] == 0 {
			s.State[e] = 1
			s.Scratch[scratchLife][e] = uint16(p.Lifetime)
		}
		s.Scratch[scratchLife][e]--
		s.Frame[e] = uint8(p.Lifetime-int(s.Scratch[scratchLife][e])) / 4
		if s.Scratch[scratchLife][e] == 0 {
			s.Health[e] = 0
		}
	}, nil
}

// buildPoofDeath turns the dying entity into a poof in place. The slot
// stays active under its new type.
func buildPoofDeath(ctx *buildContext) (ecs.DeathFunc, error) {
	poof, err := typeByName(ctx.Catalog, "poof")
	if err != nil {
		return nil, err
	}
	return func(w *ecs.World, e ecs.Entity) bool {
		def, ok := w.Types().Type(poof)
		if !ok || def.Health == 0 {
			return false
		}
		s := &w.Store
		s.Type[e] = poof
		s.SetBehavior(e, def.Behavior)
		s.Death[e] = def.Death
		s.Draw[e] = def.Draw
		s.Health[e] = def.Health
		s.Attack[e] = def.Attack
		s.Vision[e] = def.Vision
		s.Frameset[e] = def.Frameset
		s.Frame[e], s.AnimTimer[e], s.State[e] = 0, 0, 0
		s.VX[e], s.VY[e], s.VZ[e] = 0, 0, 0
		return true
	}, nil
}

type spawnerParams struct {
	Child  string `yaml:"child"`
	Spread int    `yaml:"spread"`
}

// buildSpawner places param children around itself and leaves its own
// health at 0, so the spawner never outlives its init.
func buildSpawner(ctx *buildContext) (ecs.InitFunc, error) {
	p, err := prefabs.DecodeParams[spawnerParams](ctx.Spec.Params)
	if err != nil {
		return nil, err
	}
	child, err := typeByName(ctx.Catalog, p.Child)
	if err != nil {
		return nil, err
	}
	if child == ecs.TypePlayer {
		return nil, errSpawnPlayer
	}
	spread := float64(p.Spread)

	return func(w *ecs.World, e ecs.Entity, param uint8) {
		s := &w.Store
		x, y := position(s, e)
		n := int(param)
		if n == 0 {
			n = 1
		}
		for k := 0; k < n; k++ {
			ox := float64(k%3-1) * spread
			oy := float64(k/3) * spread
			if _, ok := w.Spawn(inRoomX(x+ox), inRoomY(y+oy), child, 0); !ok {
				break
			}
		}
		s.Health[e] = 0
	}, nil
}

type pickupParams struct {
	HalfWidth  int `yaml:"half_width"`
	HalfHeight int `yaml:"half_height"`
}

// buildPickup hands the key to the player on contact.
func buildPickup(ctx *buildContext) (ecs.BehaviorFunc, error) {
	p, err := prefabs.DecodeParams[pickupParams](ctx.Spec.Params)
	if err != nil {
		return nil, err
	}
	if p.HalfWidth <= 0 {
		p.HalfWidth = defaultHalfExtent
	}
	if p.HalfHeight <= 0 {
		p.HalfHeight = defaultHalfExtent
	}
	hw, hh := float64(p.HalfWidth), float64(p.HalfHeight)
	return func(w *ecs.World, e ecs.Entity) {
		s := &w.Store
		s.AnimTimer[e]++
		s.Frame[e] = s.AnimTimer[e] / 16 % 2
		if !overlapsPlayer(w, e, hw, hh) {
			return
		}
		w.Low.Flags |= ecs.FlagHasKey
		s.Health[e] = 0
	}, nil
}
