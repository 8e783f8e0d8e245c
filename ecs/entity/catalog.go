package entity

import (
	"fmt"

	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/prefabs"
)

type buildContext struct {
	Catalog *prefabs.CatalogSpec
	Spec    *prefabs.EntitySpec
	Table   *ecs.Table
}

type behaviorBuildFn func(ctx *buildContext) (ecs.BehaviorFunc, error)
type deathBuildFn func(ctx *buildContext) (ecs.DeathFunc, error)
type initBuildFn func(ctx *buildContext) (ecs.InitFunc, error)

var behaviorRegistry = map[string]behaviorBuildFn{
	"player":   buildPlayer,
	"wander":   buildWander,
	"chase":    buildChase,
	"particle": buildParticle,
	"pickup":   buildPickup,
}

var deathRegistry = map[string]deathBuildFn{
	"poof": buildPoofDeath,
}

var initRegistry = map[string]initBuildFn{
	"spawner": buildSpawner,
}

var drawRegistry = map[string]ecs.DrawFunc{
	"player":  drawPlayer,
	"sprite":  drawSprite,
	"flicker": drawFlicker,
}

// drawOrder fixes draw ids so they do not depend on map iteration.
var drawOrder = []string{"player", "sprite", "flicker"}

// BuildTable turns the catalogue into function tables. Behavior and death
// ids are allocated per type since their closures capture the type's
// params; draw ids are shared.
func BuildTable(cat *prefabs.CatalogSpec) (*ecs.Table, error) {
	if cat == nil {
		return nil, fmt.Errorf("entity: nil catalog")
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	t := ecs.NewTable()

	drawIDs := make(map[string]ecs.DrawID, len(drawOrder))
	for i, name := range drawOrder {
		id := ecs.DrawID(i + 1)
		drawIDs[name] = id
		t.SetDraw(id, drawRegistry[name])
	}

	var nextBehavior ecs.BehaviorID = 1
	var nextDeath ecs.DeathID = 1
	for i := range cat.Types {
		spec := &cat.Types[i]
		ctx := &buildContext{Catalog: cat, Spec: spec, Table: t}
		def := ecs.TypeDef{
			Name:     spec.Name,
			Health:   uint8(spec.Health),
			Attack:   uint8(spec.Attack),
			Vision:   uint8(spec.Vision),
			Frameset: uint8(spec.Frameset),
		}

		if spec.Behavior != "" {
			build, ok := behaviorRegistry[spec.Behavior]
			if !ok {
				return nil, fmt.Errorf("entity: %s: unknown behavior %q", spec.Name, spec.Behavior)
			}
			fn, err := build(ctx)
			if err != nil {
				return nil, fmt.Errorf("entity: %s: behavior %s: %w", spec.Name, spec.Behavior, err)
			}
			t.SetBehavior(nextBehavior, fn)
			def.Behavior = nextBehavior
			nextBehavior++
		}

		if spec.Death != "" {
			build, ok := deathRegistry[spec.Death]
			if !ok {
				return nil, fmt.Errorf("entity: %s: unknown death %q", spec.Name, spec.Death)
			}
			fn, err := build(ctx)
			if err != nil {
				return nil, fmt.Errorf("entity: %s: death %s: %w", spec.Name, spec.Death, err)
			}
			t.SetDeath(nextDeath, fn)
			def.Death = nextDeath
			nextDeath++
		}

		if spec.Draw != "" {
			id, ok := drawIDs[spec.Draw]
			if !ok {
				return nil, fmt.Errorf("entity: %s: unknown draw %q", spec.Name, spec.Draw)
			}
			def.Draw = id
		}

		if spec.Init != "" {
			build, ok := initRegistry[spec.Init]
			if !ok {
				return nil, fmt.Errorf("entity: %s: unknown init %q", spec.Name, spec.Init)
			}
			fn, err := build(ctx)
			if err != nil {
				return nil, fmt.Errorf("entity: %s: init %s: %w", spec.Name, spec.Init, err)
			}
			def.Init = fn
		}

		t.SetType(ecs.TypeID(i), def)
	}
	return t, nil
}

// LoadTable builds the tables from the catalogue prefab.
func LoadTable() (*ecs.Table, *prefabs.CatalogSpec, error) {
	cat, err := prefabs.LoadCatalog()
	if err != nil {
		return nil, nil, err
	}
	t, err := BuildTable(cat)
	if err != nil {
		return nil, nil, err
	}
	return t, cat, nil
}

func typeByName(cat *prefabs.CatalogSpec, name string) (ecs.TypeID, error) {
	id, ok := cat.TypeID(name)
	if !ok {
		return 0, fmt.Errorf("unknown type %q", name)
	}
	return ecs.TypeID(id), nil
}
