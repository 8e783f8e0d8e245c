// Package engine assembles a playable session from the embedded catalogue,
// the dungeon pack, the tuning config and the save file.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/milk9111/dungeoncore/config"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/ecs/entity"
	"github.com/milk9111/dungeoncore/ecs/system"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/levels"
	"github.com/milk9111/dungeoncore/prefabs"
	"github.com/milk9111/dungeoncore/save"
)

type Options struct {
	// Audio receives song changes directly instead of through the frame.
	Audio system.Audio
	// NewGame ignores an existing save file.
	NewGame bool
}

type Engine struct {
	Config  config.Config
	Catalog *prefabs.CatalogSpec
	Pack    *levels.Pack
	World   *ecs.World
	Save    *save.Store
	Session *system.Session
}

func New(cfg config.Config, clock frame.Clock, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, cat, err := entity.LoadTable()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	pack, err := levels.NewPack(cat)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := &Engine{
		Config:  cfg,
		Catalog: cat,
		Pack:    pack,
		World:   ecs.NewWorld(table, cfg.Seed),
		Save:    save.NewStore(cfg.SavePath),
	}
	if opts.NewGame {
		if err := e.Save.Remove(); err != nil {
			log.Printf("engine: remove save: %v", err)
		}
	}
	e.Session = system.NewSession(e.World, clock, system.SessionDeps{
		Resources:   pack,
		Persistence: e.Save,
		Audio:       opts.Audio,
	}, cfg)
	return e, nil
}

// Run resumes from the save file when one is readable and runs the session
// until ctx ends or the clock stops.
func (e *Engine) Run(ctx context.Context) error {
	b, err := e.Save.Load()
	if err != nil {
		log.Printf("engine: ignoring save file: %v", err)
		b = nil
	}
	return e.Session.Run(ctx, b)
}

// DungeonName labels dungeon id for menus and the HUD.
func (e *Engine) DungeonName(id uint8) string {
	return e.Pack.DungeonName(int(id))
}
