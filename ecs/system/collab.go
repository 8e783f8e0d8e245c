package system

import (
	"context"

	"github.com/milk9111/dungeoncore/dungeon"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/levels"
)

// Resources loads raw resource blobs by bank and id.
type Resources interface {
	LoadResource(kind levels.Kind, id int) ([]byte, error)
	NumDungeons() int
}

// Display is told which palette, tileset, second layer and spritesheet a
// dungeon uses whenever one is loaded.
type Display interface {
	SetupDisplayLayers(desc dungeon.Descriptor)
}

// Audio switches the background song.
type Audio interface {
	ChangeSong(id uint8)
}

// Persistence stores the roomstate backup outside the session.
type Persistence interface {
	BackupGameState(b ecs.Backup) error
}

// Presenter publishes the presentation state and waits out one frame. The
// loader uses it for fades and pauses.
type Presenter interface {
	Present(ctx context.Context) error
	SetFade(level int)
	SetHold(hold bool)
}

type NopDisplay struct{}

func (NopDisplay) SetupDisplayLayers(dungeon.Descriptor) {}

type NopAudio struct{}

func (NopAudio) ChangeSong(uint8) {}

type NopPersistence struct{}

func (NopPersistence) BackupGameState(ecs.Backup) error { return nil }

// loadDungeon fetches and parses a dungeon resource.
func loadDungeon(res Resources, id int) (*dungeon.Dungeon, error) {
	data, err := res.LoadResource(levels.KindDungeon, id)
	if err != nil {
		return nil, err
	}
	return dungeon.Parse(data)
}
