package main

import (
	"context"
	"errors"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/dungeoncore/engine"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/music"
	"github.com/milk9111/dungeoncore/render"
	"github.com/milk9111/dungeoncore/room"
)

// Game drives the core in lockstep with ebiten's update loop: every Update
// hands the sampled input over and takes the finished frame back.
type Game struct {
	engine   *engine.Engine
	clock    *frame.Lockstep
	renderer *render.Renderer
	music    *music.Player

	ctx    context.Context
	cancel context.CancelFunc
	done   chan error

	frame frame.Frame
	// canvas keeps the last drawn image so held frames repeat it.
	canvas *ebiten.Image

	menu     *ebitenui.UI
	menuOpen bool
	menuPick int
}

func NewGame(cfg gameConfig) (*Game, error) {
	clock := frame.NewLockstep()
	eng, err := engine.New(cfg.engine, clock, engine.Options{NewGame: cfg.newGame})
	if err != nil {
		return nil, err
	}
	g := &Game{
		engine:   eng,
		clock:    clock,
		renderer: render.NewRenderer(eng.Catalog, eng.DungeonName),
		done:     make(chan error, 1),
		canvas:   ebiten.NewImage(room.ScreenWidth, room.ScreenHeight),
		menuPick: -1,
	}
	g.renderer.HUD = cfg.hud

	if !cfg.mute {
		player, err := music.NewPlayer(audio.NewContext(music.SampleRate))
		if err != nil {
			log.Printf("music disabled: %v", err)
		} else {
			g.music = player
		}
	}

	g.menu = NewDungeonMenu(eng.Pack.NumDungeons(), eng.Pack.DungeonName,
		func(id int) {
			g.menuPick = id
			g.menuOpen = false
		},
		func() { g.menuOpen = false },
	)

	g.ctx, g.cancel = context.WithCancel(context.Background())
	go func() {
		g.done <- eng.Run(g.ctx)
		clock.Stop()
	}()
	return g, nil
}

func (g *Game) Update() error {
	if menuToggled() {
		g.menuOpen = !g.menuOpen
	}

	in := frame.Input{MenuDungeon: -1}
	if g.menuOpen {
		g.menu.Update()
	} else {
		in.Buttons = pollButtons()
	}
	if g.menuPick >= 0 {
		in.MenuDungeon = g.menuPick
		g.menuPick = -1
	}

	f, err := g.clock.Step(g.ctx, in)
	if err != nil {
		return g.finish(err)
	}
	g.frame = f
	if g.music != nil {
		for _, id := range f.Songs {
			g.music.ChangeSong(id)
		}
		g.music.Update()
	}
	return nil
}

// finish waits for the core to exit and reports why.
func (g *Game) finish(stepErr error) error {
	g.cancel()
	if err := <-g.done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if !errors.Is(stepErr, frame.ErrStopped) && !errors.Is(stepErr, context.Canceled) {
		return stepErr
	}
	return ebiten.Termination
}

func (g *Game) Draw(screen *ebiten.Image) {
	if !g.frame.Hold {
		g.canvas.Clear()
		g.renderer.Draw(g.canvas, &g.frame)
	}
	screen.DrawImage(g.canvas, nil)
	if g.menuOpen {
		g.menu.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return room.ScreenWidth, room.ScreenHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
