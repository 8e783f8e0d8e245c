package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/dungeoncore/config"
	"github.com/milk9111/dungeoncore/levels"
	"github.com/pkg/profile"
)

type gameConfig struct {
	engine  config.Config
	newGame bool
	mute    bool
	hud     bool
}

func main() {
	configPath := flag.String("config", config.DiskPath, "engine tuning file; the embedded defaults are used when it is missing")
	newGame := flag.Bool("new", false, "ignore the save file and start a new game")
	dungeonID := flag.Int("dungeon", -1, "start in this dungeon's default room (implies -new)")
	mute := flag.Bool("mute", false, "disable music")
	hud := flag.Bool("hud", true, "show the location line")
	watch := flag.Bool("watch", false, "reload dungeon and script files from levels/ when they change")
	scale := flag.Int("scale", 4, "window scale")
	cpuProfile := flag.Bool("profile", false, "write a CPU profile to the working directory")
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *dungeonID >= 0 {
		cfg.StartDungeon = *dungeonID
		*newGame = true
	}

	ebiten.SetWindowSize(160**scale, 128**scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("dungeoncore")

	game, err := NewGame(gameConfig{engine: cfg, newGame: *newGame, mute: *mute, hud: *hud})
	if err != nil {
		log.Fatal(err)
	}

	if *watch {
		w, err := levels.NewWatcher("levels/dungeons", "levels/scripts")
		if err != nil {
			log.Printf("watch disabled: %v", err)
		} else {
			defer w.Close()
			go w.Watch(game.engine.Pack, log.Printf)
		}
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
