// Command roomview plays the engine in a terminal. Rooms are drawn as text,
// music goes to the default audio device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/dungeoncore/config"
	"github.com/milk9111/dungeoncore/engine"
	"github.com/milk9111/dungeoncore/frame"
)

func main() {
	configPath := flag.String("config", config.DiskPath, "engine tuning file")
	newGame := flag.Bool("new", false, "ignore the save file")
	mute := flag.Bool("mute", false, "disable music")
	logPath := flag.String("log", "roomview.log", "log file; the terminal is busy drawing")
	flag.Parse()

	if f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	if err := run(*configPath, *newGame, *mute); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, newGame, mute bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	clock := frame.NewLockstep()
	eng, err := engine.New(cfg, clock, engine.Options{NewGame: newGame})
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	jukebox, err := NewJukebox()
	if err != nil {
		return err
	}
	if !mute {
		if err := jukebox.Init(); err != nil {
			log.Printf("roomview: music disabled: %v", err)
		}
	}
	defer jukebox.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- eng.Run(ctx)
		clock.Stop()
	}()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	view := NewView(eng.Catalog, eng.DungeonName)
	keys := NewKeys()
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !keys.Press(ev) {
					cancel()
					return wait(done)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			f, err := clock.Step(ctx, keys.Next())
			if err != nil {
				cancel()
				if werr := wait(done); werr != nil {
					return werr
				}
				if errors.Is(err, frame.ErrStopped) || errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			for _, id := range f.Songs {
				jukebox.ChangeSong(id)
			}
			if !f.Hold {
				screen.Clear()
				view.Draw(screen, &f)
				screen.Show()
			}
		}
	}
}

func wait(done <-chan error) error {
	err := <-done
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
