package system

import (
	"context"
	"errors"
	"log"

	"github.com/milk9111/dungeoncore/config"
	"github.com/milk9111/dungeoncore/dungeon"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
)

// Session runs the core loop: one loader, scroll or dispatch step per
// frame, then a wait on the clock.
type Session struct {
	World     *ecs.World
	Clock     frame.Clock
	Loader    *Loader
	Scroll    *Scroll
	Events    *RoomEvents
	Scheduler *ecs.Scheduler

	cfg   config.Config
	frame frame.Frame
	fade  int
	hold  bool
	input frame.Input
}

type SessionDeps struct {
	Resources   Resources
	Persistence Persistence
	// Audio receives song changes directly. When nil they are queued on
	// the frame for the driver.
	Audio Audio
}

// NewSession wires a loader, a scroll and the entity scheduler around w.
func NewSession(w *ecs.World, clock frame.Clock, deps SessionDeps, cfg config.Config) *Session {
	s := &Session{
		World: w,
		Clock: clock,
		cfg:   cfg,
		input: frame.NoInput,
		fade:  frame.FadeMax,
	}
	audio := deps.Audio
	if audio == nil {
		audio = s
	}
	s.Events = NewRoomEvents(audio, NewEventScripts(deps.Resources))
	s.Loader = NewLoader(w, LoaderDeps{
		Resources:   deps.Resources,
		Display:     s,
		Audio:       audio,
		Persistence: deps.Persistence,
		Events:      s.Events,
		Presenter:   s,
	}, cfg)
	s.Scroll = NewScroll(w, deps.Resources, s.Events, deps.Persistence, cfg)
	s.Loader.OnReset(s.Scroll.Cancel)
	s.Scheduler = ecs.NewScheduler(ecs.NewDispatchSystem())
	return s
}

// Present publishes the current frame and waits for the next one.
func (s *Session) Present(ctx context.Context) error {
	f := &s.frame
	w := s.World
	f.Number++
	f.Fade = s.fade
	f.Hold = s.hold
	f.Dungeon, f.RoomX, f.RoomY = w.Low.Dungeon, w.Low.RoomX, w.Low.RoomY

	f.Entities.Reset()
	f.Visible.Reset()
	if s.Scroll.Active() && s.Scroll.Phase() != ScrollSetup {
		s.Scroll.Present(f)
	} else {
		f.Tiles = w.Room.Tiles()
		f.Prev = f.Tiles
		f.Scroll = frame.DirNone
		f.CameraX, f.CameraY = 0, 0
		w.DrawPass(&f.Entities)
	}

	in, err := s.Clock.Wait(ctx, f)
	f.Songs = f.Songs[:0]
	if err != nil {
		return err
	}
	s.input = in
	return nil
}

func (s *Session) SetFade(level int) {
	s.fade = max(0, min(level, frame.FadeMax))
}

func (s *Session) SetHold(hold bool) {
	s.hold = hold
}

func (s *Session) SetupDisplayLayers(desc dungeon.Descriptor) {
	s.frame.Layers = frame.Layers{
		Palette:     desc.Palette,
		Tileset:     desc.Tileset,
		Layer2:      desc.Layer2,
		Spritesheet: desc.Spritesheet,
	}
}

func (s *Session) ChangeSong(id uint8) {
	s.frame.QueueSong(id)
}

// Boot loads the first room: the saved backup when there is one, the
// configured start dungeon otherwise.
func (s *Session) Boot(ctx context.Context, save *ecs.Backup) (LoadResult, error) {
	if save != nil {
		return s.Loader.RestoreBackup(ctx, *save)
	}
	return s.Loader.LoadDefaultRoom(ctx, s.cfg.StartDungeon)
}

// Step runs one frame of game logic and presents it.
func (s *Session) Step(ctx context.Context) error {
	w := s.World
	in := s.input
	s.input = frame.NoInput

	req, loadPending := w.TakeLoadRequest()
	var err error
	switch {
	case in.MenuDungeon >= 0:
		_, err = s.Loader.LoadDefaultRoom(ctx, in.MenuDungeon)
	case loadPending:
		_, err = s.Loader.LoadRoom(ctx, req)
	case w.Store.Health[ecs.Player] == 0:
		log.Printf("session: player down in dungeon %d, restarting", w.Low.Dungeon)
		w.ResetPlayer()
		_, err = s.Loader.LoadDefaultRoom(ctx, int(w.Low.Dungeon))
	case s.Scroll.Active():
		s.Scroll.Update()
	default:
		if dir := w.TakeScrollRequest(); dir != frame.DirNone && s.Scroll.Start(dir) {
			s.Scroll.Update()
			break
		}
		w.Input = in.Buttons
		s.Scheduler.Update(w)
	}
	if err != nil {
		return err
	}

	s.logEvents()
	return s.Present(ctx)
}

// Run boots and steps until ctx ends or the clock stops. A stopped clock
// is a clean exit.
func (s *Session) Run(ctx context.Context, save *ecs.Backup) error {
	if _, err := s.Boot(ctx, save); err != nil {
		return ignoreStopped(err)
	}
	for {
		if err := s.Step(ctx); err != nil {
			return ignoreStopped(err)
		}
	}
}

func ignoreStopped(err error) error {
	if errors.Is(err, frame.ErrStopped) {
		return nil
	}
	return err
}

func (s *Session) logEvents() {
	for _, evt := range s.World.Events().Drain() {
		switch evt.Kind {
		case ecs.EventRoomLoaded:
			if r, ok := evt.Data.(LoadResult); ok {
				log.Printf("session: loaded dungeon %d room (%d,%d) via %s after %d attempts", r.Dungeon, r.RoomX, r.RoomY, r.Type, r.Attempts)
			}
		case ecs.EventRollback:
			if r, ok := evt.Data.(ScrollResult); ok {
				log.Printf("session: scroll %s refused, rolled back after %d frames", r.Dir, r.Frames)
			}
		}
	}
}
