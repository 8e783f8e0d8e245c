package system

import (
	"log"

	"github.com/milk9111/dungeoncore/config"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/frame"
	"github.com/milk9111/dungeoncore/room"
)

// ScrollPhase is the step a scrolling transition is in.
type ScrollPhase uint8

const (
	ScrollIdle ScrollPhase = iota
	ScrollSetup
	ScrollLoop
	ScrollRollback
)

func (p ScrollPhase) String() string {
	switch p {
	case ScrollSetup:
		return "setup"
	case ScrollLoop:
		return "loop"
	case ScrollRollback:
		return "rollback"
	}
	return "idle"
}

// ScrollResult is the payload of EventScrolled and EventRollback.
type ScrollResult struct {
	Dir    frame.Direction
	Frames int
	RoomX  uint8
	RoomY  uint8
}

// Scroll pans the camera one screen into the adjacent room. It runs one
// step per Update and keeps the world frozen while active.
type Scroll struct {
	w       *ecs.World
	res     Resources
	events  *RoomEvents
	persist Persistence

	speedX, speedY int
	delay          int
	edge           int

	phase  ScrollPhase
	dir    frame.Direction
	blob   []byte
	destX  int
	destY  int
	offset int
	span   int
	frames int

	origin [room.Height][room.Width]uint8
	far    [room.Height][room.Width]uint8

	// visible holds sprites in origin-screen coordinates.
	visible []frame.Sprite

	startX, startY int
	finalX, finalY int
}

func NewScroll(w *ecs.World, res Resources, events *RoomEvents, persist Persistence, cfg config.Config) *Scroll {
	if persist == nil {
		persist = NopPersistence{}
	}
	return &Scroll{
		w:       w,
		res:     res,
		events:  events,
		persist: persist,
		speedX:  max(cfg.ScrollSpeedX, 1),
		speedY:  max(cfg.ScrollSpeedY, 1),
		delay:   cfg.ScrollDelay,
		edge:    cfg.EdgeOffset,
	}
}

// Phase returns the current phase.
func (s *Scroll) Phase() ScrollPhase {
	return s.phase
}

// Active reports whether a transition is in progress.
func (s *Scroll) Active() bool {
	return s.phase != ScrollIdle
}

// Start begins a transition in dir. It reports false, clamping the player
// back into the room, when there is no room that way.
func (s *Scroll) Start(dir frame.Direction) bool {
	if s.Active() || dir == frame.DirNone {
		return false
	}
	w := s.w
	dg, err := loadDungeon(s.res, int(w.Low.Dungeon))
	if err == nil {
		dx, dy := dir.Delta()
		var cx, cy int
		cx, cy, err = dg.Resolve(int(w.Low.RoomX)+dx, int(w.Low.RoomY)+dy)
		if err == nil {
			s.blob, err = dg.Room(cx, cy)
			s.destX, s.destY = cx, cy
		}
	}
	if err != nil {
		log.Printf("scroll: no room %s of dungeon %d (%d,%d): %v", dir, w.Low.Dungeon, w.Low.RoomX, w.Low.RoomY, err)
		s.clampPlayer()
		return false
	}
	s.dir = dir
	s.phase = ScrollSetup
	return true
}

// Cancel drops an in-progress transition without touching the room.
func (s *Scroll) Cancel() {
	if !s.Active() {
		return
	}
	s.phase = ScrollIdle
	s.visible = s.visible[:0]
	s.w.Freeze(false)
}

// Update advances the transition by one frame.
func (s *Scroll) Update() {
	switch s.phase {
	case ScrollSetup:
		s.setup()
	case ScrollLoop:
		s.loop()
	case ScrollRollback:
		s.rollback()
	}
}

func (s *Scroll) setup() {
	w := s.w
	w.SnapshotRoomstate()

	px, py := w.Store.Pos(ecs.Player)
	s.startX, s.startY = int(px), int(py)

	var buf frame.DrawBuffer
	w.DrawPass(&buf)
	s.visible = s.visible[:0]
	for _, sp := range buf.Sprites {
		if sp.Flags&frame.SpritePlayer != 0 {
			continue
		}
		s.visible = append(s.visible, sp)
	}
	w.ClearEntities()

	s.origin = w.Room.Tiles()
	if err := w.Room.LoadBlob(s.blob); err != nil {
		// Start checked the blob, so this only trips on a resource swapped
		// underneath us.
		log.Printf("scroll: destination (%d,%d): %v", s.destX, s.destY, err)
		w.RestoreRoomstate()
		w.SpawnRoom()
		s.phase = ScrollIdle
		return
	}
	w.Low.RoomX, w.Low.RoomY = uint8(s.destX), uint8(s.destY)
	s.far = w.Room.Tiles()

	ox, oy := s.screenDelta()
	s.appendSpawns(ox, oy)

	s.finalX, s.finalY = s.startX, s.startY
	switch s.dir {
	case frame.DirRight:
		s.finalX = s.edge
	case frame.DirLeft:
		s.finalX = room.ScreenWidth - 1 - s.edge
	case frame.DirDown:
		s.finalY = s.edge
	case frame.DirUp:
		s.finalY = room.ScreenHeight - 1 - s.edge
	}

	s.offset, s.frames = 0, 0
	s.span = room.ScreenWidth
	if s.dir == frame.DirUp || s.dir == frame.DirDown {
		s.span = room.ScreenHeight
	}
	w.Freeze(true)
	s.phase = ScrollLoop
}

func (s *Scroll) loop() {
	s.offset = min(s.offset+s.speed(), s.span)
	s.frames++

	// The landing tile is always tested on the last frame, even when the
	// pan is shorter than the delay.
	arrived := s.offset >= s.span
	if (arrived || s.frames > s.delay) && room.Blocks(s.w.Room.TileAtPixel(s.finalX, s.finalY)) {
		s.beginRollback()
		return
	}
	if arrived {
		s.succeed()
	}
}

func (s *Scroll) succeed() {
	w := s.w
	w.PlacePlayer(uint8(s.finalX), uint8(s.finalY), 0)
	w.SpawnRoom()
	s.visible = s.visible[:0]
	s.phase = ScrollIdle

	if redirect, ok := s.events.Enter(w); ok {
		req := redirect.Request
		req.Fade = redirect.Fade
		w.RequestLoad(req)
	}
	w.SnapshotRoomstate()
	if b, ok := w.Backup(); ok {
		if err := s.persist.BackupGameState(b); err != nil {
			log.Printf("scroll: backup game state: %v", err)
		}
	}
	w.Freeze(false)
	w.Events().Push(ecs.Event{Kind: ecs.EventScrolled, Data: s.result()})
}

func (s *Scroll) beginRollback() {
	w := s.w
	w.RestoreRoomstate()
	s.clampPlayer()
	px, py := w.Store.Pos(ecs.Player)
	s.startX, s.startY = int(px), int(py)
	s.finalX, s.finalY = s.startX, s.startY

	s.visible = s.visible[:0]
	s.appendSpawns(0, 0)
	s.phase = ScrollRollback
}

func (s *Scroll) rollback() {
	s.offset = max(s.offset-s.speed(), 0)
	s.frames++
	if s.offset > 0 {
		return
	}
	w := s.w
	w.SpawnRoom()
	s.visible = s.visible[:0]
	s.phase = ScrollIdle
	w.Freeze(false)
	w.Events().Push(ecs.Event{Kind: ecs.EventRollback, Data: s.result()})
}

// Present writes the transition's presentation state into f.
func (s *Scroll) Present(f *frame.Frame) {
	if !s.Active() || s.phase == ScrollSetup {
		return
	}
	dx, dy := s.dir.Delta()
	camX, camY := dx*s.offset, dy*s.offset
	f.Prev = s.origin
	f.Tiles = s.far
	f.Scroll = s.dir
	f.CameraX, f.CameraY = camX, camY

	f.Visible.Reset()
	for _, sp := range s.visible {
		sp.X -= camX
		sp.Y -= camY
		f.Visible.Add(sp)
	}
	px, py := s.playerPosition()
	st := &s.w.Store
	f.Visible.Add(frame.Sprite{
		X:        px - camX,
		Y:        py - camY,
		Frameset: st.Frameset[ecs.Player],
		Frame:    st.Frame[ecs.Player],
		Flags:    frame.SpritePlayer,
	})
}

// playerPosition interpolates the player between its start and final
// positions, in origin-screen coordinates.
func (s *Scroll) playerPosition() (int, int) {
	if s.phase == ScrollRollback {
		return s.startX, s.startY
	}
	ox, oy := s.screenDelta()
	tx, ty := s.finalX+ox, s.finalY+oy
	return s.startX + (tx-s.startX)*s.offset/s.span, s.startY + (ty-s.startY)*s.offset/s.span
}

func (s *Scroll) appendSpawns(ox, oy int) {
	types := s.w.Types()
	for _, sp := range s.w.Room.Spawns() {
		def, ok := types.Type(ecs.TypeID(sp.Type))
		if !ok || sp.Type == uint8(ecs.TypePlayer) {
			continue
		}
		s.visible = append(s.visible, frame.Sprite{
			X:        int(sp.X) + ox,
			Y:        int(sp.Y) + oy,
			Frameset: def.Frameset,
		})
	}
}

func (s *Scroll) screenDelta() (int, int) {
	dx, dy := s.dir.Delta()
	return dx * room.ScreenWidth, dy * room.ScreenHeight
}

func (s *Scroll) speed() int {
	if s.dir == frame.DirUp || s.dir == frame.DirDown {
		return s.speedY
	}
	return s.speedX
}

func (s *Scroll) clampPlayer() {
	w := s.w
	px, py := w.Store.Pos(ecs.Player)
	x := clampInt(int(px), s.edge, room.ScreenWidth-1-s.edge)
	y := clampInt(int(py), s.edge, room.ScreenHeight-1-s.edge)
	w.PlacePlayer(uint8(x), uint8(y), w.Store.Z[ecs.Player].Int())
}

func (s *Scroll) result() ScrollResult {
	return ScrollResult{Dir: s.dir, Frames: s.frames, RoomX: s.w.Low.RoomX, RoomY: s.w.Low.RoomY}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
