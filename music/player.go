package music

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	defaultVolume     = 1.0
	defaultFadeFrames = 30
)

// track is the part of *audio.Player the song switcher drives.
type track interface {
	Play()
	Pause()
	Rewind() error
	SetVolume(volume float64)
	IsPlaying() bool
}

// Player switches background songs, fading the current one out before the
// next starts. Call Update once per frame.
type Player struct {
	songs  map[uint8]Song
	open   func(id uint8, s Song) (track, error)
	tracks map[uint8]track

	current    uint8
	currentVol float64

	pending       uint8
	pendingActive bool
	fadeStep      float64
	fadeFrames    int
}

// NewPlayer renders songs lazily into players on ctx.
func NewPlayer(ctx *audio.Context) (*Player, error) {
	songs, err := Songs()
	if err != nil {
		return nil, err
	}
	p := newPlayer(songs, func(id uint8, s Song) (track, error) {
		pcm := encodePCM(Render(s, ctx.SampleRate()))
		loop := audio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm)))
		return ctx.NewPlayer(loop)
	})
	return p, nil
}

func newPlayer(songs map[uint8]Song, open func(uint8, Song) (track, error)) *Player {
	return &Player{
		songs:      songs,
		open:       open,
		tracks:     map[uint8]track{},
		fadeFrames: defaultFadeFrames,
	}
}

// Current returns the playing song id, 0 when silent.
func (p *Player) Current() uint8 {
	return p.current
}

// ChangeSong requests song id. Id 0 fades to silence; the song already
// playing is left alone.
func (p *Player) ChangeSong(id uint8) {
	if p == nil {
		return
	}
	if !p.pendingActive && id == p.current && (id == 0 || p.tracks[id] != nil) {
		return
	}
	p.pending = id
	p.pendingActive = true
	if p.currentTrack() == nil {
		p.switchToPending()
		return
	}
	p.fadeStep = p.currentVol / float64(p.fadeFrames)
	if p.fadeStep <= 0 {
		p.fadeStep = 1
	}
}

// Update advances a fade in progress.
func (p *Player) Update() {
	if p == nil || !p.pendingActive {
		return
	}
	cur := p.currentTrack()
	if cur == nil {
		p.switchToPending()
		return
	}
	p.currentVol -= p.fadeStep
	if p.currentVol > 0 {
		cur.SetVolume(p.currentVol)
		return
	}
	p.currentVol = 0
	cur.SetVolume(0)
	cur.Pause()
	_ = cur.Rewind()
	p.current = 0
	p.switchToPending()
}

func (p *Player) switchToPending() {
	id := p.pending
	p.pending = 0
	p.pendingActive = false
	p.fadeStep = 0
	if id == 0 {
		p.current, p.currentVol = 0, 0
		return
	}

	t, err := p.trackFor(id)
	if err != nil {
		log.Printf("music: song %d: %v", id, err)
		p.current, p.currentVol = 0, 0
		return
	}
	p.current = id
	p.currentVol = defaultVolume
	_ = t.Rewind()
	t.SetVolume(p.currentVol)
	t.Play()
}

func (p *Player) currentTrack() track {
	if p.current == 0 {
		return nil
	}
	return p.tracks[p.current]
}

func (p *Player) trackFor(id uint8) (track, error) {
	if t, ok := p.tracks[id]; ok && t != nil {
		return t, nil
	}
	s, ok := p.songs[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown song %d", ErrBadSong, id)
	}
	t, err := p.open(id, s)
	if err != nil {
		return nil, err
	}
	p.tracks[id] = t
	return t, nil
}

// encodePCM converts mono samples to 16-bit little-endian stereo.
func encodePCM(samples []float64) []byte {
	out := make([]byte, len(samples)*4)
	for i, v := range samples {
		s := uint16(int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[i*4:], s)
		binary.LittleEndian.PutUint16(out[i*4+2:], s)
	}
	return out
}
