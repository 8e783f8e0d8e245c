package main

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/milk9111/dungeoncore/music"
)

const sampleRate = beep.SampleRate(music.SampleRate)

// samples streams a rendered mono song as stereo.
type samples struct {
	data []float64
	pos  int
}

func (s *samples) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	n := 0
	for n < len(buf) && s.pos < len(s.data) {
		buf[n][0] = s.data[s.pos]
		buf[n][1] = s.data[s.pos]
		n++
		s.pos++
	}
	return n, true
}

func (s *samples) Err() error { return nil }

func (s *samples) Len() int { return len(s.data) }

func (s *samples) Position() int { return s.pos }

func (s *samples) Seek(p int) error {
	s.pos = max(0, min(p, len(s.data)))
	return nil
}

// Jukebox loops the current song through the speaker.
type Jukebox struct {
	mu      sync.Mutex
	songs   map[uint8]music.Song
	mixer   *beep.Mixer
	current *beep.Ctrl
	id      uint8
	ready   bool
}

func NewJukebox() (*Jukebox, error) {
	songs, err := music.Songs()
	if err != nil {
		return nil, err
	}
	return &Jukebox{songs: songs, mixer: &beep.Mixer{}}, nil
}

// Init opens the speaker. A jukebox that was never initialized stays silent.
func (j *Jukebox) Init() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.ready {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(j.mixer)
	j.ready = true
	return nil
}

// ChangeSong replaces the playing loop. Song 0 and unknown ids are silence.
func (j *Jukebox) ChangeSong(id uint8) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if id == j.id {
		return
	}
	j.id = id
	if !j.ready {
		return
	}
	speaker.Lock()
	if j.current != nil {
		j.current.Paused = true
	}
	j.mixer.Clear()
	j.current = nil
	if song, ok := j.songs[id]; ok {
		loop := beep.Loop(-1, &samples{data: music.Render(song, int(sampleRate))})
		j.current = &beep.Ctrl{Streamer: loop}
		j.mixer.Add(j.current)
	}
	speaker.Unlock()
}

func (j *Jukebox) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.ready {
		return
	}
	speaker.Clear()
	speaker.Close()
	j.ready = false
}
