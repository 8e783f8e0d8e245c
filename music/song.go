// Package music synthesizes the square-wave background songs and plays
// them through ebiten's audio context.
package music

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed songs.yaml
var songsYAML []byte

// SampleRate is the rate every song is rendered at.
const SampleRate = 44100

var ErrBadSong = errors.New("music: bad song")

// Song is one looping melody.
type Song struct {
	Name   string   `yaml:"name"`
	Tempo  int      `yaml:"tempo"`
	Volume float64  `yaml:"volume"`
	Notes  []string `yaml:"notes"`
}

type songFile struct {
	Songs map[uint8]Song `yaml:"songs"`
}

// Songs returns the embedded song table.
func Songs() (map[uint8]Song, error) {
	return ParseSongs(songsYAML)
}

// ParseSongs decodes a song table and checks every note name.
func ParseSongs(data []byte) (map[uint8]Song, error) {
	var f songFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSong, err)
	}
	for id, s := range f.Songs {
		if s.Tempo <= 0 {
			return nil, fmt.Errorf("%w: song %d has tempo %d", ErrBadSong, id, s.Tempo)
		}
		for _, n := range s.Notes {
			if _, err := NoteFrequency(n); err != nil {
				return nil, fmt.Errorf("song %d: %w", id, err)
			}
		}
	}
	return f.Songs, nil
}

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// NoteFrequency converts a pitch name such as "A4" or "C#5" to Hz. A rest
// ("-") is 0.
func NoteFrequency(name string) (float64, error) {
	if name == "-" {
		return 0, nil
	}
	if len(name) < 2 {
		return 0, fmt.Errorf("%w: note %q", ErrBadSong, name)
	}
	step, ok := semitones[name[0]]
	if !ok {
		return 0, fmt.Errorf("%w: note %q", ErrBadSong, name)
	}
	rest := name[1:]
	switch rest[0] {
	case '#':
		step++
		rest = rest[1:]
	case 'b':
		step--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: note %q", ErrBadSong, name)
	}
	midi := (octave+1)*12 + step
	return 440 * math.Pow(2, float64(midi-69)/12), nil
}

// Render produces one loop of s as mono samples in [-1, 1]. Each note is a
// square wave with a short release so steps do not click.
func Render(s Song, sampleRate int) []float64 {
	if s.Tempo <= 0 || len(s.Notes) == 0 {
		return nil
	}
	step := sampleRate * 60 / s.Tempo / 2
	vol := s.Volume
	if vol <= 0 || vol > 1 {
		vol = 0.25
	}
	out := make([]float64, 0, step*len(s.Notes))
	for _, n := range s.Notes {
		freq, _ := NoteFrequency(n)
		for i := 0; i < step; i++ {
			if freq == 0 {
				out = append(out, 0)
				continue
			}
			phase := math.Mod(float64(i)*freq/float64(sampleRate), 1)
			v := vol
			if phase >= 0.5 {
				v = -vol
			}
			if tail := step - i; tail < step/8 {
				v *= float64(tail) / float64(step/8)
			}
			out = append(out, v)
		}
	}
	return out
}
