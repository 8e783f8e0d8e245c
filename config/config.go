// Package config holds the engine tuning values.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/dungeoncore/room"
)

//go:embed engine.yaml
var defaultYAML []byte

// DiskPath is checked before the embedded defaults so tuning can be edited
// without a rebuild.
const DiskPath = "config/engine.yaml"

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	MaxRetries   int    `yaml:"max_retries"`
	FadeFrames   int    `yaml:"fade_frames"`
	PauseFrames  int    `yaml:"pause_frames"`
	ScrollSpeedX int    `yaml:"scroll_speed_x"`
	ScrollSpeedY int    `yaml:"scroll_speed_y"`
	ScrollDelay  int    `yaml:"scroll_delay"`
	EdgeOffset   int    `yaml:"edge_offset"`
	StartDungeon int    `yaml:"start_dungeon"`
	SavePath     string `yaml:"save_path"`
	Seed         uint64 `yaml:"seed"`
}

// Default returns the embedded configuration.
func Default() Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads path if it exists, falling back to the embedded defaults. An
// empty path means DiskPath.
func Load(path string) (Config, error) {
	if path == "" {
		path = DiskPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the embedded defaults, so a partial file only
// overrides the keys it names.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.MaxRetries < 2:
		return fmt.Errorf("%w: max_retries %d, need at least 2", ErrInvalid, c.MaxRetries)
	case c.FadeFrames < 0:
		return fmt.Errorf("%w: fade_frames %d", ErrInvalid, c.FadeFrames)
	case c.PauseFrames < 0:
		return fmt.Errorf("%w: pause_frames %d", ErrInvalid, c.PauseFrames)
	case c.ScrollSpeedX <= 0 || c.ScrollSpeedY <= 0:
		return fmt.Errorf("%w: scroll speed %dx%d", ErrInvalid, c.ScrollSpeedX, c.ScrollSpeedY)
	case c.ScrollDelay < 0:
		return fmt.Errorf("%w: scroll_delay %d", ErrInvalid, c.ScrollDelay)
	case panFrames(room.ScreenWidth, c.ScrollSpeedX) <= c.ScrollDelay,
		panFrames(room.ScreenHeight, c.ScrollSpeedY) <= c.ScrollDelay:
		return fmt.Errorf("%w: scroll_delay %d leaves no frames to test the landing tile at speed %dx%d",
			ErrInvalid, c.ScrollDelay, c.ScrollSpeedX, c.ScrollSpeedY)
	case c.EdgeOffset < 0 || c.EdgeOffset > 32:
		return fmt.Errorf("%w: edge_offset %d", ErrInvalid, c.EdgeOffset)
	case c.StartDungeon < 0 || c.StartDungeon > 255:
		return fmt.Errorf("%w: start_dungeon %d", ErrInvalid, c.StartDungeon)
	}
	return nil
}

// panFrames is how many frames a scroll of span pixels takes at speed.
func panFrames(span, speed int) int {
	return (span + speed - 1) / speed
}
