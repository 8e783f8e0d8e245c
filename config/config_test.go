package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxRetries != 8 {
		t.Fatalf("max_retries = %d, want 8", cfg.MaxRetries)
	}
	if cfg.ScrollSpeedX != 4 || cfg.ScrollSpeedY != 4 {
		t.Fatalf("scroll speed = %dx%d", cfg.ScrollSpeedX, cfg.ScrollSpeedY)
	}
	if cfg.EdgeOffset != 8 || cfg.ScrollDelay != 8 {
		t.Fatalf("edge_offset=%d scroll_delay=%d", cfg.EdgeOffset, cfg.ScrollDelay)
	}
}

func TestParsePartialOverride(t *testing.T) {
	cfg, err := Parse([]byte("max_retries: 3\nsave_path: other.yaml\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.MaxRetries != 3 || cfg.SavePath != "other.yaml" {
		t.Fatalf("override not applied: %+v", cfg)
	}
	if cfg.FadeFrames != Default().FadeFrames {
		t.Fatalf("fade_frames lost its default: %d", cfg.FadeFrames)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"retries":  "max_retries: 1\n",
		"speed":    "scroll_speed_x: 0\n",
		"edge":     "edge_offset: 99\n",
		"dungeon":  "start_dungeon: 300\n",
		"negative": "pause_frames: -1\n",
		// A pan must outlast the delay so the landing tile gets tested.
		"fast_pan_x": "scroll_speed_x: 32\n",
		"fast_pan_y": "scroll_speed_y: 16\n",
		"long_delay": "scroll_delay: 40\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
	if _, err := Parse([]byte("max_retries: [")); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestScrollTimingBoundary(t *testing.T) {
	cases := []struct {
		doc string
		ok  bool
	}{
		{"scroll_speed_x: 16\n", true},
		{"scroll_speed_y: 15\n", true},
		{"scroll_delay: 31\n", true},
		{"scroll_delay: 32\n", false},
		{"scroll_speed_x: 20\nscroll_speed_y: 20\nscroll_delay: 6\n", true},
		{"scroll_speed_x: 20\nscroll_speed_y: 20\nscroll_delay: 7\n", false},
	}
	for _, c := range cases {
		_, err := Parse([]byte(c.doc))
		if (err == nil) != c.ok {
			t.Fatalf("Parse(%q) err = %v, want ok=%v", c.doc, err, c.ok)
		}
	}
}

func TestLoadDiskOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("pause_frames: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PauseFrames != 12 {
		t.Fatalf("pause_frames = %d", cfg.PauseFrames)
	}

	cfg, err = Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("fallback differs from defaults")
	}
}
