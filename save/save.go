// Package save keeps the roomstate backup in a YAML file between sessions.
package save

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/milk9111/dungeoncore/ecs"
	"gopkg.in/yaml.v3"
)

// Version is the save file format version.
const Version = 1

var ErrCorrupt = errors.New("save: corrupt save file")

// File is the on-disk layout. The location fields are informational; the
// backup bytes are authoritative.
type File struct {
	Version int       `yaml:"version"`
	SavedAt time.Time `yaml:"saved_at"`
	Dungeon uint8     `yaml:"dungeon"`
	RoomX   uint8     `yaml:"room_x"`
	RoomY   uint8     `yaml:"room_y"`
	Backup  string    `yaml:"backup"`
}

// Store writes backups to a single file.
type Store struct {
	Path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{Path: path, now: time.Now}
}

// BackupGameState replaces the save file with b. The file is written next
// to the target and renamed over it.
func (s *Store) BackupGameState(b ecs.Backup) error {
	if s == nil || s.Path == "" {
		return nil
	}
	d, x, y := b.Location()
	f := File{
		Version: Version,
		SavedAt: s.now().UTC().Truncate(time.Second),
		Dungeon: d,
		RoomX:   x,
		RoomY:   y,
		Backup:  base64.StdEncoding.EncodeToString(b[:]),
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("save: encode: %w", err)
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save: write: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("save: write: %w", err)
	}
	return nil
}

// Load reads the backup at path. A missing file is not an error and
// returns nil.
func (s *Store) Load() (*ecs.Backup, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save: read: %w", err)
	}
	return Decode(data)
}

// Decode parses save file contents.
func Decode(data []byte) (*ecs.Backup, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrCorrupt, f.Version)
	}
	raw, err := base64.StdEncoding.DecodeString(f.Backup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var b ecs.Backup
	if len(raw) != len(b) {
		return nil, fmt.Errorf("%w: backup is %d bytes, want %d", ErrCorrupt, len(raw), len(b))
	}
	copy(b[:], raw)
	return &b, nil
}

// Remove deletes the save file, e.g. for a new game.
func (s *Store) Remove() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
