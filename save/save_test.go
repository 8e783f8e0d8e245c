package save

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/room"
)

func testBackup() ecs.Backup {
	var b ecs.Backup
	for i := range b {
		b[i] = byte(i * 7)
	}
	b[room.StateSize] = 2
	b[room.StateSize+1] = 1
	b[room.StateSize+2] = 0
	return b
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "game.save.yaml")
	s := NewStore(path)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	in := testBackup()
	if err := s.BackupGameState(in); err != nil {
		t.Fatalf("backup: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil || *out != in {
		t.Fatalf("backup bytes changed")
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind")
	}
	data, _ := os.ReadFile(path)
	if want := "dungeon: 2"; !strings.Contains(string(data), want) {
		t.Fatalf("save file missing %q:\n%s", want, data)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "none.yaml"))
	b, err := s.Load()
	if err != nil || b != nil {
		t.Fatalf("load = %v, %v", b, err)
	}
	if err := s.Remove(); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestDecodeRejectsCorruptFiles(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not_yaml", "version: ["},
		{"wrong_version", "version: 9\nbackup: AA=="},
		{"bad_base64", "version: 1\nbackup: '***'"},
		{"short_backup", "version: 1\nbackup: AAAA"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Decode([]byte(c.data)); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("decode = %v, want ErrCorrupt", err)
			}
		})
	}
}

