package prefabs

import (
	"errors"
	"image/color"
	"testing"
)

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, name := range []string{"player", "slime", "bat", "spawner", "poof", "key"} {
		if _, ok := cat.TypeID(name); !ok {
			t.Fatalf("missing type %q", name)
		}
	}
	if id, _ := cat.TypeID("player"); id != 0 {
		t.Fatalf("player id = %d", id)
	}
	slime := cat.Types[1]
	if slime.Death != "poof" || slime.Color == nil {
		t.Fatalf("slime = %+v", slime)
	}
	if got := slime.Color.Color.(color.NRGBA); got.G != 0xcf {
		t.Fatalf("slime color = %+v", got)
	}
}

func TestParseCatalogRejects(t *testing.T) {
	cases := map[string]string{
		"empty":      "types: []\n",
		"not_player": "types:\n  - name: slime\n",
		"duplicate":  "types:\n  - name: player\n  - name: a\n  - name: a\n",
		"unnamed":    "types:\n  - name: player\n  - health: 1\n",
		"big_health": "types:\n  - name: player\n    health: 300\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(doc)); !errors.Is(err, ErrBadCatalog) {
				t.Fatalf("err = %v, want ErrBadCatalog", err)
			}
		})
	}
}

func TestDecodeParams(t *testing.T) {
	type walk struct {
		Speed int    `yaml:"speed"`
		Child string `yaml:"child"`
	}
	got, err := DecodeParams[walk](map[string]any{"speed": 128, "child": "slime"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Speed != 128 || got.Child != "slime" {
		t.Fatalf("got %+v", got)
	}
	zero, err := DecodeParams[walk](nil)
	if err != nil || zero != (walk{}) {
		t.Fatalf("nil params = %+v, %v", zero, err)
	}
}

func TestYAMLColorRejectsBadInput(t *testing.T) {
	if _, err := ParseCatalog([]byte("types:\n  - name: player\n    color: \"#12\"\n")); err == nil {
		t.Fatalf("expected color error")
	}
}
