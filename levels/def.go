package levels

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/dungeoncore/dungeon"
	"github.com/milk9111/dungeoncore/room"
	"gopkg.in/yaml.v3"
)

var ErrBadDefinition = errors.New("levels: bad dungeon definition")

// DungeonDef is the authored form of a dungeon resource.
type DungeonDef struct {
	ID          int       `yaml:"id" json:"id" jsonschema:"minimum=0,maximum=255"`
	Name        string    `yaml:"name" json:"name"`
	Width       int       `yaml:"width" json:"width" jsonschema:"minimum=1,maximum=255"`
	Height      int       `yaml:"height" json:"height" jsonschema:"minimum=1,maximum=255"`
	Default     [2]int    `yaml:"default" json:"default"`
	Infinite    bool      `yaml:"infinite" json:"infinite,omitempty"`
	Palette     int       `yaml:"palette" json:"palette,omitempty"`
	Tileset     int       `yaml:"tileset" json:"tileset,omitempty"`
	Layer2      int       `yaml:"layer2" json:"layer2,omitempty"`
	Spritesheet int       `yaml:"spritesheet" json:"spritesheet,omitempty"`
	Song        int       `yaml:"song" json:"song,omitempty"`
	Rooms       []RoomDef `yaml:"rooms" json:"rooms"`
}

// RoomDef is one authored room. Tiles is a Height-line block of Width
// legend characters.
type RoomDef struct {
	At      [2]int     `yaml:"at" json:"at"`
	Tileset int        `yaml:"tileset" json:"tileset,omitempty"`
	Event   string     `yaml:"event" json:"event,omitempty" jsonschema:"enum=,enum=none,enum=portal,enum=fade_portal,enum=set_tile,enum=spawn,enum=script,enum=song"`
	Params  []int      `yaml:"params" json:"params,omitempty" jsonschema:"maxItems=4"`
	Layer2  []int      `yaml:"layer2" json:"layer2,omitempty" jsonschema:"maxItems=2"`
	Tiles   string     `yaml:"tiles" json:"tiles"`
	Spawns  []SpawnDef `yaml:"spawns" json:"spawns,omitempty" jsonschema:"maxItems=8"`
}

type SpawnDef struct {
	Type  string `yaml:"type" json:"type"`
	X     int    `yaml:"x" json:"x"`
	Y     int    `yaml:"y" json:"y"`
	Param int    `yaml:"param" json:"param,omitempty"`
}

// TypeResolver maps entity type names to ids.
type TypeResolver interface {
	TypeID(name string) (uint8, bool)
}

// Legend maps tile characters to tile ids.
var Legend = map[rune]uint8{
	'.': room.TileFloor,
	',': room.TileGrass,
	'~': room.TileWater,
	'#': room.TileWall,
	'o': room.TileRock,
	'D': room.TileDoor,
}

func ParseDef(data []byte) (*DungeonDef, error) {
	var def DungeonDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("levels: unmarshal dungeon: %w", err)
	}
	return &def, nil
}

// Compile packs def into the binary dungeon resource format.
func Compile(def *DungeonDef, types TypeResolver) ([]byte, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrBadDefinition)
	}
	for name, v := range map[string]int{
		"id": def.ID, "width": def.Width, "height": def.Height,
		"palette": def.Palette, "tileset": def.Tileset, "layer2": def.Layer2,
		"spritesheet": def.Spritesheet, "song": def.Song,
		"default x": def.Default[0], "default y": def.Default[1],
	} {
		if v < 0 || v > 0xFF {
			return nil, fmt.Errorf("%w: %s %s = %d", ErrBadDefinition, def.Name, name, v)
		}
	}

	var flags uint8
	if def.Infinite {
		flags |= dungeon.FlagInfinite
	}
	desc := dungeon.Descriptor{
		Flags:       flags,
		Width:       uint8(def.Width),
		Height:      uint8(def.Height),
		DefaultX:    uint8(def.Default[0]),
		DefaultY:    uint8(def.Default[1]),
		Palette:     uint8(def.Palette),
		Tileset:     uint8(def.Tileset),
		Layer2:      uint8(def.Layer2),
		Spritesheet: uint8(def.Spritesheet),
		Song:        uint8(def.Song),
	}

	cells := make([]dungeon.Cell, 0, len(def.Rooms))
	for i := range def.Rooms {
		rd := &def.Rooms[i]
		blob, err := compileRoom(rd, types)
		if err != nil {
			return nil, fmt.Errorf("%w: %s room %v: %v", ErrBadDefinition, def.Name, rd.At, err)
		}
		if rd.At[0] < 0 || rd.At[1] < 0 || rd.At[0] > 0xFF || rd.At[1] > 0xFF {
			return nil, fmt.Errorf("%w: %s room %v outside grid", ErrBadDefinition, def.Name, rd.At)
		}
		cells = append(cells, dungeon.Cell{X: uint8(rd.At[0]), Y: uint8(rd.At[1]), Blob: blob})
	}
	data, err := dungeon.Encode(desc, cells)
	if err != nil {
		return nil, fmt.Errorf("levels: compile %s: %w", def.Name, err)
	}
	return data, nil
}

func compileRoom(rd *RoomDef, types TypeResolver) ([room.BlobSize]byte, error) {
	var blob [room.BlobSize]byte
	var st room.State
	st.ClearRoom()

	rows, err := parseTiles(rd.Tiles)
	if err != nil {
		return blob, err
	}
	for y, row := range rows {
		for x, t := range row {
			st.SetTile(x, y, t)
		}
	}
	st.SetTileset(uint8(rd.Tileset))

	ev, ok := room.EventByName(rd.Event)
	if !ok {
		return blob, fmt.Errorf("unknown event %q", rd.Event)
	}
	st.SetEvent(ev)
	if len(rd.Params) > room.EventParams {
		return blob, fmt.Errorf("%d event params, max %d", len(rd.Params), room.EventParams)
	}
	for i, p := range rd.Params {
		if p < 0 || p > 0xFF {
			return blob, fmt.Errorf("event param %d = %d", i, p)
		}
		st.SetEventParam(i, uint8(p))
	}
	if len(rd.Layer2) > room.Layer2Params {
		return blob, fmt.Errorf("%d layer2 params, max %d", len(rd.Layer2), room.Layer2Params)
	}
	for i, p := range rd.Layer2 {
		st.SetLayer2Param(i, uint8(p))
	}

	if len(rd.Spawns) > room.MaxSpawns {
		return blob, fmt.Errorf("%d spawns, max %d", len(rd.Spawns), room.MaxSpawns)
	}
	for i, sd := range rd.Spawns {
		id, ok := types.TypeID(sd.Type)
		if !ok {
			return blob, fmt.Errorf("unknown entity type %q", sd.Type)
		}
		if sd.X < 0 || sd.X > 0xFF || sd.Y < 0 || sd.Y > 0xFF || sd.Param < 0 || sd.Param > 0xFF {
			return blob, fmt.Errorf("spawn %d out of range", i)
		}
		st.SetSpawn(i, room.Spawn{X: uint8(sd.X), Y: uint8(sd.Y), Type: id, Param: uint8(sd.Param)})
	}

	copy(blob[:], st.Blob())
	return blob, nil
}

func parseTiles(src string) ([room.Height][room.Width]uint8, error) {
	var out [room.Height][room.Width]uint8
	var rows []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if len(rows) != room.Height {
		return out, fmt.Errorf("%d tile rows, want %d", len(rows), room.Height)
	}
	for y, line := range rows {
		runes := []rune(line)
		if len(runes) != room.Width {
			return out, fmt.Errorf("row %d has %d tiles, want %d", y, len(runes), room.Width)
		}
		for x, r := range runes {
			t, ok := Legend[r]
			if !ok {
				return out, fmt.Errorf("row %d: unknown tile %q", y, r)
			}
			out[y][x] = t
		}
	}
	return out, nil
}
