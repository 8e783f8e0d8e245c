package levels

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strconv"
	"strings"
	"sync"
)

// Kind selects a resource bank.
type Kind uint8

const (
	KindDungeon Kind = iota
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindDungeon:
		return "dungeon"
	case KindScript:
		return "script"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

var ErrUnknownResource = errors.New("levels: unknown resource")

// Pack holds compiled dungeon resources and room scripts. It is safe for
// concurrent use so a watcher can reload files while the game reads.
type Pack struct {
	mu       sync.RWMutex
	types    TypeResolver
	dungeons map[int][]byte
	names    map[int]string
	scripts  map[int][]byte
}

// NewPack compiles every dungeon and script under levels/.
func NewPack(types TypeResolver) (*Pack, error) {
	p := &Pack{
		types:    types,
		dungeons: make(map[int][]byte),
		names:    make(map[int]string),
		scripts:  make(map[int][]byte),
	}
	dungeonFiles, err := fs.Glob(LevelsFS, "dungeons/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, name := range dungeonFiles {
		if err := p.loadDungeon(name); err != nil {
			return nil, err
		}
	}
	scriptFiles, err := fs.Glob(LevelsFS, "scripts/*.tengo")
	if err != nil {
		return nil, err
	}
	for _, name := range scriptFiles {
		if err := p.loadScript(name); err != nil {
			return nil, err
		}
	}
	for id := 0; id < len(p.dungeons); id++ {
		if _, ok := p.dungeons[id]; !ok {
			return nil, fmt.Errorf("%w: dungeon ids are not contiguous, %d missing", ErrBadDefinition, id)
		}
	}
	return p, nil
}

// LoadResource returns the raw bytes of resource id in bank kind.
func (p *Pack) LoadResource(kind Kind, id int) ([]byte, error) {
	if p == nil {
		return nil, ErrUnknownResource
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var data []byte
	var ok bool
	switch kind {
	case KindDungeon:
		data, ok = p.dungeons[id]
	case KindScript:
		data, ok = p.scripts[id]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s %d", ErrUnknownResource, kind, id)
	}
	return data, nil
}

// NumDungeons returns the number of dungeon ids.
func (p *Pack) NumDungeons() int {
	if p == nil {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.dungeons)
}

// DungeonName returns the authored name of dungeon id.
func (p *Pack) DungeonName(id int) string {
	if p == nil {
		return ""
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.names[id]
}

// Put installs raw resource bytes, replacing any previous entry.
func (p *Pack) Put(kind Kind, id int, data []byte) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch kind {
	case KindDungeon:
		p.dungeons[id] = data
	case KindScript:
		p.scripts[id] = data
	}
}

// Reload recompiles the file at path after an edit. Files that fail to
// compile keep their previous contents.
func (p *Pack) Reload(file string) error {
	clean := files.Clean(file)
	switch {
	case strings.HasPrefix(clean, "dungeons/") && isDefFile(clean):
		return p.reloadDungeon(clean)
	case strings.HasPrefix(clean, "scripts/") && isScriptFile(clean):
		return p.loadScript(clean)
	}
	return nil
}

func (p *Pack) loadDungeon(name string) error {
	def, res, err := p.compileDungeon(name)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.installDungeon(def, res)
	return nil
}

// reloadDungeon replaces or appends a dungeon after the pack is built. Ids
// stay contiguous so NumDungeons keeps naming every valid id.
func (p *Pack) reloadDungeon(name string) error {
	def, res, err := p.compileDungeon(name)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.dungeons[def.ID]; !ok && def.ID != len(p.dungeons) {
		return fmt.Errorf("%w: %s: dungeon id %d leaves a gap after %d", ErrBadDefinition, name, def.ID, len(p.dungeons)-1)
	}
	p.installDungeon(def, res)
	return nil
}

func (p *Pack) compileDungeon(name string) (*DungeonDef, []byte, error) {
	data, err := Load(name)
	if err != nil {
		return nil, nil, fmt.Errorf("levels: load %s: %w", name, err)
	}
	def, err := ParseDef(data)
	if err != nil {
		return nil, nil, fmt.Errorf("levels: %s: %w", name, err)
	}
	res, err := Compile(def, p.types)
	if err != nil {
		return nil, nil, fmt.Errorf("levels: %s: %w", name, err)
	}
	return def, res, nil
}

// installDungeon stores a compiled dungeon. Callers hold p.mu.
func (p *Pack) installDungeon(def *DungeonDef, res []byte) {
	if prev, ok := p.names[def.ID]; ok && prev != def.Name {
		log.Printf("levels: dungeon %d renamed %q -> %q", def.ID, prev, def.Name)
	}
	p.dungeons[def.ID] = res
	p.names[def.ID] = def.Name
}

// Scripts are named by id, e.g. scripts/1.tengo.
func (p *Pack) loadScript(name string) error {
	id, err := strconv.Atoi(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	if err != nil {
		return fmt.Errorf("%w: script %s is not named by id", ErrBadDefinition, name)
	}
	data, err := Load(name)
	if err != nil {
		return fmt.Errorf("levels: load %s: %w", name, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[id] = data
	return nil
}
