package system

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/dungeoncore/ecs"
	"github.com/milk9111/dungeoncore/levels"
	"github.com/milk9111/dungeoncore/room"
)

// EventScripts compiles and runs room scripts. Each script gets an
// `engine` map of host functions.
type EventScripts struct {
	res   Resources
	cache map[int]*eventScriptRuntime
}

type eventScriptRuntime struct {
	src      []byte
	compiled *tengo.Compiled
	visits   int
}

// ScriptOutcome is what a script asked for beyond direct room edits.
type ScriptOutcome struct {
	Redirect *Redirect
}

func NewEventScripts(res Resources) *EventScripts {
	return &EventScripts{res: res, cache: map[int]*eventScriptRuntime{}}
}

// Run executes script id against w. Edited scripts are recompiled.
func (e *EventScripts) Run(w *ecs.World, id int, audio Audio) (ScriptOutcome, error) {
	var out ScriptOutcome
	if e == nil || e.res == nil {
		return out, fmt.Errorf("no script resources")
	}
	rt, err := e.runtime(id)
	if err != nil {
		return out, err
	}
	engine := buildEventScriptEngine(w, rt, audio, &out)
	if err := rt.compiled.Set("engine", engine); err != nil {
		return out, err
	}
	if err := rt.compiled.Run(); err != nil {
		return out, err
	}
	rt.visits++
	return out, nil
}

func (e *EventScripts) runtime(id int) (*eventScriptRuntime, error) {
	src, err := e.res.LoadResource(levels.KindScript, id)
	if err != nil {
		return nil, err
	}
	if rt, ok := e.cache[id]; ok && bytes.Equal(rt.src, src) {
		return rt, nil
	}

	script := tengo.NewScript(src)
	_ = script.Add("engine", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &eventScriptRuntime{src: append([]byte(nil), src...), compiled: compiled}
	if prev, ok := e.cache[id]; ok {
		rt.visits = prev.visits
	}
	e.cache[id] = rt
	return rt, nil
}

func buildEventScriptEngine(w *ecs.World, rt *eventScriptRuntime, audio Audio, out *ScriptOutcome) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["visits"] = &tengo.UserFunction{Name: "visits", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(rt.visits)}, nil
	}}

	values["set_tile"] = &tengo.UserFunction{Name: "set_tile", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		x, okx := objectAsInt(args[0])
		y, oky := objectAsInt(args[1])
		t, okt := objectAsInt(args[2])
		if !okx || !oky || !okt || x < 0 || y < 0 || x >= room.Width || y >= room.Height || t < 0 || t > 0xFF {
			return tengo.FalseValue, nil
		}
		w.Room.SetTile(x, y, uint8(t))
		return tengo.TrueValue, nil
	}}

	values["tile"] = &tengo.UserFunction{Name: "tile", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return &tengo.Int{Value: int64(room.TileWall)}, nil
		}
		x, _ := objectAsInt(args[0])
		y, _ := objectAsInt(args[1])
		return &tengo.Int{Value: int64(w.Room.Tile(x, y))}, nil
	}}

	values["spawn"] = &tengo.UserFunction{Name: "spawn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		t, ok := w.Types().TypeByName(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		x, _ := objectAsInt(args[1])
		y, _ := objectAsInt(args[2])
		param := 0
		if len(args) > 3 {
			param, _ = objectAsInt(args[3])
		}
		if _, ok := w.Spawn(clampByte(x), clampByte(y), t, clampByte(param)); !ok {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["count"] = &tengo.UserFunction{Name: "count", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.Int{Value: int64(w.Active.Len() - 1)}, nil
		}
		t, ok := w.Types().TypeByName(objectAsString(args[0]))
		if !ok {
			return &tengo.Int{Value: 0}, nil
		}
		n := 0
		for i := 1; i < w.Active.Len(); i++ {
			if w.Store.Type[w.Active.At(i)] == t {
				n++
			}
		}
		return &tengo.Int{Value: int64(n)}, nil
	}}

	values["has_key"] = &tengo.UserFunction{Name: "has_key", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if w.Low.Flags&ecs.FlagHasKey != 0 {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["player_position"] = &tengo.UserFunction{Name: "player_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		x, y := w.Store.Pos(ecs.Player)
		return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(x)}, &tengo.Int{Value: int64(y)}}}, nil
	}}

	values["song"] = &tengo.UserFunction{Name: "song", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || audio == nil {
			return tengo.FalseValue, nil
		}
		id, _ := objectAsInt(args[0])
		audio.ChangeSong(clampByte(id))
		return tengo.TrueValue, nil
	}}

	values["portal"] = &tengo.UserFunction{Name: "portal", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		d, _ := objectAsInt(args[0])
		x, _ := objectAsInt(args[1])
		y, _ := objectAsInt(args[2])
		tile := room.KeepPosition
		if len(args) > 3 {
			tile, _ = objectAsInt(args[3])
		}
		fade := len(args) > 4 && !args[4].IsFalsy()
		out.Redirect = &Redirect{
			Request: portalRequest(w, clampByte(d), clampByte(x), clampByte(y), clampByte(tile)),
			Fade:    fade,
		}
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsInt(obj tengo.Object) (int, bool) {
	switch v := obj.(type) {
	case *tengo.Int:
		return int(v.Value), true
	case *tengo.Float:
		return int(v.Value), true
	case *tengo.Char:
		return int(v.Value), true
	}
	return 0, false
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}
