package ecs

import "github.com/milk9111/dungeoncore/frame"

// BehaviorFunc runs once per frame for an active entity.
type BehaviorFunc func(w *World, e Entity)

// DeathFunc runs when a processed entity's health is 0. Returning true keeps
// the entity active (it transformed into something else).
type DeathFunc func(w *World, e Entity) bool

// DrawFunc emits the entity into the frame's draw buffer.
type DrawFunc func(w *World, e Entity, buf *frame.DrawBuffer)

// InitFunc runs right after a spawn with the spawn parameter.
type InitFunc func(w *World, e Entity, param uint8)

// TypeDef holds the defaults copied into a slot on spawn.
type TypeDef struct {
	Name     string
	Init     InitFunc
	Behavior BehaviorID
	Death    DeathID
	Draw     DrawID
	Health   uint8
	Attack   uint8
	Vision   uint8
	Frameset uint8
}

// Table is the set of indirect function tables keyed by id. Id 0 and any
// id without an entry resolve to the no-op variant.
type Table struct {
	behaviors []BehaviorFunc
	deaths    []DeathFunc
	draws     []DrawFunc
	types     []TypeDef
}

func NewTable() *Table {
	return &Table{}
}

func (t *Table) SetBehavior(id BehaviorID, fn BehaviorFunc) {
	if t == nil || id == BehaviorNone {
		return
	}
	for len(t.behaviors) <= int(id) {
		t.behaviors = append(t.behaviors, nil)
	}
	t.behaviors[id] = fn
}

func (t *Table) SetDeath(id DeathID, fn DeathFunc) {
	if t == nil || id == DeathNone {
		return
	}
	for len(t.deaths) <= int(id) {
		t.deaths = append(t.deaths, nil)
	}
	t.deaths[id] = fn
}

func (t *Table) SetDraw(id DrawID, fn DrawFunc) {
	if t == nil || id == DrawNone {
		return
	}
	for len(t.draws) <= int(id) {
		t.draws = append(t.draws, nil)
	}
	t.draws[id] = fn
}

// SetType installs the defaults for type id.
func (t *Table) SetType(id TypeID, def TypeDef) {
	if t == nil {
		return
	}
	for len(t.types) <= int(id) {
		t.types = append(t.types, TypeDef{})
	}
	t.types[id] = def
}

// NumTypes returns the number of type ids in the table.
func (t *Table) NumTypes() int {
	if t == nil {
		return 0
	}
	return len(t.types)
}

// Type returns the defaults for id.
func (t *Table) Type(id TypeID) (TypeDef, bool) {
	if t == nil || int(id) >= len(t.types) {
		return TypeDef{}, false
	}
	return t.types[id], true
}

// TypeByName looks a type up by its prefab name.
func (t *Table) TypeByName(name string) (TypeID, bool) {
	if t == nil {
		return 0, false
	}
	for i, def := range t.types {
		if def.Name == name {
			return TypeID(i), true
		}
	}
	return 0, false
}

func noBehavior(*World, Entity)                {}
func noDeath(*World, Entity) bool              { return false }
func noDraw(*World, Entity, *frame.DrawBuffer) {}

func (t *Table) behavior(id BehaviorID) BehaviorFunc {
	if t == nil || int(id) >= len(t.behaviors) || t.behaviors[id] == nil {
		return noBehavior
	}
	return t.behaviors[id]
}

func (t *Table) death(id DeathID) DeathFunc {
	if t == nil || int(id) >= len(t.deaths) || t.deaths[id] == nil {
		return noDeath
	}
	return t.deaths[id]
}

func (t *Table) draw(id DrawID) DrawFunc {
	if t == nil || int(id) >= len(t.draws) || t.draws[id] == nil {
		return noDraw
	}
	return t.draws[id]
}
