package ecs

// Spawn creates an entity of type t at whole pixels (x, y). It fails without
// side effects when t is unknown, is the player type, or no slot is free.
//
// The type's init runs last and may spawn further entities. If init leaves
// health at 0 the slot is made inert instead of being released, so indices
// stay stable for the caller; the next dispatch pass removes it.
func (w *World) Spawn(x, y uint8, t TypeID, param uint8) (Entity, bool) {
	if w == nil || t == TypePlayer {
		return 0, false
	}
	def, ok := w.types.Type(t)
	if !ok {
		return 0, false
	}
	e, ok := w.Active.claim()
	if !ok {
		return 0, false
	}

	s := &w.Store
	s.clear(e)
	s.Type[e] = t
	s.SetBehavior(e, def.Behavior)
	s.Death[e] = def.Death
	s.Draw[e] = def.Draw
	s.Health[e] = def.Health
	s.Attack[e] = def.Attack
	s.Vision[e] = def.Vision
	s.Frameset[e] = def.Frameset
	s.SetPos(e, x, y)

	w.fresh[e] = w.dispatching
	w.events.Push(Event{Kind: EventSpawned, Entity: e, Type: t})

	if def.Init != nil {
		def.Init(w, e, param)
	}
	if s.Health[e] == 0 {
		s.SetBehavior(e, BehaviorNone)
		s.Death[e] = DeathNone
		s.Draw[e] = DrawNone
	}
	return e, true
}

// Kill zeroes e's health. Removal happens when dispatch reaches it.
func (w *World) Kill(e Entity) {
	if w == nil || !e.Valid() || e == Player {
		return
	}
	w.Store.Health[e] = 0
}

// despawnAt removes the live entry at active index k.
func (w *World) despawnAt(k int) {
	if k <= 0 || k >= w.Active.Len() {
		return
	}
	e := w.Active.At(k)
	w.Active.release(k)
	s := &w.Store
	s.SetBehavior(e, BehaviorNone)
	s.Death[e] = DeathNone
	s.Draw[e] = DrawNone
	s.Health[e] = 0
	w.fresh[e] = false
	w.events.Push(Event{Kind: EventDespawned, Entity: e, Type: s.Type[e]})
}

// ClearEntities removes every entity but the player.
func (w *World) ClearEntities() {
	if w == nil {
		return
	}
	for k := w.Active.Len() - 1; k >= 1; k-- {
		w.despawnAt(k)
	}
}

// SpawnRoom spawns the current room's spawn table and returns how many
// entities were created.
func (w *World) SpawnRoom() int {
	if w == nil {
		return 0
	}
	n := 0
	for _, sp := range w.Room.Spawns() {
		if _, ok := w.Spawn(sp.X, sp.Y, TypeID(sp.Type), sp.Param); ok {
			n++
		}
	}
	return n
}
