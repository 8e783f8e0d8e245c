package ecs

import "github.com/milk9111/dungeoncore/frame"

// Dispatch runs one process pass over the active list in active order.
// Entities spawned during the pass are not processed until the next one.
func (w *World) Dispatch() {
	if w == nil || w.frozen {
		return
	}
	w.dispatching = true
	w.fresh = [Capacity]bool{}

	s := &w.Store
	for i := 0; i < w.Active.Len(); {
		e := w.Active.At(i)
		if w.fresh[e] {
			i++
			continue
		}
		w.types.behavior(s.Behavior(e))(w, e)

		if e == Player || s.Health[e] != 0 {
			i++
			continue
		}
		if w.types.death(s.Death[e])(w, e) {
			i++
			continue
		}
		// The boundary entry now sits at i and is examined next.
		w.despawnAt(i)
	}

	w.dispatching = false
	w.Frame++
}

// SortByDepth orders the live range behind the player by Y, ascending. It
// is a stable insertion sort; the list is nearly sorted between frames.
func (w *World) SortByDepth() {
	if w == nil {
		return
	}
	a := &w.Active
	for i := 2; i < a.n; i++ {
		e := a.slots[i]
		y := w.Store.Y[e]
		j := i
		for j > 1 && w.Store.Y[a.slots[j-1]] > y {
			a.slots[j] = a.slots[j-1]
			j--
		}
		a.slots[j] = e
	}
}

// DrawPass emits every active entity into buf in depth order, merging the
// player in by its Y.
func (w *World) DrawPass(buf *frame.DrawBuffer) {
	if w == nil || buf == nil {
		return
	}
	py := w.Store.Y[Player]
	playerDone := false
	for i := 1; i < w.Active.Len(); i++ {
		e := w.Active.At(i)
		if !playerDone && w.Store.Y[e] > py {
			w.types.draw(w.Store.Draw[Player])(w, Player, buf)
			playerDone = true
		}
		w.types.draw(w.Store.Draw[e])(w, e, buf)
	}
	if !playerDone {
		w.types.draw(w.Store.Draw[Player])(w, Player, buf)
	}
}

// DispatchSystem runs the entity process pass followed by the depth sort.
type DispatchSystem struct{}

func NewDispatchSystem() *DispatchSystem { return &DispatchSystem{} }

func (d *DispatchSystem) Update(w *World) {
	if w == nil || w.Frozen() {
		return
	}
	w.Dispatch()
	w.SortByDepth()
}
