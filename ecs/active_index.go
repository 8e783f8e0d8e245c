package ecs

// ActiveIndex is a dense array of slot ids partitioned at n: [0,n) are live
// in process order, [n,Capacity) are free. The player sits at index 0.
type ActiveIndex struct {
	slots [Capacity]Entity
	n     int
}

// Reset marks every slot free except the player.
func (a *ActiveIndex) Reset() {
	for i := range a.slots {
		a.slots[i] = Entity(i)
	}
	a.n = 1
}

// Len returns numberOfActive.
func (a *ActiveIndex) Len() int {
	return a.n
}

// At returns the slot at active index i.
func (a *ActiveIndex) At(i int) Entity {
	return a.slots[i]
}

// Active returns the live range. It aliases the index.
func (a *ActiveIndex) Active() []Entity {
	return a.slots[:a.n]
}

// Free returns the free range. It aliases the index.
func (a *ActiveIndex) Free() []Entity {
	return a.slots[a.n:]
}

// IndexOf returns e's position in the live range, or -1.
func (a *ActiveIndex) IndexOf(e Entity) int {
	for i := 0; i < a.n; i++ {
		if a.slots[i] == e {
			return i
		}
	}
	return -1
}

// claim moves the lowest-numbered free slot across the boundary.
func (a *ActiveIndex) claim() (Entity, bool) {
	if a.n >= Capacity {
		return 0, false
	}
	best := a.n
	for i := a.n + 1; i < Capacity; i++ {
		if a.slots[i] < a.slots[best] {
			best = i
		}
	}
	a.slots[a.n], a.slots[best] = a.slots[best], a.slots[a.n]
	e := a.slots[a.n]
	a.n++
	return e, true
}

// release removes the live entry at k by swapping it with the last live
// entry and shrinking the boundary. Index 0 is never released.
func (a *ActiveIndex) release(k int) Entity {
	if k <= 0 || k >= a.n {
		return 0
	}
	last := a.n - 1
	a.slots[k], a.slots[last] = a.slots[last], a.slots[k]
	a.n--
	return a.slots[a.n]
}

// swap exchanges two live entries; used by the depth sort.
func (a *ActiveIndex) swap(i, j int) {
	a.slots[i], a.slots[j] = a.slots[j], a.slots[i]
}
