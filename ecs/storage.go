package ecs

// Store holds every entity attribute as its own array indexed by slot.
type Store struct {
	X, Y, Z    [Capacity]Fixed
	VX, VY, VZ [Capacity]int16

	Health [Capacity]uint8
	Attack [Capacity]uint8
	Vision [Capacity]uint8

	Type     [Capacity]TypeID
	behavior [Capacity]BehaviorID
	Death    [Capacity]DeathID
	Draw     [Capacity]DrawID

	Frameset  [Capacity]uint8
	Frame     [Capacity]uint8
	AnimTimer [Capacity]uint8

	Direction [Capacity]uint8
	State     [Capacity]uint8

	Scratch [ScratchWords][Capacity]uint16
}

// Behavior returns the behavior id of e.
func (s *Store) Behavior(e Entity) BehaviorID {
	if s == nil || !e.Valid() {
		return BehaviorNone
	}
	return s.behavior[e]
}

// SetBehavior reassigns e's behavior. The player's behavior is owned by the
// world and writes to it are ignored.
func (s *Store) SetBehavior(e Entity, b BehaviorID) {
	if s == nil || !e.Valid() || e == Player {
		return
	}
	s.behavior[e] = b
}

func (s *Store) setPlayerBehavior(b BehaviorID) {
	s.behavior[Player] = b
}

// Pos returns e's whole-pixel position.
func (s *Store) Pos(e Entity) (x, y uint8) {
	return s.X[e].Int(), s.Y[e].Int()
}

// SetPos places e at whole pixels, clearing the sub-pixel part.
func (s *Store) SetPos(e Entity, x, y uint8) {
	s.X[e] = FixedFromInt(x)
	s.Y[e] = FixedFromInt(y)
}

// clear zeroes every attribute of e except its function ids.
func (s *Store) clear(e Entity) {
	s.X[e], s.Y[e], s.Z[e] = 0, 0, 0
	s.VX[e], s.VY[e], s.VZ[e] = 0, 0, 0
	s.Health[e], s.Attack[e], s.Vision[e] = 0, 0, 0
	s.Type[e] = 0
	s.Frameset[e], s.Frame[e], s.AnimTimer[e] = 0, 0, 0
	s.Direction[e], s.State[e] = 0, 0
	for i := range s.Scratch {
		s.Scratch[i][e] = 0
	}
}
