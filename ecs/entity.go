package ecs

import "strconv"

// Capacity is the number of entity slots, the player included.
const Capacity = 21

// Entity is a slot index into every per-attribute array of the Store.
// Slots are reused, so an Entity is only meaningful while it is active.
type Entity uint8

// Player is the permanently reserved player slot.
const Player Entity = 0

func (e Entity) String() string {
	return strconv.Itoa(int(e))
}

// Valid reports whether e names a slot.
func (e Entity) Valid() bool {
	return int(e) < Capacity
}

// Fixed is an unsigned 8.8 fixed-point coordinate.
type Fixed uint16

// FixedFromInt converts whole pixels.
func FixedFromInt(v uint8) Fixed {
	return Fixed(uint16(v) << 8)
}

// Int returns the whole-pixel part.
func (f Fixed) Int() uint8 {
	return uint8(f >> 8)
}

// Add applies a signed 8.8 velocity, wrapping like the hardware registers
// it stands in for.
func (f Fixed) Add(v int16) Fixed {
	return Fixed(int32(f) + int32(v))
}

type (
	TypeID     uint8
	BehaviorID uint8
	DeathID    uint8
	DrawID     uint8
)

// Id 0 of every function table is the no-op variant.
const (
	BehaviorNone BehaviorID = 0
	DeathNone    DeathID    = 0
	DrawNone     DrawID     = 0
)

// TypePlayer is reserved for slot 0 and cannot be spawned.
const TypePlayer TypeID = 0

// ScratchWords is the number of per-entity scratch words.
const ScratchWords = 8
