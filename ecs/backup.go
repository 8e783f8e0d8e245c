package ecs

import (
	"encoding/binary"

	"github.com/milk9111/dungeoncore/room"
)

// LowramSize is the size of the lowram block in a backup.
const LowramSize = 13

// BackupSize is the size of a roomstate backup.
const BackupSize = room.StateSize + LowramSize

// Lowram flags.
const (
	FlagRoomLoaded uint8 = 1 << iota
	FlagHasKey
)

// Lowram is the session state that lives outside the room container.
type Lowram struct {
	Dungeon uint8
	RoomX   uint8
	RoomY   uint8
	Flags   uint8
}

// RoomLoaded reports whether a usable room is in the container.
func (l Lowram) RoomLoaded() bool {
	return l.Flags&FlagRoomLoaded != 0
}

// Backup is an opaque byte-for-byte copy of the room state container
// followed by lowram and the player's roomstate-scoped fields.
type Backup [BackupSize]byte

// Room returns the container bytes held in the backup.
func (b *Backup) Room() room.State {
	var s room.State
	copy(s[:], b[:room.StateSize])
	return s
}

// Location returns the dungeon and room cell recorded in the backup.
func (b *Backup) Location() (dungeon, x, y uint8) {
	low := b[room.StateSize:]
	return low[0], low[1], low[2]
}

// SnapshotRoomstate copies the live room and lowram state into the backup.
func (w *World) SnapshotRoomstate() {
	if w == nil {
		return
	}
	w.backup = w.encodeRoomstate()
	w.hasBackup = true
}

// RestoreRoomstate copies the backup back verbatim. It reports false when
// no backup has been taken.
func (w *World) RestoreRoomstate() bool {
	if w == nil || !w.hasBackup {
		return false
	}
	w.decodeRoomstate(w.backup)
	return true
}

// HasBackup reports whether a backup exists.
func (w *World) HasBackup() bool {
	return w != nil && w.hasBackup
}

// Backup returns the current backup.
func (w *World) Backup() (Backup, bool) {
	if w == nil {
		return Backup{}, false
	}
	return w.backup, w.hasBackup
}

// SetBackup installs an externally stored backup, e.g. from a save file.
func (w *World) SetBackup(b Backup) {
	if w == nil {
		return
	}
	w.backup = b
	w.hasBackup = true
}

func (w *World) encodeRoomstate() Backup {
	var b Backup
	copy(b[:room.StateSize], w.Room[:])
	low := b[room.StateSize:]
	s := &w.Store
	low[0], low[1], low[2], low[3] = w.Low.Dungeon, w.Low.RoomX, w.Low.RoomY, w.Low.Flags
	binary.LittleEndian.PutUint16(low[4:], uint16(s.X[Player]))
	binary.LittleEndian.PutUint16(low[6:], uint16(s.Y[Player]))
	binary.LittleEndian.PutUint16(low[8:], uint16(s.Z[Player]))
	low[10] = s.State[Player]
	low[11] = s.Direction[Player]
	low[12] = s.Health[Player]
	return b
}

func (w *World) decodeRoomstate(b Backup) {
	copy(w.Room[:], b[:room.StateSize])
	low := b[room.StateSize:]
	s := &w.Store
	w.Low = Lowram{Dungeon: low[0], RoomX: low[1], RoomY: low[2], Flags: low[3]}
	s.X[Player] = Fixed(binary.LittleEndian.Uint16(low[4:]))
	s.Y[Player] = Fixed(binary.LittleEndian.Uint16(low[6:]))
	s.Z[Player] = Fixed(binary.LittleEndian.Uint16(low[8:]))
	s.State[Player] = low[10]
	s.Direction[Player] = low[11]
	s.Health[Player] = low[12]
}
