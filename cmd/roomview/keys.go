package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/dungeoncore/frame"
)

// holdFrames is how long a key press counts as held. Terminals report
// presses and repeats but never releases.
const holdFrames = 8

// Keys turns terminal key events into per-frame joypad state.
type Keys struct {
	left [8]int
	// pick is the dungeon chosen with a digit key, or -1.
	pick int
}

func NewKeys() *Keys {
	return &Keys{pick: -1}
}

func buttonIndex(b frame.Buttons) int {
	for i := range 8 {
		if b == 1<<i {
			return i
		}
	}
	return -1
}

func keyButton(ev *tcell.EventKey) frame.Buttons {
	switch ev.Key() {
	case tcell.KeyUp:
		return frame.ButtonUp
	case tcell.KeyDown:
		return frame.ButtonDown
	case tcell.KeyLeft:
		return frame.ButtonLeft
	case tcell.KeyRight:
		return frame.ButtonRight
	case tcell.KeyEnter:
		return frame.ButtonStart
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w':
			return frame.ButtonUp
		case 's':
			return frame.ButtonDown
		case 'a':
			return frame.ButtonLeft
		case 'd':
			return frame.ButtonRight
		case 'j', ' ':
			return frame.ButtonA
		case 'k':
			return frame.ButtonB
		}
	}
	return 0
}

// Press records ev. It reports false when ev asks to quit.
func (k *Keys) Press(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r == 'q' {
			return false
		}
		if r >= '0' && r <= '9' {
			k.pick = int(r - '0')
			return true
		}
	}
	if i := buttonIndex(keyButton(ev)); i >= 0 {
		k.left[i] = holdFrames
	}
	return true
}

// Next returns this frame's input and ages held keys by one frame.
func (k *Keys) Next() frame.Input {
	in := frame.Input{MenuDungeon: k.pick}
	k.pick = -1
	for i := range k.left {
		if k.left[i] > 0 {
			in.Buttons |= 1 << i
			k.left[i]--
		}
	}
	return in
}
