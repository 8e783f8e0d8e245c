package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/dungeoncore/frame"
)

const stickDeadzone = 0.3

// pollButtons samples keyboard and the first gamepad into joypad bits.
func pollButtons() frame.Buttons {
	var b frame.Buttons
	key := func(bit frame.Buttons, keys ...ebiten.Key) {
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				b |= bit
				return
			}
		}
	}
	key(frame.ButtonUp, ebiten.KeyW, ebiten.KeyArrowUp)
	key(frame.ButtonDown, ebiten.KeyS, ebiten.KeyArrowDown)
	key(frame.ButtonLeft, ebiten.KeyA, ebiten.KeyArrowLeft)
	key(frame.ButtonRight, ebiten.KeyD, ebiten.KeyArrowRight)
	key(frame.ButtonA, ebiten.KeySpace, ebiten.KeyJ)
	key(frame.ButtonB, ebiten.KeyK)

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Abs(x) > stickDeadzone {
			if x < 0 {
				b |= frame.ButtonLeft
			} else {
				b |= frame.ButtonRight
			}
		}
		if math.Abs(y) > stickDeadzone {
			if y < 0 {
				b |= frame.ButtonUp
			} else {
				b |= frame.ButtonDown
			}
		}
		pad := func(bit frame.Buttons, btn ebiten.StandardGamepadButton) {
			if ebiten.IsStandardGamepadButtonPressed(id, btn) {
				b |= bit
			}
		}
		pad(frame.ButtonUp, ebiten.StandardGamepadButtonLeftTop)
		pad(frame.ButtonDown, ebiten.StandardGamepadButtonLeftBottom)
		pad(frame.ButtonLeft, ebiten.StandardGamepadButtonLeftLeft)
		pad(frame.ButtonRight, ebiten.StandardGamepadButtonLeftRight)
		pad(frame.ButtonA, ebiten.StandardGamepadButtonRightBottom)
		pad(frame.ButtonB, ebiten.StandardGamepadButtonRightRight)
	}
	return b
}

// menuToggled reports the frame the menu key was pressed.
func menuToggled() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		return true
	}
	for _, id := range ebiten.GamepadIDs() {
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight) {
			return true
		}
	}
	return false
}
