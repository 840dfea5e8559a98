//go:build rp2040 || rp2350

package main

import (
	"machine/usb/hid/keyboard"

	"macrokey/core"
)

// hidKeyboard implements core.Injector on the USB HID keyboard interface
type hidKeyboard struct {
	kb *keyboard.Keyboard
}

func newHIDKeyboard() *hidKeyboard {
	return &hidKeyboard{kb: keyboard.Port()}
}

// hidCode maps a HID usage to the encoding the keyboard package expects:
// 0xE000|bit for modifiers, 0xF000|usage for everything else.
func hidCode(k core.Keycode) keyboard.Keycode {
	if k.IsModifier() {
		return keyboard.Keycode(0xE000 | uint16(k.ModifierBit()))
	}
	return keyboard.Keycode(0xF000 | uint16(k))
}

func (h *hidKeyboard) Press(keys ...core.Keycode) error {
	for _, k := range keys {
		if err := h.kb.Down(hidCode(k)); err != nil {
			return err
		}
	}
	return nil
}

func (h *hidKeyboard) Release(keys ...core.Keycode) error {
	for _, k := range keys {
		if err := h.kb.Up(hidCode(k)); err != nil {
			return err
		}
	}
	return nil
}

func (h *hidKeyboard) ReleaseAll() error {
	return h.kb.Release()
}

func (h *hidKeyboard) WriteText(s string) error {
	_, err := h.kb.Write([]byte(s))
	return err
}
