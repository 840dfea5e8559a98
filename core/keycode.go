package core

// Keycode is a USB HID keyboard usage ID (usage page 0x07).
// Modifier keys use their usage IDs 0xE0-0xE7; reports fold them into the
// modifier byte.
type Keycode uint8

// Named keys used by the workflows
const (
	KeyA     Keycode = 0x04
	KeyR     Keycode = 0x15
	KeyT     Keycode = 0x17
	Key1     Keycode = 0x1E
	Key0     Keycode = 0x27
	KeyEnter Keycode = 0x28
	KeyEsc   Keycode = 0x29
	KeyTab   Keycode = 0x2B
	KeySpace Keycode = 0x2C

	KeyLeftCtrl  Keycode = 0xE0
	KeyLeftShift Keycode = 0xE1
	KeyLeftAlt   Keycode = 0xE2
	KeyLeftGUI   Keycode = 0xE3
)

// Aliases matching the names used on key caps
const (
	KeyControl = KeyLeftCtrl
	KeyShift   = KeyLeftShift
	KeyAlt     = KeyLeftAlt
	KeyGUI     = KeyLeftGUI
)

// IsModifier reports whether k is one of the eight modifier usages
func (k Keycode) IsModifier() bool {
	return k >= 0xE0 && k <= 0xE7
}

// ModifierBit returns the bit k occupies in the report modifier byte,
// or 0 for non-modifier keys.
func (k Keycode) ModifierBit() uint8 {
	if !k.IsModifier() {
		return 0
	}
	return 1 << (k - 0xE0)
}

// Injector is the keyboard transport. Implementations send HID reports to
// the host (TinyGo USB HID on the device, /dev/uhid in host mode).
type Injector interface {
	// Press holds the given keys down, in addition to any already held
	Press(keys ...Keycode) error

	// Release lets go of the given keys
	Release(keys ...Keycode) error

	// ReleaseAll lets go of every held key
	ReleaseAll() error

	// WriteText types s using the injector's keyboard layout
	WriteText(s string) error
}
