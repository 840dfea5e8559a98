package button

import (
	"fmt"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"macrokey/core"
)

// DefaultEvdevKey is held down to ask for the selection override
const DefaultEvdevKey = "KEY_SCROLLLOCK"

// EvdevInput treats a key held on a real keyboard as holding the button.
// The key state is read once from the kernel, so the key must already be
// down when the activation starts, just like the hardware button.
type EvdevInput struct {
	Path   string
	Key    evdev.EvCode
	Active core.ActiveLevel

	sampled bool
	level   bool
}

// NewEvdevInput watches key (e.g. "KEY_SCROLLLOCK") on the input device at
// path. An empty path picks the first device that looks like a keyboard.
func NewEvdevInput(path, key string, active core.ActiveLevel) (*EvdevInput, error) {
	code, ok := evdev.KEYFromString[strings.ToUpper(key)]
	if !ok {
		return nil, fmt.Errorf("unknown key %q", key)
	}
	return &EvdevInput{Path: path, Key: code, Active: active}, nil
}

func (b *EvdevInput) ReadLevel() bool {
	if !b.sampled {
		held, err := b.keyDown()
		if err != nil {
			core.DebugPrintln("[BUTTON] " + err.Error())
		}
		b.level = Level(held, b.Active)
		b.sampled = true
	}
	return b.level
}

func (b *EvdevInput) keyDown() (bool, error) {
	path := b.Path
	if path == "" {
		var err error
		if path, err = findKeyboard(); err != nil {
			return false, err
		}
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer dev.Close()

	state, err := dev.State(evdev.EV_KEY)
	if err != nil {
		return false, fmt.Errorf("key state of %s: %w", path, err)
	}
	return state[b.Key], nil
}

// findKeyboard returns the first input device with letter and enter keys
func findKeyboard() (string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", fmt.Errorf("list input devices: %w", err)
	}

	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		hasA, hasEnter := false, false
		for _, c := range dev.CapableEvents(evdev.EV_KEY) {
			switch c {
			case evdev.KEY_A:
				hasA = true
			case evdev.KEY_ENTER:
				hasEnter = true
			}
		}
		dev.Close()
		if hasA && hasEnter {
			return p.Path, nil
		}
	}
	return "", fmt.Errorf("no keyboard found under /dev/input")
}
