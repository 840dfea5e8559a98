// Package button provides host-side stand-ins for the selection button
package button

import (
	"time"

	"github.com/pkg/term"

	"macrokey/core"
)

// TTYInput treats a key press on a terminal as holding the button. The
// first ReadLevel waits up to Window for a key; the result is cached so
// repeated reads agree. The level is reported in the wiring convention of
// Active, so a SelectButton with the same polarity sees the key as held.
type TTYInput struct {
	Path   string
	Window time.Duration
	Active core.ActiveLevel

	sampled bool
	level   bool
}

// NewTTYInput creates an input on the terminal at path, e.g. /dev/tty
func NewTTYInput(path string, window time.Duration, active core.ActiveLevel) *TTYInput {
	return &TTYInput{Path: path, Window: window, Active: active}
}

func (b *TTYInput) ReadLevel() bool {
	if !b.sampled {
		b.level = Level(b.keyPressed(), b.Active)
		b.sampled = true
	}
	return b.level
}

func (b *TTYInput) keyPressed() bool {
	t, err := term.Open(b.Path)
	if err != nil {
		core.DebugPrintln("[BUTTON] open " + b.Path + ": " + err.Error())
		return false
	}
	defer t.Close()

	if err := term.RawMode(t); err != nil {
		core.DebugPrintln("[BUTTON] raw mode: " + err.Error())
		return false
	}
	defer t.Restore()

	if err := t.SetReadTimeout(b.Window); err != nil {
		core.DebugPrintln("[BUTTON] read timeout: " + err.Error())
		return false
	}

	buf := make([]byte, 8)
	n, err := t.Read(buf)
	return err == nil && n > 0
}

// Level is the line level a button wired for active shows when held or not
func Level(held bool, active core.ActiveLevel) bool {
	if active == core.ActiveHigh {
		return held
	}
	return !held
}

// Fixed returns an input that is always held or always released
func Fixed(held bool, active core.ActiveLevel) core.FixedInput {
	return core.FixedInput(Level(held, active))
}
