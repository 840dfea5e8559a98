package core

import "time"

// Keyboard builds the injection sequences the workflows share on top of an
// Injector. The first injector error is kept and later calls become no-ops,
// so a sequence can be written straight through and checked once with Err.
type Keyboard struct {
	inj     Injector
	clock   Clock
	timings Timings
	err     error
}

// NewKeyboard creates a Keyboard
func NewKeyboard(inj Injector, clock Clock, timings Timings) *Keyboard {
	return &Keyboard{inj: inj, clock: clock, timings: timings}
}

// Err returns the first injector error, if any
func (k *Keyboard) Err() error {
	return k.err
}

// Clock returns the clock the keyboard waits on
func (k *Keyboard) Clock() Clock {
	return k.clock
}

// Timings returns the delays the keyboard was built with
func (k *Keyboard) Timings() Timings {
	return k.timings
}

func (k *Keyboard) do(f func() error) {
	if k.err != nil {
		return
	}
	if err := f(); err != nil {
		k.err = err
		DebugPrintln("[KBD] injection failed: " + err.Error())
	}
}

// Settle waits d for the host to catch up
func (k *Keyboard) Settle(d time.Duration) {
	k.clock.Sleep(d)
}

// Chord presses keys together, holds them briefly and releases everything
func (k *Keyboard) Chord(keys ...Keycode) {
	k.do(func() error { return k.inj.Press(keys...) })
	k.clock.Sleep(k.timings.KeyHold)
	k.do(k.inj.ReleaseAll)
}

// Tap presses and releases a single key
func (k *Keyboard) Tap(key Keycode) {
	k.do(func() error { return k.inj.Press(key) })
	k.do(func() error { return k.inj.Release(key) })
}

// Type writes text in one go
func (k *Keyboard) Type(text string) {
	k.do(func() error { return k.inj.WriteText(text) })
}

// TypeSlowly writes text one character at a time. Launcher search boxes
// drop characters that arrive faster than CharDelay apart.
func (k *Keyboard) TypeSlowly(text string) {
	for _, c := range text {
		k.do(func() error { return k.inj.WriteText(string(c)) })
		k.clock.Sleep(k.timings.CharDelay)
	}
	k.clock.Sleep(k.timings.CharDelay)
}

// OpenApplication opens the system menu, searches for name and launches it
func (k *Keyboard) OpenApplication(name string) {
	DebugPrintln("[KBD] open application " + name)
	k.do(func() error { return k.inj.Press(KeyGUI) })
	k.clock.Sleep(k.timings.KeyHold)
	k.do(func() error { return k.inj.Release(KeyGUI) })
	k.clock.Sleep(k.timings.MenuSettle)

	k.TypeSlowly(name)
	k.Tap(KeyEnter)
}

// OpenTerminal sends Ctrl+Alt+T and waits for the window
func (k *Keyboard) OpenTerminal() {
	k.Chord(KeyControl, KeyAlt, KeyT)
	k.clock.Sleep(k.timings.TerminalSettle)
}

// OpenRunDialog sends GUI+R and waits for the dialog
func (k *Keyboard) OpenRunDialog() {
	k.Chord(KeyGUI, KeyR)
	k.clock.Sleep(k.timings.RunDialogSettle)
}
