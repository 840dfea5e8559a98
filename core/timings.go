package core

import "time"

// Timings holds every fixed delay the firmware uses. The host desktop gives
// no completion signal for injected input, so these settle delays are the
// only synchronisation there is.
type Timings struct {
	// StartupSettle waits for USB enumeration before the first action
	StartupSettle time.Duration

	// KeyHold is how long a chord is held before release
	KeyHold time.Duration

	// CharDelay spaces out characters typed one at a time
	CharDelay time.Duration

	// MenuSettle waits for the system menu after the GUI key
	MenuSettle time.Duration

	// TerminalSettle waits for a new terminal window
	TerminalSettle time.Duration

	// RunDialogSettle waits for the run dialog after GUI+R
	RunDialogSettle time.Duration

	// CommandSettle waits for the injected host command to start
	CommandSettle time.Duration

	// ExitSettle is used before and after typing exit into the terminal
	ExitSettle time.Duration

	// AppSettle separates consecutive application launches
	AppSettle time.Duration

	// PollInterval is the sleep between serial polls
	PollInterval time.Duration

	// DrainInterval is the sleep between reads while draining stale bytes
	DrainInterval time.Duration

	// DrainLimit bounds the stale-byte drain
	DrainLimit time.Duration

	// SelectionTimeout bounds the workflow selection query
	SelectionTimeout time.Duration

	// ProgrammingTimeout bounds the programming workflow query
	ProgrammingTimeout time.Duration
}

// DefaultTimings returns the delays the device ships with
func DefaultTimings() Timings {
	return Timings{
		StartupSettle:      1000 * time.Millisecond,
		KeyHold:            10 * time.Millisecond,
		CharDelay:          50 * time.Millisecond,
		MenuSettle:         100 * time.Millisecond,
		TerminalSettle:     750 * time.Millisecond,
		RunDialogSettle:    300 * time.Millisecond,
		CommandSettle:      1500 * time.Millisecond,
		ExitSettle:         200 * time.Millisecond,
		AppSettle:          500 * time.Millisecond,
		PollInterval:       10 * time.Millisecond,
		DrainInterval:      10 * time.Millisecond,
		DrainLimit:         500 * time.Millisecond,
		SelectionTimeout:   10 * time.Second,
		ProgrammingTimeout: 5 * time.Second,
	}
}
