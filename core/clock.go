package core

import "time"

// Clock is the monotonic time source and the only way core code waits.
// Every wait in the firmware goes through Sleep, so tests can swap in a
// SimClock and run without real delays.
type Clock interface {
	// Now returns the time elapsed since an arbitrary fixed origin
	Now() time.Duration

	// Sleep blocks for d
	Sleep(d time.Duration)
}

// SystemClock is the real clock
type SystemClock struct {
	boot time.Time
}

// NewSystemClock creates a clock whose origin is the moment of the call
func NewSystemClock() *SystemClock {
	return &SystemClock{boot: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.boot)
}

func (c *SystemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// SimClock is a simulated clock. Sleep advances the current time instantly
// and runs any hooks whose deadline has been reached, which lets a test
// stream deliver bytes "while" the code under test is waiting.
type SimClock struct {
	now   time.Duration
	slept time.Duration
	hooks []simHook
}

type simHook struct {
	at time.Duration
	fn func()
}

// NewSimClock creates a simulated clock starting at zero
func NewSimClock() *SimClock {
	return &SimClock{}
}

func (c *SimClock) Now() time.Duration {
	return c.now
}

func (c *SimClock) Sleep(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.now += d
	c.slept += d
	c.fire()
}

// At schedules fn to run the first time the clock reaches t
func (c *SimClock) At(t time.Duration, fn func()) {
	c.hooks = append(c.hooks, simHook{at: t, fn: fn})
	c.fire()
}

// Slept returns the total time spent in Sleep
func (c *SimClock) Slept() time.Duration {
	return c.slept
}

func (c *SimClock) fire() {
	pending := c.hooks[:0]
	var due []func()
	for _, h := range c.hooks {
		if h.at <= c.now {
			due = append(due, h.fn)
		} else {
			pending = append(pending, h)
		}
	}
	c.hooks = pending
	for _, fn := range due {
		fn()
	}
}
