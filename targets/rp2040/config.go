//go:build rp2040 || rp2350

package main

import (
	"machine"

	"macrokey/core"
)

// Board wiring. Change these to match the build; there is no runtime
// configuration on the device.
const (
	// ButtonPin is the workflow selection button, wired to ground
	ButtonPin = machine.GP12

	// ButtonActive is the level at which the button counts as held.
	// core.ActiveHigh reproduces boards whose override fires while the
	// button is released.
	ButtonActive = core.ActiveLow

	// StatusLEDPin drives a single WS2812 pixel (GP16 on RP2040-Zero style
	// boards). Set HasStatusLED to false on boards without one.
	StatusLEDPin = machine.GP16
	HasStatusLED = true

	// DebugOutput routes [TAG] debug lines to UART0 (GP0 TX, GP1 RX). USB
	// CDC is the query data channel, so debug output never goes there.
	DebugOutput = false
)
