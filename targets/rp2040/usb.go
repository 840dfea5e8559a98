//go:build rp2040 || rp2350

package main

import (
	"machine"

	"macrokey/core"
	"macrokey/protocol"
)

// InitUSB initializes USB serial communication and returns the query data
// stream. machine.Serial is USB CDC on RP2040; the HID keyboard interface
// is added by importing machine/usb/hid/keyboard.
//
// The stream reads the CDC receive buffer in place. The USB interrupt fills
// that buffer at any time, including during the startup settle, so a drain
// before a query empties the device buffer itself.
func InitUSB() *protocol.SourceStream {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		core.DebugPrintln("[USB] CDC configure failed: " + err.Error())
	}
	return protocol.NewSourceStream(machine.Serial)
}
