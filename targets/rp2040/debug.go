//go:build rp2040 || rp2350

package main

import (
	"machine"

	"macrokey/core"
)

var debugUART *machine.UART

// InitDebugUART routes core debug output to UART0 on GP0 (TX) / GP1 (RX)
// at 115200 baud
func InitDebugUART() {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	if err != nil {
		debugUART = nil
		return
	}

	core.SetDebugWriter(debugPrintln)
	core.SetDebugEnabled(true)
	core.DebugPrintln("=== macrokey debug UART ===")
}

func debugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
