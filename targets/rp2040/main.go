//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"macrokey/core"
	"macrokey/protocol"
	"macrokey/storage"
	"macrokey/workflow"
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	if DebugOutput {
		InitDebugUART()
	}

	stream := InitUSB()

	var indicator workflow.Indicator
	if HasStatusLED {
		indicator = newStatusLED(StatusLEDPin)
	}

	button := core.NewSelectButton(newButtonInput(ButtonPin), ButtonActive)

	timings := core.DefaultTimings()
	clock := core.NewSystemClock()
	kbd := core.NewKeyboard(newHIDKeyboard(), clock, timings)

	// Give the host time to enumerate the HID and CDC interfaces
	kbd.Settle(timings.StartupSettle)

	if n := protocol.DrainStream(stream, clock, timings); n > 0 {
		core.DebugPrintln("[USB] drained " + core.Itoa(n) + " bytes at startup")
	}

	env := workflow.Env{
		Keyboard:  kbd,
		Querier:   protocol.NewQuerier(kbd, stream),
		Store:     openStore(),
		Button:    button,
		Indicator: indicator,
	}

	id := workflow.NewMachine(env).Activate()
	core.DebugPrintln("Workflow " + core.Itoa(int(id)) + " completed")

	// One activation per power-up. Stay alive so USB stays enumerated.
	for {
		time.Sleep(time.Second)
	}
}

// openStore returns the flash-backed state store. Without one the device
// still runs: reads fall back to defaults and writes are logged and lost.
func openStore() workflow.Store {
	store, err := storage.NewBlockStore(machine.Flash, workflow.KeyWorkflowID, workflow.KeyBootOrder)
	if err != nil {
		core.DebugPrintln("[STORE] " + err.Error())
		return nullStore{}
	}
	return store
}

type nullStore struct{}

func (nullStore) ReadInt(key string) (int, error) {
	return 0, storage.ErrUnknownKey
}

func (nullStore) WriteInt(key string, value int) error {
	return storage.ErrUnknownKey
}
