//go:build rp2040 || rp2350

package main

import "machine"

// pinInput samples a GPIO as a core.DigitalInput
type pinInput struct {
	pin machine.Pin
}

// newButtonInput configures pin for a button wired to ground
func newButtonInput(pin machine.Pin) *pinInput {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &pinInput{pin: pin}
}

func (p *pinInput) ReadLevel() bool {
	return p.pin.Get()
}
