//go:build rp2040 || rp2350

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"macrokey/workflow"
)

var (
	colorSelecting = color.RGBA{R: 0x20, G: 0x20, B: 0x00}
	colorOff       = color.RGBA{}

	// One color per workflow id
	workflowColors = [...]color.RGBA{
		workflow.Programming: {R: 0x00, G: 0x00, B: 0x20},
		workflow.DualBoot:    {R: 0x20, G: 0x00, B: 0x20},
		workflow.Circuits:    {R: 0x00, G: 0x20, B: 0x00},
		workflow.SysAdmin:    {R: 0x20, G: 0x00, B: 0x00},
	}
)

// statusLED shows the device state on a single WS2812 pixel
type statusLED struct {
	dev ws2812.Device
}

func newStatusLED(pin machine.Pin) *statusLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led := &statusLED{dev: ws2812.New(pin)}
	led.set(colorOff)
	return led
}

func (l *statusLED) set(c color.RGBA) {
	l.dev.WriteColors([]color.RGBA{c})
}

func (l *statusLED) Selecting(current workflow.ID) {
	l.set(colorSelecting)
}

func (l *statusLED) Running(id workflow.ID) {
	if !id.Valid() {
		l.set(colorOff)
		return
	}
	l.set(workflowColors[id])
}
