// Package serial opens the runner's end of the query data channel: the tty
// the typed host command writes its answer into.
package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// Config describes the tty to open
type Config struct {
	// Device path, e.g. "/dev/ttyACM0" or the slave side of a pty pair
	Device string

	// Baud is ignored by USB CDC and ptys but required by real UARTs
	Baud int

	// ReadTimeout bounds each Read. Keep it short: the stream's read loop
	// only notices Close between reads.
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings used for device when the
// configuration file leaves them out
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// Port is an open data channel. Only the receive side is used: answers flow
// from the desktop to us, never back.
type Port struct {
	port   *serial.Port
	device string
}

// Open opens cfg.Device in raw mode
func Open(cfg Config) (*Port, error) {
	if cfg.Device == "" {
		return nil, errors.New("serial device not set")
	}
	if cfg.ReadTimeout <= 0 {
		return nil, fmt.Errorf("serial %s: read timeout must be positive", cfg.Device)
	}

	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Device, err)
	}
	return &Port{port: p, device: cfg.Device}, nil
}

// Read returns what has arrived, or 0 bytes once the read timeout expires
func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Flush discards input that arrived before the current session, e.g. an
// answer from a previous run that nobody read
func (p *Port) Flush() error {
	if err := p.port.Flush(); err != nil {
		return fmt.Errorf("flush serial %s: %w", p.device, err)
	}
	return nil
}

func (p *Port) Close() error {
	return p.port.Close()
}
