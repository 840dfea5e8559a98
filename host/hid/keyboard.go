// Package hid injects keystrokes on a Linux desktop through a virtual USB
// keyboard created with /dev/uhid. It lets the workflows run on the
// development machine itself, without the device attached.
package hid

import (
	"context"
	"fmt"
	"sync"

	"github.com/psanford/uhid"

	"macrokey/core"
)

const BusUSB = 0x03

// Boot protocol keyboard: 8-byte input report (modifiers, reserved, six
// key slots) and a 5-bit LED output report.
var rdesc = []byte{
	0x05, 0x01, /* USAGE_PAGE (Generic Desktop) */
	0x09, 0x06, /* USAGE (Keyboard) */
	0xa1, 0x01, /* COLLECTION (Application) */
	0x05, 0x07, /* USAGE_PAGE (Keyboard) */
	0x19, 0xe0, /* USAGE_MINIMUM (Left Control) */
	0x29, 0xe7, /* USAGE_MAXIMUM (Right GUI) */
	0x15, 0x00, /* LOGICAL_MINIMUM (0) */
	0x25, 0x01, /* LOGICAL_MAXIMUM (1) */
	0x75, 0x01, /* REPORT_SIZE (1) */
	0x95, 0x08, /* REPORT_COUNT (8) */
	0x81, 0x02, /* INPUT (Data,Var,Abs) */
	0x95, 0x01, /* REPORT_COUNT (1) */
	0x75, 0x08, /* REPORT_SIZE (8) */
	0x81, 0x01, /* INPUT (Cnst,Ary,Abs) */
	0x95, 0x05, /* REPORT_COUNT (5) */
	0x75, 0x01, /* REPORT_SIZE (1) */
	0x05, 0x08, /* USAGE_PAGE (LEDs) */
	0x19, 0x01, /* USAGE_MINIMUM (Num Lock) */
	0x29, 0x05, /* USAGE_MAXIMUM (Kana) */
	0x91, 0x02, /* OUTPUT (Data,Var,Abs) */
	0x95, 0x01, /* REPORT_COUNT (1) */
	0x75, 0x03, /* REPORT_SIZE (3) */
	0x91, 0x01, /* OUTPUT (Cnst,Ary,Abs) */
	0x95, 0x06, /* REPORT_COUNT (6) */
	0x75, 0x08, /* REPORT_SIZE (8) */
	0x15, 0x00, /* LOGICAL_MINIMUM (0) */
	0x25, 0x65, /* LOGICAL_MAXIMUM (101) */
	0x05, 0x07, /* USAGE_PAGE (Keyboard) */
	0x19, 0x00, /* USAGE_MINIMUM (Reserved) */
	0x29, 0x65, /* USAGE_MAXIMUM (Keyboard Application) */
	0x81, 0x00, /* INPUT (Data,Ary,Abs) */
	0xc0, /* END_COLLECTION */
}

// Report is a boot keyboard input report
type Report [8]byte

// Config describes the virtual keyboard
type Config struct {
	Name      string
	VendorID  uint32
	ProductID uint32
}

// ReportWriter sends one input report to the host
type ReportWriter interface {
	WriteReport(r Report) error
}

// Keyboard implements core.Injector on top of a ReportWriter
type Keyboard struct {
	mu   sync.Mutex
	out  ReportWriter
	mods uint8
	keys []core.Keycode
}

// NewKeyboard creates a Keyboard sending reports to out
func NewKeyboard(out ReportWriter) *Keyboard {
	return &Keyboard{out: out}
}

func (k *Keyboard) report() Report {
	var r Report
	r[0] = k.mods
	for i, key := range k.keys {
		if i >= 6 {
			break
		}
		r[2+i] = uint8(key)
	}
	return r
}

func (k *Keyboard) send() error {
	return k.out.WriteReport(k.report())
}

func (k *Keyboard) down(key core.Keycode) {
	if key.IsModifier() {
		k.mods |= key.ModifierBit()
		return
	}
	for _, held := range k.keys {
		if held == key {
			return
		}
	}
	k.keys = append(k.keys, key)
}

func (k *Keyboard) up(key core.Keycode) {
	if key.IsModifier() {
		k.mods &^= key.ModifierBit()
		return
	}
	for i, held := range k.keys {
		if held == key {
			k.keys = append(k.keys[:i], k.keys[i+1:]...)
			return
		}
	}
}

func (k *Keyboard) Press(keys ...core.Keycode) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		k.down(key)
	}
	return k.send()
}

func (k *Keyboard) Release(keys ...core.Keycode) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		k.up(key)
	}
	return k.send()
}

func (k *Keyboard) ReleaseAll() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.mods = 0
	k.keys = k.keys[:0]
	return k.send()
}

// WriteText types s with the US layout. Each character is a press report
// followed by an all-up report. Characters the layout lacks are an error.
func (k *Keyboard) WriteText(s string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, c := range s {
		ks, ok := core.LookupUS(c)
		if !ok {
			return fmt.Errorf("hid: cannot type %q on a US layout", c)
		}
		var r Report
		if ks.Shift {
			r[0] = core.KeyShift.ModifierBit()
		}
		r[2] = uint8(ks.Key)
		if err := k.out.WriteReport(r); err != nil {
			return err
		}
		if err := k.out.WriteReport(Report{}); err != nil {
			return err
		}
	}
	return nil
}

// Device is a virtual keyboard registered with the kernel through uhid
type Device struct {
	dev *uhid.Device
}

// Open creates the virtual keyboard. The caller must Close it.
func Open(ctx context.Context, cfg Config) (*Device, error) {
	d, err := uhid.NewDevice(cfg.Name, rdesc)
	if err != nil {
		return nil, fmt.Errorf("failed to create uhid device: %w", err)
	}

	d.Data.Bus = BusUSB
	d.Data.VendorID = cfg.VendorID
	d.Data.ProductID = cfg.ProductID

	evtChan, err := d.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/uhid: %w", err)
	}

	go func() {
		for evt := range evtChan {
			if evt.Err != nil {
				core.DebugPrintln("[HID] uhid event error: " + evt.Err.Error())
				continue
			}
			// LED output reports and open/close notices need no answer
		}
	}()

	return &Device{dev: d}, nil
}

// WriteReport injects one input report
func (d *Device) WriteReport(r Report) error {
	evt := uhid.Input2Request{
		RequestType: uhid.Input2,
	}
	copy(evt.Data[:], r[:])
	evt.DataSize = uint16(len(r))

	return d.dev.WriteEvent(evt)
}

// Close destroys the virtual keyboard
func (d *Device) Close() error {
	return d.dev.Close()
}
