// Package workflow holds the device's persistent state machine: which of
// the four workflows runs on activation, the selection override, and the
// workflows themselves.
package workflow

import (
	"macrokey/core"
)

// ID identifies a workflow
type ID int

const (
	Programming ID = iota
	DualBoot
	Circuits
	SysAdmin
)

const (
	MinID = Programming
	MaxID = SysAdmin
)

var idNames = [...]string{
	Programming: "Programming",
	DualBoot:    "Dual Boot",
	Circuits:    "Circuits",
	SysAdmin:    "Sys-Admin",
}

// Valid reports whether id is in [MinID, MaxID]
func (id ID) Valid() bool {
	return id >= MinID && id <= MaxID
}

func (id ID) String() string {
	if !id.Valid() {
		return "ID(" + core.Itoa(int(id)) + ")"
	}
	return idNames[id]
}

// BootOrder selects the OS the dual-boot workflow targets next
type BootOrder int

const (
	BootLinux   BootOrder = 0
	BootWindows BootOrder = 1
)

// Store keys
const (
	KeyWorkflowID = "workflow_id"
	KeyBootOrder  = "boot_order"
)

// Store is persistent integer storage. Reads of missing or corrupt values
// return an error; the state machine maps those to defaults.
type Store interface {
	ReadInt(key string) (int, error)
	WriteInt(key string, value int) error
}

// LoadID reads the remembered workflow. Anything unreadable or out of range
// yields Programming.
func LoadID(s Store) ID {
	v, err := s.ReadInt(KeyWorkflowID)
	if err != nil {
		core.DebugPrintln("[STATE] workflow id unreadable, using 0: " + err.Error())
		return Programming
	}
	id := ID(v)
	if !id.Valid() {
		core.DebugPrintln("[STATE] workflow id " + core.Itoa(v) + " out of range, using 0")
		return Programming
	}
	return id
}

// SaveID persists id. Failures are logged and dropped.
func SaveID(s Store, id ID) {
	save(s, KeyWorkflowID, int(id))
}

// LoadBootOrder reads the dual-boot toggle; anything but 0 or 1 yields 0
func LoadBootOrder(s Store) BootOrder {
	v, err := s.ReadInt(KeyBootOrder)
	if err != nil {
		core.DebugPrintln("[STATE] boot order unreadable, using 0: " + err.Error())
		return BootLinux
	}
	if v != int(BootLinux) && v != int(BootWindows) {
		core.DebugPrintln("[STATE] boot order " + core.Itoa(v) + " out of range, using 0")
		return BootLinux
	}
	return BootOrder(v)
}

// SaveBootOrder persists b. Failures are logged and dropped.
func SaveBootOrder(s Store, b BootOrder) {
	save(s, KeyBootOrder, int(b))
}

func save(s Store, key string, v int) {
	if err := s.WriteInt(key, v); err != nil {
		core.DebugPrintln("[STATE] failed to persist " + key + ": " + err.Error())
	}
}
