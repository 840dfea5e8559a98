package workflow

import (
	"strconv"
	"strings"
	"time"

	"macrokey/core"
)

// SelectionPrompt lists the workflows; the remembered one gets a :MEM-SEL tag
const SelectionPrompt = "Select ID: [0] Programming, [1] Dual Boot, [2] Circuits, [3] Sys-Admin"

// Querier asks the operator a question and returns the answer, or a
// sentinel when nothing came back.
type Querier interface {
	Query(prompt string, timeout time.Duration) string
}

// Indicator shows what the device is doing, e.g. on a status LED
type Indicator interface {
	Selecting(current ID)
	Running(id ID)
}

// Env is everything an activation touches. It is built once at startup and
// passed down; nothing in this package keeps global handles.
type Env struct {
	Keyboard  *core.Keyboard
	Querier   Querier
	Store     Store
	Button    *core.SelectButton
	Indicator Indicator
}

// Machine runs one activation: load state, offer the override, dispatch
type Machine struct {
	env       Env
	workflows [MaxID + 1]func()
}

// NewMachine creates a Machine over env
func NewMachine(env Env) *Machine {
	m := &Machine{env: env}
	m.workflows = [MaxID + 1]func(){
		Programming: m.programming,
		DualBoot:    m.dualBoot,
		Circuits:    m.circuits,
		SysAdmin:    m.sysAdmin,
	}
	return m
}

// Activate runs exactly one workflow and returns which one ran
func (m *Machine) Activate() ID {
	id := LoadID(m.env.Store)
	core.DebugPrintln("[STATE] remembered workflow " + core.Itoa(int(id)))

	if m.env.Button.Held() {
		id = m.Select(id)
	}

	m.Run(id)
	return id
}

// Select runs the interactive override and returns the workflow to use.
// A valid answer that differs from current is persisted; anything else
// keeps current.
func (m *Machine) Select(current ID) ID {
	if m.env.Indicator != nil {
		m.env.Indicator.Selecting(current)
	}

	t := m.env.Keyboard.Timings()
	response := m.env.Querier.Query(PromptFor(current), t.SelectionTimeout)

	choice, ok := ParseSelection(response)
	if !ok {
		core.DebugPrintln("[STATE] selection " + core.Quote(response) + " ignored")
		return current
	}
	if choice == current {
		return current
	}

	SaveID(m.env.Store, choice)
	core.DebugPrintln("[STATE] workflow changed to " + core.Itoa(int(choice)))
	return choice
}

// Run dispatches to the workflow for id. Unknown ids run nothing.
func (m *Machine) Run(id ID) {
	if !id.Valid() {
		core.DebugPrintln("[STATE] no workflow " + core.Itoa(int(id)))
		return
	}
	if m.env.Indicator != nil {
		m.env.Indicator.Running(id)
	}
	core.DebugPrintln("[STATE] running " + id.String())
	m.workflows[id]()

	if err := m.env.Keyboard.Err(); err != nil {
		core.DebugPrintln("[STATE] workflow " + id.String() + " injection error: " + err.Error())
	}
}

// PromptFor returns the selection prompt with current marked
func PromptFor(current ID) string {
	tag := "[" + core.Itoa(int(current)) + "]"
	return strings.Replace(SelectionPrompt, tag, "["+core.Itoa(int(current))+":MEM-SEL]", 1)
}

// ParseSelection turns an operator answer into a workflow id. Surrounding
// whitespace is ignored; non-numbers and out-of-range numbers are rejected.
func ParseSelection(response string) (ID, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(response))
	if err != nil {
		return 0, false
	}
	id := ID(v)
	if !id.Valid() {
		return 0, false
	}
	return id, true
}
