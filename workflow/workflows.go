package workflow

import (
	"strings"

	"macrokey/core"
)

const (
	// ProgrammingPrompt is the sub-workflow question
	ProgrammingPrompt = "[java/dart] [python/javascript] [go/c++]"

	// programmingTrigger in the answer, any case, opens the browser
	programmingTrigger = "spigot"

	windowsReboot = "shutdown /r /t 0\n"
)

func (m *Machine) programming() {
	kbd := m.env.Keyboard
	response := m.env.Querier.Query(ProgrammingPrompt, kbd.Timings().ProgrammingTimeout)

	if strings.Contains(strings.ToLower(response), programmingTrigger) {
		kbd.OpenApplication("firefox")
	}
}

// dualBoot flips the boot toggle and reboots into the other OS. The new
// toggle is persisted before the reboot is typed, so a reset half way
// through still targets the other OS next time.
func (m *Machine) dualBoot() {
	kbd := m.env.Keyboard
	current := LoadBootOrder(m.env.Store)

	if current == BootWindows {
		SaveBootOrder(m.env.Store, BootLinux)

		kbd.OpenRunDialog()
		kbd.Type(windowsReboot)
		return
	}

	SaveBootOrder(m.env.Store, BootWindows)

	kbd.OpenTerminal()
	kbd.Type(EFIRebootCommand(current))
}

// EFIRebootCommand sets the one-shot EFI BootNext entry from b and reboots
func EFIRebootCommand(b BootOrder) string {
	return "bash -c 'sudo efibootmgr -n 0000" + core.Itoa(int(b)) + ";reboot'\n"
}

func (m *Machine) circuits() {
	kbd := m.env.Keyboard
	kbd.OpenApplication("vscode")
	kbd.Settle(kbd.Timings().AppSettle)
	kbd.OpenApplication("kicad")
}

// sysAdmin is intentionally empty: the slot is reserved for backup jobs.
// Selecting it is valid and runs nothing.
func (m *Machine) sysAdmin() {}
