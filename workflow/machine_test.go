package workflow

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrokey/core"
	"macrokey/protocol"
)

type memStore struct {
	vals      map[string]string
	writes    []string
	failWrite bool
	onWrite   func(key string, value int)
}

func newMemStore() *memStore {
	return &memStore{vals: map[string]string{}}
}

func (s *memStore) ReadInt(key string) (int, error) {
	v, ok := s.vals[key]
	if !ok {
		return 0, os.ErrNotExist
	}
	return strconv.Atoi(v)
}

func (s *memStore) WriteInt(key string, value int) error {
	if s.onWrite != nil {
		s.onWrite(key, value)
	}
	if s.failWrite {
		return errors.New("read-only filesystem")
	}
	s.vals[key] = strconv.Itoa(value)
	s.writes = append(s.writes, key+"="+strconv.Itoa(value))
	return nil
}

type recordingIndicator struct {
	calls []string
}

func (r *recordingIndicator) Selecting(current ID) {
	r.calls = append(r.calls, "selecting "+current.String())
}

func (r *recordingIndicator) Running(id ID) {
	r.calls = append(r.calls, "running "+id.String())
}

type harness struct {
	loop      *protocol.Loopback
	store     *memStore
	indicator *recordingIndicator
	machine   *Machine
}

func newHarness(held bool, answers ...string) *harness {
	h := &harness{
		loop:      protocol.NewLoopback(answers...),
		store:     newMemStore(),
		indicator: &recordingIndicator{},
	}
	kbd := core.NewKeyboard(h.loop.Recorder, core.NewSimClock(), core.DefaultTimings())
	h.machine = NewMachine(Env{
		Keyboard:  kbd,
		Querier:   protocol.NewQuerier(kbd, h.loop.Stream),
		Store:     h.store,
		Button:    core.NewSelectButton(core.FixedInput(!held), core.ActiveLow),
		Indicator: h.indicator,
	})
	return h
}

func TestLoadIDRoundTrip(t *testing.T) {
	s := newMemStore()
	for id := MinID; id <= MaxID; id++ {
		SaveID(s, id)
		assert.Equal(t, id, LoadID(s))
	}
}

func TestLoadIDFallsBackToZero(t *testing.T) {
	for _, raw := range []string{"", "abc", "7", "-1", "4", "1.5"} {
		s := newMemStore()
		s.vals[KeyWorkflowID] = raw
		assert.Equal(t, Programming, LoadID(s), "stored %q", raw)
	}
	assert.Equal(t, Programming, LoadID(newMemStore()), "missing value")
}

func TestSaveIDIdempotent(t *testing.T) {
	s := newMemStore()
	SaveID(s, Circuits)
	SaveID(s, Circuits)
	assert.Equal(t, Circuits, LoadID(s))
	assert.Equal(t, "2", s.vals[KeyWorkflowID])
}

func TestLoadBootOrderFallsBackToZero(t *testing.T) {
	for _, raw := range []string{"x", "2", "-1"} {
		s := newMemStore()
		s.vals[KeyBootOrder] = raw
		assert.Equal(t, BootLinux, LoadBootOrder(s), "stored %q", raw)
	}
	s := newMemStore()
	s.vals[KeyBootOrder] = "1"
	assert.Equal(t, BootWindows, LoadBootOrder(s))
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t,
		"Select ID: [0] Programming, [1] Dual Boot, [2:MEM-SEL] Circuits, [3] Sys-Admin",
		PromptFor(Circuits))
	assert.Equal(t,
		"Select ID: [0:MEM-SEL] Programming, [1] Dual Boot, [2] Circuits, [3] Sys-Admin",
		PromptFor(Programming))
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in     string
		want   ID
		wantOK bool
	}{
		{"0", Programming, true},
		{" 3 ", SysAdmin, true},
		{"+1", DualBoot, true},
		{"9", 0, false},
		{"-1", 0, false},
		{"two", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSelection(tt.in)
		assert.Equal(t, tt.wantOK, ok, "ParseSelection(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseSelection(%q)", tt.in)
	}
}

func TestOverrideSelectsAndPersists(t *testing.T) {
	h := newHarness(true, "2")

	ran := h.machine.Activate()

	assert.Equal(t, Circuits, ran)
	assert.Equal(t, []string{"workflow_id=2"}, h.store.writes)
	require.Len(t, h.loop.Prompts(), 1)
	assert.Equal(t, PromptFor(Programming), h.loop.Prompts()[0])
	assert.Contains(t, h.loop.Recorder.Typed(), "vscode")
	assert.Equal(t, []string{"selecting Programming", "running Circuits"}, h.indicator.calls)
}

func TestOverrideIgnoresOutOfRange(t *testing.T) {
	// "9" is rejected, then the programming workflow asks its own question
	h := newHarness(true, "9", "python")

	ran := h.machine.Activate()

	assert.Equal(t, Programming, ran)
	assert.Empty(t, h.store.writes)
	assert.Len(t, h.loop.Prompts(), 2)
	assert.Equal(t, ProgrammingPrompt, h.loop.Prompts()[1])
}

func TestOverrideTimeoutKeepsCurrent(t *testing.T) {
	h := newHarness(true)
	h.store.vals[KeyWorkflowID] = "3"

	ran := h.machine.Activate()

	assert.Equal(t, SysAdmin, ran)
	assert.Empty(t, h.store.writes)
}

func TestOverrideSameValueNotRewritten(t *testing.T) {
	h := newHarness(true, "3")
	h.store.vals[KeyWorkflowID] = "3"

	assert.Equal(t, SysAdmin, h.machine.Activate())
	assert.Empty(t, h.store.writes)
}

func TestNoOverrideWithoutButton(t *testing.T) {
	h := newHarness(false)
	h.store.vals[KeyWorkflowID] = "2"

	assert.Equal(t, Circuits, h.machine.Activate())
	assert.Empty(t, h.loop.Prompts())
	assert.Equal(t, []string{"running Circuits"}, h.indicator.calls)
}

func TestActiveHighPolarity(t *testing.T) {
	h := newHarness(false, "1")
	// Pull-up line reads high while released; active-high fires on that
	h.machine.env.Button = core.NewSelectButton(core.FixedInput(true), core.ActiveHigh)

	assert.Equal(t, DualBoot, h.machine.Activate())
	assert.Len(t, h.loop.Prompts(), 1)
}

func TestProgrammingTrigger(t *testing.T) {
	for _, answer := range []string{"spigot", "Spigot", "SPIGOT", "java spigot plugin"} {
		h := newHarness(false, answer)
		h.machine.Run(Programming)
		assert.Contains(t, h.loop.Recorder.Typed(), "firefox", "answer %q", answer)
	}
}

func TestProgrammingNoTrigger(t *testing.T) {
	for _, answer := range []string{"python", "spig0t", ""} {
		h := newHarness(false, answer)
		h.machine.Run(Programming)

		typed := h.loop.Recorder.Typed()
		assert.NotContains(t, typed, "firefox", "answer %q", answer)
		// Only the query itself was typed
		assert.True(t, strings.HasSuffix(typed, "exit\n"), "answer %q", answer)
	}
}

func TestDualBootFromWindows(t *testing.T) {
	h := newHarness(false)
	h.store.vals[KeyBootOrder] = "1"

	h.machine.Run(DualBoot)

	assert.Equal(t, "0", h.store.vals[KeyBootOrder])
	assert.Equal(t, [][]core.Keycode{{core.KeyGUI, core.KeyR}}, h.loop.Recorder.Pressed())
	assert.Equal(t, "shutdown /r /t 0\n", h.loop.Recorder.Typed())
}

func TestDualBootFromLinux(t *testing.T) {
	h := newHarness(false)

	h.machine.Run(DualBoot)

	assert.Equal(t, "1", h.store.vals[KeyBootOrder])
	assert.Equal(t, [][]core.Keycode{{core.KeyControl, core.KeyAlt, core.KeyT}}, h.loop.Recorder.Pressed())
	assert.Equal(t, "bash -c 'sudo efibootmgr -n 00000;reboot'\n", h.loop.Recorder.Typed())
}

func TestDualBootAlternates(t *testing.T) {
	h := newHarness(false)

	h.machine.Run(DualBoot)
	assert.Equal(t, "1", h.store.vals[KeyBootOrder])

	h.loop.Recorder.Reset()
	h.machine.Run(DualBoot)
	assert.Equal(t, "0", h.store.vals[KeyBootOrder])
	assert.Equal(t, "shutdown /r /t 0\n", h.loop.Recorder.Typed())
}

func TestDualBootPersistsBeforeReboot(t *testing.T) {
	for _, start := range []string{"0", "1"} {
		h := newHarness(false)
		h.store.vals[KeyBootOrder] = start
		eventsAtWrite := -1
		h.store.onWrite = func(key string, _ int) {
			eventsAtWrite = len(h.loop.Recorder.Events)
		}

		h.machine.Run(DualBoot)

		assert.Equal(t, 0, eventsAtWrite, "boot order %s: write must precede injection", start)
	}
}

func TestDualBootSurvivesStoreFailure(t *testing.T) {
	h := newHarness(false)
	h.store.failWrite = true

	h.machine.Run(DualBoot)

	assert.Contains(t, h.loop.Recorder.Typed(), "efibootmgr")
}

func TestCircuitsOpensBothApps(t *testing.T) {
	h := newHarness(false)

	h.machine.Run(Circuits)

	assert.Equal(t, "vscodekicad", h.loop.Recorder.Typed())
	assert.Equal(t, [][]core.Keycode{{core.KeyGUI}, {core.KeyEnter}, {core.KeyGUI}, {core.KeyEnter}},
		h.loop.Recorder.Pressed())
}

func TestSysAdminDoesNothing(t *testing.T) {
	h := newHarness(false)
	h.store.vals[KeyWorkflowID] = "3"

	assert.Equal(t, SysAdmin, h.machine.Activate())
	assert.Empty(t, h.loop.Recorder.Events)
	assert.Empty(t, h.store.writes)
}

func TestRunUnknownID(t *testing.T) {
	h := newHarness(false)
	h.machine.Run(ID(7))
	assert.Empty(t, h.loop.Recorder.Events)
	assert.Empty(t, h.indicator.calls)
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "Dual Boot", DualBoot.String())
	assert.Equal(t, "ID(9)", ID(9).String())
}
