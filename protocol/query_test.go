package protocol

import (
	"strings"
	"testing"
	"time"

	"macrokey/core"
)

func newTestQuerier(l *Loopback) (*Querier, *core.SimClock) {
	clock := core.NewSimClock()
	kbd := core.NewKeyboard(l.Recorder, clock, core.DefaultTimings())
	return NewQuerier(kbd, l.Stream), clock
}

func TestHostCommandIsBitExact(t *testing.T) {
	got := HostCommand(DefaultDeviceGlob, "Pick one")
	want := `bash -c 'P=$(ls /dev/ttyACM* | tail -1); stty -F "$P" raw -echo; clear; echo "Pick one"; read -t 10 r; printf "%s\n" "$r" > "$P"'` + "\n"
	if got != want {
		t.Errorf("HostCommand mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestQueryReturnsOperatorLine(t *testing.T) {
	l := NewLoopback("spigot")
	q, _ := newTestQuerier(l)

	got := q.Query("[java/dart]", 5*time.Second)
	if got != "spigot" {
		t.Errorf("Expected \"spigot\", got %q", got)
	}
	if p := l.Prompts(); len(p) != 1 || p[0] != "[java/dart]" {
		t.Errorf("Expected one prompt \"[java/dart]\", got %v", p)
	}
}

func TestQueryInjectionSequence(t *testing.T) {
	l := NewLoopback("x")
	q, _ := newTestQuerier(l)
	q.Query("p", time.Second)

	ev := l.Recorder.Events
	if len(ev) != 4 {
		t.Fatalf("Expected 4 injector calls, got %d: %v", len(ev), ev)
	}
	if ev[0].Kind != core.EventPress || len(ev[0].Keys) != 3 ||
		ev[0].Keys[0] != core.KeyControl || ev[0].Keys[1] != core.KeyAlt || ev[0].Keys[2] != core.KeyT {
		t.Errorf("Expected Ctrl+Alt+T first, got %v", ev[0])
	}
	if ev[1].Kind != core.EventReleaseAll {
		t.Errorf("Expected release-all, got %v", ev[1])
	}
	if ev[2].Kind != core.EventText || ev[2].Text != HostCommand(DefaultDeviceGlob, "p") {
		t.Errorf("Expected host command, got %v", ev[2])
	}
	if ev[3].Kind != core.EventText || ev[3].Text != "exit\n" {
		t.Errorf("Expected exit last, got %v", ev[3])
	}
}

func TestQuerySentinelOnTimeout(t *testing.T) {
	l := NewLoopback() // host read times out and prints an empty line
	q, clock := newTestQuerier(l)

	got := q.Query("p", 2*time.Second)
	if got != NoResponse {
		t.Errorf("Expected %q, got %q", NoResponse, got)
	}

	// Settles plus the full read timeout, nothing unbounded
	tm := core.DefaultTimings()
	min := tm.KeyHold + tm.TerminalSettle + tm.CommandSettle + 2*time.Second + 2*tm.ExitSettle
	if clock.Now() < min || clock.Now() > min+tm.PollInterval {
		t.Errorf("Expected the query to take about %v, took %v", min, clock.Now())
	}
}

func TestQuerySentinelWithoutStream(t *testing.T) {
	rec := core.NewRecorder()
	clock := core.NewSimClock()
	q := NewQuerier(core.NewKeyboard(rec, clock, core.DefaultTimings()), nil)

	if got := q.Query("p", 10*time.Second); got != NoResponse {
		t.Errorf("Expected %q, got %q", NoResponse, got)
	}
	// Still types the command and closes the terminal
	if !strings.Contains(rec.Typed(), "read -t 10 r") || !strings.HasSuffix(rec.Typed(), "exit\n") {
		t.Errorf("Expected command and exit to be typed, got %q", rec.Typed())
	}
}

func TestQueryDrainsStaleBytes(t *testing.T) {
	l := NewLoopback("fresh")
	l.Stream.Write([]byte("stale answer\n"))
	q, _ := newTestQuerier(l)

	if got := q.Query("p", time.Second); got != "fresh" {
		t.Errorf("Expected \"fresh\", got %q", got)
	}
}

func TestQueryStripsEscapeNoise(t *testing.T) {
	l := NewLoopback("2")
	l.Prefix = "\x1b[2J\x1b[H"
	q, _ := newTestQuerier(l)

	if got := q.Query("p", time.Second); got != "2" {
		t.Errorf("Expected \"2\", got %q", got)
	}
}

func TestQueryCustomDeviceGlob(t *testing.T) {
	l := NewLoopback("ok")
	q, _ := newTestQuerier(l)
	q.DeviceGlob = "/dev/pts/7"
	q.Query("p", time.Second)

	if !strings.Contains(l.Recorder.Typed(), "P=$(ls /dev/pts/7 | tail -1); ") {
		t.Errorf("Expected custom glob in command, got %q", l.Recorder.Typed())
	}
}

func TestDrainStreamIsBounded(t *testing.T) {
	clock := core.NewSimClock()
	stream := NewFifoStream(64)
	tm := core.DefaultTimings()

	// A peer that never stops talking
	var feed func()
	feed = func() {
		stream.Write([]byte("noise"))
		clock.At(clock.Now()+tm.DrainInterval, feed)
	}
	feed()

	DrainStream(stream, clock, tm)
	if clock.Now() > tm.DrainLimit+tm.DrainInterval {
		t.Errorf("Drain ran past its limit: %v", clock.Now())
	}
}
