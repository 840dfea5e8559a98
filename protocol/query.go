package protocol

import (
	"time"

	"macrokey/core"
)

const (
	// NoResponse is what Query returns when no line came back
	NoResponse = "-1"

	// DefaultDeviceGlob is how the host command finds the device's CDC port
	DefaultDeviceGlob = "/dev/ttyACM*"

	// HostReadTimeout is the host-side `read -t` limit, in seconds
	HostReadTimeout = 10
)

// HostCommand builds the shell line typed into the host terminal. It picks
// the last device matching glob, puts it in raw no-echo mode, shows prompt,
// waits up to HostReadTimeout seconds for one line and writes exactly that
// line back to the device. The structure is the contract with the host:
// the device reads back only what printf writes.
//
// prompt is typed verbatim inside double quotes within single quotes, so it
// must not contain quote characters.
func HostCommand(glob, prompt string) string {
	return "bash -c '" +
		"P=$(ls " + glob + " | tail -1); " +
		"stty -F \"$P\" raw -echo; " +
		"clear; echo \"" + prompt + "\"; read -t " + core.Itoa(HostReadTimeout) + " r; " +
		"printf \"%s\\n\" \"$r\" > \"$P\"" +
		"'\n"
}

// Querier runs the request/response round trip: it asks the operator a
// question in a host terminal and reads the answer back over serial.
// Only one query may be in flight; the type is not safe for concurrent use.
type Querier struct {
	kbd    *core.Keyboard
	stream ByteStream
	reader *LineReader

	// DeviceGlob selects the serial device on the host side
	DeviceGlob string
}

// NewQuerier creates a Querier. stream may be nil when the data channel is
// not connected; queries then inject as usual and return NoResponse.
func NewQuerier(kbd *core.Keyboard, stream ByteStream) *Querier {
	return &Querier{
		kbd:        kbd,
		stream:     stream,
		reader:     NewLineReader(stream, kbd.Clock(), kbd.Timings().PollInterval),
		DeviceGlob: DefaultDeviceGlob,
	}
}

// Query shows prompt in a fresh host terminal and returns the operator's
// answer, or NoResponse if nothing arrived within timeout.
func (q *Querier) Query(prompt string, timeout time.Duration) string {
	t := q.kbd.Timings()

	q.Drain()

	q.kbd.OpenTerminal()
	q.kbd.Type(HostCommand(q.DeviceGlob, prompt))
	q.kbd.Settle(t.CommandSettle)

	response, ok := q.reader.ReadLine(timeout)
	if !ok || response == "" {
		core.DebugPrintln("[QUERY] no response")
		response = NoResponse
	} else {
		core.DebugPrintln("[QUERY] response " + core.Quote(response))
	}

	q.kbd.Settle(t.ExitSettle)
	q.kbd.Type("exit\n")
	q.kbd.Settle(t.ExitSettle)

	return response
}

// Drain throws away bytes left over from an earlier round. It stops when the
// stream is empty or after DrainLimit, whichever comes first.
func (q *Querier) Drain() int {
	return DrainStream(q.stream, q.kbd.Clock(), q.kbd.Timings())
}

// DrainStream empties stream, sleeping DrainInterval between reads and
// giving up after DrainLimit. It returns the number of bytes discarded.
func DrainStream(stream ByteStream, clock core.Clock, t core.Timings) int {
	if stream == nil {
		return 0
	}
	buf := make([]byte, 64)
	total := 0
	start := clock.Now()
	for stream.Available() > 0 && clock.Now()-start < t.DrainLimit {
		n, err := stream.Read(buf)
		total += n
		if err != nil {
			break
		}
		clock.Sleep(t.DrainInterval)
	}
	if total > 0 {
		core.DebugPrintln("[QUERY] drained " + core.Itoa(total) + " stale bytes")
	}
	return total
}
