package protocol

import (
	"strings"
	"time"
	"unicode/utf8"

	"macrokey/core"
)

const (
	byteESC = 0x1B
	byteBEL = 0x07
)

// LineReader pulls one text line out of a noisy serial stream. It drops
// ESC-introduced sequences, frames on CR or LF, throws away lines that are
// empty or not valid UTF-8, and gives up after a timeout.
//
// The escape filter is a heuristic, not an ANSI parser: a '[' or ']'
// directly after ESC is taken as the CSI/OSC introducer, and the sequence
// then ends at BEL, backslash, or any byte in 0x40-0x7E. The host command
// puts the device in raw no-echo mode before writing, so the filter only
// has to catch stragglers.
type LineReader struct {
	stream ByteStream
	clock  core.Clock
	poll   time.Duration

	buf      []byte
	chunk    []byte
	inEscape bool
	afterESC bool
}

// NewLineReader creates a reader polling stream every poll interval.
// A nil stream means the data channel is absent; ReadLine then reports no
// data straight away.
func NewLineReader(stream ByteStream, clock core.Clock, poll time.Duration) *LineReader {
	return &LineReader{
		stream: stream,
		clock:  clock,
		poll:   poll,
		chunk:  make([]byte, 64),
	}
}

// ReadLine returns the first non-empty line that arrives before timeout.
// ok is false when nothing usable arrived; the returned line is never empty
// when ok is true.
func (r *LineReader) ReadLine(timeout time.Duration) (line string, ok bool) {
	if r.stream == nil {
		return "", false
	}

	r.buf = r.buf[:0]
	r.inEscape = false
	r.afterESC = false

	start := r.clock.Now()
	for r.clock.Now()-start < timeout {
		// A peer that never stops sending must not hold us past the deadline
		for r.stream.Available() > 0 && r.clock.Now()-start < timeout {
			n, err := r.stream.Read(r.chunk)
			if n > 0 {
				if line, ok := r.feed(r.chunk[:n]); ok {
					return line, true
				}
			}
			if err != nil || n == 0 {
				break
			}
		}
		remaining := timeout - (r.clock.Now() - start)
		if remaining <= 0 {
			break
		}
		r.clock.Sleep(min(r.poll, remaining))
	}

	// Timeout: salvage whatever was accumulated without a terminator
	if len(r.buf) > 0 {
		if line, ok := DecodeLine(r.buf); ok {
			return line, true
		}
	}
	return "", false
}

// feed runs bytes through the escape filter and line framer. It returns as
// soon as a complete non-empty line is recognised; the rest of data is
// discarded with it.
func (r *LineReader) feed(data []byte) (string, bool) {
	for _, b := range data {
		if b == byteESC {
			r.inEscape = true
			r.afterESC = true
			continue
		}

		if r.inEscape {
			if r.afterESC {
				r.afterESC = false
				if b == '[' || b == ']' {
					continue
				}
			}
			if b == byteBEL || b == '\\' || (b >= 64 && b <= 126) {
				r.inEscape = false
			}
			continue
		}

		switch b {
		case '\n', '\r':
			if len(r.buf) == 0 {
				continue
			}
			line, ok := DecodeLine(r.buf)
			r.buf = r.buf[:0]
			if ok {
				return line, true
			}
			core.DebugPrintln("[LINE] discarded empty or undecodable line")
		default:
			r.buf = append(r.buf, b)
		}
	}
	return "", false
}

// DecodeLine turns raw line bytes into text: UTF-8 decode, trim, drop
// control characters below 0x20 other than tab, CR and LF, trim again.
// ok is false when the bytes are not valid UTF-8 or nothing is left.
func DecodeLine(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	s := strings.TrimSpace(string(raw))
	s = strings.Map(func(c rune) rune {
		if c < 32 && c != '\t' && c != '\n' && c != '\r' {
			return -1
		}
		return c
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
