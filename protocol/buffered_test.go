package protocol

import (
	"strings"
	"testing"
	"time"

	"macrokey/core"
)

// rxBuffer behaves like a UART/CDC receive buffer filled by an interrupt
type rxBuffer struct {
	data []byte
}

func (b *rxBuffer) Buffered() int { return len(b.data) }

func (b *rxBuffer) ReadByte() (byte, error) {
	c := b.data[0]
	b.data = b.data[1:]
	return c, nil
}

func TestSourceStreamReadsInPlace(t *testing.T) {
	rx := &rxBuffer{data: []byte("abc")}
	s := NewSourceStream(rx)

	if s.Available() != 3 {
		t.Fatalf("Expected 3 available, got %d", s.Available())
	}
	buf := make([]byte, 2)
	n, err := s.Read(buf)
	if err != nil || string(buf[:n]) != "ab" {
		t.Errorf("Expected \"ab\", got %q (%v)", buf[:n], err)
	}
	if rx.Buffered() != 1 {
		t.Errorf("Expected the source to keep 1 byte, got %d", rx.Buffered())
	}
	n, _ = s.Read(buf)
	if string(buf[:n]) != "c" || s.Available() != 0 {
		t.Errorf("Expected \"c\" and an empty source, got %q", buf[:n])
	}
}

func TestQueryDrainsSourceBeforeAsking(t *testing.T) {
	// A reply from an earlier round is still sitting in the receive buffer
	rx := &rxBuffer{data: []byte("stale answer\n")}
	rec := core.NewRecorder()
	rec.OnText = func(s string) {
		if strings.HasPrefix(s, "bash -c '") {
			rx.data = append(rx.data, "3\n"...)
		}
	}
	kbd := core.NewKeyboard(rec, core.NewSimClock(), core.DefaultTimings())
	q := NewQuerier(kbd, NewSourceStream(rx))

	if got := q.Query("p", time.Second); got != "3" {
		t.Errorf("Expected the fresh answer \"3\", got %q", got)
	}
}
