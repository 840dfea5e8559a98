package protocol

import (
	"bytes"
	"testing"
)

func TestFifoBufferKeepsOrderAcrossWrap(t *testing.T) {
	fifo := NewFifoBuffer(4)

	if n := fifo.Write([]byte("abc")); n != 3 {
		t.Fatalf("Expected to keep 3 bytes, kept %d", n)
	}
	buf := make([]byte, 2)
	if n := fifo.Read(buf); n != 2 || string(buf) != "ab" {
		t.Fatalf("Expected \"ab\", got %q", buf[:n])
	}

	// The write position now wraps past the end of the ring
	if n := fifo.Write([]byte("def")); n != 3 {
		t.Fatalf("Expected to keep 3 bytes, kept %d", n)
	}
	if fifo.Available() != 4 {
		t.Errorf("Expected a full ring, got %d available", fifo.Available())
	}

	out := make([]byte, 8)
	n := fifo.Read(out)
	if !bytes.Equal(out[:n], []byte("cdef")) {
		t.Errorf("Expected \"cdef\", got %q", out[:n])
	}
	if fifo.Available() != 0 {
		t.Errorf("Expected an empty ring, got %d available", fifo.Available())
	}
}

func TestFifoBufferDropsOverflow(t *testing.T) {
	fifo := NewFifoBuffer(3)
	if n := fifo.Write([]byte("12345")); n != 3 {
		t.Errorf("Expected 3 bytes kept, got %d", n)
	}
	if n := fifo.Write([]byte("6")); n != 0 {
		t.Errorf("Expected a full ring to refuse writes, kept %d", n)
	}
	out := make([]byte, 5)
	n := fifo.Read(out)
	if string(out[:n]) != "123" {
		t.Errorf("Expected the head of the data to survive, got %q", out[:n])
	}
}

func TestFifoStreamCountsDropped(t *testing.T) {
	s := NewFifoStream(3)
	n, err := s.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write: n=%d err=%v", n, err)
	}
	if s.Available() != 3 {
		t.Errorf("Expected 3 bytes buffered, got %d", s.Available())
	}
	if s.Dropped() != 2 {
		t.Errorf("Expected 2 dropped bytes, got %d", s.Dropped())
	}

	buf := make([]byte, 8)
	n, _ = s.Read(buf)
	if string(buf[:n]) != "hel" {
		t.Errorf("Read: expected \"hel\", got %q", buf[:n])
	}

	if err := s.WriteByte('x'); err != nil || s.Available() != 1 {
		t.Errorf("WriteByte: err=%v available=%d", err, s.Available())
	}
}
