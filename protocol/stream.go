package protocol

import (
	"errors"
	"io"
	"sync"
	"time"

	"macrokey/core"
)

// ByteStream is the receive side of the serial data channel
type ByteStream interface {
	// Available returns how many bytes can be read without waiting
	Available() int

	// Read copies up to len(p) buffered bytes into p. It never waits.
	Read(p []byte) (int, error)
}

// FifoStream is a ByteStream backed by a FifoBuffer. A reader loop (USB on
// the device, a serial port on the host) pushes bytes in with Write while the
// main loop polls Available and Read.
type FifoStream struct {
	mu      sync.Mutex
	fifo    *FifoBuffer
	dropped int
}

// NewFifoStream creates a stream holding up to capacity bytes
func NewFifoStream(capacity int) *FifoStream {
	return &FifoStream{fifo: NewFifoBuffer(capacity)}
}

// Write queues data for readers. Bytes that do not fit are counted and
// dropped; a lost tail turns into a timeout or a garbled line, both of which
// the line reader already tolerates.
func (s *FifoStream) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.fifo.Write(data)
	s.dropped += len(data) - n
	return len(data), nil
}

// WriteByte queues a single byte
func (s *FifoStream) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

func (s *FifoStream) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.Available()
}

func (s *FifoStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.Read(p), nil
}

// Dropped returns how many bytes were lost to overflow
func (s *FifoStream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// PortStream turns a blocking reader (a serial port with a read timeout)
// into a ByteStream by running a background read loop into a FifoStream.
type PortStream struct {
	*FifoStream

	port     io.ReadCloser
	stopChan chan struct{}
	doneChan chan struct{}
	once     sync.Once
}

// NewPortStream starts reading from port
func NewPortStream(port io.ReadCloser, capacity int) *PortStream {
	s := &PortStream{
		FifoStream: NewFifoStream(capacity),
		port:       port,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// readLoop continuously reads from the port until Close
func (s *PortStream) readLoop() {
	defer close(s.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		n, err := s.port.Read(buffer)
		if n > 0 {
			s.FifoStream.Write(buffer[:n])
		}
		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
			}
			if !errors.Is(err, io.EOF) {
				core.DebugPrintln("[SERIAL] read failed: " + err.Error())
			}
			// Back off and retry; a CDC peer can come and go
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// Close stops the read loop and closes the port
func (s *PortStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stopChan)
		err = s.port.Close()
		<-s.doneChan
	})
	return err
}
