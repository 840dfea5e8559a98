package protocol

// FifoBuffer is a fixed-size byte ring holding received serial data until
// the line reader asks for it. It is not safe for concurrent use; FifoStream
// adds the locking.
type FifoBuffer struct {
	buf   []byte
	head  int // next byte to read
	count int
}

// NewFifoBuffer creates a ring holding up to capacity bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns how many bytes were
// kept. The rest is dropped.
func (f *FifoBuffer) Write(data []byte) int {
	n := min(len(data), len(f.buf)-f.count)
	tail := (f.head + f.count) % len(f.buf)
	for i := 0; i < n; i++ {
		f.buf[(tail+i)%len(f.buf)] = data[i]
	}
	f.count += n
	return n
}

// Read moves up to len(data) bytes out of the ring
func (f *FifoBuffer) Read(data []byte) int {
	n := min(len(data), f.count)
	for i := 0; i < n; i++ {
		data[i] = f.buf[(f.head+i)%len(f.buf)]
	}
	f.head = (f.head + n) % len(f.buf)
	f.count -= n
	return n
}

// Available returns the number of bytes waiting to be read
func (f *FifoBuffer) Available() int {
	return f.count
}
