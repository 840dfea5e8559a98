package protocol

// ByteSource is a receive buffer filled behind our back, e.g. TinyGo's
// machine.Serial whose USB interrupt queues bytes from the host.
type ByteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

// SourceStream reads a ByteSource in place. Nothing is copied ahead of
// time, so Available always reflects what the source holds and draining
// empties the source itself.
type SourceStream struct {
	src ByteSource
}

// NewSourceStream wraps src
func NewSourceStream(src ByteSource) *SourceStream {
	return &SourceStream{src: src}
}

func (s *SourceStream) Available() int {
	return s.src.Buffered()
}

func (s *SourceStream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && s.src.Buffered() > 0 {
		b, err := s.src.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}
