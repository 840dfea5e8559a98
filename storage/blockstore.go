package storage

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// BlockDevice is a flash-like device: erase before write, writes in whole
// write blocks. TinyGo's machine.Flash satisfies it.
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt

	// Size is the usable size in bytes
	Size() int64

	// WriteBlockSize is the write granularity in bytes
	WriteBlockSize() int64

	// EraseBlockSize is the erase granularity in bytes
	EraseBlockSize() int64

	// EraseBlocks erases length blocks starting at block start
	EraseBlocks(start, length int64) error
}

// SlotSize is the number of bytes reserved per key
const SlotSize = 16

var (
	// ErrUnknownKey is returned for keys not in the store's layout
	ErrUnknownKey = errors.New("storage: unknown key")

	// ErrBlank is returned when neither copy holds a committed record
	ErrBlank = errors.New("storage: no committed record")
)

// BlockStore keeps a fixed set of keys in the first two erase blocks of a
// block device. Each block holds a full copy of the record: one SlotSize slot
// per key with decimal text padded with newlines, then a sequence number in
// its own write block. A write erases the older copy, fills in the data and
// writes the sequence number last, so a power cut at any point leaves the
// previous record readable. Erased flash reads as 0xFF, which fails to parse;
// a copy whose sequence number does not parse was never committed.
type BlockStore struct {
	dev  BlockDevice
	keys []string
}

// NewBlockStore lays out keys, in order, in the device's first two erase
// blocks
func NewBlockStore(dev BlockDevice, keys ...string) (*BlockStore, error) {
	s := &BlockStore{dev: dev, keys: keys}
	eb := dev.EraseBlockSize()
	if need := s.dataSize() + s.seqSize(); need > eb {
		return nil, fmt.Errorf("storage: %d keys need %d bytes, erase block is %d", len(keys), need, eb)
	}
	if dev.Size() < 2*eb {
		return nil, fmt.Errorf("storage: device holds %d bytes, need two %d byte erase blocks", dev.Size(), eb)
	}
	return s, nil
}

func (s *BlockStore) slot(key string) (int, error) {
	for i, k := range s.keys {
		if k == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// roundUp rounds n up to whole write blocks
func (s *BlockStore) roundUp(n int64) int64 {
	wb := s.dev.WriteBlockSize()
	if wb <= 0 {
		return n
	}
	return (n + wb - 1) / wb * wb
}

func (s *BlockStore) dataSize() int64 { return s.roundUp(int64(len(s.keys) * SlotSize)) }
func (s *BlockStore) seqSize() int64  { return s.roundUp(SlotSize) }

func (s *BlockStore) base(block int64) int64 { return block * s.dev.EraseBlockSize() }

// sequence reads the commit number of block; ok is false for a copy that
// was erased or never finished
func (s *BlockStore) sequence(block int64) (seq int, ok bool) {
	buf := make([]byte, SlotSize)
	if _, err := s.dev.ReadAt(buf, s.base(block)+s.dataSize()); err != nil {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimSpace(string(buf)))
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// current returns the newest committed copy
func (s *BlockStore) current() (block int64, seq int, ok bool) {
	seq0, ok0 := s.sequence(0)
	seq1, ok1 := s.sequence(1)
	switch {
	case ok0 && ok1 && seq1 > seq0:
		return 1, seq1, true
	case ok0:
		return 0, seq0, true
	case ok1:
		return 1, seq1, true
	}
	return 0, 0, false
}

// ReadInt reads the integer stored under key
func (s *BlockStore) ReadInt(key string) (int, error) {
	i, err := s.slot(key)
	if err != nil {
		return 0, err
	}
	block, _, ok := s.current()
	if !ok {
		return 0, ErrBlank
	}
	buf := make([]byte, SlotSize)
	if _, err := s.dev.ReadAt(buf, s.base(block)+int64(i*SlotSize)); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(buf)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return v, nil
}

// WriteInt stores value under key by committing a new copy of the record
// into the older block. The write is complete when WriteInt returns.
func (s *BlockStore) WriteInt(key string, value int) error {
	i, err := s.slot(key)
	if err != nil {
		return err
	}
	text := strconv.Itoa(value)
	if len(text) > SlotSize {
		return fmt.Errorf("storage: value %d does not fit a slot", value)
	}

	data := make([]byte, s.dataSize())
	fill(data)
	target := int64(0)
	block, seq, ok := s.current()
	if ok {
		if _, err := s.dev.ReadAt(data, s.base(block)); err != nil {
			return fmt.Errorf("failed to read block: %w", err)
		}
		target = 1 - block
	}
	slot := data[i*SlotSize : (i+1)*SlotSize]
	fill(slot)
	copy(slot, text)

	commit := make([]byte, s.seqSize())
	fill(commit)
	copy(commit, strconv.Itoa(seq+1))

	if err := s.dev.EraseBlocks(target, 1); err != nil {
		return fmt.Errorf("failed to erase block: %w", err)
	}
	if _, err := s.dev.WriteAt(data, s.base(target)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if _, err := s.dev.WriteAt(commit, s.base(target)+s.dataSize()); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func fill(b []byte) {
	for j := range b {
		b[j] = '\n'
	}
}
