package scrambler

import (
	"github.com/pipelined/fixpoint"
)

type (
	// Scrambler scrambles unpacked bits. It's stateful and not safe for
	// concurrent use.
	Scrambler struct {
		lfsr *LFSR
	}

	// Descrambler reverses Scrambler with the same mask and length. It is
	// self-synchronizing: starting from bit 2*length+2 the output equals
	// the scrambler input delayed by length+1 bits, regardless of seeds.
	Descrambler struct {
		lfsr *LFSR
	}
)

// New returns a scrambler with provided polynomial mask, initial register
// contents and register length.
func New(mask, seed uint32, length int) (*Scrambler, error) {
	l, err := NewLFSR(mask, seed, length)
	if err != nil {
		return nil, err
	}
	return &Scrambler{lfsr: l}, nil
}

// NewDescrambler returns a descrambler with provided polynomial mask,
// initial register contents and register length.
func NewDescrambler(mask, seed uint32, length int) (*Descrambler, error) {
	l, err := NewLFSR(mask, seed, length)
	if err != nil {
		return nil, err
	}
	return &Descrambler{lfsr: l}, nil
}

// Process scrambles min(len(in), len(out)) bits and returns their number.
func (s *Scrambler) Process(in, out []byte) int {
	n := min(len(in), len(out))
	for i := 0; i < n; i++ {
		out[i] = s.lfsr.Scramble(in[i])
	}
	return n
}

// Reset restores the initial register contents.
func (s *Scrambler) Reset() {
	s.lfsr.Reset()
}

// Process descrambles min(len(in), len(out)) bits and returns their number.
func (d *Descrambler) Process(in, out []byte) int {
	n := min(len(in), len(out))
	for i := 0; i < n; i++ {
		out[i] = d.lfsr.Descramble(in[i])
	}
	return n
}

// Reset restores the initial register contents.
func (d *Descrambler) Reset() {
	d.lfsr.Reset()
}

// Processor returns allocator of line processor that scrambles bits. Every
// allocation starts from the seed.
func Processor(mask, seed uint32, length int) fixpoint.ProcessorAllocatorFunc[byte, byte] {
	return func(bufferSize int) (fixpoint.Processor[byte, byte], error) {
		s, err := New(mask, seed, length)
		if err != nil {
			return fixpoint.Processor[byte, byte]{}, err
		}
		return fixpoint.Processor[byte, byte]{
			ProcessFunc: func(in, out []byte) (int, error) {
				return s.Process(in, out), nil
			},
		}, nil
	}
}

// DescramblerProcessor returns allocator of line processor that
// descrambles bits.
func DescramblerProcessor(mask, seed uint32, length int) fixpoint.ProcessorAllocatorFunc[byte, byte] {
	return func(bufferSize int) (fixpoint.Processor[byte, byte], error) {
		d, err := NewDescrambler(mask, seed, length)
		if err != nil {
			return fixpoint.Processor[byte, byte]{}, err
		}
		return fixpoint.Processor[byte, byte]{
			ProcessFunc: func(in, out []byte) (int, error) {
				return d.Process(in, out), nil
			},
		}, nil
	}
}

// Unpack splits every byte into 8 bits, most significant bit first.
func Unpack(packed []byte) []byte {
	unpacked := make([]byte, 0, len(packed)*8)
	for _, b := range packed {
		for i := 7; i >= 0; i-- {
			unpacked = append(unpacked, b>>uint(i)&1)
		}
	}
	return unpacked
}

// Pack joins every 8 bits into a byte, most significant bit first. The
// last byte is padded with zero bits.
func Pack(unpacked []byte) []byte {
	packed := make([]byte, (len(unpacked)+7)/8)
	for i, bit := range unpacked {
		packed[i/8] |= (bit & 1) << uint(7-i%8)
	}
	return packed
}
