// Package scrambler implements additive-feedback bit scrambling with a
// linear-feedback shift register. Streams are "unpacked": one bit per byte,
// only the least significant bit of each input byte is used.
package scrambler

import (
	"errors"
	"fmt"
	"math/bits"
)

// MaxLength is the maximum register length.
const MaxLength = 31

// ErrRegisterLength is returned when register length is out of
// [0, MaxLength] range.
var ErrRegisterLength = errors.New("invalid register length")

// LFSR is a Fibonacci linear-feedback shift register. The register holds
// length+1 bits: new bits enter at position length and the output is taken
// from position 0.
type LFSR struct {
	mask   uint32
	seed   uint32
	length uint
	reg    uint32
}

// NewLFSR returns register with provided polynomial mask, initial contents
// and length. Seed bits above length are ignored.
func NewLFSR(mask, seed uint32, length int) (*LFSR, error) {
	if length < 0 || length > MaxLength {
		return nil, fmt.Errorf("%w: %d", ErrRegisterLength, length)
	}
	seed &= uint32(uint64(1)<<(length+1) - 1)
	return &LFSR{
		mask:   mask,
		seed:   seed,
		length: uint(length),
		reg:    seed,
	}, nil
}

// NextBit shifts the register and returns the output bit.
func (l *LFSR) NextBit() byte {
	return l.shift(l.feedback())
}

// Scramble shifts input bit into the register and returns the output bit.
func (l *LFSR) Scramble(in byte) byte {
	return l.shift(l.feedback() ^ in&1)
}

// Descramble returns the descrambled output bit and shifts input bit into
// the register.
func (l *LFSR) Descramble(in byte) byte {
	out := l.feedback() ^ in&1
	l.shift(in & 1)
	return out
}

// Reset restores the seed.
func (l *LFSR) Reset() {
	l.reg = l.seed
}

// Register returns current register contents.
func (l *LFSR) Register() uint32 {
	return l.reg
}

// feedback is the parity of masked register bits.
func (l *LFSR) feedback() byte {
	return byte(bits.OnesCount32(l.reg&l.mask) & 1)
}

func (l *LFSR) shift(bit byte) byte {
	out := byte(l.reg & 1)
	l.reg = l.reg>>1 | uint32(bit)<<l.length
	return out
}
