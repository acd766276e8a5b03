package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/fixpoint"
	"github.com/pipelined/fixpoint/scrambler"
)

type scrambleCommand struct {
	in         string
	out        string
	mask       uint
	seed       uint
	length     int
	bufferSize int
	descramble bool
}

//Implement command interface
func (cmd *scrambleCommand) Name() string {
	return "scramble"
}

func (cmd *scrambleCommand) Help() string {
	return "Scramble or descramble bits of a file with LFSR"
}

func (cmd *scrambleCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input file (required)")
	fs.StringVar(&cmd.out, "out", "", "output file (required)")
	fs.UintVar(&cmd.mask, "mask", 0x8A, "polynomial mask of the register")
	fs.UintVar(&cmd.seed, "seed", 0x7F, "initial register contents")
	fs.IntVar(&cmd.length, "len", 7, "register length")
	fs.IntVar(&cmd.bufferSize, "buffer", 4096, "number of bits processed at once")
	fs.BoolVar(&cmd.descramble, "descramble", false, "descramble instead of scramble")
}

func (cmd *scrambleCommand) Run(ctx context.Context, logger logrus.FieldLogger) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	data, err := os.ReadFile(cmd.in)
	if err != nil {
		return err
	}

	processor := scrambler.Processor(uint32(cmd.mask), uint32(cmd.seed), cmd.length)
	if cmd.descramble {
		processor = scrambler.DescramblerProcessor(uint32(cmd.mask), uint32(cmd.seed), cmd.length)
	}
	bits := scrambler.Unpack(data)
	result := make([]byte, 0, len(bits))
	l := fixpoint.Line[byte, byte]{
		Source:    bitSource(bits),
		Processor: processor,
		Sink: func(int) (fixpoint.Sink[byte], error) {
			return fixpoint.Sink[byte]{
				SinkFunc: func(in []byte) error {
					result = append(result, in...)
					return nil
				},
			}, nil
		},
	}
	logger.WithFields(logrus.Fields{
		"bits":       len(bits),
		"descramble": cmd.descramble,
	}).Info("scrambling")
	r, err := l.Run(ctx, cmd.bufferSize, fixpoint.WithLogger(logger), fixpoint.WithName(cmd.Name()))
	if err != nil {
		return err
	}
	if err := r.Wait(); err != nil {
		return err
	}
	return os.WriteFile(cmd.out, scrambler.Pack(result), 0o644)
}

func (cmd *scrambleCommand) Validate() error {
	var errs []error
	if cmd.in == "" {
		errs = append(errs, errors.New("missing -in required flag"))
	}
	if cmd.out == "" {
		errs = append(errs, errors.New("missing -out required flag"))
	}
	if cmd.bufferSize <= 0 {
		errs = append(errs, fmt.Errorf("invalid -buffer value: %d", cmd.bufferSize))
	}
	if cmd.mask > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("-mask value exceeds 32 bits: %#x", cmd.mask))
	}
	if cmd.seed > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("-seed value exceeds 32 bits: %#x", cmd.seed))
	}
	return errors.Join(errs...)
}

// bitSource emits unpacked bits.
func bitSource(bits []byte) fixpoint.SourceAllocatorFunc[byte] {
	return func(int) (fixpoint.Source[byte], error) {
		var pos int
		return fixpoint.Source[byte]{
			SourceFunc: func(out []byte) (int, error) {
				if pos == len(bits) {
					return 0, io.EOF
				}
				n := copy(out, bits[pos:])
				pos += n
				if n < len(out) {
					return n, io.ErrUnexpectedEOF
				}
				return n, nil
			},
		}, nil
	}
}
