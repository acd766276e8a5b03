package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/pipelined/fixpoint"
)

// rawSource reads little-endian float32 samples. Trailing bytes that don't
// form a whole sample are ignored.
func rawSource(r io.Reader) fixpoint.SourceAllocatorFunc[float32] {
	return func(bufferSize int) (fixpoint.Source[float32], error) {
		br := bufio.NewReader(r)
		buf := make([]byte, 4*bufferSize)
		return fixpoint.Source[float32]{
			SourceFunc: func(out []float32) (int, error) {
				n, err := io.ReadFull(br, buf[:4*len(out)])
				read := n / 4
				for i := 0; i < read; i++ {
					out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
				}
				switch {
				case err == nil:
					return read, nil
				case errors.Is(err, io.EOF), read == 0 && errors.Is(err, io.ErrUnexpectedEOF):
					return 0, io.EOF
				case errors.Is(err, io.ErrUnexpectedEOF):
					return read, io.ErrUnexpectedEOF
				default:
					return 0, err
				}
			},
		}, nil
	}
}

// rawSink writes little-endian int32 samples.
func rawSink(w io.Writer) fixpoint.SinkAllocatorFunc[int32] {
	return func(bufferSize int) (fixpoint.Sink[int32], error) {
		bw := bufio.NewWriter(w)
		buf := make([]byte, 4*bufferSize)
		return fixpoint.Sink[int32]{
			SinkFunc: func(in []int32) error {
				for i, v := range in {
					binary.LittleEndian.PutUint32(buf[4*i:], uint32(v))
				}
				_, err := bw.Write(buf[:4*len(in)])
				return err
			},
			FlushFunc: func(context.Context) error {
				return bw.Flush()
			},
		}, nil
	}
}
