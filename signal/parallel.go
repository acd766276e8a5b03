package signal

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrLengthMismatch is returned when input and output buffers have
// different length.
var ErrLengthMismatch = errors.New("input and output length mismatch")

// ConvertParallel converts in to out with FloatToInt32 rules. Buffers are
// split into contiguous disjoint regions, one per worker, and each region is
// converted in its own goroutine. The result is identical to a single
// FloatToInt32 call.
func ConvertParallel(ctx context.Context, in []float32, out []int32, workers int) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(in), len(out))
	}
	if workers < 1 {
		workers = 1
	}
	size := (len(in) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(in); start += size {
		end := start + size
		if end > len(in) {
			end = len(in)
		}
		in, out := in[start:end], out[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			FloatToInt32(in, out, len(in))
			return nil
		})
	}
	return g.Wait()
}
