// Package convert provides line processors which convert float samples
// into saturated int32 samples.
package convert

import (
	"context"
	"fmt"

	"github.com/pipelined/fixpoint"
	"github.com/pipelined/fixpoint/metric"
	"github.com/pipelined/fixpoint/signal"
)

type (
	// int32Converter is the metric key of Int32 processors.
	int32Converter struct{}
	// bitDepthConverter is the metric key of BitDepth processors.
	bitDepthConverter struct{}

	// Option provides a way to set optional parameters of processors.
	Option func(*options)

	options struct {
		sampleRate  int
		numChannels int
		workers     int
	}
)

// WithFormat sets the format of converted signal. It enables signal
// duration metric.
func WithFormat(sampleRate, numChannels int) Option {
	return func(o *options) {
		o.sampleRate = sampleRate
		o.numChannels = numChannels
	}
}

// WithWorkers splits every buffer between provided number of goroutines.
// Only Int32 processor supports it.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

func newOptions(opts []Option) options {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Int32 returns allocator of processor which converts samples with
// signal.FloatToInt32. Samples are not scaled.
func Int32(opts ...Option) fixpoint.ProcessorAllocatorFunc[float32, int32] {
	return func(bufferSize int) (fixpoint.Processor[float32, int32], error) {
		o := newOptions(opts)
		reset := metric.Meter(int32Converter{}, o.sampleRate, o.numChannels)
		var (
			measure metric.MeasureFunc
			runCtx  context.Context
		)
		return fixpoint.Processor[float32, int32]{
			StartFunc: func(ctx context.Context) error {
				measure = reset()
				runCtx = ctx
				return nil
			},
			ProcessFunc: func(in []float32, out []int32) (int, error) {
				if len(in) > len(out) {
					return 0, fmt.Errorf("%w: in=%d out=%d", signal.ErrBufferCapacity, len(in), len(out))
				}
				if o.workers > 1 {
					if err := signal.ConvertParallel(runCtx, in, out[:len(in)], o.workers); err != nil {
						return 0, err
					}
				} else {
					signal.FloatToInt32(in, out, len(in))
				}
				measure(int64(len(in)), int64(signal.Clipped(in, len(in))))
				return len(in), nil
			},
		}, nil
	}
}

// BitDepth returns allocator of processor which quantizes full-scale
// samples into provided bit depth with BitDepth.Quantize.
func BitDepth(bitDepth signal.BitDepth, opts ...Option) fixpoint.ProcessorAllocatorFunc[float32, int32] {
	return func(bufferSize int) (fixpoint.Processor[float32, int32], error) {
		o := newOptions(opts)
		reset := metric.Meter(bitDepthConverter{}, o.sampleRate, o.numChannels)
		var measure metric.MeasureFunc
		return fixpoint.Processor[float32, int32]{
			StartFunc: func(context.Context) error {
				measure = reset()
				return nil
			},
			ProcessFunc: func(in []float32, out []int32) (int, error) {
				if len(in) > len(out) {
					return 0, fmt.Errorf("%w: in=%d out=%d", signal.ErrBufferCapacity, len(in), len(out))
				}
				var clipped int64
				for i := range in {
					if bitDepth.Clips(float64(in[i])) {
						clipped++
					}
					out[i] = int32(bitDepth.Quantize(float64(in[i])))
				}
				measure(int64(len(in)), clipped)
				return len(in), nil
			},
		}, nil
	}
}
