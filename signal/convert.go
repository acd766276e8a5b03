package signal

import (
	"errors"
	"fmt"
	"math"
)

// Saturation bounds of int32 conversion.
const (
	MinInt32 = math.MinInt32
	MaxInt32 = math.MaxInt32
)

// ErrBufferCapacity is used to panic when the number of samples to convert
// exceeds one of the buffers.
var ErrBufferCapacity = errors.New("buffer capacity exceeded")

// FloatToInt32 converts the first n samples of in into out. Every sample is
// rounded to the nearest integer, ties to even, and clamped to
// [MinInt32, MaxInt32]. Infinities are clamped as any other out-of-range
// value, NaN is converted to zero.
//
// It panics if n is negative or greater than the length of either buffer.
// Buffers must not overlap. It doesn't allocate and is safe to call
// concurrently on disjoint buffers.
func FloatToInt32(in []float32, out []int32, n int) {
	if n < 0 || n > len(in) || n > len(out) {
		panic(fmt.Errorf("%w: n=%d in=%d out=%d", ErrBufferCapacity, n, len(in), len(out)))
	}
	in, out = in[:n], out[:n]
	for i := range in {
		out[i] = Float32ToInt32(in[i])
	}
}

// Float32ToInt32 converts a single sample with FloatToInt32 rules.
func Float32ToInt32(v float32) int32 {
	return Float64ToInt32(float64(v))
}

// Float64ToInt32 converts a single sample with FloatToInt32 rules.
func Float64ToInt32(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	// clamp before the integer conversion, out-of-range float to int
	// conversions are implementation-specific.
	r := math.RoundToEven(v)
	if r < MinInt32 {
		return MinInt32
	}
	if r > MaxInt32 {
		return MaxInt32
	}
	return int32(r)
}

// Clipped returns the number of samples among the first n which are
// saturated by FloatToInt32. NaN samples are not counted.
func Clipped(in []float32, n int) int {
	var clipped int
	for _, v := range in[:n] {
		r := math.RoundToEven(float64(v))
		if r < MinInt32 || r > MaxInt32 {
			clipped++
		}
	}
	return clipped
}
