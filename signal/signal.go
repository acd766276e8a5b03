// Package signal converts sample buffers between floating point and fixed
// width integer representations. It allows to:
// 	- convert float samples to int32 with rounding and saturation
// 	- convert interleaved data to non-interleaved
// 	- quantize float signals into int signals of given bit depth
package signal

import (
	"math"
	"time"
)

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// BitDepth contains values required for int-to-float and backward
// conversion. Unsupported bit depths do not scale samples and saturate
// to the int32 range.
type BitDepth int

func (bitDepth BitDepth) supported() bool {
	switch bitDepth {
	case BitDepth8, BitDepth16, BitDepth24, BitDepth32:
		return true
	}
	return false
}

// MaxValue returns the largest sample value of the bit depth.
func (bitDepth BitDepth) MaxValue() int64 {
	if !bitDepth.supported() {
		return MaxInt32
	}
	return 1<<(bitDepth-1) - 1
}

// MinValue returns the lowest sample value of the bit depth.
func (bitDepth BitDepth) MinValue() int64 {
	if !bitDepth.supported() {
		return MinInt32
	}
	return -(1 << (bitDepth - 1))
}

// scale is used for both int to float and float to int conversions.
func (bitDepth BitDepth) scale() float64 {
	if !bitDepth.supported() {
		return 1
	}
	return float64(bitDepth.MaxValue())
}

// Saturate clamps the value to the bounds of the bit depth.
func (bitDepth BitDepth) Saturate(v int64) int64 {
	if lo := bitDepth.MinValue(); v < lo {
		return lo
	}
	if hi := bitDepth.MaxValue(); v > hi {
		return hi
	}
	return v
}

// Quantize scales full-scale float sample to the bit depth, rounds it half
// to even and saturates. NaN is quantized to zero.
func (bitDepth BitDepth) Quantize(v float64) int {
	return int(bitDepth.Saturate(int64(Float64ToInt32(v * bitDepth.scale()))))
}

// Normalize converts int sample of the bit depth into full-scale float.
func (bitDepth BitDepth) Normalize(v int) float64 {
	return float64(v) / bitDepth.scale()
}

// Clips returns true if the sample is saturated by Quantize.
func (bitDepth BitDepth) Clips(v float64) bool {
	r := math.RoundToEven(v * bitDepth.scale())
	return r < float64(bitDepth.MinValue()) || r > float64(bitDepth.MaxValue())
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}
