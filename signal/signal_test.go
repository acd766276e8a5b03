package signal_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/fixpoint/signal"
)

func TestBitDepth(t *testing.T) {
	tests := []struct {
		bitDepth signal.BitDepth
		min      int64
		max      int64
	}{
		{bitDepth: signal.BitDepth8, min: math.MinInt8, max: math.MaxInt8},
		{bitDepth: signal.BitDepth16, min: math.MinInt16, max: math.MaxInt16},
		{bitDepth: signal.BitDepth24, min: -8388608, max: 8388607},
		{bitDepth: signal.BitDepth32, min: math.MinInt32, max: math.MaxInt32},
		{bitDepth: signal.BitDepth(0), min: math.MinInt32, max: math.MaxInt32},
		{bitDepth: signal.BitDepth(12), min: math.MinInt32, max: math.MaxInt32},
	}
	for _, test := range tests {
		assert.Equal(t, test.min, test.bitDepth.MinValue())
		assert.Equal(t, test.max, test.bitDepth.MaxValue())
		assert.Equal(t, test.min, test.bitDepth.Saturate(math.MinInt64))
		assert.Equal(t, test.max, test.bitDepth.Saturate(math.MaxInt64))
		assert.Equal(t, int64(-1), test.bitDepth.Saturate(-1))
	}
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, time.Second, signal.DurationOf(44100, 44100))
	assert.Equal(t, 500*time.Millisecond, signal.DurationOf(48000, 24000))
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		bitDepth signal.BitDepth
		in       []float64
		expected []int
	}{
		{
			bitDepth: signal.BitDepth16,
			in:       []float64{1, 0.5, 2, -2},
			expected: []int{math.MaxInt16, 16384, math.MaxInt16, math.MinInt16},
		},
		{
			bitDepth: signal.BitDepth8,
			in:       []float64{1, -1, 1.5, -1.5},
			expected: []int{math.MaxInt8, -math.MaxInt8, math.MaxInt8, math.MinInt8},
		},
		{
			bitDepth: signal.BitDepth32,
			in:       []float64{1, math.Inf(-1), math.NaN()},
			expected: []int{math.MaxInt32, math.MinInt32, 0},
		},
		{
			// unsupported depth doesn't scale
			bitDepth: signal.BitDepth(0),
			in:       []float64{0.5, 2.5, 1e12, -1e12},
			expected: []int{0, 2, math.MaxInt32, math.MinInt32},
		},
	}
	for _, test := range tests {
		for i, v := range test.in {
			assert.Equal(t, test.expected[i], test.bitDepth.Quantize(v), "%v %v", test.bitDepth, v)
		}
	}
}

func TestClips(t *testing.T) {
	tests := []struct {
		bitDepth signal.BitDepth
		value    float64
		clips    bool
	}{
		{bitDepth: signal.BitDepth16, value: 1, clips: false},
		{bitDepth: signal.BitDepth16, value: -1, clips: false},
		{bitDepth: signal.BitDepth16, value: 1.01, clips: true},
		{bitDepth: signal.BitDepth16, value: -1.00001, clips: false},
		{bitDepth: signal.BitDepth16, value: -1.01, clips: true},
		{bitDepth: signal.BitDepth8, value: math.Inf(1), clips: true},
		{bitDepth: signal.BitDepth8, value: math.NaN(), clips: false},
		{bitDepth: signal.BitDepth(0), value: 3e9, clips: true},
	}
	for _, test := range tests {
		assert.Equal(t, test.clips, test.bitDepth.Clips(test.value), "%v %v", test.bitDepth, test.value)
	}
}
