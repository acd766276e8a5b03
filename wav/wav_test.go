package wav_test

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/fixpoint"
	"github.com/pipelined/fixpoint/convert"
	"github.com/pipelined/fixpoint/log"
	"github.com/pipelined/fixpoint/mock"
	"github.com/pipelined/fixpoint/signal"
	"github.com/pipelined/fixpoint/wav"
)

const sampleRate = 44100

// write encodes samples into a new wav file.
func write(t *testing.T, path string, numChannels int, bitDepth signal.BitDepth, samples []int32) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	l := fixpoint.Line[int32, int32]{
		Source:    (&mock.Source[int32]{Data: samples}).Source(),
		Processor: (&mock.Processor[int32, int32]{Fn: func(v int32) int32 { return v }}).Processor(),
		Sink:      wav.Sink(f, sampleRate, numChannels, bitDepth),
	}
	r, err := l.Run(context.Background(), 64*numChannels, fixpoint.WithLogger(log.Silent()))
	require.NoError(t, err)
	require.NoError(t, r.Wait())
}

// read decodes wav file and quantizes it back.
func read(t *testing.T, path string, numChannels int, bitDepth signal.BitDepth) []int32 {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	source, err := wav.NewSource(f)
	require.NoError(t, err)
	assert.Equal(t, sampleRate, source.SampleRate())
	assert.Equal(t, numChannels, source.NumChannels())
	assert.Equal(t, bitDepth, source.BitDepth())

	sink := &mock.Sink[int32]{}
	l := fixpoint.Line[float32, int32]{
		Source:    source.Source(),
		Processor: convert.BitDepth(bitDepth),
		Sink:      sink.Sink(),
	}
	r, err := l.Run(context.Background(), 100*numChannels, fixpoint.WithLogger(log.Silent()))
	require.NoError(t, err)
	require.NoError(t, r.Wait())
	return sink.Data
}

func TestRoundTrip(t *testing.T) {
	ramp := make([]int32, 2*1001)
	for i := range ramp {
		ramp[i] = int32(i*37%math.MaxUint16 - math.MaxInt16)
	}
	tests := []struct {
		name        string
		numChannels int
		bitDepth    signal.BitDepth
		samples     []int32
	}{
		{
			name:        "16 bit stereo",
			numChannels: 2,
			bitDepth:    signal.BitDepth16,
			samples:     ramp,
		},
		{
			name:        "24 bit mono",
			numChannels: 1,
			bitDepth:    signal.BitDepth24,
			samples:     []int32{0, 8388607, -8388607, 1, -1, 4194304},
		},
		{
			name:        "32 bit mono",
			numChannels: 1,
			bitDepth:    signal.BitDepth32,
			samples:     []int32{0, math.MaxInt32, -math.MaxInt32, 1 << 30, -(1 << 30)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.wav")
			write(t, path, test.numChannels, test.bitDepth, test.samples)
			assert.Equal(t, test.samples, read(t, path, test.numChannels, test.bitDepth))
		})
	}
}

func TestInvalidFile(t *testing.T) {
	_, err := wav.NewSource(bytes.NewReader([]byte("definitely not a wav file")))
	assert.ErrorIs(t, err, wav.ErrInvalidFile)
}

func TestUnsupportedBitDepth(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	require.NoError(t, err)
	defer f.Close()
	_, err = wav.Sink(f, sampleRate, 1, signal.BitDepth8)(64)
	assert.ErrorIs(t, err, wav.ErrUnsupportedBitDepth)
}

func TestBufferSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	write(t, path, 2, signal.BitDepth16, []int32{1, 2, 3, 4})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	source, err := wav.NewSource(f)
	require.NoError(t, err)
	_, err = source.Source()(3)
	assert.ErrorIs(t, err, wav.ErrBufferSize)
}

// encode writes raw samples into a new wav file of provided audio format.
func encode(t *testing.T, path string, bitDepth, audioFormat int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	e := gowav.NewEncoder(f, sampleRate, bitDepth, 1, audioFormat)
	require.NoError(t, e.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, e.Close())
}

func TestFloatFormat(t *testing.T) {
	samples := []float32{0.5, -0.25, 0, 1, -1, 1.5}
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(int32(math.Float32bits(v)))
	}
	path := filepath.Join(t.TempDir(), "float.wav")
	encode(t, path, 32, 3, data)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	source, err := wav.NewSource(f)
	require.NoError(t, err)
	assert.True(t, source.Float())
	assert.Equal(t, signal.BitDepth32, source.BitDepth())

	sink := &mock.Sink[int32]{}
	l := fixpoint.Line[float32, int32]{
		Source:    source.Source(),
		Processor: convert.BitDepth(signal.BitDepth16),
		Sink:      sink.Sink(),
	}
	r, err := l.Run(context.Background(), 4, fixpoint.WithLogger(log.Silent()))
	require.NoError(t, err)
	require.NoError(t, r.Wait())
	assert.Equal(t, []int32{16384, -8192, 0, math.MaxInt16, -math.MaxInt16, math.MaxInt16}, sink.Data)
}

func TestUnsupportedFormat(t *testing.T) {
	tests := []struct {
		name        string
		bitDepth    int
		audioFormat int
	}{
		{name: "16 bit float", bitDepth: 16, audioFormat: 3},
		{name: "adpcm", bitDepth: 16, audioFormat: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.wav")
			encode(t, path, test.bitDepth, test.audioFormat, []int{1, 2, 3, 4})
			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			_, err = wav.NewSource(f)
			assert.ErrorIs(t, err, wav.ErrUnsupportedFormat)
		})
	}
}
