// Package wav reads full-scale float samples from wav streams and writes
// quantized int samples into them.
package wav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/fixpoint"
	"github.com/pipelined/fixpoint/signal"
)

// Wav audio formats.
const (
	pcmFormat   = 1
	floatFormat = 3
)

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned when wav stream cannot be decoded.
	ErrInvalidFile = errors.New("wav is not valid")
	// ErrBufferSize is returned when buffer size is not a multiple of
	// number of channels.
	ErrBufferSize = errors.New("buffer size is not aligned with channels")
	// ErrUnsupportedFormat is returned when wav audio format is neither
	// integer PCM nor 32 bit IEEE float.
	ErrUnsupportedFormat = errors.New("only PCM and 32 bit IEEE float formats are supported")
)

// Source reads interleaved samples from wav stream. This component cannot
// be reused for consequent runs.
type Source struct {
	decoder     *wav.Decoder
	float       bool
	bitDepth    signal.BitDepth
	sampleRate  int
	numChannels int
}

// NewSource reads wav headers and returns a new source.
func NewSource(r io.ReadSeeker) (*Source, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}
	bitDepth := signal.BitDepth(decoder.BitDepth)
	switch decoder.WavAudioFormat {
	case pcmFormat:
		if !supported(bitDepth) {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
		}
	case floatFormat:
		if bitDepth != signal.BitDepth32 {
			return nil, fmt.Errorf("%w: %d bit float", ErrUnsupportedFormat, bitDepth)
		}
	default:
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}
	return &Source{
		decoder:     decoder,
		float:       decoder.WavAudioFormat == floatFormat,
		bitDepth:    bitDepth,
		sampleRate:  int(decoder.SampleRate),
		numChannels: int(decoder.NumChans),
	}, nil
}

// SampleRate returns sample rate of the stream.
func (s *Source) SampleRate() int {
	return s.sampleRate
}

// NumChannels returns number of channels of the stream.
func (s *Source) NumChannels() int {
	return s.numChannels
}

// Float returns true if the stream holds IEEE float samples.
func (s *Source) Float() bool {
	return s.float
}

// BitDepth returns bit depth of the stream.
func (s *Source) BitDepth() signal.BitDepth {
	return s.bitDepth
}

// Source returns allocator of line source. Samples are interleaved, so
// buffer size must be a multiple of number of channels.
func (s *Source) Source() fixpoint.SourceAllocatorFunc[float32] {
	return func(bufferSize int) (fixpoint.Source[float32], error) {
		if bufferSize%s.numChannels != 0 {
			return fixpoint.Source[float32]{}, fmt.Errorf("%w: %d samples for %d channels", ErrBufferSize, bufferSize, s.numChannels)
		}
		ib := &audio.IntBuffer{
			Format:         s.decoder.Format(),
			Data:           make([]int, bufferSize),
			SourceBitDepth: int(s.bitDepth),
		}
		return fixpoint.Source[float32]{
			SourceFunc: func(out []float32) (int, error) {
				read, err := s.decoder.PCMBuffer(ib)
				if err != nil && !errors.Is(err, io.EOF) {
					return 0, err
				}
				if read == 0 {
					return 0, io.EOF
				}
				if s.float {
					// decoder returns raw bits of 32 bit samples
					for i, v := range ib.Data[:read] {
						out[i] = math.Float32frombits(uint32(v))
					}
				} else {
					for i, v := range ib.Data[:read] {
						out[i] = float32(s.bitDepth.Normalize(v))
					}
				}
				if read != len(out) {
					return read, io.ErrUnexpectedEOF
				}
				return read, nil
			},
		}, nil
	}
}

// Sink returns allocator of line sink that encodes samples into wav
// stream. Samples must be already quantized to the bit depth. Encoder is
// closed in flush hook, the writer stays open.
func Sink(w io.WriteSeeker, sampleRate, numChannels int, bitDepth signal.BitDepth) fixpoint.SinkAllocatorFunc[int32] {
	return func(bufferSize int) (fixpoint.Sink[int32], error) {
		if !supported(bitDepth) {
			return fixpoint.Sink[int32]{}, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
		}
		e := wav.NewEncoder(w, sampleRate, int(bitDepth), numChannels, pcmFormat)
		ib := &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			Data:           make([]int, 0, bufferSize),
			SourceBitDepth: int(bitDepth),
		}
		return fixpoint.Sink[int32]{
			SinkFunc: func(in []int32) error {
				ib.Data = ib.Data[:0]
				for _, v := range in {
					ib.Data = append(ib.Data, int(v))
				}
				return e.Write(ib)
			},
			FlushFunc: func(context.Context) error {
				return e.Close()
			},
		}, nil
	}
}

func supported(bitDepth signal.BitDepth) bool {
	switch bitDepth {
	case signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
		return true
	}
	return false
}
