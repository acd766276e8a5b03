package fixpoint_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/fixpoint"
	"github.com/pipelined/fixpoint/log"
	"github.com/pipelined/fixpoint/mock"
)

const bufferSize = 512

var mockError = errors.New("mock error")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func samples(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i) + 0.5
	}
	return s
}

func TestLine(t *testing.T) {
	tests := []struct {
		samples    int
		bufferSize int
		messages   int
	}{
		{samples: 0, bufferSize: bufferSize, messages: 0},
		{samples: 1, bufferSize: bufferSize, messages: 1},
		{samples: 1000, bufferSize: bufferSize, messages: 2},
		{samples: 1024, bufferSize: bufferSize, messages: 2},
		{samples: 1025, bufferSize: 1, messages: 1025},
	}
	for _, test := range tests {
		source := &mock.Source[float32]{Data: samples(test.samples)}
		processor := &mock.Processor[float32, int32]{
			Fn: func(v float32) int32 { return int32(math.Floor(float64(v))) },
		}
		sink := &mock.Sink[int32]{}
		l := fixpoint.Line[float32, int32]{
			Source:    source.Source(),
			Processor: processor.Processor(),
			Sink:      sink.Sink(),
		}
		r, err := l.Run(context.Background(), test.bufferSize, fixpoint.WithLogger(log.Silent()), fixpoint.WithName("test"))
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID())
		require.NoError(t, r.Wait())

		messages, received := sink.Count()
		assert.Equal(t, test.messages, messages)
		assert.Equal(t, test.samples, received)
		require.Len(t, sink.Data, test.samples)
		for i, v := range sink.Data {
			assert.Equal(t, int32(i), v)
		}
		for _, h := range []*mock.Hooks{&source.Hooks, &processor.Hooks, &sink.Hooks} {
			assert.True(t, h.Started())
			assert.True(t, h.Flushed())
		}
	}
}

func TestLineAllocationFail(t *testing.T) {
	allocationError := errors.New("allocation error")
	ok := func() fixpoint.Line[float32, float32] {
		return fixpoint.Line[float32, float32]{
			Source:    (&mock.Source[float32]{}).Source(),
			Processor: (&mock.Processor[float32, float32]{}).Processor(),
			Sink:      (&mock.Sink[float32]{}).Sink(),
		}
	}

	l := ok()
	l.Source = (&mock.Source[float32]{ErrorOnMake: allocationError}).Source()
	_, err := l.Run(context.Background(), bufferSize)
	assert.ErrorIs(t, err, allocationError)

	l = ok()
	l.Processor = (&mock.Processor[float32, float32]{ErrorOnMake: allocationError}).Processor()
	_, err = l.Run(context.Background(), bufferSize)
	assert.ErrorIs(t, err, allocationError)

	l = ok()
	l.Sink = (&mock.Sink[float32]{ErrorOnMake: allocationError}).Sink()
	_, err = l.Run(context.Background(), bufferSize)
	assert.ErrorIs(t, err, allocationError)

	l = ok()
	l.Processor = nil
	_, err = l.Run(context.Background(), bufferSize)
	assert.ErrorIs(t, err, fixpoint.ErrMissingComponent)

	_, err = ok().Run(context.Background(), 0)
	assert.ErrorIs(t, err, fixpoint.ErrBufferSize)
}

func TestLineErrors(t *testing.T) {
	data := samples(10 * bufferSize)
	identity := func(v float32) float32 { return v }
	tests := []struct {
		name      string
		source    *mock.Source[float32]
		processor *mock.Processor[float32, float32]
		sink      *mock.Sink[float32]
	}{
		{
			name:      "source call",
			source:    &mock.Source[float32]{Data: data, ErrorOnCall: mockError},
			processor: &mock.Processor[float32, float32]{Fn: identity},
			sink:      &mock.Sink[float32]{},
		},
		{
			name:      "processor call",
			source:    &mock.Source[float32]{Data: data},
			processor: &mock.Processor[float32, float32]{Fn: identity, ErrorOnCall: mockError},
			sink:      &mock.Sink[float32]{},
		},
		{
			name:      "sink call",
			source:    &mock.Source[float32]{Data: data},
			processor: &mock.Processor[float32, float32]{Fn: identity},
			sink:      &mock.Sink[float32]{ErrorOnCall: mockError},
		},
		{
			name:      "source start",
			source:    &mock.Source[float32]{Data: data, Hooks: mock.Hooks{ErrorOnStart: mockError}},
			processor: &mock.Processor[float32, float32]{Fn: identity},
			sink:      &mock.Sink[float32]{},
		},
		{
			name:      "sink flush",
			source:    &mock.Source[float32]{Data: data},
			processor: &mock.Processor[float32, float32]{Fn: identity},
			sink:      &mock.Sink[float32]{Hooks: mock.Hooks{ErrorOnFlush: mockError}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := fixpoint.Line[float32, float32]{
				Source:    test.source.Source(),
				Processor: test.processor.Processor(),
				Sink:      test.sink.Sink(),
			}
			r, err := l.Run(context.Background(), bufferSize, fixpoint.WithLogger(log.Silent()))
			require.NoError(t, err)
			assert.ErrorIs(t, r.Wait(), mockError)
			// result is kept for consequent calls
			assert.ErrorIs(t, r.Wait(), mockError)
		})
	}
}

func TestLineCancel(t *testing.T) {
	blocking := func(bufferSize int) (fixpoint.Source[float32], error) {
		return fixpoint.Source[float32]{
			SourceFunc: func(out []float32) (int, error) {
				time.Sleep(time.Millisecond)
				return len(out), nil
			},
		}, nil
	}
	sink := &mock.Sink[float32]{Discard: true}
	l := fixpoint.Line[float32, float32]{
		Source:    blocking,
		Processor: (&mock.Processor[float32, float32]{Fn: func(v float32) float32 { return v }}).Processor(),
		Sink:      sink.Sink(),
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	r, err := l.Run(ctx, bufferSize, fixpoint.WithLogger(log.Silent()))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	cancelFn()
	assert.ErrorIs(t, r.Wait(), context.Canceled)
	assert.ErrorIs(t, r.Wait(), context.Canceled)
	assert.True(t, sink.Flushed())

	r, err = l.Run(context.Background(), bufferSize, fixpoint.WithLogger(log.Silent()))
	require.NoError(t, err)
	r.Cancel()
	assert.NoError(t, r.Wait())
}

func TestChain(t *testing.T) {
	double := &mock.Processor[float32, float32]{Fn: func(v float32) float32 { return v * 2 }}
	round := &mock.Processor[float32, int32]{Fn: func(v float32) int32 { return int32(v) }}
	sink := &mock.Sink[int32]{}
	l := fixpoint.Line[float32, int32]{
		Source:    (&mock.Source[float32]{Data: []float32{1, 2, 3}}).Source(),
		Processor: fixpoint.Chain(double.Processor(), round.Processor()),
		Sink:      sink.Sink(),
	}
	r, err := l.Run(context.Background(), 2, fixpoint.WithLogger(log.Silent()))
	require.NoError(t, err)
	require.NoError(t, r.Wait())
	assert.Equal(t, []int32{2, 4, 6}, sink.Data)
	assert.True(t, double.Flushed())
	assert.True(t, round.Flushed())

	failing := &mock.Processor[float32, int32]{Hooks: mock.Hooks{ErrorOnStart: mockError}}
	first := &mock.Processor[float32, float32]{Fn: func(v float32) float32 { return v }}
	l.Processor = fixpoint.Chain(first.Processor(), failing.Processor())
	r, err = l.Run(context.Background(), 2, fixpoint.WithLogger(log.Silent()))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Wait(), mockError)
	assert.True(t, first.Flushed())

	l.Processor = fixpoint.Chain(
		(&mock.Processor[float32, float32]{ErrorOnMake: mockError}).Processor(),
		round.Processor(),
	)
	_, err = l.Run(context.Background(), 2)
	assert.ErrorIs(t, err, mockError)
}
