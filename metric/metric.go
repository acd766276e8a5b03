// Package metric publishes conversion counters of line components with
// expvar.
package metric

import (
	"expvar"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipelined/fixpoint/signal"
)

const componentsLabel = "fixpoint.components"

const (
	// MessageCounter measures number of messages.
	MessageCounter = "Messages"
	// SampleCounter measures number of samples.
	SampleCounter = "Samples"
	// ClippedCounter measures number of saturated samples.
	ClippedCounter = "Clipped"
	// LatencyCounter measures latency between processing calls.
	LatencyCounter = "Latency"
	// DurationCounter measures duration of processed signal.
	DurationCounter = "Duration"
	// ComponentCounter counts number of component instances.
	ComponentCounter = "Components"
)

var (
	components = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		MessageCounter,
		SampleCounter,
		ClippedCounter,
		LatencyCounter,
		DurationCounter,
		ComponentCounter,
	}
)

// Get metrics values for provided component type.
func Get(component interface{}) map[string]string {
	return getCounters(getType(component))
}

// GetAll returns counters for all measured components.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	components.Lock()
	defer components.Unlock()
	for component := range components.m {
		m[component] = getCounters(component)
	}
	return m
}

func getCounters(componentType string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(componentType, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns new Measure closure. This closure is needed to postpone
// metrics capture until component is actually running.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when buffer is processed.
type MeasureFunc func(samples, clipped int64)

// Meter creates new meter closure to capture component counters. Counters
// are shared by all components of the same type. Samples are interleaved
// frames of numChannels. Duration is not measured if sample rate or
// number of channels is unknown.
func Meter(component interface{}, sampleRate, numChannels int) ResetFunc {
	t := getType(component)
	metric := components.get(t)
	metric.components.Add(1)
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			bufferSize     int64
			bufferDuration time.Duration
		)
		return func(samples, clipped int64) {
			metric.latency.set(time.Since(calledAt))
			metric.messages.Add(1)
			metric.samples.Add(samples)
			metric.clipped.Add(clipped)
			if sampleRate > 0 && numChannels > 0 {
				// recalculate buffer duration only when buffer size has changed
				if bufferSize != samples {
					bufferSize = samples
					bufferDuration = signal.DurationOf(sampleRate, samples/int64(numChannels))
				}
				metric.duration.add(bufferDuration)
			}
			calledAt = time.Now()
		}
	}
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(componentType string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[componentType]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(componentType)
	m.m[componentType] = metric
	return metric
}

type metric struct {
	components *expvar.Int
	messages   *expvar.Int
	samples    *expvar.Int
	clipped    *expvar.Int
	latency    *duration
	duration   *duration
}

func newMetric(componentType string) metric {
	m := metric{
		components: expvar.NewInt(key(componentType, ComponentCounter)),
		messages:   expvar.NewInt(key(componentType, MessageCounter)),
		samples:    expvar.NewInt(key(componentType, SampleCounter)),
		clipped:    expvar.NewInt(key(componentType, ClippedCounter)),
		latency:    &duration{},
		duration:   &duration{},
	}
	expvar.Publish(key(componentType, LatencyCounter), m.latency)
	expvar.Publish(key(componentType, DurationCounter), m.duration)
	return m
}

func key(componentType, counter string) string {
	return fmt.Sprintf("%s.%s.%s", componentsLabel, componentType, counter)
}

func getType(component interface{}) string {
	rv := reflect.ValueOf(component)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Type().String()
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}

func (v *duration) add(value time.Duration) {
	atomic.AddInt64(&v.d, int64(value))
}
