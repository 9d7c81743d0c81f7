package metrics

import (
	"fmt"
	"time"
)

// DefaultWindowSize is the number of speed samples kept for consistency.
const DefaultWindowSize = 20

// Sample is one instantaneous gross WPM reading.
type Sample struct {
	At  time.Duration // elapsed since the session started
	WPM float64
}

// SampleWindow keeps the most recent speed samples, dropping the oldest
// once capacity is reached.
type SampleWindow struct {
	size    int
	samples []Sample
}

// NewSampleWindow returns a window holding at most size samples.
// A non-positive size uses DefaultWindowSize.
func NewSampleWindow(size int) *SampleWindow {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &SampleWindow{size: size, samples: make([]Sample, 0, size)}
}

// Append adds a sample. Samples must arrive in strictly increasing time order.
func (w *SampleWindow) Append(s Sample) error {
	if n := len(w.samples); n > 0 && s.At <= w.samples[n-1].At {
		return fmt.Errorf("sample at %s is not after %s", s.At, w.samples[n-1].At)
	}
	if len(w.samples) == w.size {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.size-1]
	}
	w.samples = append(w.samples, s)
	return nil
}

// Len returns the number of retained samples.
func (w *SampleWindow) Len() int {
	return len(w.samples)
}

// Values returns the retained WPM readings, oldest first.
func (w *SampleWindow) Values() []float64 {
	out := make([]float64, len(w.samples))
	for i, s := range w.samples {
		out[i] = s.WPM
	}
	return out
}

// Reset drops all samples.
func (w *SampleWindow) Reset() {
	w.samples = w.samples[:0]
}
