package filters

import (
	"math"
)

// DCBlock is a first-order DC blocking filter:
//
//	y[n] = x[n] - x[n-1] + R * y[n-1]
//
// It removes any constant offset the decoder may leave in the signal (8-bit
// WAV in particular is stored unsigned) so that RMS and onset measurements
// reflect the audio, not the bias.
type DCBlock struct {
	pole float64 // R, 0 < R < 1; closer to 1 means a lower cutoff

	x1 float64
	y1 float64
}

// NewDCBlock creates a DC blocking filter with a cutoff near the given
// frequency. The pole follows the small-angle design R = 1 - 2*pi*fc/fs.
func NewDCBlock(sampleRate int, cutoffHz float64) *DCBlock {
	pole := 1.0 - (2.0 * math.Pi * cutoffHz / float64(sampleRate))
	if pole >= 1.0 {
		pole = 0.999
	}
	if pole <= 0.0 {
		pole = 0.001
	}
	return &DCBlock{pole: pole}
}

// Process filters a single sample
func (f *DCBlock) Process(input float64) float64 {
	output := input - f.x1 + f.pole*f.y1
	f.x1 = input
	f.y1 = output
	return output
}

// ProcessBuffer filters a buffer in place and returns it
func (f *DCBlock) ProcessBuffer(samples []float64) []float64 {
	for i, s := range samples {
		samples[i] = f.Process(s)
	}
	return samples
}

// Reset clears the filter state. Call between unrelated signals.
func (f *DCBlock) Reset() {
	f.x1 = 0
	f.y1 = 0
}

// CutoffFrequency returns the approximate -3dB cutoff for a sample rate,
// inverting the design formula
func (f *DCBlock) CutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return (1.0 - f.pole) * float64(sampleRate) / (2.0 * math.Pi)
}
