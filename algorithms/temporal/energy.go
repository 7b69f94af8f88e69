package temporal

import (
	"math"
)

// FrameRMS calculates the root-mean-square amplitude of a single analysis
// frame. Returns 0 for an empty frame.
func FrameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, sample := range frame {
		sumSquares += sample * sample
	}

	return math.Sqrt(sumSquares / float64(len(frame)))
}

// OnsetStrength builds an onset-strength envelope from a stream of per-frame
// RMS values. Onset strength is the positive energy flux between consecutive
// frames: max(0, RMS_t - RMS_{t-1}). The first frame has no predecessor and
// contributes strength 0.
type OnsetStrength struct {
	prevRMS  float64
	started  bool
	envelope []float64
}

// NewOnsetStrength creates a new onset-strength accumulator
func NewOnsetStrength() *OnsetStrength {
	return &OnsetStrength{}
}

// Push consumes the RMS of the next frame and returns the onset strength
// recorded for it
func (o *OnsetStrength) Push(rms float64) float64 {
	strength := 0.0
	if o.started {
		flux := rms - o.prevRMS
		if flux > 0 {
			strength = flux
		}
	}

	o.prevRMS = rms
	o.started = true
	o.envelope = append(o.envelope, strength)

	return strength
}

// Envelope returns the accumulated onset-strength sequence, one value per
// pushed frame. The returned slice is owned by the accumulator.
func (o *OnsetStrength) Envelope() []float64 {
	return o.envelope
}

// Reset clears the accumulator for reuse
func (o *OnsetStrength) Reset() {
	o.prevRMS = 0
	o.started = false
	o.envelope = o.envelope[:0]
}
