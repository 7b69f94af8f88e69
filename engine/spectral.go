package engine

import (
	"github.com/crich46/spotify-audio-features/algorithms/spectral"
)

// SpectralStats is the spectral analyzer's finalized partial result
type SpectralStats struct {
	MeanCentroid float64 `json:"mean_centroid"` // Hz
	MeanFlatness float64 `json:"mean_flatness"` // [0, 1]
	MeanRolloff  float64 `json:"mean_rolloff"`  // Hz
	Frames       int     `json:"frames"`
}

// SpectralAnalyzer derives a magnitude spectrum per frame and accumulates
// running means of spectral centroid, flatness, and rolloff
type SpectralAnalyzer struct {
	fft      *spectral.FFT
	centroid *spectral.SpectralCentroid
	flatness *spectral.SpectralFlatness
	rolloff  *spectral.SpectralRolloff

	rolloffThreshold float64

	centroidSum float64
	flatnessSum float64
	rolloffSum  float64
	frames      int
}

// NewSpectralAnalyzer creates a spectral analyzer for the given sample rate
func NewSpectralAnalyzer(sampleRate int, rolloffThreshold float64) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		fft:              spectral.NewFFT(),
		centroid:         spectral.NewSpectralCentroid(sampleRate),
		flatness:         spectral.NewSpectralFlatness(),
		rolloff:          spectral.NewSpectralRolloff(sampleRate),
		rolloffThreshold: rolloffThreshold,
	}
}

// Name implements Analyzer
func (a *SpectralAnalyzer) Name() string { return "spectral" }

// Consume analyzes one frame. Called exactly once per frame, in order.
func (a *SpectralAnalyzer) Consume(frame Frame) {
	spectrum := a.fft.MagnitudeSpectrum(frame.Samples)

	a.centroidSum += a.centroid.Compute(spectrum)
	a.flatnessSum += a.flatness.Compute(spectrum)
	a.rolloffSum += a.rolloff.Compute(spectrum, a.rolloffThreshold)
	a.frames++
}

// Finalize turns the accumulated sums into point estimates. Call once, after
// the frame stream ends.
func (a *SpectralAnalyzer) Finalize() SpectralStats {
	stats := SpectralStats{Frames: a.frames}
	if a.frames == 0 {
		return stats
	}

	n := float64(a.frames)
	stats.MeanCentroid = a.centroidSum / n
	stats.MeanFlatness = a.flatnessSum / n
	stats.MeanRolloff = a.rolloffSum / n

	return stats
}
