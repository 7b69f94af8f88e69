package engine

import (
	"github.com/crich46/spotify-audio-features/algorithms/chroma"
	"github.com/crich46/spotify-audio-features/algorithms/spectral"
	"github.com/crich46/spotify-audio-features/algorithms/tonal"
)

// TonalStats is the tonal analyzer's finalized partial result
type TonalStats struct {
	Chroma []float64       `json:"chroma"` // Unit-sum pitch-class profile (all zero for silence)
	Key    tonal.KeyResult `json:"key"`
	Frames int             `json:"frames"`
}

// TonalAnalyzer folds each frame's magnitude spectrum into a running 12-bin
// chroma vector and scores it against the 24 rotated key templates at
// finalize time
type TonalAnalyzer struct {
	fft       *spectral.FFT
	profile   *chroma.PitchClassProfile
	estimator *tonal.KeyEstimator

	chromaAcc []float64
	frames    int
}

// NewTonalAnalyzer creates a tonal analyzer for the given sample rate
func NewTonalAnalyzer(sampleRate int) *TonalAnalyzer {
	return &TonalAnalyzer{
		fft:       spectral.NewFFT(),
		profile:   chroma.NewPitchClassProfile(sampleRate),
		estimator: tonal.NewKeyEstimator(),
		chromaAcc: make([]float64, chroma.NumPitchClasses),
	}
}

// Name implements Analyzer
func (a *TonalAnalyzer) Name() string { return "tonal" }

// Consume analyzes one frame. Called exactly once per frame.
func (a *TonalAnalyzer) Consume(frame Frame) {
	spectrum := a.fft.MagnitudeSpectrum(frame.Samples)
	a.profile.Accumulate(spectrum, a.chromaAcc)
	a.frames++
}

// Finalize normalizes the accumulated chroma to unit sum and estimates the
// key. Call once, after the frame stream ends.
func (a *TonalAnalyzer) Finalize() TonalStats {
	normalized := make([]float64, len(a.chromaAcc))
	copy(normalized, a.chromaAcc)
	chroma.Normalize(normalized)

	return TonalStats{
		Chroma: normalized,
		Key:    a.estimator.Estimate(normalized),
		Frames: a.frames,
	}
}
