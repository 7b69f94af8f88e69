package spectral

import (
	"math"
)

// SpectralFlatness computes spectral flatness (Wiener entropy): the ratio of
// the geometric mean to the arithmetic mean of a magnitude spectrum.
// Low values indicate tonal content, values near 1 indicate noise.
type SpectralFlatness struct {
	minThreshold float64 // Minimum value to avoid log(0)
}

// NewSpectralFlatness creates a new spectral flatness calculator
func NewSpectralFlatness() *SpectralFlatness {
	return &SpectralFlatness{
		minThreshold: 1e-10,
	}
}

// Compute calculates spectral flatness for a single magnitude spectrum,
// clamped to [0, 1]. A silent (all-zero) spectrum returns 0.
func (sf *SpectralFlatness) Compute(magnitudeSpectrum []float64) float64 {
	if len(magnitudeSpectrum) == 0 {
		return 0.0
	}

	arithmeticMean := 0.0
	for _, magnitude := range magnitudeSpectrum {
		arithmeticMean += magnitude
	}
	arithmeticMean /= float64(len(magnitudeSpectrum))

	// Silent spectrum
	if arithmeticMean <= sf.minThreshold {
		return 0.0
	}

	// Geometric mean in the log domain for numerical stability. Bins are
	// floored at the threshold so a single near-zero bin cannot drag the
	// product to zero, and so the mean covers the same bins as the
	// arithmetic mean.
	logSum := 0.0
	for _, magnitude := range magnitudeSpectrum {
		if magnitude < sf.minThreshold {
			magnitude = sf.minThreshold
		}
		logSum += math.Log(magnitude)
	}
	geometricMean := math.Exp(logSum / float64(len(magnitudeSpectrum)))

	flatness := geometricMean / arithmeticMean

	if flatness > 1.0 {
		flatness = 1.0
	}

	return flatness
}
