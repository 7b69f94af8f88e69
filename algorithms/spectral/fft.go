package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality backed by mjibson/go-dsp
type FFT struct {
	// No state needed for now
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the Fast Fourier Transform of a real signal
// Takes []float64 input and returns []complex128 output
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes efficiently, including non-power-of-2
	return fft.FFTReal(x)
}

// MagnitudeSpectrum computes the single-sided magnitude spectrum of a frame.
// The result has len(frame)/2 + 1 bins (DC through Nyquist) and is never
// mutated by later stages.
func (f *FFT) MagnitudeSpectrum(frame []float64) []float64 {
	if len(frame) == 0 {
		return []float64{}
	}

	spectrum := f.Compute(frame)
	freqBins := len(frame)/2 + 1
	freqBins = min(len(spectrum), freqBins)

	magnitude := make([]float64, freqBins)
	for i := 0; i < freqBins; i++ {
		magnitude[i] = cmplx.Abs(spectrum[i])
	}

	return magnitude
}
