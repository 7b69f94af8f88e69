package chroma

import (
	"math"
)

// NumPitchClasses is the number of semitone bins in a chroma vector
const NumPitchClasses = 12

// PitchClassProfile folds magnitude spectra into a 12-bin pitch-class
// (chroma) vector. Each frequency bin maps to its nearest semitone relative
// to the tuning reference (A4 = 440 Hz by default), octave-folded so that
// every C lands in the same bin.
type PitchClassProfile struct {
	sampleRate int
	tuningFreq float64 // A4 reference frequency
	minFreq    float64 // Bins below this are ignored
	maxFreq    float64 // Bins above this are ignored

	mapping    []int // FFT bin -> chroma bin, -1 when out of range
	windowSize int   // Window size the mapping was built for
}

// NewPitchClassProfile creates a pitch-class folder with standard
// A4=440Hz tuning and an 80Hz-8kHz analysis band
func NewPitchClassProfile(sampleRate int) *PitchClassProfile {
	return NewPitchClassProfileWithTuning(sampleRate, 440.0)
}

// NewPitchClassProfileWithTuning creates a pitch-class folder with a custom
// tuning reference
func NewPitchClassProfileWithTuning(sampleRate int, tuningFreq float64) *PitchClassProfile {
	return &PitchClassProfile{
		sampleRate: sampleRate,
		tuningFreq: tuningFreq,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// Accumulate folds one magnitude spectrum into the given 12-bin chroma
// accumulator. The spectrum length must be windowSize/2 + 1.
func (p *PitchClassProfile) Accumulate(spectrum []float64, chroma []float64) {
	if len(spectrum) < 2 || len(chroma) != NumPitchClasses {
		return
	}

	windowSize := (len(spectrum) - 1) * 2
	if p.mapping == nil || p.windowSize != windowSize {
		p.buildMapping(len(spectrum), windowSize)
	}

	for bin, magnitude := range spectrum {
		chromaBin := p.mapping[bin]
		if chromaBin >= 0 {
			chroma[chromaBin] += magnitude
		}
	}
}

// buildMapping precalculates the FFT-bin to chroma-bin mapping
func (p *PitchClassProfile) buildMapping(freqBins, windowSize int) {
	freqResolution := float64(p.sampleRate) / float64(windowSize)
	p.mapping = make([]int, freqBins)
	p.windowSize = windowSize

	for bin := 0; bin < freqBins; bin++ {
		frequency := float64(bin) * freqResolution

		if frequency < p.minFreq || frequency > p.maxFreq {
			p.mapping[bin] = -1
			continue
		}

		midiNote := p.frequencyToMIDI(frequency)
		chromaBin := int(math.Round(midiNote)) % NumPitchClasses
		if chromaBin < 0 {
			chromaBin += NumPitchClasses
		}
		p.mapping[bin] = chromaBin
	}
}

// frequencyToMIDI converts frequency to MIDI note number
// A4 (tuning reference) = MIDI note 69
func (p *PitchClassProfile) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}
	return 69.0 + 12.0*math.Log2(frequency/p.tuningFreq)
}

// Normalize scales a chroma vector to unit sum in place. A silent (all-zero)
// vector is left unchanged.
func Normalize(chroma []float64) {
	total := 0.0
	for _, v := range chroma {
		total += v
	}

	if total > 1e-10 {
		for i := range chroma {
			chroma[i] /= total
		}
	}
}

// Labels returns the pitch-class bin labels
func Labels() []string {
	return []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
}
