package temporal

import (
	"math"
)

// TempoEstimator estimates tempo from an onset-strength envelope using
// autocorrelation over the lag range corresponding to a plausible BPM window
type TempoEstimator struct {
	sampleRate int
	hopSize    int
	minBPM     float64
	maxBPM     float64
}

// TempoResult holds the outcome of a tempo estimation pass
type TempoResult struct {
	BPM         float64 `json:"bpm"`          // Estimated tempo
	BestLag     int     `json:"best_lag"`     // Winning autocorrelation lag (frames), 0 if none
	PeakValue   float64 `json:"peak_value"`   // Autocorrelation at the winning lag
	BeatClarity float64 `json:"beat_clarity"` // Peak-to-mean autocorrelation ratio in the searched range
}

// NewTempoEstimator creates a tempo estimator for the given frame geometry
// and BPM search range
func NewTempoEstimator(sampleRate, hopSize int, minBPM, maxBPM float64) *TempoEstimator {
	return &TempoEstimator{
		sampleRate: sampleRate,
		hopSize:    hopSize,
		minBPM:     minBPM,
		maxBPM:     maxBPM,
	}
}

// Estimate runs autocorrelation over the onset envelope and picks the lag
// with the highest correlation inside the BPM search range. Local maxima are
// preferred over edge values; ties keep the shortest lag so results are
// deterministic. When the envelope carries no usable periodicity the
// defaultBPM is returned with zero clarity.
func (te *TempoEstimator) Estimate(onsetEnvelope []float64, defaultBPM float64) TempoResult {
	framesPerSecond := float64(te.sampleRate) / float64(te.hopSize)

	minLag := int(math.Ceil(60.0 * framesPerSecond / te.maxBPM))
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(60.0 * framesPerSecond / te.minBPM)

	autocorr := autocorrelate(onsetEnvelope, maxLag+1)

	if maxLag >= len(autocorr) {
		maxLag = len(autocorr) - 1
	}
	if minLag > maxLag {
		return TempoResult{BPM: defaultBPM}
	}

	// Mean autocorrelation over the searched range, for the clarity ratio
	rangeSum := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		rangeSum += autocorr[lag]
	}
	rangeMean := rangeSum / float64(maxLag-minLag+1)

	bestLag := 0
	bestVal := 0.0

	// First pass: local maxima only
	for lag := minLag; lag <= maxLag; lag++ {
		if lag <= 0 || lag >= len(autocorr)-1 {
			continue
		}
		if autocorr[lag] > autocorr[lag-1] && autocorr[lag] > autocorr[lag+1] && autocorr[lag] > bestVal {
			bestVal = autocorr[lag]
			bestLag = lag
		}
	}

	// Second pass: fall back to the global maximum in range
	if bestLag == 0 {
		for lag := minLag; lag <= maxLag; lag++ {
			if autocorr[lag] > bestVal {
				bestVal = autocorr[lag]
				bestLag = lag
			}
		}
	}

	if bestLag == 0 || bestVal <= 0 {
		return TempoResult{BPM: defaultBPM}
	}

	// Refine the integer lag by fitting a parabola through the peak and its
	// neighbors; without this the lag grid quantizes the BPM estimate.
	refinedLag := float64(bestLag)
	if bestLag > 0 && bestLag < len(autocorr)-1 {
		prev := autocorr[bestLag-1]
		curr := autocorr[bestLag]
		next := autocorr[bestLag+1]

		denom := prev - 2*curr + next
		if denom < 0 {
			delta := 0.5 * (prev - next) / denom
			if delta > -1 && delta < 1 {
				refinedLag += delta
			}
		}
	}

	bpm := 60.0 * framesPerSecond / refinedLag
	if bpm > te.maxBPM {
		bpm = te.maxBPM
	}
	if bpm < te.minBPM {
		bpm = te.minBPM
	}

	clarity := 0.0
	if rangeMean > 1e-12 {
		clarity = bestVal / rangeMean
	}

	return TempoResult{
		BPM:         bpm,
		BestLag:     bestLag,
		PeakValue:   bestVal,
		BeatClarity: clarity,
	}
}

// autocorrelate computes the autocorrelation of a signal up to maxLag,
// normalized by the zero-lag value
func autocorrelate(signal []float64, maxLag int) []float64 {
	if maxLag > len(signal) {
		maxLag = len(signal)
	}
	if maxLag <= 0 {
		return []float64{}
	}

	autocorr := make([]float64, maxLag)

	for lag := 0; lag < maxLag; lag++ {
		sum := 0.0
		count := 0

		for i := 0; i < len(signal)-lag; i++ {
			sum += signal[i] * signal[i+lag]
			count++
		}

		if count > 0 {
			autocorr[lag] = sum / float64(count)
		}
	}

	if len(autocorr) > 0 && autocorr[0] > 0 {
		for i := range autocorr {
			autocorr[i] /= autocorr[0]
		}
	}

	return autocorr
}
