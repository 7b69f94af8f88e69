package tonal

import (
	"github.com/crich46/spotify-audio-features/algorithms/chroma"
	"github.com/crich46/spotify-audio-features/algorithms/common"
)

// KeyMode represents major or minor mode
type KeyMode int

const (
	KeyModeMajor KeyMode = iota
	KeyModeMinor
)

func (m KeyMode) String() string {
	if m == KeyModeMinor {
		return "minor"
	}
	return "major"
}

// KeyResult holds the best-matching key for a chroma profile along with the
// raw template scores needed for mode-margin heuristics
type KeyResult struct {
	Key       int     `json:"key"`        // Root pitch class (0=C ... 11=B)
	Mode      KeyMode `json:"mode"`       // Major or minor
	KeyName   string  `json:"key_name"`   // Human-readable name (e.g. "G minor")
	BestScore float64 `json:"best_score"` // Correlation of the winning template
	BestMajor float64 `json:"best_major"` // Best correlation across the 12 major templates
	BestMinor float64 `json:"best_minor"` // Best correlation across the 12 minor templates
	Tonal     bool    `json:"tonal"`      // False when the chroma carried no information
}

// Margin is the signed distance between the best major and best minor
// template scores. Positive means the profile leans major.
func (r KeyResult) Margin() float64 {
	return r.BestMajor - r.BestMinor
}

// KeyEstimator scores a chroma vector against the 24 rotated
// Krumhansl-Schmuckler key templates (12 major + 12 minor)
type KeyEstimator struct {
	majorProfile []float64
	minorProfile []float64
}

// NewKeyEstimator creates a key estimator using the Krumhansl-Schmuckler
// profiles (empirically derived from listener ratings)
func NewKeyEstimator() *KeyEstimator {
	return &KeyEstimator{
		majorProfile: []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
		minorProfile: []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
	}
}

// Estimate finds the best-scoring key template for a 12-bin chroma vector.
// The vector does not need to be normalized; Pearson correlation is
// shift and scale invariant. A flat or empty chroma yields Tonal=false with
// all scores zero.
func (ke *KeyEstimator) Estimate(chromaVector []float64) KeyResult {
	if len(chromaVector) != chroma.NumPitchClasses || common.StandardDeviation(chromaVector) < 1e-12 {
		return KeyResult{KeyName: "atonal"}
	}

	result := KeyResult{Tonal: true, BestMajor: -1.0, BestMinor: -1.0}
	bestScore := -2.0

	for root := 0; root < chroma.NumPitchClasses; root++ {
		majorScore := ke.templateCorrelation(chromaVector, ke.majorProfile, root)
		minorScore := ke.templateCorrelation(chromaVector, ke.minorProfile, root)

		if majorScore > result.BestMajor {
			result.BestMajor = majorScore
		}
		if minorScore > result.BestMinor {
			result.BestMinor = minorScore
		}

		if majorScore > bestScore {
			bestScore = majorScore
			result.Key = root
			result.Mode = KeyModeMajor
		}
		if minorScore > bestScore {
			bestScore = minorScore
			result.Key = root
			result.Mode = KeyModeMinor
		}
	}

	result.BestScore = bestScore
	result.KeyName = chroma.Labels()[result.Key] + " " + result.Mode.String()

	return result
}

// templateCorrelation correlates a chroma vector against a key profile
// rotated so that the profile's tonic sits at the given root
func (ke *KeyEstimator) templateCorrelation(chromaVector, profile []float64, root int) float64 {
	rotated := make([]float64, len(profile))
	for i := range profile {
		rotated[(i+root)%len(profile)] = profile[i]
	}

	return common.Correlation(chromaVector, rotated)
}
