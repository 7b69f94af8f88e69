package engine

import (
	"fmt"
)

// FeatureSet is the engine's sole output artifact: five perceptual features
// derived from one track. Immutable once produced; all five fields are
// always present and within their documented ranges.
type FeatureSet struct {
	Energy       float64 `json:"energy" yaml:"energy"`             // [0, 1] perceived intensity
	Danceability float64 `json:"danceability" yaml:"danceability"` // [0, 1] beat regularity and comfort
	Tempo        float64 `json:"tempo" yaml:"tempo"`               // BPM within the configured search range
	Acousticness float64 `json:"acousticness" yaml:"acousticness"` // [0, 1] tonal vs noise-like spectrum
	Valence      float64 `json:"valence" yaml:"valence"`           // [0, 1] musical positivity (major vs minor)
}

func (fs FeatureSet) String() string {
	return fmt.Sprintf("energy=%.3f danceability=%.3f tempo=%.1f acousticness=%.3f valence=%.3f",
		fs.Energy, fs.Danceability, fs.Tempo, fs.Acousticness, fs.Valence)
}
