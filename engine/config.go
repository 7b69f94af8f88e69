package engine

import (
	"github.com/crich46/spotify-audio-features/algorithms/windowing"
)

// WindowType selects the analysis window function
type WindowType string

const (
	WindowHann    WindowType = "hann"
	WindowHamming WindowType = "hamming"
)

// Tunables collects the heuristic normalization constants of the feature
// mappings. None of these are derivable from first principles; the defaults
// come from the calibration ranges of the original extractor and are meant
// to be tuned, not treated as correct.
type Tunables struct {
	// Energy: weighted blend of loudness, brightness, and activity
	EnergyCeiling     float64 `json:"energy_ceiling"`   // Mean-RMS value mapped to 1.0
	CentroidFloor     float64 `json:"centroid_floor"`   // Hz mapped to 0.0
	CentroidCeiling   float64 `json:"centroid_ceiling"` // Hz mapped to 1.0
	OnsetCeiling      float64 `json:"onset_ceiling"`    // Mean onset strength mapped to 1.0
	EnergyRMSWeight   float64 `json:"energy_rms_weight"`
	EnergyCentWeight  float64 `json:"energy_centroid_weight"`
	EnergyOnsetWeight float64 `json:"energy_onset_weight"`

	// Acousticness: inverted flatness plus inverted rolloff. The inversion
	// is a heuristic (tonal/acoustic sources have less-flat, lower-rolloff
	// spectra than noise-like electronic content), not a physical law.
	FlatnessCeiling       float64 `json:"flatness_ceiling"`  // Mean flatness mapped to full deduction
	RolloffFloor          float64 `json:"rolloff_floor"`     // Hz
	RolloffCeiling        float64 `json:"rolloff_ceiling"`   // Hz
	RolloffThreshold      float64 `json:"rolloff_threshold"` // Energy percentile for rolloff
	AcousticFlatWeight    float64 `json:"acoustic_flatness_weight"`
	AcousticRolloffWeight float64 `json:"acoustic_rolloff_weight"`

	// Danceability: beat-clarity ratio mapping and tempo comfort zone
	DanceRatioCeiling float64 `json:"dance_ratio_ceiling"` // Peak/mean autocorrelation ratio mapped to 1.0

	// Valence: width of the major/minor margin mapped through tanh
	ValenceMarginScale float64 `json:"valence_margin_scale"`

	// Tempo fallback when the onset envelope carries no periodicity
	DefaultTempo float64 `json:"default_tempo"`
}

// Config is the immutable per-run pipeline configuration. Pass it by value;
// runs never share mutable state.
type Config struct {
	WindowSize int        `json:"window_size"` // Analysis frame length in samples
	HopSize    int        `json:"hop_size"`    // Frame advance in samples
	SampleRate int        `json:"sample_rate"` // Canonical analysis rate in Hz
	WindowType WindowType `json:"window_type"`

	MinBPM float64 `json:"min_bpm"` // Tempo search range
	MaxBPM float64 `json:"max_bpm"`

	MinFrames int `json:"min_frames"` // Below this the aggregator refuses to finalize

	Tunables Tunables `json:"tunables"`
}

// DefaultConfig returns the standard engine configuration
func DefaultConfig() Config {
	return Config{
		WindowSize: 2048,
		HopSize:    1024,
		SampleRate: 22050,
		WindowType: WindowHann,
		MinBPM:     40,
		MaxBPM:     220,
		MinFrames:  4,
		Tunables:   DefaultTunables(),
	}
}

// DefaultTunables returns the default heuristic constants
func DefaultTunables() Tunables {
	return Tunables{
		EnergyCeiling:     0.3,
		CentroidFloor:     500,
		CentroidCeiling:   4000,
		OnsetCeiling:      1.5,
		EnergyRMSWeight:   0.5,
		EnergyCentWeight:  0.25,
		EnergyOnsetWeight: 0.25,

		FlatnessCeiling:       0.1,
		RolloffFloor:          1000,
		RolloffCeiling:        7000,
		RolloffThreshold:      0.85,
		AcousticFlatWeight:    0.6,
		AcousticRolloffWeight: 0.4,

		DanceRatioCeiling: 3.0,

		ValenceMarginScale: 0.05,

		DefaultTempo: 120,
	}
}

// Validate checks the configuration and returns a *ConfigurationError
// describing the first violation found
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return newConfigurationError("window_size", "must be positive, got %d", c.WindowSize)
	}
	if c.HopSize <= 0 {
		return newConfigurationError("hop_size", "must be positive, got %d", c.HopSize)
	}
	if c.HopSize > c.WindowSize {
		return newConfigurationError("hop_size", "must not exceed window size (%d > %d)", c.HopSize, c.WindowSize)
	}
	if c.SampleRate <= 0 {
		return newConfigurationError("sample_rate", "must be positive, got %d", c.SampleRate)
	}
	if c.MinBPM <= 0 || c.MaxBPM <= 0 || c.MinBPM >= c.MaxBPM {
		return newConfigurationError("tempo_range", "need 0 < min < max, got [%g, %g]", c.MinBPM, c.MaxBPM)
	}
	if c.MinFrames < 1 {
		return newConfigurationError("min_frames", "must be at least 1, got %d", c.MinFrames)
	}
	switch c.WindowType {
	case WindowHann, WindowHamming:
	default:
		return newConfigurationError("window_type", "unknown window %q", c.WindowType)
	}
	return nil
}

// newWindow builds the configured window function. Coefficients depend only
// on the configuration, so identical configs produce bit-identical frames.
func (c Config) newWindow() Window {
	switch c.WindowType {
	case WindowHamming:
		return windowing.NewHamming(c.WindowSize, false)
	default:
		return windowing.NewHann(c.WindowSize, false)
	}
}
