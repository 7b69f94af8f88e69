package engine

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synthSine generates a mono sine at the given frequency and amplitude
func synthSine(freq, amp float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	pcm := make([]float64, n)
	for i := range pcm {
		pcm[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return pcm
}

// synthTriad generates an equal mix of three sines
func synthTriad(f1, f2, f3 float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	pcm := make([]float64, n)
	for i := range pcm {
		t := float64(i) / float64(sampleRate)
		pcm[i] = 0.25 * (math.Sin(2*math.Pi*f1*t) + math.Sin(2*math.Pi*f2*t) + math.Sin(2*math.Pi*f3*t))
	}
	return pcm
}

// synthClicks generates a click track: short tone bursts spaced exactly
// periodSamples apart, with a slow amplitude decay so autocorrelation peaks
// at multiples of the period are strictly ordered
func synthClicks(periodSamples, totalSamples, sampleRate int) []float64 {
	pcm := make([]float64, totalSamples)
	const burstLen = 128

	for click := 0; ; click++ {
		start := click * periodSamples
		if start >= totalSamples {
			break
		}
		amp := math.Pow(0.995, float64(click))
		for i := 0; i < burstLen && start+i < totalSamples; i++ {
			pcm[start+i] = amp * math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate))
		}
	}
	return pcm
}

func synthNoise(seconds float64, sampleRate int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	pcm := make([]float64, int(seconds*float64(sampleRate)))
	for i := range pcm {
		pcm[i] = 0.5 * (2*rng.Float64() - 1)
	}
	return pcm
}

func scaled(pcm []float64, k float64) []float64 {
	out := make([]float64, len(pcm))
	for i, s := range pcm {
		out[i] = k * s
	}
	return out
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(DefaultConfig())
	require.NoError(t, err)
	return eng
}

func TestEngineFeatureRanges(t *testing.T) {
	eng := newTestEngine(t)

	signals := map[string][]float64{
		"sine":   synthSine(440, 0.8, 5, 22050),
		"noise":  synthNoise(5, 22050, 42),
		"clicks": synthClicks(11025, 5*22050, 22050),
	}

	for name, pcm := range signals {
		features, err := eng.ExtractPCM(context.Background(), pcm)
		require.NoError(t, err, name)

		assert.GreaterOrEqual(t, features.Energy, 0.0, name)
		assert.LessOrEqual(t, features.Energy, 1.0, name)
		assert.GreaterOrEqual(t, features.Danceability, 0.0, name)
		assert.LessOrEqual(t, features.Danceability, 1.0, name)
		assert.GreaterOrEqual(t, features.Acousticness, 0.0, name)
		assert.LessOrEqual(t, features.Acousticness, 1.0, name)
		assert.GreaterOrEqual(t, features.Valence, 0.0, name)
		assert.LessOrEqual(t, features.Valence, 1.0, name)
		assert.GreaterOrEqual(t, features.Tempo, eng.Config().MinBPM, name)
		assert.LessOrEqual(t, features.Tempo, eng.Config().MaxBPM, name)

		assert.False(t, math.IsNaN(features.Energy), name)
		assert.False(t, math.IsNaN(features.Danceability), name)
		assert.False(t, math.IsNaN(features.Tempo), name)
		assert.False(t, math.IsNaN(features.Acousticness), name)
		assert.False(t, math.IsNaN(features.Valence), name)
	}
}

func TestEngineDeterminism(t *testing.T) {
	eng := newTestEngine(t)
	pcm := synthNoise(5, 22050, 7)

	first, err := eng.ExtractPCM(context.Background(), pcm)
	require.NoError(t, err)

	// Identical input and configuration must produce bit-identical output,
	// regardless of goroutine scheduling
	for _i := 0; _i < 5; _i++ {
		again, err := eng.ExtractPCM(context.Background(), pcm)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEngineSilence(t *testing.T) {
	eng := newTestEngine(t)
	silence := make([]float64, 3*22050)

	features, err := eng.ExtractPCM(context.Background(), silence)
	require.NoError(t, err)

	assert.Equal(t, 0.0, features.Energy)
	assert.Equal(t, 0.0, features.Danceability)
	assert.Equal(t, 0.5, features.Valence)
	assert.InDelta(t, 1.0, features.Acousticness, 1e-9)
	assert.Equal(t, eng.Config().Tunables.DefaultTempo, features.Tempo)
}

func TestEngineEnergyMonotonicInAmplitude(t *testing.T) {
	eng := newTestEngine(t)
	base := synthNoise(5, 22050, 99)

	var previous float64 = math.Inf(1)
	for _, k := range []float64{1.0, 0.5, 0.25, 0.1, 0.01} {
		features, err := eng.ExtractPCM(context.Background(), scaled(base, k))
		require.NoError(t, err)

		assert.LessOrEqual(t, features.Energy, previous, "scale %v", k)
		previous = features.Energy
	}
}

func TestEngineClickTrackTempo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowSize = 1024
	cfg.HopSize = 512
	eng, err := New(cfg)
	require.NoError(t, err)

	// Clicks exactly 21 hops apart, so the onset envelope is periodic on the
	// frame grid
	period := 21 * cfg.HopSize
	pcm := synthClicks(period, 20*cfg.SampleRate, cfg.SampleRate)

	features, err := eng.ExtractPCM(context.Background(), pcm)
	require.NoError(t, err)

	expectedBPM := 60.0 * float64(cfg.SampleRate) / float64(period)
	assert.InDelta(t, expectedBPM, features.Tempo, 2.0)
	assert.Greater(t, features.Danceability, 0.0)
}

func TestEngineValenceMajorVersusMinor(t *testing.T) {
	eng := newTestEngine(t)

	// C4, E4, G4
	major := synthTriad(261.63, 329.63, 392.00, 8, 22050)
	// C4, Eb4, G4
	minor := synthTriad(261.63, 311.13, 392.00, 8, 22050)

	majorFeatures, err := eng.ExtractPCM(context.Background(), major)
	require.NoError(t, err)
	minorFeatures, err := eng.ExtractPCM(context.Background(), minor)
	require.NoError(t, err)

	assert.Greater(t, majorFeatures.Valence, 0.5)
	assert.Less(t, minorFeatures.Valence, 0.5)
}

func TestEngineAcousticnessToneVersusNoise(t *testing.T) {
	eng := newTestEngine(t)

	tone, err := eng.ExtractPCM(context.Background(), synthSine(440, 0.5, 5, 22050))
	require.NoError(t, err)
	noise, err := eng.ExtractPCM(context.Background(), synthNoise(5, 22050, 11))
	require.NoError(t, err)

	assert.Greater(t, tone.Acousticness, noise.Acousticness)
	assert.Greater(t, tone.Acousticness, 0.7)
	assert.Less(t, noise.Acousticness, 0.3)
}

func TestEngineInsufficientData(t *testing.T) {
	eng := newTestEngine(t)

	// One window's worth of samples segments into a single frame, below the
	// default minimum of four
	_, err := eng.ExtractPCM(context.Background(), make([]float64, 100))
	require.Error(t, err)

	var insufficientErr *InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 1, insufficientErr.Frames)
	assert.Equal(t, eng.Config().MinFrames, insufficientErr.MinFrames)
}

func TestEngineContextCancellation(t *testing.T) {
	eng := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.ExtractPCM(ctx, synthSine(440, 0.5, 2, 22050))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero window", func(c *Config) { c.WindowSize = 0 }, "window_size"},
		{"negative hop", func(c *Config) { c.HopSize = -1 }, "hop_size"},
		{"hop beyond window", func(c *Config) { c.HopSize = c.WindowSize + 1 }, "hop_size"},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, "sample_rate"},
		{"inverted tempo range", func(c *Config) { c.MinBPM = 200; c.MaxBPM = 100 }, "tempo_range"},
		{"zero min frames", func(c *Config) { c.MinFrames = 0 }, "min_frames"},
		{"unknown window", func(c *Config) { c.WindowType = "kaiser" }, "window_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)

			_, err = New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestConfigValidateDefault(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestAggregatorTempoComfort(t *testing.T) {
	assert.Equal(t, 1.0, tempoComfort(120))
	assert.Equal(t, 1.0, tempoComfort(90))
	assert.Equal(t, 1.0, tempoComfort(140))
	assert.Equal(t, 0.8, tempoComfort(60))
	assert.Equal(t, 0.8, tempoComfort(170))
	assert.Equal(t, 0.5, tempoComfort(40))
	assert.Equal(t, 0.5, tempoComfort(210))
}

func TestFeatureSetString(t *testing.T) {
	fs := FeatureSet{Energy: 0.5, Danceability: 0.25, Tempo: 120, Acousticness: 0.75, Valence: 0.5}
	s := fs.String()
	assert.Contains(t, s, "energy=0.500")
	assert.Contains(t, s, "tempo=120.0")
}

func TestErrorMessages(t *testing.T) {
	cfgErr := newConfigurationError("hop_size", "must be positive, got %d", -3)
	assert.Contains(t, cfgErr.Error(), "hop_size")
	assert.Contains(t, cfgErr.Error(), "-3")

	dataErr := &InsufficientDataError{Frames: 2, MinFrames: 4}
	assert.Contains(t, dataErr.Error(), "2 frames")

	var target *InsufficientDataError
	assert.True(t, errors.As(error(dataErr), &target))
}
