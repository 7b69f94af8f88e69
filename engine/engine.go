package engine

import (
	"context"
	"sync"

	"github.com/crich46/spotify-audio-features/logging"
	"github.com/crich46/spotify-audio-features/transcode"
)

// frameQueueDepth is the per-analyzer frame channel buffer. Deep enough to
// keep the analyzers busy, small enough to bound memory per run.
const frameQueueDepth = 16

// Engine runs the feature-extraction pipeline: decode, segment, analyze,
// aggregate. One Engine may serve many concurrent extractions; each call is
// a fully independent pipeline instance with no shared mutable state.
type Engine struct {
	config  Config
	decoder *transcode.Decoder
	logger  logging.Logger
}

// New creates an engine with the given configuration. Returns a
// *ConfigurationError when the configuration is invalid.
func New(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config: config,
		decoder: transcode.NewDecoder(&transcode.DecoderConfig{
			TargetSampleRate: config.SampleRate,
		}),
		logger: logging.WithFields(logging.Fields{
			"component": "feature_engine",
		}),
	}, nil
}

// Config returns the engine's immutable configuration
func (e *Engine) Config() Config {
	return e.config
}

// Extract decodes raw audio file bytes and extracts the feature set. The
// filename is only a codec hint. The context is honored between pipeline
// stages: cancellation abandons the whole run, no partial results exist.
func (e *Engine) Extract(ctx context.Context, data []byte, filename string) (*FeatureSet, error) {
	audio, err := e.decoder.DecodeBytes(data, filename)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.ExtractPCM(ctx, audio.PCM)
}

// ExtractPCM extracts the feature set from a mono sample buffer already at
// the engine's configured sample rate, with samples in [-1, 1].
func (e *Engine) ExtractPCM(ctx context.Context, pcm []float64) (*FeatureSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := e.logger.WithFields(logging.Fields{
		"function": "ExtractPCM",
		"samples":  len(pcm),
	})

	segmenter := NewSegmenter(pcm, e.config.WindowSize, e.config.HopSize, e.config.newWindow())

	spectralAnalyzer := NewSpectralAnalyzer(e.config.SampleRate, e.config.Tunables.RolloffThreshold)
	temporalAnalyzer := NewTemporalAnalyzer(e.config)
	tonalAnalyzer := NewTonalAnalyzer(e.config.SampleRate)

	logger.Debug("Starting analysis", logging.Fields{
		"window_size": e.config.WindowSize,
		"hop_size":    e.config.HopSize,
		"frames":      segmenter.NumFrames(),
	})

	// Fan the frame stream out to the three analyzers. Each analyzer owns a
	// private accumulator and consumes its channel in frame order, so the
	// result is independent of goroutine scheduling.
	analyzers := []Analyzer{spectralAnalyzer, temporalAnalyzer, tonalAnalyzer}
	channels := make([]chan Frame, len(analyzers))

	var wg sync.WaitGroup
	for i, analyzer := range analyzers {
		ch := make(chan Frame, frameQueueDepth)
		channels[i] = ch

		wg.Add(1)
		go func(a Analyzer, frames <-chan Frame) {
			defer wg.Done()
			for frame := range frames {
				a.Consume(frame)
			}
		}(analyzer, ch)
	}

	segmenter.Frames(func(frame Frame) bool {
		for _, ch := range channels {
			ch <- frame
		}
		return true
	})

	for _, ch := range channels {
		close(ch)
	}
	wg.Wait()

	aggregator := NewAggregator(e.config)
	features, err := aggregator.Aggregate(
		spectralAnalyzer.Finalize(),
		temporalAnalyzer.Finalize(),
		tonalAnalyzer.Finalize(),
	)
	if err != nil {
		logger.Error(err, "Aggregation failed")
		return nil, err
	}

	logger.Debug("Analysis completed", logging.Fields{
		"features": features.String(),
	})

	return features, nil
}
