package engine

import (
	"github.com/crich46/spotify-audio-features/algorithms/common"
	"github.com/crich46/spotify-audio-features/algorithms/temporal"
)

// TemporalStats is the temporal analyzer's finalized partial result
type TemporalStats struct {
	MeanRMS   float64              `json:"mean_rms"`
	MeanOnset float64              `json:"mean_onset"` // Mean onset strength
	Tempo     temporal.TempoResult `json:"tempo"`
	Frames    int                  `json:"frames"`
}

// TemporalAnalyzer accumulates per-frame RMS energy and the onset-strength
// envelope, then estimates tempo and beat clarity by autocorrelation at
// finalize time
type TemporalAnalyzer struct {
	onset     *temporal.OnsetStrength
	estimator *temporal.TempoEstimator

	defaultTempo float64
	rmsSum       float64
	frames       int
}

// NewTemporalAnalyzer creates a temporal analyzer for the given frame
// geometry and tempo search range
func NewTemporalAnalyzer(cfg Config) *TemporalAnalyzer {
	return &TemporalAnalyzer{
		onset:        temporal.NewOnsetStrength(),
		estimator:    temporal.NewTempoEstimator(cfg.SampleRate, cfg.HopSize, cfg.MinBPM, cfg.MaxBPM),
		defaultTempo: cfg.Tunables.DefaultTempo,
	}
}

// Name implements Analyzer
func (a *TemporalAnalyzer) Name() string { return "temporal" }

// Consume analyzes one frame. Called exactly once per frame, in order; the
// onset envelope depends on consecutive frame ordering.
func (a *TemporalAnalyzer) Consume(frame Frame) {
	rms := temporal.FrameRMS(frame.Samples)
	a.rmsSum += rms
	a.onset.Push(rms)
	a.frames++
}

// Finalize runs tempo estimation over the accumulated onset envelope. Call
// once, after the frame stream ends.
func (a *TemporalAnalyzer) Finalize() TemporalStats {
	stats := TemporalStats{Frames: a.frames}
	if a.frames == 0 {
		stats.Tempo = temporal.TempoResult{BPM: a.defaultTempo}
		return stats
	}

	envelope := a.onset.Envelope()
	stats.MeanRMS = a.rmsSum / float64(a.frames)
	stats.MeanOnset = common.Mean(envelope)
	stats.Tempo = a.estimator.Estimate(envelope, a.defaultTempo)

	return stats
}
