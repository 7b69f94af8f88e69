package engine

import (
	"math"

	"github.com/crich46/spotify-audio-features/algorithms/common"
)

// Aggregator merges the three analyzers' finalized partial results into the
// output FeatureSet. It is the only component allowed to fail at finalize
// time, and only with *InsufficientDataError.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an aggregator for the given configuration
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate combines the partial results into the five output features.
// Fails when fewer than the configured minimum number of frames were
// analyzed; below that the spectral and temporal statistics are unreliable.
func (ag *Aggregator) Aggregate(spec SpectralStats, temp TemporalStats, ton TonalStats) (*FeatureSet, error) {
	frames := temp.Frames
	if frames < ag.cfg.MinFrames {
		return nil, &InsufficientDataError{Frames: frames, MinFrames: ag.cfg.MinFrames}
	}

	t := ag.cfg.Tunables

	fs := &FeatureSet{
		Energy:       ag.energy(spec, temp),
		Danceability: ag.danceability(temp),
		Tempo:        common.Clamp(temp.Tempo.BPM, ag.cfg.MinBPM, ag.cfg.MaxBPM),
		Acousticness: ag.acousticness(spec),
		Valence:      0.5,
	}

	// Valence: signed major/minor template margin through a bounded
	// monotonic map. Silence and atonal content sit at the neutral 0.5.
	if ton.Key.Tonal {
		fs.Valence = 0.5 + 0.5*math.Tanh(ton.Key.Margin()/t.ValenceMarginScale)
	}

	return fs, nil
}

// energy blends loudness (mean RMS), brightness (mean centroid), and
// activity (mean onset strength), each normalized against its calibration
// ceiling. Loudness dominates.
func (ag *Aggregator) energy(spec SpectralStats, temp TemporalStats) float64 {
	t := ag.cfg.Tunables

	loudness := common.NormalizeRange(temp.MeanRMS, 0, t.EnergyCeiling)
	brightness := common.NormalizeRange(spec.MeanCentroid, t.CentroidFloor, t.CentroidCeiling)
	activity := common.NormalizeRange(temp.MeanOnset, 0, t.OnsetCeiling)

	blend := t.EnergyRMSWeight*loudness + t.EnergyCentWeight*brightness + t.EnergyOnsetWeight*activity
	return common.Clamp(blend, 0, 1)
}

// danceability maps the beat-clarity ratio (peak over mean autocorrelation
// in the tempo search range) into [0, 1] and scales it by a tempo comfort
// factor: tempos far outside the danceable range are penalized
func (ag *Aggregator) danceability(temp TemporalStats) float64 {
	t := ag.cfg.Tunables

	// A clarity ratio of 1 means the autocorrelation is flat (no beat)
	clarity := common.NormalizeRange(temp.Tempo.BeatClarity, 1.0, t.DanceRatioCeiling)

	return common.Clamp(clarity*tempoComfort(temp.Tempo.BPM), 0, 1)
}

// tempoComfort rates how danceable a tempo is: full weight in the 90-140
// BPM sweet spot, mild penalty outside it, strong penalty below 50 and
// above 200 BPM
func tempoComfort(bpm float64) float64 {
	switch {
	case bpm < 50 || bpm > 200:
		return 0.5
	case bpm >= 90 && bpm <= 140:
		return 1.0
	default:
		return 0.8
	}
}

// acousticness inverts spectral flatness (tonal content is less flat) and
// spectral rolloff (acoustic instruments concentrate energy lower) and
// blends them. Documented heuristic, controlled entirely by Tunables.
func (ag *Aggregator) acousticness(spec SpectralStats) float64 {
	t := ag.cfg.Tunables

	tonality := 1.0 - common.NormalizeRange(spec.MeanFlatness, 0, t.FlatnessCeiling)
	warmth := 1.0 - common.NormalizeRange(spec.MeanRolloff, t.RolloffFloor, t.RolloffCeiling)

	blend := t.AcousticFlatWeight*tonality + t.AcousticRolloffWeight*warmth
	return common.Clamp(blend, 0, 1)
}
