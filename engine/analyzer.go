package engine

// Analyzer is the shared role of the three frame consumers (spectral,
// temporal, tonal). Each analyzer owns a private accumulator that is mutated
// exactly once per frame; results are read only after the frame stream ends,
// through the analyzer's concrete finalize method. This keeps the three
// consumers free to run on separate goroutines over the same frame stream.
type Analyzer interface {
	Name() string
	Consume(frame Frame)
}
