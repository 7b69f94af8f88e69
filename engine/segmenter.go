package engine

// Window is the interface for analysis window functions
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetSize() int
	GetType() string
}

// Frame is one windowed analysis frame. Samples always has the configured
// window length; the final partial frame is zero-padded, not dropped.
// Frames are read-only once produced: the engine hands the same Frame to
// every analyzer concurrently.
type Frame struct {
	Index   int
	Samples []float64
}

// Segmenter splits a sample buffer into overlapping windowed frames. It is
// stateless over the buffer: iteration can be restarted any number of times
// and always yields identical frames.
type Segmenter struct {
	pcm        []float64
	windowSize int
	hopSize    int
	window     Window
}

// NewSegmenter creates a segmenter over a sample buffer. The window
// coefficients are precomputed once, so repeated runs over the same buffer
// and configuration are bit-for-bit reproducible.
func NewSegmenter(pcm []float64, windowSize, hopSize int, window Window) *Segmenter {
	return &Segmenter{
		pcm:        pcm,
		windowSize: windowSize,
		hopSize:    hopSize,
		window:     window,
	}
}

// NumFrames returns the frame count: ceil((N-W)/H) + 1 for N samples.
// A non-empty buffer shorter than one window still yields one zero-padded
// frame; an empty buffer yields none.
func (s *Segmenter) NumFrames() int {
	n := len(s.pcm)
	if n == 0 {
		return 0
	}
	if n <= s.windowSize {
		return 1
	}
	return (n-s.windowSize+s.hopSize-1)/s.hopSize + 1
}

// Frames iterates over all frames in order, stopping early if yield returns
// false. Each yielded frame owns a fresh sample slice.
func (s *Segmenter) Frames(yield func(Frame) bool) {
	numFrames := s.NumFrames()

	for i := 0; i < numFrames; i++ {
		if !yield(s.frame(i)) {
			return
		}
	}
}

// FrameAt returns the i-th frame without iterating. The index must be
// within [0, NumFrames).
func (s *Segmenter) FrameAt(i int) Frame {
	return s.frame(i)
}

// frame extracts, zero-pads, and windows the i-th frame
func (s *Segmenter) frame(i int) Frame {
	start := i * s.hopSize
	samples := make([]float64, s.windowSize)

	end := start + s.windowSize
	if end > len(s.pcm) {
		end = len(s.pcm)
	}
	if start < end {
		copy(samples, s.pcm[start:end])
	}

	// Length always matches the window size, so this cannot fail
	_ = s.window.ApplyInPlace(samples)

	return Frame{Index: i, Samples: samples}
}
