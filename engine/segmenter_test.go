package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crich46/spotify-audio-features/algorithms/windowing"
)

func collectFrames(s *Segmenter) []Frame {
	var frames []Frame
	s.Frames(func(f Frame) bool {
		frames = append(frames, f)
		return true
	})
	return frames
}

func TestSegmenterNumFrames(t *testing.T) {
	window := windowing.NewHann(8, false)

	tests := []struct {
		name     string
		samples  int
		expected int
	}{
		{"empty buffer", 0, 0},
		{"shorter than window", 3, 1},
		{"exactly one window", 8, 1},
		{"one sample past window", 9, 2},
		{"two full hops", 16, 3},
		{"partial tail frame", 18, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSegmenter(make([]float64, tt.samples), 8, 4, window)
			assert.Equal(t, tt.expected, s.NumFrames())
			assert.Len(t, collectFrames(s), tt.expected)
		})
	}
}

func TestSegmenterZeroPadsFinalFrame(t *testing.T) {
	window := windowing.NewHann(8, false)

	pcm := make([]float64, 10)
	for i := range pcm {
		pcm[i] = 1.0
	}

	s := NewSegmenter(pcm, 8, 4, window)
	frames := collectFrames(s)
	require.Len(t, frames, 2)

	// Second frame covers samples [4, 12): six real samples plus two padded
	last := frames[1]
	assert.Len(t, last.Samples, 8)
	assert.Equal(t, 0.0, last.Samples[6])
	assert.Equal(t, 0.0, last.Samples[7])
}

func TestSegmenterAppliesWindow(t *testing.T) {
	window := windowing.NewHann(8, false)
	coeffs := window.GetCoefficients()

	pcm := make([]float64, 8)
	for i := range pcm {
		pcm[i] = 1.0
	}

	frames := collectFrames(NewSegmenter(pcm, 8, 4, window))
	require.Len(t, frames, 1)

	for i, sample := range frames[0].Samples {
		assert.InDelta(t, coeffs[i], sample, 1e-15, "sample %d", i)
	}
}

func TestSegmenterFrameAt(t *testing.T) {
	pcm := make([]float64, 100)
	for i := range pcm {
		pcm[i] = float64(i) / 100
	}

	s := NewSegmenter(pcm, 16, 8, windowing.NewHann(16, false))

	frames := collectFrames(s)
	for i, frame := range frames {
		assert.Equal(t, frame, s.FrameAt(i))
	}
}

func TestSegmenterRestartable(t *testing.T) {
	pcm := make([]float64, 100)
	for i := range pcm {
		pcm[i] = float64(i) / 100
	}

	s := NewSegmenter(pcm, 16, 8, windowing.NewHann(16, false))

	first := collectFrames(s)
	second := collectFrames(s)
	assert.Equal(t, first, second)
}

func TestSegmenterEarlyStop(t *testing.T) {
	s := NewSegmenter(make([]float64, 100), 16, 8, windowing.NewHann(16, false))

	yielded := 0
	s.Frames(func(f Frame) bool {
		yielded++
		return yielded < 3
	})
	assert.Equal(t, 3, yielded)
}

func TestSegmenterFrameIndexes(t *testing.T) {
	s := NewSegmenter(make([]float64, 64), 16, 8, windowing.NewHann(16, false))

	for i, frame := range collectFrames(s) {
		assert.Equal(t, i, frame.Index)
	}
}
