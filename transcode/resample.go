package transcode

// downmixMono averages interleaved channels into a single mono signal
func downmixMono(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}

	numFrames := len(samples) / channels
	mono := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}

	return mono
}

// resampleLinear converts a mono signal from srcRate to dstRate using linear
// interpolation. Deterministic for identical inputs; quality is adequate for
// feature extraction, which only consumes aggregate spectral statistics.
func resampleLinear(samples []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || len(samples) == 0 || srcRate <= 0 || dstRate <= 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen == 0 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		if idx+1 < len(samples) {
			out[i] = samples[idx]*(1.0-frac) + samples[idx+1]*frac
		} else if idx < len(samples) {
			out[i] = samples[idx]
		}
	}

	return out
}
