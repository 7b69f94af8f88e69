package transcode

import (
	"encoding/binary"
	"math"
)

// WAV format codes from the fmt chunk
const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// decodeWAV parses a RIFF/WAVE byte stream and returns interleaved samples
// in [-1, 1] with the source sample rate and channel count. Supports PCM
// (8/16/24/32 bit) and IEEE float (32/64 bit) encodings.
func decodeWAV(data []byte) ([]float64, int, int, error) {
	if len(data) < 44 {
		return nil, 0, 0, newDecodeError("wav", "truncated header", nil)
	}

	var (
		formatCode    uint16
		channels      int
		sampleRate    int
		bitsPerSample int
		haveFmt       bool
	)

	// Walk the RIFF chunks; fmt must precede data
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if chunkSize < 0 || body+chunkSize > len(data) {
			return nil, 0, 0, newDecodeError("wav", "chunk "+chunkID+" exceeds stream length", nil)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, 0, newDecodeError("wav", "fmt chunk too small", nil)
			}
			formatCode = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))

			// Extensible wraps the real format code in the first two bytes
			// of the GUID subformat field
			if formatCode == wavFormatExtensible && chunkSize >= 26 {
				formatCode = binary.LittleEndian.Uint16(data[body+24 : body+26])
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, 0, 0, newDecodeError("wav", "data chunk before fmt chunk", nil)
			}
			if channels <= 0 || sampleRate <= 0 {
				return nil, 0, 0, newDecodeError("wav", "invalid channel count or sample rate", nil)
			}

			samples, err := convertWAVSamples(data[body:body+chunkSize], formatCode, bitsPerSample)
			if err != nil {
				return nil, 0, 0, err
			}
			return samples, sampleRate, channels, nil
		}

		// Chunks are word-aligned
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	return nil, 0, 0, newDecodeError("wav", "missing data chunk", nil)
}

// convertWAVSamples converts raw little-endian sample bytes to float64 in [-1, 1]
func convertWAVSamples(raw []byte, formatCode uint16, bitsPerSample int) ([]float64, error) {
	switch {
	case formatCode == wavFormatPCM && bitsPerSample == 8:
		// 8-bit WAV is unsigned with a 128 midpoint
		samples := make([]float64, len(raw))
		for i, b := range raw {
			samples[i] = (float64(b) - 128.0) / 128.0
		}
		return samples, nil

	case formatCode == wavFormatPCM && bitsPerSample == 16:
		n := len(raw) / 2
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
			samples[i] = float64(v) / 32768.0
		}
		return samples, nil

	case formatCode == wavFormatPCM && bitsPerSample == 24:
		n := len(raw) / 3
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			b := raw[i*3 : i*3+3]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF) // Sign-extend
			}
			samples[i] = float64(v) / 8388608.0
		}
		return samples, nil

	case formatCode == wavFormatPCM && bitsPerSample == 32:
		n := len(raw) / 4
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
			samples[i] = float64(v) / 2147483648.0
		}
		return samples, nil

	case formatCode == wavFormatFloat && bitsPerSample == 32:
		n := len(raw) / 4
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : i*4+4])))
		}
		return samples, nil

	case formatCode == wavFormatFloat && bitsPerSample == 64:
		n := len(raw) / 8
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8 : i*8+8]))
		}
		return samples, nil
	}

	return nil, newDecodeError("wav", "unsupported sample encoding", nil)
}
