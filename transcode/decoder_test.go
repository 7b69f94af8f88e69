package transcode

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV assembles a minimal RIFF/WAVE stream from interleaved 16-bit PCM
func buildWAV(interleaved []int16, sampleRate, channels int) []byte {
	var data bytes.Buffer
	for _, s := range interleaved {
		binary.Write(&data, binary.LittleEndian, s)
	}
	return buildWAVRaw(data.Bytes(), sampleRate, channels, 16, wavFormatPCM)
}

func buildWAVRaw(sampleData []byte, sampleRate, channels, bits int, format uint16) []byte {
	var buf bytes.Buffer

	blockAlign := channels * bits / 8
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(sampleData)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format)
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(sampleData)))
	buf.Write(sampleData)

	return buf.Bytes()
}

func sineInt16(freq, amp float64, n, sampleRate int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return samples
}

func pcmRMS(pcm []float64) float64 {
	sum := 0.0
	for _, s := range pcm {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(pcm)))
}

func TestDecodeMono16BitWAV(t *testing.T) {
	decoder := NewDecoder(nil)

	wav := buildWAV(sineInt16(440, 0.5, 22050, 22050), 22050, 1)
	audio, err := decoder.DecodeBytes(wav, "tone.wav")
	require.NoError(t, err)

	assert.Equal(t, 22050, audio.SampleRate)
	assert.Equal(t, 1, audio.Channels)
	assert.Len(t, audio.PCM, 22050)
	assert.InDelta(t, time.Second.Seconds(), audio.Duration.Seconds(), 0.01)

	// A sine's RMS is amplitude over sqrt(2); the DC blocker leaves the
	// audio band intact
	assert.InDelta(t, 0.5/math.Sqrt2, pcmRMS(audio.PCM), 0.02)
}

func TestDecodeStereoDownmix(t *testing.T) {
	decoder := NewDecoder(nil)

	// Left and right carry opposite-phase sines; the mono downmix cancels
	mono := sineInt16(440, 0.5, 11025, 22050)
	interleaved := make([]int16, 2*len(mono))
	for i, s := range mono {
		interleaved[2*i] = s
		interleaved[2*i+1] = -s
	}

	audio, err := decoder.DecodeBytes(buildWAV(interleaved, 22050, 2), "stereo.wav")
	require.NoError(t, err)

	assert.Equal(t, 1, audio.Channels)
	assert.Len(t, audio.PCM, 11025)
	assert.Less(t, pcmRMS(audio.PCM), 1e-3)
}

func TestDecodeResamplesToTargetRate(t *testing.T) {
	decoder := NewDecoder(&DecoderConfig{TargetSampleRate: 22050})

	wav := buildWAV(sineInt16(440, 0.5, 44100, 44100), 44100, 1)
	audio, err := decoder.DecodeBytes(wav, "hires.wav")
	require.NoError(t, err)

	assert.Equal(t, 22050, audio.SampleRate)
	assert.InDelta(t, 22050, len(audio.PCM), 2)
	assert.InDelta(t, 0.5/math.Sqrt2, pcmRMS(audio.PCM), 0.02)
}

func TestDecode8BitWAVStripsDCOffset(t *testing.T) {
	decoder := NewDecoder(nil)

	// 8-bit WAV is unsigned; a constant 200 decodes to +0.5625 before the
	// DC blocker removes it
	raw := bytes.Repeat([]byte{200}, 22050)
	audio, err := decoder.DecodeBytes(buildWAVRaw(raw, 22050, 1, 8, wavFormatPCM), "dc.wav")
	require.NoError(t, err)

	assert.Less(t, pcmRMS(audio.PCM), 0.1)
}

func TestDecodeFloat32WAV(t *testing.T) {
	decoder := NewDecoder(nil)

	var data bytes.Buffer
	for i := 0; i < 22050; i++ {
		v := float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/22050))
		binary.Write(&data, binary.LittleEndian, v)
	}

	audio, err := decoder.DecodeBytes(buildWAVRaw(data.Bytes(), 22050, 1, 32, wavFormatFloat), "float.wav")
	require.NoError(t, err)

	assert.Len(t, audio.PCM, 22050)
	assert.InDelta(t, 0.25/math.Sqrt2, pcmRMS(audio.PCM), 0.01)
}

func TestDecodeTruncatedWAV(t *testing.T) {
	decoder := NewDecoder(nil)

	wav := buildWAV(sineInt16(440, 0.5, 1000, 22050), 22050, 1)
	_, err := decoder.DecodeBytes(wav[:len(wav)-100], "cut.wav")
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "wav", decodeErr.Format)
}

func TestDecodeUnknownFormat(t *testing.T) {
	decoder := NewDecoder(nil)

	_, err := decoder.DecodeBytes([]byte("this is not audio data at all"), "mystery.bin")
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "unknown", decodeErr.Format)
}

func TestDecodeEmptyInput(t *testing.T) {
	decoder := NewDecoder(nil)

	_, err := decoder.DecodeBytes(nil, "empty.wav")
	assert.Error(t, err)
}

func TestDecodeFileMissing(t *testing.T) {
	decoder := NewDecoder(nil)

	_, err := decoder.DecodeFile("/nonexistent/path/track.wav")
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDetectFormat(t *testing.T) {
	wav := buildWAV(sineInt16(440, 0.5, 10, 22050), 22050, 1)

	tests := []struct {
		name     string
		data     []byte
		filename string
		expected string
	}{
		{"wav magic", wav, "x.bin", "wav"},
		{"id3 header", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), "x.bin", "mp3"},
		{"mpeg frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, "x.bin", "mp3"},
		{"wav extension fallback", []byte("garbage bytes here"), "track.WAV", "wav"},
		{"mp3 extension fallback", []byte("garbage bytes here"), "track.mp3", "mp3"},
		{"no hints", []byte("garbage bytes here"), "track.xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectFormat(tt.data, tt.filename))
		})
	}
}

func TestDownmixMono(t *testing.T) {
	interleaved := []float64{1.0, 0.0, 0.5, 0.5, -1.0, 1.0}

	mono := downmixMono(interleaved, 2)
	require.Len(t, mono, 3)
	assert.InDelta(t, 0.5, mono[0], 1e-12)
	assert.InDelta(t, 0.5, mono[1], 1e-12)
	assert.InDelta(t, 0.0, mono[2], 1e-12)

	// Mono input passes through
	assert.Equal(t, []float64{1, 2, 3}, downmixMono([]float64{1, 2, 3}, 1))
}

func TestResampleLinear(t *testing.T) {
	src := make([]float64, 100)
	for i := range src {
		src[i] = float64(i)
	}

	down := resampleLinear(src, 100, 50)
	assert.InDelta(t, 50, len(down), 1)

	up := resampleLinear(src, 50, 100)
	assert.InDelta(t, 200, len(up), 1)

	// Linear interpolation of a ramp is still a ramp
	for i := 1; i < len(down); i++ {
		assert.Greater(t, down[i], down[i-1])
	}
}
