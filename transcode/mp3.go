package transcode

import (
	"bytes"
	"encoding/binary"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// decodeMP3 decodes an MP3 byte stream using hajimehoshi/go-mp3.
// The library always emits signed 16-bit little-endian stereo PCM at the
// stream's native sample rate, so the returned channel count is 2.
func decodeMP3(data []byte) ([]float64, int, int, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, newDecodeError("mp3", "creating decoder", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, 0, newDecodeError("mp3", "decoding stream", err)
	}

	// 2 channels x 2 bytes per sample
	const bytesPerFrame = 4
	numFrames := len(pcm) / bytesPerFrame
	if numFrames == 0 {
		return nil, 0, 0, newDecodeError("mp3", "stream contains no audio frames", nil)
	}

	samples := make([]float64, numFrames*2)
	for i := 0; i < numFrames; i++ {
		left := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerFrame : i*bytesPerFrame+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerFrame+2 : i*bytesPerFrame+4]))
		samples[i*2] = float64(left) / 32768.0
		samples[i*2+1] = float64(right) / 32768.0
	}

	return samples, decoder.SampleRate(), 2, nil
}
