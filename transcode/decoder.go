package transcode

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crich46/spotify-audio-features/algorithms/filters"
	"github.com/crich46/spotify-audio-features/logging"
)

// dcBlockCutoffHz is the -3dB point of the post-decode DC blocker, well below
// the lowest frequency the analyzers care about
const dcBlockCutoffHz = 20.0

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64     `json:"-"` // Mono samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
}

// DecodeError reports unreadable, corrupt, or unsupported audio input
type DecodeError struct {
	Format  string `json:"format"` // Detected or hinted container format
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *DecodeError) Error() string {
	msg := "decode " + e.Format + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func newDecodeError(format, message string, cause error) *DecodeError {
	return &DecodeError{Format: format, Message: message, Cause: cause}
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int `json:"target_sample_rate"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22050,
	}
}

// Decoder turns raw audio file bytes into a canonical mono sample buffer:
// samples in [-1, 1], resampled to the configured target rate. WAV is parsed
// natively, MP3 through hajimehoshi/go-mp3.
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes an audio file from disk
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, newDecodeError("file", "reading "+filename, err)
	}
	return d.DecodeBytes(data, filename)
}

// DecodeBytes decodes audio from a byte slice. The filename is only used as
// a codec hint when the content cannot be identified by its magic bytes.
func (d *Decoder) DecodeBytes(data []byte, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeBytes",
		"data_size": len(data),
	})

	if len(data) == 0 {
		return nil, newDecodeError("unknown", "empty audio data", nil)
	}

	format := detectFormat(data, filename)
	logger.Debug("Detected audio format", logging.Fields{"format": format})

	var (
		samples    []float64
		sampleRate int
		channels   int
		err        error
	)

	switch format {
	case "wav":
		samples, sampleRate, channels, err = decodeWAV(data)
	case "mp3":
		samples, sampleRate, channels, err = decodeMP3(data)
	default:
		return nil, newDecodeError(format, "unrecognized container or codec", nil)
	}
	if err != nil {
		logger.Error(err, "Audio decode failed")
		return nil, err
	}

	if len(samples) == 0 {
		return nil, newDecodeError(format, "no audio samples in stream", nil)
	}

	// Downmix to mono by averaging channels
	mono := downmixMono(samples, channels)

	// Resample to the canonical analysis rate
	if sampleRate != d.config.TargetSampleRate {
		mono = resampleLinear(mono, sampleRate, d.config.TargetSampleRate)
		sampleRate = d.config.TargetSampleRate
	}

	// Strip any DC offset left by the source encoding (8-bit WAV is stored
	// unsigned) so downstream energy measurements see only the audio
	mono = filters.NewDCBlock(sampleRate, dcBlockCutoffHz).ProcessBuffer(mono)

	duration := time.Duration(float64(len(mono)) / float64(sampleRate) * float64(time.Second))

	logger.Debug("Audio decode completed", logging.Fields{
		"sample_rate": sampleRate,
		"samples":     len(mono),
		"duration":    duration.Seconds(),
	})

	return &AudioData{
		PCM:        mono,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   duration,
	}, nil
}

// detectFormat identifies the container by magic bytes, falling back to the
// filename extension
func detectFormat(data []byte, filename string) string {
	if len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")) {
		return "wav"
	}
	if len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")) {
		return "mp3"
	}
	// Bare MPEG audio frame sync: 11 set bits
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return "mp3"
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		return "wav"
	case ".mp3":
		return "mp3"
	}

	return "unknown"
}
