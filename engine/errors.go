package engine

import (
	"fmt"
)

// ConfigurationError reports an invalid pipeline configuration value.
// Terminal for the run; the engine never retries internally.
type ConfigurationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

func newConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// InsufficientDataError reports a track too short (or too empty) for
// reliable analysis. Raised at aggregation time when fewer than the
// configured minimum number of frames were analyzed.
type InsufficientDataError struct {
	Frames    int `json:"frames"`
	MinFrames int `json:"min_frames"`
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient audio data: %d frames analyzed, need at least %d", e.Frames, e.MinFrames)
}
