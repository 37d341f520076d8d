package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when the binary was built without audio
// support.
var ErrUnavailable = errors.New("audio not available in this build")

// Config describes the output device format.
type Config struct {
	SampleRate int           // 44100 or 48000 Hz only
	Channels   int           // 1 = mono, 2 = stereo
	BufferSize time.Duration // device buffer length
	Poll       time.Duration // how often a handle checks for natural end
}

// DefaultConfig returns the default output configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		Channels:   2,
		BufferSize: 100 * time.Millisecond,
		Poll:       50 * time.Millisecond,
	}
}

func validateConfig(config Config) error {
	// OTO only supports specific sample rates reliably
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}

	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}

	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}

	if config.Poll <= 0 {
		return errors.New("poll interval must be positive")
	}

	return nil
}
