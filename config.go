package overdraw

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-overdraw/internal/engine"
)

// Quality selects the stopband attenuation of the oversampling filters.
type Quality = engine.Quality

// Oversampling quality presets.
const (
	QualityQuick    = engine.QualityQuick
	QualityLow      = engine.QualityLow
	QualityMedium   = engine.QualityMedium
	QualityHigh     = engine.QualityHigh
	QualityVeryHigh = engine.QualityVeryHigh
)

// ParseQuality converts a preset name ("quick", "low", "medium", "high",
// "veryhigh") to a Quality.
func ParseQuality(name string) (Quality, error) {
	return engine.ParseQuality(name)
}

// Common sample rates.
const (
	RateCD  = 44100
	RateDAT = 48000
	Rate96  = 96000
)

// Configuration defaults and limits.
const (
	DefaultSampleRate   = RateDAT
	DefaultMaxBlockSize = 512
	maxSampleRate       = 768000
	maxBlockSizeLimit   = 1 << 16
)

// Common errors returned by the processor.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid overdraw configuration")

	// ErrUnknownParameter indicates a parameter id or name that does not exist.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidState indicates a state snapshot that cannot be applied.
	ErrInvalidState = errors.New("invalid state")
)

// Config holds the processor configuration.
type Config struct {
	// SampleRate is the host sample rate in Hz.
	SampleRate float64

	// MaxBlockSize is the largest block processed in one pass. Longer host
	// buffers are split into blocks of this size.
	MaxBlockSize int

	// Quality sets the oversampling filter attenuation.
	Quality Quality

	// DCCutoff is the DC blocker corner in Hz. Zero selects 5 Hz.
	DCCutoff float64

	// OnLatencyChange, when set, is called with the new latency in host
	// samples whenever an oversampling change alters it. It runs on the
	// goroutine that made the change, never on the audio thread.
	OnLatencyChange func(samples int)
}

// DefaultConfig returns a configuration for 48 kHz with 512-sample blocks.
func DefaultConfig() Config {
	return Config{
		SampleRate:   DefaultSampleRate,
		MaxBlockSize: DefaultMaxBlockSize,
		Quality:      QualityHigh,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate %v out of range (0, %d]", ErrInvalidConfig, c.SampleRate, maxSampleRate)
	}

	if c.MaxBlockSize < 1 || c.MaxBlockSize > maxBlockSizeLimit {
		return fmt.Errorf("%w: block size %d out of range [1, %d]", ErrInvalidConfig, c.MaxBlockSize, maxBlockSizeLimit)
	}

	if c.Quality < QualityQuick || c.Quality > QualityVeryHigh {
		return fmt.Errorf("%w: unknown quality %d", ErrInvalidConfig, c.Quality)
	}

	if c.DCCutoff < 0 || c.DCCutoff >= c.SampleRate/2 {
		return fmt.Errorf("%w: DC cutoff %v must be below Nyquist", ErrInvalidConfig, c.DCCutoff)
	}

	return nil
}
