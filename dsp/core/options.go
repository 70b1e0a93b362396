package core

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by ProcessorConfig.Validate.
var ErrInvalidConfig = errors.New("invalid processor config")

// ProcessorConfig defines the session settings handed to every module on
// prepare: the sample rate and the largest block the host will render.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the defaults used when a host does not
// specify a session.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  512,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate checks that the session can be rendered.
func (c ProcessorConfig) Validate() error {
	if !IsFinite(c.SampleRate) || c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidConfig, c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	return nil
}
