package seedpack

import "go.uber.org/zap"

type options struct {
	logger       *zap.Logger
	maxInputSize int
	detectors    []Detector
}

func defaultOptions() options {
	return options{
		logger:       zap.NewNop(),
		maxInputSize: DefaultMaxInputSize,
		detectors:    DefaultDetectors(),
	}
}

// Option configures a Compressor or Decompressor.
type Option func(*options)

// WithLogger sets the logger. Detector outcomes are logged at debug level
// and discarded candidates at warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxInputSize bounds the blobs a Compressor accepts and the original
// size a Decompressor will regenerate. Zero or less means MaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(o *options) {
		o.maxInputSize = inputLimit(n)
	}
}

// WithDetectors replaces the detectors a Compressor runs. Raw is always
// tried last regardless.
func WithDetectors(detectors []Detector) Option {
	return func(o *options) {
		o.detectors = append([]Detector(nil), detectors...)
	}
}
