package seedpack

import (
	"fmt"

	"go.uber.org/multierr"
)

const (
	// MinLevel and MaxLevel bound the dictionary compression level.
	MinLevel = 1
	MaxLevel = 9

	// DefaultLevel trades some dictionary ratio for speed; every codec runs
	// on every input.
	DefaultLevel = 6

	// DefaultMaxLSystemDepth is the deepest L-system expansion searched.
	DefaultMaxLSystemDepth = 20

	// MaxLSystemDepth caps both the search depth and the iteration count a
	// container may ask for.
	MaxLSystemDepth = 64

	// DefaultMaxInputSize is the largest blob compressed by default.
	DefaultMaxInputSize = 64 << 20

	// MaxInputSize is the hard ceiling. Raw seeds are hex encoded, so the
	// payload of a raw container is about twice the input and must still
	// fit the 32-bit length field.
	MaxInputSize = 1 << 30
)

// Config holds the tunables of the default registry and of compressors.
type Config struct {
	// Codecs are tried by the dictionary fallback, in order.
	Codecs []Codec

	// Level is the dictionary compression level, MinLevel..MaxLevel.
	Level int

	// MaxLSystemDepth bounds the L-system search.
	MaxLSystemDepth int

	// MaxInputSize rejects larger inputs with ErrInputTooLarge. Zero means
	// the hard ceiling.
	MaxInputSize int
}

// DefaultConfig returns a configuration using every codec.
func DefaultConfig() *Config {
	return &Config{
		Codecs:          append([]Codec(nil), Codecs...),
		Level:           DefaultLevel,
		MaxLSystemDepth: DefaultMaxLSystemDepth,
		MaxInputSize:    DefaultMaxInputSize,
	}
}

// FastestConfig returns a configuration using only the quickest codecs.
func FastestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Codecs = []Codec{CodecSnappy, CodecLZ4}
	cfg.Level = MinLevel
	return cfg
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var err error
	if len(c.Codecs) == 0 {
		err = multierr.Append(err, fmt.Errorf("seedpack: at least one codec is required"))
	}
	seen := make(map[Codec]bool, len(c.Codecs))
	for _, codec := range c.Codecs {
		if !codec.Valid() {
			err = multierr.Append(err, fmt.Errorf("%w: %q", ErrUnknownCodec, codec))
			continue
		}
		if seen[codec] {
			err = multierr.Append(err, fmt.Errorf("seedpack: codec %s listed twice", codec))
		}
		seen[codec] = true
	}
	if c.Level < MinLevel || c.Level > MaxLevel {
		err = multierr.Append(err, fmt.Errorf("seedpack: level %d out of range [%d, %d]", c.Level, MinLevel, MaxLevel))
	}
	if c.MaxLSystemDepth < 1 || c.MaxLSystemDepth > MaxLSystemDepth {
		err = multierr.Append(err, fmt.Errorf("seedpack: max lsystem depth %d out of range [1, %d]", c.MaxLSystemDepth, MaxLSystemDepth))
	}
	if c.MaxInputSize < 0 || c.MaxInputSize > MaxInputSize {
		err = multierr.Append(err, fmt.Errorf("seedpack: max input size %d out of range [0, %d]", c.MaxInputSize, MaxInputSize))
	}
	return err
}

// inputLimit resolves a configured maximum input size.
func inputLimit(n int) int {
	if n <= 0 || n > MaxInputSize {
		return MaxInputSize
	}
	return n
}
