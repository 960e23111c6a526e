package seedpack

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Decompressor regenerates blobs from containers and verifies them against
// the stored digest. It is safe for concurrent use.
type Decompressor struct {
	registry *Registry
	opts     options
}

// NewDecompressor returns a decompressor dispatching to the generators of
// registry.
func NewDecompressor(registry *Registry, opts ...Option) (*Decompressor, error) {
	if registry == nil {
		return nil, errors.New("seedpack: nil registry")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Decompressor{registry: registry, opts: o}, nil
}

// Decompress regenerates the blob described by c. The result is returned
// only if its length and digest match the container; otherwise the error is
// an *IntegrityError and no bytes are returned.
func (d *Decompressor) Decompress(c *Container) ([]byte, error) {
	if c == nil || c.Seed == nil {
		return nil, formatErrorf("seed", "missing")
	}
	if c.OriginalSize > uint64(d.opts.maxInputSize) {
		return nil, fmt.Errorf("%w: container declares %d bytes, limit %d", ErrInputTooLarge, c.OriginalSize, d.opts.maxInputSize)
	}

	out, err := d.registry.Regenerate(c.Seed, int(c.OriginalSize))
	if err != nil {
		d.opts.logger.Warn("regenerate failed", zap.Stringer("kind", c.Kind()), zap.Error(err))
		if errors.Is(err, ErrNoGenerator) {
			return nil, err
		}
		return nil, &IntegrityError{Kind: c.Kind(), Want: c.Digest, Err: err}
	}

	got := Sum(out)
	if uint64(len(out)) != c.OriginalSize || got != c.Digest {
		d.opts.logger.Warn("integrity check failed",
			zap.Stringer("kind", c.Kind()),
			zap.Uint64("original_size", c.OriginalSize),
			zap.Int("regenerated_size", len(out)),
		)
		return nil, &IntegrityError{Kind: c.Kind(), Want: c.Digest, Got: got}
	}
	return out, nil
}

// DecompressBytes parses an encoded container and decompresses it.
func (d *Decompressor) DecompressBytes(wire []byte) ([]byte, error) {
	c, err := UnmarshalContainer(wire)
	if err != nil {
		return nil, err
	}
	return d.Decompress(c)
}
