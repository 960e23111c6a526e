package seedpack

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// ErrNoCandidate is returned when no candidate, not even raw, survives
// verification. It can only happen with a substitute raw generator.
var ErrNoCandidate = errors.New("seedpack: no candidate survived verification")

// Candidate is one recognized way of encoding an input.
type Candidate struct {
	Container *Container

	// Wire is the encoded container.
	Wire []byte

	// Verified reports whether regenerating the seed reproduced the input.
	// Candidates returns it for every candidate; Compress stops at the first
	// verified one.
	Verified bool

	// Err is the regeneration error when verification failed with one.
	Err error
}

// Kind returns the candidate's generator kind.
func (c Candidate) Kind() Kind { return c.Container.Kind() }

// Size returns the encoded container length.
func (c Candidate) Size() int { return len(c.Wire) }

// Ratio returns original size over encoded size.
func (c Candidate) Ratio() float64 {
	return CompressionRatio(int(c.Container.OriginalSize), len(c.Wire))
}

// Compressor turns blobs into containers. It holds no mutable state and is
// safe for concurrent use.
type Compressor struct {
	registry *Registry
	opts     options
}

// NewCompressor returns a compressor selecting among the generators of
// registry.
func NewCompressor(registry *Registry, opts ...Option) (*Compressor, error) {
	if registry == nil {
		return nil, errors.New("seedpack: nil registry")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Compressor{registry: registry, opts: o}, nil
}

// Compress returns the smallest container whose seed provably regenerates
// data. Candidates are tried in ascending encoded size, ties broken by kind
// order; each is regenerated and compared before it is accepted, and a
// candidate that fails is discarded in favour of the next.
func (c *Compressor) Compress(data []byte) (*Container, error) {
	cand, err := c.compress(data)
	if err != nil {
		return nil, err
	}
	return cand.Container, nil
}

// CompressBytes is Compress followed by encoding the container.
func (c *Compressor) CompressBytes(data []byte) ([]byte, error) {
	cand, err := c.compress(data)
	if err != nil {
		return nil, err
	}
	return cand.Wire, nil
}

func (c *Compressor) compress(data []byte) (Candidate, error) {
	if len(data) > c.opts.maxInputSize {
		return Candidate{}, fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(data), c.opts.maxInputSize)
	}
	candidates := c.collect(data)
	for _, cand := range candidates {
		if c.verify(&cand, data) {
			c.opts.logger.Debug("selected candidate",
				zap.Stringer("kind", cand.Kind()),
				zap.Int("original_size", len(data)),
				zap.Int("compressed_size", cand.Size()),
			)
			return cand, nil
		}
	}
	return Candidate{}, ErrNoCandidate
}

// Candidates returns every recognized candidate for data in selection
// order, each verified.
func (c *Compressor) Candidates(data []byte) ([]Candidate, error) {
	if len(data) > c.opts.maxInputSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(data), c.opts.maxInputSize)
	}
	candidates := c.collect(data)
	for i := range candidates {
		c.verify(&candidates[i], data)
	}
	return candidates, nil
}

// collect runs every applicable detector plus raw and returns the encoded
// candidates sorted by size then kind.
func (c *Compressor) collect(data []byte) []Candidate {
	in := NewInput(data)
	digest := Sum(data)
	log := c.opts.logger

	candidates := make([]Candidate, 0, len(c.opts.detectors)+1)
	add := func(seed Seed) {
		cont := &Container{Seed: seed, OriginalSize: uint64(len(data)), Digest: digest}
		wire, err := cont.MarshalBinary()
		if err != nil {
			log.Warn("encode candidate", zap.Stringer("kind", seed.Kind()), zap.Error(err))
			return
		}
		candidates = append(candidates, Candidate{Container: cont, Wire: wire})
	}

	for _, d := range c.opts.detectors {
		if d.Kind == KindRaw {
			continue
		}
		if !d.Applies(in) {
			log.Debug("detector skipped", zap.Stringer("detector", d))
			continue
		}
		seed, ok := c.registry.Recognize(d.Kind, in)
		if !ok {
			log.Debug("detector missed", zap.Stringer("detector", d))
			continue
		}
		log.Debug("detector matched", zap.Stringer("detector", d))
		add(seed)
	}
	if seed, ok := c.registry.Recognize(KindRaw, in); ok {
		add(seed)
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if n := cmp.Compare(len(a.Wire), len(b.Wire)); n != 0 {
			return n
		}
		return cmp.Compare(a.Kind(), b.Kind())
	})
	return candidates
}

// verify regenerates the candidate and records whether it reproduces data.
func (c *Compressor) verify(cand *Candidate, data []byte) bool {
	out, err := c.registry.Regenerate(cand.Container.Seed, len(data))
	switch {
	case err != nil:
		cand.Err = err
	case !bytes.Equal(out, data):
		cand.Err = errors.New("regenerated bytes differ from input")
	default:
		cand.Verified = true
		return true
	}
	c.opts.logger.Warn("discarding candidate",
		zap.Stringer("kind", cand.Kind()),
		zap.Error(cand.Err),
	)
	return false
}

// CompressionRatio returns original/compressed, or 0 when compressed is 0.
func CompressionRatio(original, compressed int) float64 {
	if compressed == 0 {
		return 0
	}
	return float64(original) / float64(compressed)
}
