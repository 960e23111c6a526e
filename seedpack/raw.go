package seedpack

import (
	"bytes"
	"fmt"
)

// RawGenerator stores the input verbatim. It recognizes everything, so a
// registry holding it can always produce a container.
type RawGenerator struct{}

func (RawGenerator) Kind() Kind { return KindRaw }

func (RawGenerator) Recognize(in *Input) (Seed, bool) {
	return RawSeed{Data: bytes.Clone(in.Bytes())}, true
}

func (RawGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(RawSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if len(s.Data) > limit {
		return nil, ErrOutputLimit
	}
	return bytes.Clone(s.Data), nil
}
