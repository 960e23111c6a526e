package seedpack

import (
	"bytes"
	"fmt"
)

// RepeatedPatternGenerator recognizes blobs that are an exact tiling of a
// shorter pattern. Partial trailing repeats never match.
type RepeatedPatternGenerator struct{}

func (RepeatedPatternGenerator) Kind() Kind { return KindRepeatedPattern }

func (RepeatedPatternGenerator) Recognize(in *Input) (Seed, bool) {
	pattern, count, ok := findRepeatingPattern(in.Bytes())
	if !ok {
		return nil, false
	}
	return RepeatedPatternSeed{
		Pattern: bytes.Clone(pattern),
		Count:   uint64(count),
	}, true
}

func (RepeatedPatternGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(RepeatedPatternSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if err := ValidateSeed(s); err != nil {
		return nil, err
	}
	if s.Count > uint64(limit/len(s.Pattern)) {
		return nil, ErrOutputLimit
	}
	return bytes.Repeat(s.Pattern, int(s.Count)), nil
}

// findRepeatingPattern returns the shortest pattern that tiles data at least
// twice. Only lengths dividing len(data) are candidates, and each candidate
// is rejected at its first mismatching tile.
func findRepeatingPattern(data []byte) ([]byte, int, bool) {
	n := len(data)
	for size := 1; size <= n/2; size++ {
		if n%size != 0 {
			continue
		}
		if tiles(data, size) {
			return data[:size], n / size, true
		}
	}
	return nil, 0, false
}

func tiles(data []byte, size int) bool {
	pattern := data[:size]
	if !bytes.Equal(pattern, data[len(data)-size:]) {
		return false
	}
	for off := size; off < len(data); off += size {
		if !bytes.Equal(pattern, data[off:off+size]) {
			return false
		}
	}
	return true
}
