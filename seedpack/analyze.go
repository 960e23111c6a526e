package seedpack

import "math"

// Potential grades how much structure a blob appears to have.
type Potential string

const (
	PotentialHigh   Potential = "high"
	PotentialMedium Potential = "medium"
	PotentialLow    Potential = "low"
)

// Report describes the compressibility of one blob.
type Report struct {
	Size int

	// Entropy is the Shannon entropy of the byte histogram in bits per byte.
	Entropy float64

	// NormalizedEntropy is Entropy / 8: 0 for a constant blob, 1 for
	// uniformly distributed bytes.
	NormalizedEntropy float64

	// DictionaryRatio is the best ratio of the dictionary codecs alone,
	// measured on the raw codec output without container overhead. It is 1
	// when no codec shrinks the input.
	DictionaryRatio float64

	Potential Potential

	// Selected is the kind Compress would emit, with its ratio.
	Selected Kind
	Ratio    float64

	Candidates []Candidate
}

// HasPattern reports whether the byte distribution is measurably skewed.
func (r *Report) HasPattern() bool {
	return r.NormalizedEntropy < 0.9
}

// Analyze measures data and runs every detector on it.
func (c *Compressor) Analyze(data []byte) (*Report, error) {
	candidates, err := c.Candidates(data)
	if err != nil {
		return nil, err
	}
	entropy := Entropy(data)
	r := &Report{
		Size:              len(data),
		Entropy:           entropy,
		NormalizedEntropy: entropy / 8,
		DictionaryRatio:   1,
		Potential:         potential(entropy / 8),
		Candidates:        candidates,
	}
	for _, cand := range candidates {
		if !cand.Verified {
			continue
		}
		if r.Selected == 0 {
			r.Selected = cand.Kind()
			r.Ratio = cand.Ratio()
		}
		if s, ok := cand.Container.Seed.(DictionarySeed); ok && len(s.Data) > 0 {
			r.DictionaryRatio = CompressionRatio(len(data), len(s.Data))
		}
	}
	return r, nil
}

// Entropy returns the Shannon entropy of the byte histogram of data in bits
// per byte. Empty input has zero entropy.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}
	n := float64(len(data))
	var h float64
	for _, f := range freq {
		if f == 0 {
			continue
		}
		p := float64(f) / n
		h -= p * math.Log2(p)
	}
	return h
}

func potential(normalized float64) Potential {
	switch {
	case normalized < 0.5:
		return PotentialHigh
	case normalized < 0.9:
		return PotentialMedium
	default:
		return PotentialLow
	}
}
