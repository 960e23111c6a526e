package seedpack

import "fmt"

// Seed is the parameter set a generator needs to reproduce a blob. The
// interface is sealed: only the variants in this file implement it, so a
// type switch over Seed is exhaustive.
type Seed interface {
	Kind() Kind
	seed()
}

// RepeatedPatternSeed regenerates Pattern repeated Count times.
type RepeatedPatternSeed struct {
	Pattern []byte
	Count   uint64
}

// ArithmeticSeed regenerates Start, Start+Step, ... as Count integers.
type ArithmeticSeed struct {
	Start int64
	Step  int64
	Count uint64
}

// Ratio is a reduced fraction with a positive denominator.
type Ratio struct {
	Num int64
	Den int64
}

// GeometricSeed regenerates trunc(Start * Ratio^i) for i in [0, Count).
// Terms are computed exactly with big integers and truncated toward zero.
type GeometricSeed struct {
	Start int64
	Ratio Ratio
	Count uint64
}

// FibonacciSeed regenerates A, B, A+B, ... as Count integers.
type FibonacciSeed struct {
	A     int64
	B     int64
	Count uint64
}

// PowerSeed regenerates Base^0 .. Base^(Count-1).
type PowerSeed struct {
	Base  int64
	Count uint64
}

// PrimeSeed regenerates the first Count primes.
type PrimeSeed struct {
	Count uint64
}

// LSystemSeed regenerates the expansion of Axiom under Rules after
// Iterations rewriting passes. Name records which catalog entry matched and
// is not used for regeneration.
type LSystemSeed struct {
	Name       string
	Axiom      string
	Rules      map[string]string
	Iterations uint32
}

// DictionarySeed holds Data produced by an entropy codec.
type DictionarySeed struct {
	Codec Codec
	Data  []byte
}

// RawSeed holds the original bytes verbatim.
type RawSeed struct {
	Data []byte
}

func (RepeatedPatternSeed) Kind() Kind { return KindRepeatedPattern }
func (ArithmeticSeed) Kind() Kind      { return KindArithmeticSequence }
func (GeometricSeed) Kind() Kind       { return KindGeometricSequence }
func (FibonacciSeed) Kind() Kind       { return KindFibonacciSequence }
func (PowerSeed) Kind() Kind           { return KindPowerSequence }
func (PrimeSeed) Kind() Kind           { return KindPrimeSequence }
func (LSystemSeed) Kind() Kind         { return KindLSystem }
func (DictionarySeed) Kind() Kind      { return KindDictionary }
func (RawSeed) Kind() Kind             { return KindRaw }

func (RepeatedPatternSeed) seed() {}
func (ArithmeticSeed) seed()      {}
func (GeometricSeed) seed()       {}
func (FibonacciSeed) seed()       {}
func (PowerSeed) seed()           {}
func (PrimeSeed) seed()           {}
func (LSystemSeed) seed()         {}
func (DictionarySeed) seed()      {}
func (RawSeed) seed()             {}

// ValidateSeed reports whether seed carries parameters its generator accepts.
// It does not regenerate anything.
func ValidateSeed(seed Seed) error {
	switch s := seed.(type) {
	case nil:
		return fmt.Errorf("%w: nil seed", ErrInvalidSeed)
	case RepeatedPatternSeed:
		if len(s.Pattern) == 0 || s.Count == 0 {
			return fmt.Errorf("%w: empty pattern or zero count", ErrInvalidSeed)
		}
	case ArithmeticSeed:
		if s.Count < 2 {
			return fmt.Errorf("%w: arithmetic sequence needs at least 2 terms", ErrInvalidSeed)
		}
	case GeometricSeed:
		if s.Count < 2 || s.Start == 0 || s.Ratio.Num == 0 || s.Ratio.Den <= 0 {
			return fmt.Errorf("%w: geometric sequence needs a non-zero start and ratio", ErrInvalidSeed)
		}
		if reduceRatio(s.Ratio.Num, s.Ratio.Den) != s.Ratio {
			return fmt.Errorf("%w: geometric ratio %d/%d is not in lowest terms", ErrInvalidSeed, s.Ratio.Num, s.Ratio.Den)
		}
	case FibonacciSeed:
		if s.Count < 3 {
			return fmt.Errorf("%w: fibonacci sequence needs at least 3 terms", ErrInvalidSeed)
		}
	case PowerSeed:
		if s.Count < 2 || s.Base <= 1 {
			return fmt.Errorf("%w: power sequence needs base > 1 and at least 2 terms", ErrInvalidSeed)
		}
	case PrimeSeed:
		if s.Count == 0 {
			return fmt.Errorf("%w: prime sequence needs at least 1 term", ErrInvalidSeed)
		}
	case LSystemSeed:
		if s.Axiom == "" {
			return fmt.Errorf("%w: empty axiom", ErrInvalidSeed)
		}
		if s.Iterations == 0 || s.Iterations > MaxLSystemDepth {
			return fmt.Errorf("%w: lsystem iterations %d out of range [1, %d]", ErrInvalidSeed, s.Iterations, MaxLSystemDepth)
		}
		for sym := range s.Rules {
			if len(sym) != 1 {
				return fmt.Errorf("%w: rule symbol %q is not a single byte", ErrInvalidSeed, sym)
			}
		}
	case DictionarySeed:
		if !s.Codec.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCodec, s.Codec)
		}
	case RawSeed:
	}
	return nil
}
