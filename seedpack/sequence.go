package seedpack

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

// The integer sequence generators all recognize by construction: they
// derive a candidate seed from the first terms, regenerate the full list
// with the same arithmetic Regenerate uses, and accept only an exact match.

// ArithmeticGenerator recognizes start, start+step, start+2*step, ...
type ArithmeticGenerator struct{}

func (ArithmeticGenerator) Kind() Kind { return KindArithmeticSequence }

func (ArithmeticGenerator) Recognize(in *Input) (Seed, bool) {
	numbers, ok := in.Integers()
	if !ok || len(numbers) < 2 {
		return nil, false
	}
	step, ok := subInt64(numbers[1], numbers[0])
	if !ok {
		return nil, false
	}
	seed := ArithmeticSeed{Start: numbers[0], Step: step, Count: uint64(len(numbers))}
	if !matchTerms(numbers, seed.terms) {
		return nil, false
	}
	return seed, true
}

func (ArithmeticGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(ArithmeticSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if err := ValidateSeed(s); err != nil {
		return nil, err
	}
	return renderTerms(s.Count, limit, s.terms)
}

func (s ArithmeticSeed) terms(yield func(int64) bool) error {
	v := s.Start
	for i := uint64(0); i < s.Count; i++ {
		if i > 0 {
			next, ok := addInt64(v, s.Step)
			if !ok {
				return ErrIntegerOverflow
			}
			v = next
		}
		if !yield(v) {
			return nil
		}
	}
	return nil
}

// GeometricGenerator recognizes trunc(start * ratio^i) where ratio is the
// exact fraction second/first.
type GeometricGenerator struct{}

func (GeometricGenerator) Kind() Kind { return KindGeometricSequence }

func (GeometricGenerator) Recognize(in *Input) (Seed, bool) {
	numbers, ok := in.Integers()
	if !ok || len(numbers) < 2 || numbers[0] == 0 || numbers[1] == 0 {
		return nil, false
	}
	seed := GeometricSeed{
		Start: numbers[0],
		Ratio: reduceRatio(numbers[1], numbers[0]),
		Count: uint64(len(numbers)),
	}
	if !matchTerms(numbers, seed.terms) {
		return nil, false
	}
	return seed, true
}

func (GeometricGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(GeometricSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if err := ValidateSeed(s); err != nil {
		return nil, err
	}
	return renderTerms(s.Count, limit, s.terms)
}

func (s GeometricSeed) terms(yield func(int64) bool) error {
	start := big.NewInt(s.Start)
	num := big.NewInt(s.Ratio.Num)
	den := big.NewInt(s.Ratio.Den)
	numPow := big.NewInt(1)
	denPow := big.NewInt(1)
	term := new(big.Int)
	shrinking := absUint64(s.Ratio.Num) < uint64(s.Ratio.Den)
	for i := uint64(0); i < s.Count; i++ {
		if i > 0 {
			numPow.Mul(numPow, num)
			denPow.Mul(denPow, den)
			if numPow.BitLen()+denPow.BitLen() > maxGeometricPowerBits {
				return fmt.Errorf("%w: geometric ratio %d/%d needs more than %d bits of precision",
					ErrInvalidSeed, s.Ratio.Num, s.Ratio.Den, maxGeometricPowerBits)
			}
		}
		term.Mul(start, numPow)
		term.Quo(term, denPow)
		if !term.IsInt64() {
			return ErrIntegerOverflow
		}
		if !yield(term.Int64()) {
			return nil
		}
		// A shrinking ratio stays at zero once it gets there; stop growing
		// the powers.
		if shrinking && term.Sign() == 0 {
			for i++; i < s.Count; i++ {
				if !yield(0) {
					return nil
				}
			}
			return nil
		}
	}
	return nil
}

// maxGeometricPowerBits caps the size of the ratio powers. A reduced ratio
// other than 1 or -1 grows them by at least one bit per term, so the cap
// bounds the work of a single regeneration. Ordinary ratios overflow int64
// or reach zero long before it.
const maxGeometricPowerBits = 4096

// reduceRatio returns num/den in lowest terms with a positive denominator.
func reduceRatio(num, den int64) Ratio {
	n := new(big.Int).SetInt64(num)
	d := new(big.Int).SetInt64(den)
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(n), new(big.Int).Abs(d))
	n.Quo(n, g)
	d.Quo(d, g)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	// Only math.MinInt64 / -1 escapes int64 here, and such a ratio can
	// never reproduce a list that starts with math.MinInt64 anyway.
	if !n.IsInt64() || !d.IsInt64() {
		return Ratio{Num: math.MaxInt64, Den: 1}
	}
	return Ratio{Num: n.Int64(), Den: d.Int64()}
}

// FibonacciGenerator recognizes a, b, a+b, a+2b, ...
type FibonacciGenerator struct{}

func (FibonacciGenerator) Kind() Kind { return KindFibonacciSequence }

func (FibonacciGenerator) Recognize(in *Input) (Seed, bool) {
	numbers, ok := in.Integers()
	if !ok || len(numbers) < 3 {
		return nil, false
	}
	seed := FibonacciSeed{A: numbers[0], B: numbers[1], Count: uint64(len(numbers))}
	if !matchTerms(numbers, seed.terms) {
		return nil, false
	}
	return seed, true
}

func (FibonacciGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(FibonacciSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if err := ValidateSeed(s); err != nil {
		return nil, err
	}
	return renderTerms(s.Count, limit, s.terms)
}

func (s FibonacciSeed) terms(yield func(int64) bool) error {
	a, b := s.A, s.B
	for i := uint64(0); i < s.Count; i++ {
		switch i {
		case 0:
			if !yield(a) {
				return nil
			}
		case 1:
			if !yield(b) {
				return nil
			}
		default:
			next, ok := addInt64(a, b)
			if !ok {
				return ErrIntegerOverflow
			}
			a, b = b, next
			if !yield(next) {
				return nil
			}
		}
	}
	return nil
}

// PowerGenerator recognizes 1, base, base^2, ... for base > 1.
type PowerGenerator struct{}

func (PowerGenerator) Kind() Kind { return KindPowerSequence }

func (PowerGenerator) Recognize(in *Input) (Seed, bool) {
	numbers, ok := in.Integers()
	if !ok || len(numbers) < 2 || numbers[0] != 1 || numbers[1] <= 1 {
		return nil, false
	}
	seed := PowerSeed{Base: numbers[1], Count: uint64(len(numbers))}
	if !matchTerms(numbers, seed.terms) {
		return nil, false
	}
	return seed, true
}

func (PowerGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(PowerSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if err := ValidateSeed(s); err != nil {
		return nil, err
	}
	return renderTerms(s.Count, limit, s.terms)
}

func (s PowerSeed) terms(yield func(int64) bool) error {
	v := int64(1)
	for i := uint64(0); i < s.Count; i++ {
		if i > 0 {
			next, ok := mulInt64(v, s.Base)
			if !ok {
				return ErrIntegerOverflow
			}
			v = next
		}
		if !yield(v) {
			return nil
		}
	}
	return nil
}

// PrimeGenerator recognizes the first N primes.
type PrimeGenerator struct{}

func (PrimeGenerator) Kind() Kind { return KindPrimeSequence }

func (PrimeGenerator) Recognize(in *Input) (Seed, bool) {
	numbers, ok := in.Integers()
	if !ok || numbers[0] != 2 {
		return nil, false
	}
	seed := PrimeSeed{Count: uint64(len(numbers))}
	if !matchTerms(numbers, seed.terms) {
		return nil, false
	}
	return seed, true
}

func (PrimeGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(PrimeSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if err := ValidateSeed(s); err != nil {
		return nil, err
	}
	return renderTerms(s.Count, limit, s.terms)
}

// terms yields primes from a segmented sieve. Segments start small so
// recognition of a short or wrong list stays cheap, and grow to
// maxPrimeSegment for long regenerations.
func (s PrimeSeed) terms(yield func(int64) bool) error {
	var (
		n         uint64
		base      []int64
		baseLimit int64
		size      = int64(minPrimeSegment)
		segment   []bool
	)
	for lo := int64(2); n < s.Count; {
		hi := lo + size
		if hi < lo {
			return ErrIntegerOverflow
		}
		for baseLimit*baseLimit < hi {
			baseLimit = max(2*baseLimit, 64)
			base = smallPrimes(baseLimit)
		}

		if int64(len(segment)) < size {
			segment = make([]bool, size)
		}
		seg := segment[:size]
		clear(seg)
		for _, p := range base {
			if p*p >= hi {
				break
			}
			first := max(p*p, (lo+p-1)/p*p)
			for m := first; m < hi; m += p {
				seg[m-lo] = true
			}
		}
		for i, composite := range seg {
			if composite {
				continue
			}
			if !yield(lo + int64(i)) {
				return nil
			}
			if n++; n == s.Count {
				return nil
			}
		}

		lo = hi
		size = min(2*size, maxPrimeSegment)
	}
	return nil
}

const (
	minPrimeSegment = 1 << 10
	maxPrimeSegment = 1 << 18
)

// smallPrimes returns the primes up to and including limit.
func smallPrimes(limit int64) []int64 {
	composite := make([]bool, limit+1)
	var primes []int64
	for i := int64(2); i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for m := i * i; m <= limit; m += i {
			composite[m] = true
		}
	}
	return primes
}

// termSource streams the terms of a seed to yield until yield returns false.
type termSource func(yield func(int64) bool) error

// matchTerms reports whether src yields exactly numbers.
func matchTerms(numbers []int64, src termSource) bool {
	i := 0
	matched := true
	err := src(func(v int64) bool {
		if i >= len(numbers) || numbers[i] != v {
			matched = false
			return false
		}
		i++
		return true
	})
	return err == nil && matched && i == len(numbers)
}

// renderTerms formats count terms as comma separated integers, refusing to
// build more than limit bytes.
func renderTerms(count uint64, limit int, src termSource) ([]byte, error) {
	// Each term is at least one digit, separated by commas.
	if count > uint64(limit/2)+1 {
		return nil, ErrOutputLimit
	}
	var (
		buf      = make([]byte, 0, min(limit, 64*1024))
		exceeded bool
		n        uint64
	)
	err := src(func(v int64) bool {
		if n > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, v, 10)
		n++
		if len(buf) > limit {
			exceeded = true
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if exceeded {
		return nil, ErrOutputLimit
	}
	return buf, nil
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, false
	}
	return c, true
}

func subInt64(a, b int64) (int64, bool) {
	c := a - b
	if (c < a) != (b > 0) {
		return 0, false
	}
	return c, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(absUint64(a), absUint64(b))
	if hi != 0 {
		return 0, false
	}
	if neg {
		if lo > 1<<63 {
			return 0, false
		}
		return -int64(lo), true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func absUint64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}
