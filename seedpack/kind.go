package seedpack

import "fmt"

// Kind identifies a generator family. The set is closed; the wire names
// returned by String are protocol constants and must not change.
type Kind uint8

const (
	KindRepeatedPattern Kind = iota + 1
	KindArithmeticSequence
	KindGeometricSequence
	KindFibonacciSequence
	KindPowerSequence
	KindPrimeSequence
	KindLSystem
	KindDictionary
	KindRaw
)

// Kinds lists every kind in selection order. When two candidates encode to
// the same size, the one whose kind appears first wins.
var Kinds = []Kind{
	KindRepeatedPattern,
	KindArithmeticSequence,
	KindGeometricSequence,
	KindFibonacciSequence,
	KindPowerSequence,
	KindPrimeSequence,
	KindLSystem,
	KindDictionary,
	KindRaw,
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRepeatedPattern:
		return "repeated_pattern"
	case KindArithmeticSequence:
		return "arithmetic_sequence"
	case KindGeometricSequence:
		return "geometric_sequence"
	case KindFibonacciSequence:
		return "fibonacci_sequence"
	case KindPowerSequence:
		return "power_sequence"
	case KindPrimeSequence:
		return "prime_sequence"
	case KindLSystem:
		return "lsystem"
	case KindDictionary:
		return "dictionary"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindRepeatedPattern && k <= KindRaw
}

// ParseKind parses a wire name back into a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown generator kind: %q", name)
}
