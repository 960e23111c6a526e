package seedpack

import "fmt"

// Family is the view of the input a detector needs.
type Family uint8

const (
	// FamilyBytes detectors run on every input.
	FamilyBytes Family = iota
	// FamilyText detectors run only on valid UTF-8.
	FamilyText
	// FamilyIntegers detectors run only on canonical comma separated integers.
	FamilyIntegers
)

func (f Family) String() string {
	switch f {
	case FamilyBytes:
		return "bytes"
	case FamilyText:
		return "text"
	case FamilyIntegers:
		return "integers"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// Detector binds a generator kind to the input family it applies to. The
// compressor only asks the registry to recognize a kind when the detector's
// family view of the input exists.
type Detector struct {
	Kind   Kind
	Family Family
}

// DefaultDetectors returns one detector per non-raw kind in selection order.
// Raw is not a detector; the compressor always adds it as the last resort.
func DefaultDetectors() []Detector {
	return []Detector{
		{Kind: KindRepeatedPattern, Family: FamilyBytes},
		{Kind: KindArithmeticSequence, Family: FamilyIntegers},
		{Kind: KindGeometricSequence, Family: FamilyIntegers},
		{Kind: KindFibonacciSequence, Family: FamilyIntegers},
		{Kind: KindPowerSequence, Family: FamilyIntegers},
		{Kind: KindPrimeSequence, Family: FamilyIntegers},
		{Kind: KindLSystem, Family: FamilyText},
		{Kind: KindDictionary, Family: FamilyBytes},
	}
}

// Applies reports whether the detector's view of in exists.
func (d Detector) Applies(in *Input) bool {
	switch d.Family {
	case FamilyText:
		_, ok := in.Text()
		return ok
	case FamilyIntegers:
		_, ok := in.Integers()
		return ok
	default:
		return true
	}
}

func (d Detector) String() string {
	return d.Kind.String() + "/" + d.Family.String()
}
