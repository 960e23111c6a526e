package seedpack

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestKindNames(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
		if !k.Valid() {
			t.Errorf("%v.Valid() = false", k)
		}
	}

	if _, err := ParseKind("fractal"); err == nil {
		t.Error("ParseKind(fractal) succeeded, want error")
	}
	if Kind(0).Valid() || (KindRaw + 1).Valid() {
		t.Error("out of range kinds reported valid")
	}
}

func TestGeneratorsRecognize(t *testing.T) {
	tests := []struct {
		name  string
		gen   Generator
		input string
		want  Seed
	}{
		{
			name:  "repeated pattern",
			gen:   RepeatedPatternGenerator{},
			input: "abcabcabc",
			want:  RepeatedPatternSeed{Pattern: []byte("abc"), Count: 3},
		},
		{
			name:  "repeated shortest pattern",
			gen:   RepeatedPatternGenerator{},
			input: "abababab",
			want:  RepeatedPatternSeed{Pattern: []byte("ab"), Count: 4},
		},
		{
			name:  "repeated partial tail",
			gen:   RepeatedPatternGenerator{},
			input: "abcabcab",
		},
		{
			name:  "repeated single",
			gen:   RepeatedPatternGenerator{},
			input: "a",
		},
		{
			name:  "arithmetic",
			gen:   ArithmeticGenerator{},
			input: "0,7,14,21",
			want:  ArithmeticSeed{Start: 0, Step: 7, Count: 4},
		},
		{
			name:  "arithmetic descending",
			gen:   ArithmeticGenerator{},
			input: "10,5,0,-5",
			want:  ArithmeticSeed{Start: 10, Step: -5, Count: 4},
		},
		{
			name:  "arithmetic deviating term",
			gen:   ArithmeticGenerator{},
			input: "0,7,15,21",
		},
		{
			name:  "arithmetic single term",
			gen:   ArithmeticGenerator{},
			input: "42",
		},
		{
			name:  "geometric",
			gen:   GeometricGenerator{},
			input: "3,6,12,24,48",
			want:  GeometricSeed{Start: 3, Ratio: Ratio{Num: 2, Den: 1}, Count: 5},
		},
		{
			name:  "geometric truncated",
			gen:   GeometricGenerator{},
			input: "100,50,25,12,6,3,1,0,0",
			want:  GeometricSeed{Start: 100, Ratio: Ratio{Num: 1, Den: 2}, Count: 9},
		},
		{
			name:  "geometric negative ratio",
			gen:   GeometricGenerator{},
			input: "-8,4,-2,1,0",
			want:  GeometricSeed{Start: -8, Ratio: Ratio{Num: -1, Den: 2}, Count: 5},
		},
		{
			name:  "geometric rounded instead of truncated",
			gen:   GeometricGenerator{},
			input: "100,50,25,13",
		},
		{
			name:  "geometric zero start",
			gen:   GeometricGenerator{},
			input: "0,0,0",
		},
		{
			name:  "fibonacci",
			gen:   FibonacciGenerator{},
			input: "1,1,2,3,5,8,13,21",
			want:  FibonacciSeed{A: 1, B: 1, Count: 8},
		},
		{
			name:  "fibonacci custom start",
			gen:   FibonacciGenerator{},
			input: "2,1,3,4,7,11",
			want:  FibonacciSeed{A: 2, B: 1, Count: 6},
		},
		{
			name:  "fibonacci deviating",
			gen:   FibonacciGenerator{},
			input: "1,1,2,3,5,9",
		},
		{
			name:  "power",
			gen:   PowerGenerator{},
			input: "1,3,9,27,81",
			want:  PowerSeed{Base: 3, Count: 5},
		},
		{
			name:  "power wrong start",
			gen:   PowerGenerator{},
			input: "2,4,8",
		},
		{
			name:  "primes",
			gen:   PrimeGenerator{},
			input: "2,3,5,7,11,13,17,19,23,29",
			want:  PrimeSeed{Count: 10},
		},
		{
			name:  "primes with composite",
			gen:   PrimeGenerator{},
			input: "2,3,5,7,9",
		},
		{
			name:  "primes not from start",
			gen:   PrimeGenerator{},
			input: "3,5,7",
		},
		{
			name:  "sequence rejects text",
			gen:   ArithmeticGenerator{},
			input: "one,two,three",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, ok := tt.gen.Recognize(NewInput([]byte(tt.input)))
			if tt.want == nil {
				if ok {
					t.Fatalf("Recognize(%q) = %+v, want miss", tt.input, seed)
				}
				return
			}
			if !ok {
				t.Fatalf("Recognize(%q) missed, want %+v", tt.input, tt.want)
			}
			if !reflect.DeepEqual(seed, tt.want) {
				t.Fatalf("Recognize(%q) = %+v, want %+v", tt.input, seed, tt.want)
			}
			out, err := tt.gen.Regenerate(seed, len(tt.input))
			if err != nil {
				t.Fatalf("Regenerate: %v", err)
			}
			if string(out) != tt.input {
				t.Errorf("Regenerate = %q, want %q", out, tt.input)
			}
		})
	}
}

func TestRegenerateLimits(t *testing.T) {
	tests := []struct {
		name  string
		gen   Generator
		seed  Seed
		limit int
		want  error
	}{
		{"repeat over limit", RepeatedPatternGenerator{}, RepeatedPatternSeed{Pattern: []byte("AB"), Count: 1 << 40}, 4, ErrOutputLimit},
		{"repeat zero count", RepeatedPatternGenerator{}, RepeatedPatternSeed{Pattern: []byte("AB")}, 4, ErrInvalidSeed},
		{"arithmetic over limit", ArithmeticGenerator{}, ArithmeticSeed{Start: 1, Step: 1, Count: 1000}, 10, ErrOutputLimit},
		{"arithmetic overflow", ArithmeticGenerator{}, ArithmeticSeed{Start: math.MaxInt64 - 1, Step: 1, Count: 3}, 1000, ErrIntegerOverflow},
		{"geometric overflow", GeometricGenerator{}, GeometricSeed{Start: 1, Ratio: Ratio{Num: 10, Den: 1}, Count: 30}, 1000, ErrIntegerOverflow},
		{"geometric zero ratio", GeometricGenerator{}, GeometricSeed{Start: 1, Ratio: Ratio{Num: 0, Den: 1}, Count: 3}, 1000, ErrInvalidSeed},
		{"geometric unreduced ratio", GeometricGenerator{}, GeometricSeed{Start: 1, Ratio: Ratio{Num: 7, Den: 7}, Count: 80000}, 159999, ErrInvalidSeed},
		{"geometric ratio near one", GeometricGenerator{}, GeometricSeed{Start: 1, Ratio: Ratio{Num: 1000001, Den: 1000000}, Count: 80000}, 159999, ErrInvalidSeed},
		{"fibonacci overflow", FibonacciGenerator{}, FibonacciSeed{A: 1, B: 1, Count: 200}, 100000, ErrIntegerOverflow},
		{"power overflow", PowerGenerator{}, PowerSeed{Base: 2, Count: 70}, 100000, ErrIntegerOverflow},
		{"primes over limit", PrimeGenerator{}, PrimeSeed{Count: 1 << 40}, 100, ErrOutputLimit},
		{"raw over limit", RawGenerator{}, RawSeed{Data: []byte("hello")}, 4, ErrOutputLimit},
		{"seed mismatch", RawGenerator{}, PrimeSeed{Count: 1}, 4, ErrSeedMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gen.Regenerate(tt.seed, tt.limit)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Regenerate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGeometricShrinkingToZero(t *testing.T) {
	seed := GeometricSeed{Start: 1 << 20, Ratio: Ratio{Num: 1, Den: 3}, Count: 100000}
	out, err := GeometricGenerator{}.Regenerate(seed, 1<<20)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if !bytes.HasSuffix(out, []byte(",0,0,0")) {
		t.Errorf("expected trailing zeros, got suffix %q", out[len(out)-10:])
	}
	if got := bytes.Count(out, []byte(",")) + 1; got != 100000 {
		t.Errorf("got %d terms, want 100000", got)
	}
}

func TestPrimeTerms(t *testing.T) {
	isPrime := func(v int64) bool {
		for d := int64(2); d*d <= v; d++ {
			if v%d == 0 {
				return false
			}
		}
		return v >= 2
	}

	// Spans several sieve segments and base prime refreshes.
	var want []int64
	for v := int64(2); len(want) < 20000; v++ {
		if isPrime(v) {
			want = append(want, v)
		}
	}
	var got []int64
	if err := (PrimeSeed{Count: uint64(len(want))}).terms(func(v int64) bool {
		got = append(got, v)
		return true
	}); err != nil {
		t.Fatalf("terms: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %d primes, mismatch against trial division", len(got))
	}

	t.Run("millionth", func(t *testing.T) {
		if testing.Short() {
			t.Skip("large output")
		}
		out, err := PrimeGenerator{}.Regenerate(PrimeSeed{Count: 1000000}, 1<<24)
		if err != nil {
			t.Fatalf("Regenerate: %v", err)
		}
		if !bytes.HasSuffix(out, []byte(",15485863")) {
			t.Errorf("last term = %q, want 15485863", out[bytes.LastIndexByte(out, ',')+1:])
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Run("default has every kind", func(t *testing.T) {
		r, err := DefaultRegistry()
		if err != nil {
			t.Fatalf("DefaultRegistry: %v", err)
		}
		if got := r.Kinds(); !reflect.DeepEqual(got, Kinds) {
			t.Errorf("Kinds() = %v, want %v", got, Kinds)
		}
	})

	t.Run("requires raw", func(t *testing.T) {
		if _, err := NewRegistry(RepeatedPatternGenerator{}); err == nil {
			t.Error("NewRegistry without raw succeeded")
		}
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		if _, err := NewRegistry(RawGenerator{}, RawGenerator{}); err == nil {
			t.Error("NewRegistry with duplicate raw succeeded")
		}
	})

	t.Run("rejects nil", func(t *testing.T) {
		if _, err := NewRegistry(nil, RawGenerator{}); err == nil {
			t.Error("NewRegistry with nil generator succeeded")
		}
	})

	t.Run("missing generator", func(t *testing.T) {
		r, err := NewRegistry(RawGenerator{})
		if err != nil {
			t.Fatalf("NewRegistry: %v", err)
		}
		if _, ok := r.Recognize(KindFibonacciSequence, NewInput([]byte("1,1,2"))); ok {
			t.Error("Recognize on unregistered kind hit")
		}
		_, err = r.Regenerate(FibonacciSeed{A: 1, B: 1, Count: 3}, 10)
		if !errors.Is(err, ErrNoGenerator) {
			t.Errorf("Regenerate error = %v, want ErrNoGenerator", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Level = 42
		cfg.Codecs = []Codec{"lzma"}
		if _, err := NewDefaultRegistry(cfg); err == nil {
			t.Error("NewDefaultRegistry with invalid config succeeded")
		}
	})
}
