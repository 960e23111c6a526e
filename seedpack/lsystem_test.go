package seedpack

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func catalogSystem(t testing.TB, name string) LSystem {
	t.Helper()
	for _, l := range Catalog() {
		if l.Name == name {
			return l
		}
	}
	t.Fatalf("no catalog system %q", name)
	return LSystem{}
}

func expand(t testing.TB, name string, n int) []byte {
	t.Helper()
	out, err := catalogSystem(t, name).Expand(n, math.MaxInt32)
	if err != nil {
		t.Fatalf("Expand(%s, %d): %v", name, n, err)
	}
	return out
}

func TestLSystemExpand(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"koch", 1, "F+F-F-F+F"},
		{"koch", 2, "F+F-F-F+F+F+F-F-F+F-F+F-F-F+F-F+F-F-F+F+F+F-F-F+F"},
		{"sierpinski", 1, "F-G+F+G-F-GG-GG"},
		{"dragon", 1, "FX+YF+"},
		{"dragon", 2, "FX+YF++-FX-YF+"},
		{"hilbert", 1, "-BF+AFA+FB-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expand(t, tt.name, tt.n); string(got) != tt.want {
				t.Errorf("Expand(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestLSystemExpandLimit(t *testing.T) {
	_, err := catalogSystem(t, "koch").Expand(10, 1000)
	if err != ErrOutputLimit {
		t.Fatalf("Expand error = %v, want ErrOutputLimit", err)
	}
}

func TestLSystemRecognize(t *testing.T) {
	g := NewLSystemGenerator(Catalog(), DefaultMaxLSystemDepth)

	tests := []struct {
		system string
		depth  int
	}{
		{"koch", 1},
		{"koch", 7},
		{"sierpinski", 4},
		{"dragon", 6},
		{"hilbert", 3},
	}

	for _, tt := range tests {
		t.Run(tt.system, func(t *testing.T) {
			data := expand(t, tt.system, tt.depth)
			seed, ok := g.Recognize(NewInput(data))
			if !ok {
				t.Fatalf("Recognize missed %s at depth %d", tt.system, tt.depth)
			}
			s := seed.(LSystemSeed)
			if s.Name != tt.system || s.Iterations != uint32(tt.depth) {
				t.Errorf("Recognize = %s/%d, want %s/%d", s.Name, s.Iterations, tt.system, tt.depth)
			}
			out, err := g.Regenerate(seed, len(data))
			if err != nil {
				t.Fatalf("Regenerate: %v", err)
			}
			if !bytes.Equal(out, data) {
				t.Error("Regenerate did not reproduce the expansion")
			}
		})
	}
}

func TestLSystemKochSeed(t *testing.T) {
	g := NewLSystemGenerator(Catalog(), DefaultMaxLSystemDepth)
	seed, ok := g.Recognize(NewInput(expand(t, "koch", 7)))
	if !ok {
		t.Fatal("Koch depth 7 not recognized")
	}
	s := seed.(LSystemSeed)
	if s.Axiom != "F" || len(s.Rules) != 1 || s.Rules["F"] != "F+F-F-F+F" || s.Iterations != 7 {
		t.Errorf("seed = %+v", s)
	}
}

func TestLSystemBoundedSearch(t *testing.T) {
	g := NewLSystemGenerator(Catalog(), DefaultMaxLSystemDepth)

	inputs := map[string][]byte{
		"prose":         []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 250)[:10000]),
		"koch alphabet": bytes.Repeat([]byte("F+F+"), 2500),
		"truncated":     expand(t, "koch", 6)[:10000],
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			if seed, ok := g.Recognize(NewInput(data)); ok {
				t.Fatalf("Recognize hit %+v on non L-system input", seed)
			}
			if elapsed := time.Since(start); elapsed > 2*time.Second {
				t.Errorf("search took %v", elapsed)
			}
		})
	}
}

func TestLSystemDepthBound(t *testing.T) {
	g := NewLSystemGenerator(Catalog(), 3)
	if _, ok := g.Recognize(NewInput(expand(t, "koch", 4))); ok {
		t.Error("recognized expansion deeper than the configured bound")
	}
	if _, ok := g.Recognize(NewInput(expand(t, "koch", 3))); !ok {
		t.Error("missed expansion at the configured bound")
	}
}

func TestLSystemRegenerateFromSeed(t *testing.T) {
	g := NewLSystemGenerator(nil, 1)
	seed := LSystemSeed{Axiom: "A", Rules: map[string]string{"A": "AB", "B": "A"}, Iterations: 5}
	out, err := g.Regenerate(seed, 100)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if string(out) != "ABAABABAABAAB" {
		t.Errorf("Regenerate = %q", out)
	}

	bad := LSystemSeed{Axiom: "A", Rules: map[string]string{"AB": "A"}, Iterations: 1}
	if _, err := g.Regenerate(bad, 100); err == nil {
		t.Error("Regenerate accepted a multi-byte rule symbol")
	}
}
