package seedpack

import (
	"fmt"
	"maps"
)

// LSystem is a string rewriting grammar: every iteration replaces each
// symbol that has a rule with the rule's expansion and copies the rest.
type LSystem struct {
	Name  string
	Axiom string
	Rules map[string]string
}

// Catalog returns the built-in L-systems recognized by the default
// registry. The result is a fresh copy on every call.
func Catalog() []LSystem {
	return []LSystem{
		{Name: "koch", Axiom: "F", Rules: map[string]string{"F": "F+F-F-F+F"}},
		{Name: "sierpinski", Axiom: "F-G-G", Rules: map[string]string{"F": "F-G+F+G-F", "G": "GG"}},
		{Name: "dragon", Axiom: "FX", Rules: map[string]string{"X": "X+YF+", "Y": "-FX-Y"}},
		{Name: "hilbert", Axiom: "A", Rules: map[string]string{"A": "-BF+AFA+FB-", "B": "+AF-BFB-FA+"}},
	}
}

// Expand returns the system after n iterations, or ErrOutputLimit once the
// working string grows past limit bytes.
func (l LSystem) Expand(n int, limit int) ([]byte, error) {
	g, err := compileGrammar(l.Axiom, l.Rules)
	if err != nil {
		return nil, err
	}
	out := g.axiom
	for i := 0; i < n; i++ {
		if out, err = g.step(out, limit); err != nil {
			return nil, err
		}
	}
	if len(out) > limit {
		return nil, ErrOutputLimit
	}
	return out, nil
}

// grammar is an L-system compiled to byte lookup tables.
type grammar struct {
	name     string
	axiom    []byte
	rules    map[string]string
	alphabet [256]bool
	expand   [256][]byte
	rewrites [256]bool
}

func compileGrammar(axiom string, rules map[string]string) (*grammar, error) {
	if axiom == "" {
		return nil, fmt.Errorf("%w: empty axiom", ErrInvalidSeed)
	}
	g := &grammar{axiom: []byte(axiom), rules: rules}
	for i := 0; i < len(axiom); i++ {
		g.alphabet[axiom[i]] = true
	}
	for sym, repl := range rules {
		if len(sym) != 1 {
			return nil, fmt.Errorf("%w: rule symbol %q is not a single byte", ErrInvalidSeed, sym)
		}
		c := sym[0]
		g.alphabet[c] = true
		g.rewrites[c] = true
		g.expand[c] = []byte(repl)
		for i := 0; i < len(repl); i++ {
			g.alphabet[repl[i]] = true
		}
	}
	return g, nil
}

// step applies one rewriting pass to cur.
func (g *grammar) step(cur []byte, limit int) ([]byte, error) {
	next := make([]byte, 0, min(limit, 2*len(cur)))
	for _, c := range cur {
		if g.rewrites[c] {
			next = append(next, g.expand[c]...)
		} else {
			next = append(next, c)
		}
		if len(next) > limit {
			return nil, ErrOutputLimit
		}
	}
	return next, nil
}

// covers reports whether every byte of data belongs to the alphabet.
func (g *grammar) covers(data []byte) bool {
	for _, c := range data {
		if !g.alphabet[c] {
			return false
		}
	}
	return true
}

// LSystemGenerator recognizes text that is an exact expansion of one of its
// catalog systems at some depth in [1, maxDepth].
type LSystemGenerator struct {
	systems  []*grammar
	maxDepth int
}

// NewLSystemGenerator compiles catalog. Entries with malformed rules are
// dropped. maxDepth is clamped to [1, MaxLSystemDepth].
func NewLSystemGenerator(catalog []LSystem, maxDepth int) *LSystemGenerator {
	g := &LSystemGenerator{maxDepth: min(max(maxDepth, 1), MaxLSystemDepth)}
	for _, l := range catalog {
		compiled, err := compileGrammar(l.Axiom, maps.Clone(l.Rules))
		if err != nil {
			continue
		}
		compiled.name = l.Name
		g.systems = append(g.systems, compiled)
	}
	return g
}

func (g *LSystemGenerator) Kind() Kind { return KindLSystem }

// Recognize expands each catalog system depth by depth. A system is skipped
// outright when the input uses a symbol it never produces, and its search
// stops once the working string is more than twice the target length.
func (g *LSystemGenerator) Recognize(in *Input) (Seed, bool) {
	if _, ok := in.Text(); !ok {
		return nil, false
	}
	target := in.Bytes()
	bound := 2 * len(target)
	for _, sys := range g.systems {
		if !sys.covers(target) {
			continue
		}
		cur := sys.axiom
		for depth := 1; depth <= g.maxDepth; depth++ {
			next, err := sys.step(cur, bound)
			if err != nil {
				break
			}
			cur = next
			if len(cur) == len(target) && string(cur) == string(target) {
				return LSystemSeed{
					Name:       sys.name,
					Axiom:      string(sys.axiom),
					Rules:      maps.Clone(sys.rules),
					Iterations: uint32(depth),
				}, true
			}
		}
	}
	return nil, false
}

// Regenerate expands the seed's own axiom and rules; the catalog is only
// consulted during recognition.
func (g *LSystemGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(LSystemSeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	if err := ValidateSeed(s); err != nil {
		return nil, err
	}
	l := LSystem{Name: s.Name, Axiom: s.Axiom, Rules: s.Rules}
	return l.Expand(int(s.Iterations), limit)
}

// Systems returns the names of the compiled catalog entries.
func (g *LSystemGenerator) Systems() []string {
	names := make([]string, 0, len(g.systems))
	for _, s := range g.systems {
		names = append(names, s.name)
	}
	return names
}
