package seedpack

import (
	"fmt"
	"sync"
)

// Generator is one deterministic generator family. Recognize reports
// whether the input is exactly reproducible by the family and returns the
// seed when it is; a miss is the false result, never an error. Regenerate
// rebuilds the bytes from a seed of the generator's own kind and fails with
// ErrOutputLimit rather than produce more than limit bytes.
//
// Implementations must be immutable after construction and safe for
// concurrent use.
type Generator interface {
	Kind() Kind
	Recognize(in *Input) (Seed, bool)
	Regenerate(seed Seed, limit int) ([]byte, error)
}

// Registry maps every Kind to its Generator. It is built once and never
// modified, so one Registry may be shared by any number of compressors and
// decompressors across goroutines.
type Registry struct {
	generators [KindRaw + 1]Generator
}

// NewRegistry builds a registry from generators. Each kind may appear at
// most once and a raw generator is mandatory, because it is the fallback
// that makes compression total.
func NewRegistry(generators ...Generator) (*Registry, error) {
	r := &Registry{}
	for _, g := range generators {
		if g == nil {
			return nil, fmt.Errorf("seedpack: nil generator")
		}
		k := g.Kind()
		if !k.Valid() {
			return nil, fmt.Errorf("seedpack: generator has invalid kind %s", k)
		}
		if r.generators[k] != nil {
			return nil, fmt.Errorf("seedpack: duplicate generator for kind %s", k)
		}
		r.generators[k] = g
	}
	if r.generators[KindRaw] == nil {
		return nil, fmt.Errorf("seedpack: registry requires a %s generator", KindRaw)
	}
	return r, nil
}

// NewDefaultRegistry builds a registry holding every built-in generator,
// configured from cfg. A nil cfg means DefaultConfig().
func NewDefaultRegistry(cfg *Config) (*Registry, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dictionary, err := NewDictionaryGenerator(cfg.Codecs, cfg.Level)
	if err != nil {
		return nil, err
	}

	return NewRegistry(
		RepeatedPatternGenerator{},
		ArithmeticGenerator{},
		GeometricGenerator{},
		FibonacciGenerator{},
		PowerGenerator{},
		PrimeGenerator{},
		NewLSystemGenerator(Catalog(), cfg.MaxLSystemDepth),
		dictionary,
		RawGenerator{},
	)
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
	defaultRegistryErr  error
)

// DefaultRegistry returns a shared registry built from DefaultConfig.
func DefaultRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = NewDefaultRegistry(nil)
	})
	return defaultRegistry, defaultRegistryErr
}

// Generator returns the generator for k, or false if none is registered.
func (r *Registry) Generator(k Kind) (Generator, bool) {
	if !k.Valid() {
		return nil, false
	}
	g := r.generators[k]
	return g, g != nil
}

// Kinds returns the registered kinds in selection order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(Kinds))
	for _, k := range Kinds {
		if r.generators[k] != nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Recognize runs the recognizer registered for k.
func (r *Registry) Recognize(k Kind, in *Input) (Seed, bool) {
	g, ok := r.Generator(k)
	if !ok {
		return nil, false
	}
	return g.Recognize(in)
}

// Regenerate dispatches seed to the generator of its kind.
func (r *Registry) Regenerate(seed Seed, limit int) ([]byte, error) {
	if seed == nil {
		return nil, fmt.Errorf("%w: nil seed", ErrInvalidSeed)
	}
	g, ok := r.Generator(seed.Kind())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoGenerator, seed.Kind())
	}
	return g.Regenerate(seed, limit)
}
