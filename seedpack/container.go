package seedpack

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

const (
	// Magic opens every container.
	Magic = "SEED"

	// Version is the only container version this package reads or writes.
	Version = 1

	// HeaderSize is MAGIC(4) + VERSION(1) + PAYLOAD_LEN(4).
	HeaderSize = len(Magic) + 1 + 4
)

// Container is the self-describing record of one compressed blob: the seed
// that regenerates it, its length and its digest.
type Container struct {
	Seed         Seed
	OriginalSize uint64
	Digest       Digest
}

// Kind returns the generator kind of the seed.
func (c *Container) Kind() Kind {
	if c.Seed == nil {
		return 0
	}
	return c.Seed.Kind()
}

// payload is the JSON record following the header.
type payload struct {
	Kind         string          `json:"kind"`
	Seed         json.RawMessage `json:"seed"`
	OriginalSize uint64          `json:"original_size"`
	Digest       string          `json:"digest"`
}

// MarshalBinary encodes the container. The encoding is deterministic: the
// same container always produces the same bytes.
func (c *Container) MarshalBinary() ([]byte, error) {
	if c.Seed == nil {
		return nil, fmt.Errorf("%w: nil seed", ErrInvalidSeed)
	}
	seed, err := marshalSeed(c.Seed)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload{
		Kind:         c.Seed.Kind().String(),
		Seed:         seed,
		OriginalSize: c.OriginalSize,
		Digest:       c.Digest.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("seedpack: encode payload: %w", err)
	}
	if uint64(len(body)) > math.MaxUint32 {
		return nil, ErrInputTooLarge
	}

	out := make([]byte, HeaderSize, HeaderSize+len(body))
	copy(out, Magic)
	out[4] = Version
	binary.LittleEndian.PutUint32(out[5:HeaderSize], uint32(len(body)))
	return append(out, body...), nil
}

// UnmarshalBinary decodes data into c.
func (c *Container) UnmarshalBinary(data []byte) error {
	parsed, err := UnmarshalContainer(data)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

// Size returns the encoded length of the container.
func (c *Container) Size() (int, error) {
	b, err := c.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// Ratio returns OriginalSize divided by the encoded length.
func (c *Container) Ratio() float64 {
	n, err := c.Size()
	if err != nil || n == 0 {
		return 0
	}
	return float64(c.OriginalSize) / float64(n)
}

// IsContainer reports whether data starts with the container magic.
func IsContainer(data []byte) bool {
	return len(data) >= len(Magic) && string(data[:len(Magic)]) == Magic
}

// UnmarshalContainer parses an encoded container. Every malformation is
// reported as a *FormatError; unknown versions are never parsed.
func UnmarshalContainer(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, formatErrorf("header", "container is %d bytes, need at least %d", len(data), HeaderSize)
	}
	if !IsContainer(data) {
		return nil, formatErrorf("magic", "got %q, want %q", data[:len(Magic)], Magic)
	}
	if v := data[4]; v != Version {
		return nil, formatErrorf("version", "unsupported version %d", v)
	}
	n := binary.LittleEndian.Uint32(data[5:HeaderSize])
	body := data[HeaderSize:]
	if uint64(len(body)) != uint64(n) {
		return nil, formatErrorf("length", "header declares %d payload bytes, have %d", n, len(body))
	}
	if !utf8.Valid(body) {
		return nil, formatErrorf("payload", "not valid UTF-8")
	}

	var p payload
	if err := decodeStrict(body, &p); err != nil {
		return nil, &FormatError{Field: "payload", Err: err}
	}
	kind, err := ParseKind(p.Kind)
	if err != nil {
		return nil, &FormatError{Field: "kind", Err: err}
	}
	digest, err := ParseDigest(p.Digest)
	if err != nil {
		return nil, &FormatError{Field: "digest", Err: err}
	}
	if len(p.Seed) == 0 {
		return nil, formatErrorf("seed", "missing")
	}
	seed, err := unmarshalSeed(kind, p.Seed)
	if err != nil {
		return nil, &FormatError{Field: "seed", Err: err}
	}
	if err := ValidateSeed(seed); err != nil {
		return nil, &FormatError{Field: "seed", Err: err}
	}
	return &Container{Seed: seed, OriginalSize: p.OriginalSize, Digest: digest}, nil
}

// decodeStrict decodes exactly one JSON value with no unknown fields.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// hexBytes is a byte slice carried as a lowercase hex string.
type hexBytes []byte

func (h hexBytes) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(out, h)
	return out, nil
}

func (h *hexBytes) UnmarshalText(text []byte) error {
	out := make([]byte, hex.DecodedLen(len(text)))
	n, err := hex.Decode(out, text)
	if err != nil {
		return err
	}
	*h = out[:n]
	return nil
}

type repeatedPatternWire struct {
	Pattern hexBytes `json:"pattern"`
	Count   uint64   `json:"count"`
}

type arithmeticWire struct {
	Start int64  `json:"start"`
	Step  int64  `json:"step"`
	Count uint64 `json:"count"`
}

type geometricWire struct {
	Start    int64  `json:"start"`
	RatioNum int64  `json:"ratio_num"`
	RatioDen int64  `json:"ratio_den"`
	Count    uint64 `json:"count"`
}

type fibonacciWire struct {
	A     int64  `json:"a"`
	B     int64  `json:"b"`
	Count uint64 `json:"count"`
}

type powerWire struct {
	Base  int64  `json:"base"`
	Count uint64 `json:"count"`
}

type primeWire struct {
	Count uint64 `json:"count"`
}

type lsystemWire struct {
	Name       string            `json:"name,omitempty"`
	Axiom      string            `json:"axiom"`
	Rules      map[string]string `json:"rules"`
	Iterations uint32            `json:"iterations"`
}

type dictionaryWire struct {
	Codec string   `json:"codec"`
	Data  hexBytes `json:"data"`
}

type rawWire struct {
	Data hexBytes `json:"data"`
}

func marshalSeed(seed Seed) (json.RawMessage, error) {
	var w any
	switch s := seed.(type) {
	case RepeatedPatternSeed:
		w = repeatedPatternWire{Pattern: s.Pattern, Count: s.Count}
	case ArithmeticSeed:
		w = arithmeticWire{Start: s.Start, Step: s.Step, Count: s.Count}
	case GeometricSeed:
		w = geometricWire{Start: s.Start, RatioNum: s.Ratio.Num, RatioDen: s.Ratio.Den, Count: s.Count}
	case FibonacciSeed:
		w = fibonacciWire{A: s.A, B: s.B, Count: s.Count}
	case PowerSeed:
		w = powerWire{Base: s.Base, Count: s.Count}
	case PrimeSeed:
		w = primeWire{Count: s.Count}
	case LSystemSeed:
		w = lsystemWire{Name: s.Name, Axiom: s.Axiom, Rules: s.Rules, Iterations: s.Iterations}
	case DictionarySeed:
		w = dictionaryWire{Codec: string(s.Codec), Data: s.Data}
	case RawSeed:
		w = rawWire{Data: s.Data}
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSeed, seed)
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("seedpack: encode %s seed: %w", seed.Kind(), err)
	}
	return b, nil
}

func unmarshalSeed(kind Kind, data []byte) (Seed, error) {
	switch kind {
	case KindRepeatedPattern:
		var w repeatedPatternWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return RepeatedPatternSeed{Pattern: w.Pattern, Count: w.Count}, nil
	case KindArithmeticSequence:
		var w arithmeticWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return ArithmeticSeed{Start: w.Start, Step: w.Step, Count: w.Count}, nil
	case KindGeometricSequence:
		var w geometricWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return GeometricSeed{Start: w.Start, Ratio: Ratio{Num: w.RatioNum, Den: w.RatioDen}, Count: w.Count}, nil
	case KindFibonacciSequence:
		var w fibonacciWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return FibonacciSeed{A: w.A, B: w.B, Count: w.Count}, nil
	case KindPowerSequence:
		var w powerWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return PowerSeed{Base: w.Base, Count: w.Count}, nil
	case KindPrimeSequence:
		var w primeWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return PrimeSeed{Count: w.Count}, nil
	case KindLSystem:
		var w lsystemWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return LSystemSeed{Name: w.Name, Axiom: w.Axiom, Rules: w.Rules, Iterations: w.Iterations}, nil
	case KindDictionary:
		var w dictionaryWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		codec, err := ParseCodec(w.Codec)
		if err != nil {
			return nil, err
		}
		return DictionarySeed{Codec: codec, Data: w.Data}, nil
	case KindRaw:
		var w rawWire
		if err := decodeStrict(data, &w); err != nil {
			return nil, err
		}
		return RawSeed{Data: w.Data}, nil
	default:
		return nil, fmt.Errorf("unknown kind %s", kind)
	}
}
