package seedpack

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec names an entropy coder used by the dictionary fallback.
type Codec string

const (
	CodecZlib   Codec = "zlib"
	CodecGzip   Codec = "gzip"
	CodecZstd   Codec = "zstd"
	CodecBrotli Codec = "brotli"
	CodecLZ4    Codec = "lz4"
	CodecSnappy Codec = "snappy"
)

// Codecs lists every supported codec. When two codecs produce output of the
// same length, the earlier one wins.
var Codecs = []Codec{CodecZlib, CodecGzip, CodecZstd, CodecBrotli, CodecLZ4, CodecSnappy}

func (c Codec) String() string { return string(c) }

// Valid reports whether c is a supported codec.
func (c Codec) Valid() bool {
	for _, known := range Codecs {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCodec returns the codec with the given name.
func ParseCodec(name string) (Codec, error) {
	c := Codec(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// DictionaryGenerator is the generic fallback: it accepts any blob that one
// of its codecs shrinks. Decoding handles every codec, including ones the
// generator was not configured to encode with.
type DictionaryGenerator struct {
	codecs []Codec
	level  int
}

// NewDictionaryGenerator returns a generator trying codecs in order at the
// given level (1 fastest .. 9 smallest).
func NewDictionaryGenerator(codecs []Codec, level int) (*DictionaryGenerator, error) {
	if len(codecs) == 0 {
		return nil, fmt.Errorf("seedpack: dictionary generator needs at least one codec")
	}
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("seedpack: compression level %d out of range [%d, %d]", level, MinLevel, MaxLevel)
	}
	for _, c := range codecs {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, c)
		}
	}
	return &DictionaryGenerator{codecs: append([]Codec(nil), codecs...), level: level}, nil
}

func (g *DictionaryGenerator) Kind() Kind { return KindDictionary }

// Recognize encodes the input with every configured codec and keeps the
// smallest output, provided it is strictly smaller than the input.
func (g *DictionaryGenerator) Recognize(in *Input) (Seed, bool) {
	var (
		best      []byte
		bestCodec Codec
	)
	for _, c := range g.codecs {
		out, err := encode(c, in.Bytes(), g.level)
		if err != nil {
			continue
		}
		if len(out) >= in.Len() {
			continue
		}
		if best == nil || len(out) < len(best) {
			best, bestCodec = out, c
		}
	}
	if best == nil {
		return nil, false
	}
	return DictionarySeed{Codec: bestCodec, Data: best}, true
}

func (g *DictionaryGenerator) Regenerate(seed Seed, limit int) ([]byte, error) {
	s, ok := seed.(DictionarySeed)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSeedMismatch, seed)
	}
	return decode(s.Codec, s.Data, limit)
}

// Codecs returns the codecs the generator encodes with.
func (g *DictionaryGenerator) Codecs() []Codec {
	return append([]Codec(nil), g.codecs...)
}

// encode compresses data with codec at level.
func encode(codec Codec, data []byte, level int) ([]byte, error) {
	if codec == CodecSnappy {
		return snappy.Encode(nil, data), nil
	}

	var buf bytes.Buffer
	w, err := newCodecWriter(codec, &buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("seedpack: %s encode: %w", codec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("seedpack: %s encode: %w", codec, err)
	}
	return buf.Bytes(), nil
}

// decode reverses encode, failing with ErrOutputLimit instead of producing
// more than limit bytes.
func decode(codec Codec, data []byte, limit int) ([]byte, error) {
	if codec == CodecSnappy {
		n, err := snappy.DecodedLen(data)
		if err != nil {
			return nil, fmt.Errorf("seedpack: snappy decode: %w", err)
		}
		if n > limit {
			return nil, ErrOutputLimit
		}
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("seedpack: snappy decode: %w", err)
		}
		return out, nil
	}

	r, err := newCodecReader(codec, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("seedpack: %s decode: %w", codec, err)
	}
	if len(out) > limit {
		return nil, ErrOutputLimit
	}
	return out, nil
}

// newCodecWriter creates a streaming encoder for codec.
func newCodecWriter(codec Codec, w io.Writer, level int) (io.WriteCloser, error) {
	switch codec {
	case CodecZlib:
		return zlib.NewWriterLevel(w, level)
	case CodecGzip:
		return gzip.NewWriterLevel(w, level)
	case CodecZstd:
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(1),
		)
	case CodecBrotli:
		return brotli.NewWriterLevel(w, level), nil
	case CodecLZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
			return nil, fmt.Errorf("seedpack: lz4 level: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, codec)
	}
}

// newCodecReader creates a streaming decoder for codec.
func newCodecReader(codec Codec, r io.Reader) (io.ReadCloser, error) {
	switch codec {
	case CodecZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("seedpack: zlib decode: %w", err)
		}
		return zr, nil
	case CodecGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("seedpack: gzip decode: %w", err)
		}
		return zr, nil
	case CodecZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("seedpack: zstd decode: %w", err)
		}
		return zr.IOReadCloser(), nil
	case CodecBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, codec)
	}
}

// lz4Levels maps the shared 1..9 level scale onto lz4 levels.
var lz4Levels = [MaxLevel + 1]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}
