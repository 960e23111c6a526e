package seedpack

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func compressibleText() []byte {
	return []byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50) +
		strings.Repeat("Pack my box with five dozen liquor jugs. ", 40))
}

func TestCodecs(t *testing.T) {
	data := compressibleText()

	for _, codec := range Codecs {
		t.Run(codec.String(), func(t *testing.T) {
			encoded, err := encode(codec, data, DefaultLevel)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if len(encoded) >= len(data) {
				t.Errorf("encoded %d bytes to %d", len(data), len(encoded))
			}

			decoded, err := decode(codec, encoded, len(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(decoded, data) {
				t.Fatal("decoded data does not match")
			}

			if _, err := decode(codec, encoded, len(data)-1); !errors.Is(err, ErrOutputLimit) {
				t.Errorf("decode with short limit error = %v, want ErrOutputLimit", err)
			}
		})
	}
}

func TestParseCodec(t *testing.T) {
	for _, codec := range Codecs {
		got, err := ParseCodec(codec.String())
		if err != nil || got != codec {
			t.Errorf("ParseCodec(%q) = %q, %v", codec, got, err)
		}
	}
	if _, err := ParseCodec("lzma"); !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("ParseCodec(lzma) error = %v, want ErrUnknownCodec", err)
	}
}

func TestDictionaryGenerator(t *testing.T) {
	t.Run("shrinks text", func(t *testing.T) {
		g, err := NewDictionaryGenerator([]Codec{CodecGzip}, DefaultLevel)
		if err != nil {
			t.Fatalf("NewDictionaryGenerator: %v", err)
		}
		data := compressibleText()
		seed, ok := g.Recognize(NewInput(data))
		if !ok {
			t.Fatal("Recognize missed compressible text")
		}
		if s := seed.(DictionarySeed); s.Codec != CodecGzip {
			t.Errorf("codec = %s, want gzip", s.Codec)
		}
		out, err := g.Regenerate(seed, len(data))
		if err != nil {
			t.Fatalf("Regenerate: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Error("Regenerate did not reproduce input")
		}
	})

	t.Run("picks smallest", func(t *testing.T) {
		g, err := NewDictionaryGenerator(Codecs, DefaultLevel)
		if err != nil {
			t.Fatalf("NewDictionaryGenerator: %v", err)
		}
		data := compressibleText()
		seed, ok := g.Recognize(NewInput(data))
		if !ok {
			t.Fatal("Recognize missed compressible text")
		}
		got := len(seed.(DictionarySeed).Data)
		for _, codec := range Codecs {
			encoded, err := encode(codec, data, DefaultLevel)
			if err != nil {
				t.Fatalf("encode %s: %v", codec, err)
			}
			if len(encoded) < got {
				t.Errorf("%s produced %d bytes, chosen seed has %d", codec, len(encoded), got)
			}
		}
	})

	t.Run("random input misses", func(t *testing.T) {
		g, err := NewDictionaryGenerator(Codecs, DefaultLevel)
		if err != nil {
			t.Fatalf("NewDictionaryGenerator: %v", err)
		}
		data := make([]byte, 1024)
		if _, err := rand.Read(data); err != nil {
			t.Fatal(err)
		}
		if seed, ok := g.Recognize(NewInput(data)); ok {
			t.Errorf("Recognize hit random data with %s", seed.(DictionarySeed).Codec)
		}
	})

	t.Run("decodes unconfigured codec", func(t *testing.T) {
		g, err := NewDictionaryGenerator([]Codec{CodecSnappy}, MinLevel)
		if err != nil {
			t.Fatalf("NewDictionaryGenerator: %v", err)
		}
		data := compressibleText()
		encoded, err := encode(CodecZstd, data, DefaultLevel)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		out, err := g.Regenerate(DictionarySeed{Codec: CodecZstd, Data: encoded}, len(data))
		if err != nil {
			t.Fatalf("Regenerate: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Error("Regenerate did not reproduce input")
		}
	})

	t.Run("corrupt data", func(t *testing.T) {
		g, err := NewDictionaryGenerator(Codecs, DefaultLevel)
		if err != nil {
			t.Fatalf("NewDictionaryGenerator: %v", err)
		}
		if _, err := g.Regenerate(DictionarySeed{Codec: CodecZlib, Data: []byte("not zlib")}, 100); err == nil {
			t.Error("Regenerate accepted corrupt zlib data")
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		if _, err := NewDictionaryGenerator(nil, DefaultLevel); err == nil {
			t.Error("accepted empty codec list")
		}
		if _, err := NewDictionaryGenerator(Codecs, 0); err == nil {
			t.Error("accepted level 0")
		}
		if _, err := NewDictionaryGenerator([]Codec{"lzma"}, DefaultLevel); !errors.Is(err, ErrUnknownCodec) {
			t.Errorf("unknown codec error = %v", err)
		}
	})
}
