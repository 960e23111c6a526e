package seedpack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// frame wraps a JSON payload in a valid header.
func frame(payload string) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(payload))
	copy(out, Magic)
	out[4] = Version
	binary.LittleEndian.PutUint32(out[5:], uint32(len(payload)))
	return append(out, payload...)
}

var zeroDigest = strings.Repeat("00", DigestSize)

func TestContainerRoundTrip(t *testing.T) {
	seeds := []Seed{
		RepeatedPatternSeed{Pattern: []byte{0x00, 0xff, 'A'}, Count: 12},
		ArithmeticSeed{Start: -3, Step: 4, Count: 9},
		GeometricSeed{Start: 7, Ratio: Ratio{Num: -3, Den: 2}, Count: 5},
		FibonacciSeed{A: 0, B: 1, Count: 30},
		PowerSeed{Base: 5, Count: 6},
		PrimeSeed{Count: 100},
		LSystemSeed{Name: "sierpinski", Axiom: "F-G-G", Rules: map[string]string{"F": "F-G+F+G-F", "G": "GG"}, Iterations: 3},
		DictionarySeed{Codec: CodecBrotli, Data: []byte{1, 2, 3}},
		RawSeed{Data: []byte("raw bytes \x00\x01")},
	}

	for _, seed := range seeds {
		t.Run(seed.Kind().String(), func(t *testing.T) {
			c := &Container{Seed: seed, OriginalSize: 1234, Digest: Sum([]byte(seed.Kind().String()))}
			wire, err := c.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			if !bytes.HasPrefix(wire, []byte(Magic)) || wire[4] != Version {
				t.Fatalf("bad header % x", wire[:HeaderSize])
			}
			if n := binary.LittleEndian.Uint32(wire[5:HeaderSize]); int(n) != len(wire)-HeaderSize {
				t.Fatalf("payload length %d, have %d", n, len(wire)-HeaderSize)
			}

			again, err := c.MarshalBinary()
			if err != nil || !bytes.Equal(wire, again) {
				t.Fatal("encoding is not deterministic")
			}

			got, err := UnmarshalContainer(wire)
			if err != nil {
				t.Fatalf("UnmarshalContainer: %v", err)
			}
			if !reflect.DeepEqual(got, c) {
				t.Errorf("round trip = %+v, want %+v", got, c)
			}
		})
	}
}

func TestContainerHexFields(t *testing.T) {
	c := &Container{Seed: RepeatedPatternSeed{Pattern: []byte("AB"), Count: 3}, OriginalSize: 6, Digest: Sum([]byte("ABABAB"))}
	wire, err := c.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	payload := string(wire[HeaderSize:])
	for _, want := range []string{`"kind":"repeated_pattern"`, `"pattern":"4142"`, `"count":3`, `"original_size":6`, `"digest":"` + c.Digest.String() + `"`} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload %s missing %s", payload, want)
		}
	}
}

func TestUnmarshalContainerErrors(t *testing.T) {
	valid, err := (&Container{Seed: PrimeSeed{Count: 3}, OriginalSize: 5, Digest: Sum([]byte("2,3,5"))}).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	badVersion := bytes.Clone(valid)
	badVersion[4] = 2

	tests := []struct {
		name  string
		data  []byte
		field string
	}{
		{"empty", nil, "header"},
		{"short header", []byte("SEED\x01"), "header"},
		{"bad magic", append([]byte("SEMC"), valid[4:]...), "magic"},
		{"unsupported version", badVersion, "version"},
		{"truncated payload", valid[:len(valid)-1], "length"},
		{"trailing bytes", append(bytes.Clone(valid), '}'), "length"},
		{"invalid utf8", frame("{\"kind\":\"raw\xff\"}"), "payload"},
		{"invalid json", frame(`{"kind":`), "payload"},
		{"trailing json", frame(`{"kind":"raw"}{}`), "payload"},
		{"unknown field", frame(`{"kind":"raw","extra":1}`), "payload"},
		{"unknown kind", frame(`{"kind":"fractal","seed":{},"original_size":0,"digest":"` + zeroDigest + `"}`), "kind"},
		{"short digest", frame(`{"kind":"raw","seed":{"data":""},"original_size":0,"digest":"abcd"}`), "digest"},
		{"missing seed", frame(`{"kind":"raw","original_size":0,"digest":"` + zeroDigest + `"}`), "seed"},
		{"bad hex", frame(`{"kind":"raw","seed":{"data":"zz"},"original_size":0,"digest":"` + zeroDigest + `"}`), "seed"},
		{"zero count", frame(`{"kind":"repeated_pattern","seed":{"pattern":"41","count":0},"original_size":0,"digest":"` + zeroDigest + `"}`), "seed"},
		{"unreduced ratio", frame(`{"kind":"geometric_sequence","seed":{"start":1,"ratio_num":6,"ratio_den":3,"count":4},"original_size":0,"digest":"` + zeroDigest + `"}`), "seed"},
		{"unknown codec", frame(`{"kind":"dictionary","seed":{"codec":"lzma","data":""},"original_size":0,"digest":"` + zeroDigest + `"}`), "seed"},
		{"unknown seed field", frame(`{"kind":"prime_sequence","seed":{"count":3,"start":2},"original_size":0,"digest":"` + zeroDigest + `"}`), "seed"},
		{"lsystem depth", frame(`{"kind":"lsystem","seed":{"axiom":"F","rules":{"F":"FF"},"iterations":1000},"original_size":0,"digest":"` + zeroDigest + `"}`), "seed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalContainer(tt.data)
			if err == nil {
				t.Fatal("UnmarshalContainer succeeded, want FormatError")
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("error %v does not match ErrFormat", err)
			}
			fe := AsFormatError(err)
			if fe == nil {
				t.Fatalf("error %T is not a *FormatError", err)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q (%v)", fe.Field, tt.field, err)
			}
		})
	}
}

func TestIsContainer(t *testing.T) {
	if !IsContainer([]byte("SEED\x01...")) {
		t.Error("IsContainer rejected magic")
	}
	if IsContainer([]byte("SEE")) || IsContainer([]byte("PK\x03\x04")) {
		t.Error("IsContainer accepted non-container")
	}
}
