package seedpack

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// DigestSize is the length of a Digest in bytes.
const DigestSize = 32

// Digest is the BLAKE3-256 hash of a blob.
type Digest [DigestSize]byte

// Sum computes the digest of data.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// String returns the lowercase hex form used in the container payload.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses the hex form produced by String.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("decode digest: %w", err)
	}
	if len(raw) != DigestSize {
		return d, fmt.Errorf("digest is %d bytes, want %d", len(raw), DigestSize)
	}
	copy(d[:], raw)
	return d, nil
}
