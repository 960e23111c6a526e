package seedfs

import (
	"bytes"
	"io"
	"strings"

	"github.com/absfs/seedfs/seedpack"
)

// Extension is appended to the names of stored containers
const Extension = ".seed"

// Magic bytes of streams that are already entropy coded. Seed generation
// cannot shrink them, so they are stored as-is.
var magicBytes = map[seedpack.Codec][]byte{
	seedpack.CodecGzip:   {0x1f, 0x8b},                                     // gzip
	seedpack.CodecZstd:   {0x28, 0xb5, 0x2f, 0xfd},                         // zstd
	seedpack.CodecLZ4:    {0x04, 0x22, 0x4d, 0x18},                         // lz4 frame
	seedpack.CodecSnappy: {0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50}, // snappy framed
}

// AddExtension adds the container extension to a filename
func AddExtension(name string) string {
	if HasSeedExtension(name) {
		return name
	}
	return name + Extension
}

// StripExtension removes the container extension from a filename
func StripExtension(name string) (string, bool) {
	if !HasSeedExtension(name) {
		return name, false
	}
	return name[:len(name)-len(Extension)], true
}

// HasSeedExtension checks if filename has the container extension
func HasSeedExtension(name string) bool {
	return len(name) > len(Extension) && strings.EqualFold(name[len(name)-len(Extension):], Extension)
}

// IsCompressed checks if data appears to be entropy coded based on magic bytes
func IsCompressed(data []byte) (seedpack.Codec, bool) {
	for _, codec := range seedpack.Codecs {
		magic, ok := magicBytes[codec]
		if ok && bytes.HasPrefix(data, magic) {
			return codec, true
		}
	}
	return "", false
}

// DetectContainer reports whether r starts with a seed container header
func DetectContainer(r io.Reader) (bool, error) {
	buf := make([]byte, len(seedpack.Magic))
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return seedpack.IsContainer(buf[:n]), nil
}
