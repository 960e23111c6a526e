// Package seedpack compresses blobs by finding a deterministic generator
// that reproduces them and storing only the generator's seed.
//
// A Registry holds one Generator per Kind. The Compressor asks each
// applicable detector's generator to recognize the input, encodes every hit
// as a Container, and emits the smallest one that regenerates the input
// byte for byte. The raw generator accepts everything, so compression never
// fails for lack of a pattern. The Decompressor regenerates the blob and
// checks it against the stored BLAKE3 digest.
//
// # Generators
//
//   - repeated_pattern: an exact tiling of a shorter pattern
//   - arithmetic, geometric, fibonacci, power and prime sequences over
//     comma separated integers
//   - lsystem: an expansion of a catalog L-system (koch, sierpinski,
//     dragon, hilbert)
//   - dictionary: zlib, gzip, zstd, brotli, lz4 or snappy output
//   - raw: the input itself
//
// # Container format
//
//	MAGIC "SEED" | VERSION 1 | PAYLOAD_LEN uint32 LE | JSON payload
//
// The payload is {"kind", "seed", "original_size", "digest"} with byte
// fields hex encoded.
//
// # Quick Start
//
//	wire, _ := seedpack.Compress(bytes.Repeat([]byte("AB"), 100000))
//	data, _ := seedpack.Decompress(wire)
//
// Detectors work on the whole blob in memory; there is no streaming mode.
package seedpack
