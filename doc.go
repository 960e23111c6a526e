// Package seedfs provides a transparent storage wrapper for any absfs.Filer
// that keeps files as seed containers.
//
// A seed container holds a small generator description instead of the
// bytes themselves: a repeated pattern, an integer sequence, an L-system
// expansion, or, when nothing more specific fits, dictionary coded or raw
// data. The engine lives in the seedpack package; seedfs decides what to
// store where and serves the regenerated content back.
//
// # Features
//
//   - Transparent storage as name.seed, read back as name
//   - Every container is verified before it is written and again by digest
//     when it is read
//   - Skip patterns and a minimum size for selective storage
//   - Detection of containers and of already compressed content by magic bytes
//   - Statistics tracking, including counts per generator kind
//   - In-memory and host directory filers
//
// # Quick Start
//
//	base, _ := seedfs.NewDirFS("/data")
//	sfs, _ := seedfs.New(base, seedfs.DefaultConfig())
//
//	// Write file - stored as pattern.txt.seed
//	f, _ := sfs.Create("pattern.txt")
//	f.Write(bytes.Repeat([]byte("AB"), 100000))
//	f.Close()
//
//	// Read file - regenerated and verified
//	data, _ := sfs.ReadFile("pattern.txt")
//
// # Reads and writes
//
// Open regenerates the whole file into memory, so a corrupt container is
// reported by Open (as a seedpack.FormatError or seedpack.IntegrityError)
// rather than by a later Read. Writes are buffered in memory and stored on
// Close or Sync. Seeking works in both directions.
//
// # Configuration Options
//
// Extension Handling:
//   - StripExtension: true → access "file.txt" stored as "file.txt.seed"
//   - Names that already end in ".seed" are always stored as containers
//
// Selective Storage:
//   - SkipPatterns: store files matching regex patterns as-is
//   - MinSize: store smaller files as-is
//   - AutoDetect: recognize containers without the extension and store
//     gzip, zstd, lz4 and snappy streams as-is
package seedfs
