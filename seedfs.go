package seedfs

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/absfs/absfs"
	"go.uber.org/zap"

	"github.com/absfs/seedfs/seedpack"
)

// Config holds seed filesystem configuration
type Config struct {
	// Engine configures the generator registry (default: seedpack.DefaultConfig)
	Engine *seedpack.Config

	// Skip patterns - regex patterns for files stored without a container
	// Examples: []string{`\.jpg$`, `\.png$`, `\.zip$`}
	SkipPatterns []string

	// Auto-detect containers by magic bytes on files without the .seed extension
	AutoDetect bool // default: true

	// Resolve name.seed when name is opened (transparent)
	StripExtension bool // default: true

	// Minimum file size to compress (smaller files are stored as-is)
	MinSize int64 // default: 0 (compress all non-empty files)

	// Logger receives store and load events (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine:         seedpack.DefaultConfig(),
		AutoDetect:     true,
		StripExtension: true,
	}
}

// Stats holds storage statistics. Byte counters only cover files stored or
// loaded as containers.
type Stats struct {
	FilesCompressed   int64
	FilesDecompressed int64
	FilesSkipped      int64

	BytesWritten      int64 // logical bytes handed to the compressor
	BytesCompressed   int64 // container bytes stored for them
	BytesRead         int64 // container bytes loaded
	BytesDecompressed int64 // logical bytes regenerated from them

	KindCounts map[seedpack.Kind]int64
}

// KindCount returns how many files were stored with the given generator kind
func (s *Stats) KindCount(k seedpack.Kind) int64 {
	return s.KindCounts[k]
}

// TotalCompressionRatio returns stored bytes over logical bytes (lower is better)
func (s *Stats) TotalCompressionRatio() float64 {
	if s.BytesWritten == 0 {
		return 0
	}
	return float64(s.BytesCompressed) / float64(s.BytesWritten)
}

// TotalDecompressionRatio returns loaded bytes over regenerated bytes
func (s *Stats) TotalDecompressionRatio() float64 {
	if s.BytesDecompressed == 0 {
		return 0
	}
	return float64(s.BytesRead) / float64(s.BytesDecompressed)
}

var (
	ErrNotContainer = errors.New("seedfs: not a seed container")
	ErrNotWritable  = errors.New("seedfs: file not opened for writing")
	ErrNotReadable  = errors.New("seedfs: file not opened for reading")
	ErrInvalidSeek  = errors.New("seedfs: invalid seek")
	ErrNilFiler     = errors.New("seedfs: nil base filer")
)

// counters backs Stats with atomics.
type counters struct {
	filesCompressed   atomic.Int64
	filesDecompressed atomic.Int64
	filesSkipped      atomic.Int64
	bytesWritten      atomic.Int64
	bytesCompressed   atomic.Int64
	bytesRead         atomic.Int64
	bytesDecompressed atomic.Int64
	kinds             [seedpack.KindRaw + 1]atomic.Int64
}

// FS wraps an absfs.Filer, storing every file as a seed container
type FS struct {
	base         absfs.Filer
	config       *Config
	skip         *regexp.Regexp // Compiled skip patterns
	compressor   *seedpack.Compressor
	decompressor *seedpack.Decompressor
	logger       *zap.Logger
	stats        counters
	mu           sync.RWMutex
}

var _ absfs.Filer = (*FS)(nil)

// New creates a new seed filesystem wrapper
func New(base absfs.Filer, config *Config) (*FS, error) {
	if base == nil {
		return nil, ErrNilFiler
	}
	if config == nil {
		config = DefaultConfig()
	}
	engine := config.Engine
	if engine == nil {
		engine = seedpack.DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Compile skip patterns
	var skip *regexp.Regexp
	if len(config.SkipPatterns) > 0 {
		var err error
		skip, err = regexp.Compile("(?:" + strings.Join(config.SkipPatterns, "|") + ")")
		if err != nil {
			return nil, err
		}
	}

	registry, err := seedpack.NewDefaultRegistry(engine)
	if err != nil {
		return nil, err
	}
	opts := []seedpack.Option{
		seedpack.WithLogger(logger),
		seedpack.WithMaxInputSize(engine.MaxInputSize),
	}
	compressor, err := seedpack.NewCompressor(registry, opts...)
	if err != nil {
		return nil, err
	}
	decompressor, err := seedpack.NewDecompressor(registry, opts...)
	if err != nil {
		return nil, err
	}

	return &FS{
		base:         base,
		config:       config,
		skip:         skip,
		compressor:   compressor,
		decompressor: decompressor,
		logger:       logger.Named("seedfs"),
	}, nil
}

// FileSystem returns sfs extended to the full absfs.FileSystem interface
func (sfs *FS) FileSystem() absfs.FileSystem {
	return absfs.ExtendFiler(sfs)
}

// Compressor returns the compressor files are stored with
func (sfs *FS) Compressor() *seedpack.Compressor {
	return sfs.compressor
}

// shouldSkip returns true if the file should not be compressed
func (sfs *FS) shouldSkip(name string) bool {
	if sfs.skip == nil {
		return false
	}
	return sfs.skip.MatchString(name)
}

// GetStats returns current statistics
func (sfs *FS) GetStats() *Stats {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	s := &sfs.stats
	stats := &Stats{
		FilesCompressed:   s.filesCompressed.Load(),
		FilesDecompressed: s.filesDecompressed.Load(),
		FilesSkipped:      s.filesSkipped.Load(),
		BytesWritten:      s.bytesWritten.Load(),
		BytesCompressed:   s.bytesCompressed.Load(),
		BytesRead:         s.bytesRead.Load(),
		BytesDecompressed: s.bytesDecompressed.Load(),
		KindCounts:        make(map[seedpack.Kind]int64),
	}
	for _, k := range seedpack.Kinds {
		if n := s.kinds[k].Load(); n > 0 {
			stats.KindCounts[k] = n
		}
	}
	return stats
}

// ResetStats resets statistics to zero
func (sfs *FS) ResetStats() {
	sfs.mu.Lock()
	defer sfs.mu.Unlock()
	s := &sfs.stats
	s.filesCompressed.Store(0)
	s.filesDecompressed.Store(0)
	s.filesSkipped.Store(0)
	s.bytesWritten.Store(0)
	s.bytesCompressed.Store(0)
	s.bytesRead.Store(0)
	s.bytesDecompressed.Store(0)
	for i := range s.kinds {
		s.kinds[i].Store(0)
	}
}

func (sfs *FS) recordStore(kind seedpack.Kind, logical, stored int) {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	sfs.stats.filesCompressed.Add(1)
	sfs.stats.bytesWritten.Add(int64(logical))
	sfs.stats.bytesCompressed.Add(int64(stored))
	sfs.stats.kinds[kind].Add(1)
}

func (sfs *FS) recordLoad(stored, logical int) {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	sfs.stats.filesDecompressed.Add(1)
	sfs.stats.bytesRead.Add(int64(stored))
	sfs.stats.bytesDecompressed.Add(int64(logical))
}

func (sfs *FS) recordSkip() {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	sfs.stats.filesSkipped.Add(1)
}
