package seedfs

import (
	"github.com/absfs/absfs"

	"github.com/absfs/seedfs/seedpack"
)

// Preset configurations for common use cases

// FastestConfig returns a configuration optimized for speed. The
// dictionary fallback only tries lz4 and snappy at the lowest level.
func FastestConfig() *Config {
	return &Config{
		Engine:         seedpack.FastestConfig(),
		AutoDetect:     true,
		StripExtension: true,
		SkipPatterns:   []string{mediaPattern},
	}
}

// RecommendedConfig returns the recommended configuration for general use.
// Media and archives are stored as-is and very small files skip the
// container, whose header alone outweighs them.
func RecommendedConfig() *Config {
	return &Config{
		Engine:         seedpack.DefaultConfig(),
		AutoDetect:     true,
		StripExtension: true,
		MinSize:        128,
		SkipPatterns: []string{
			`\.(jpg|jpeg|png|gif|webp)$`,    // Images
			`\.(mp4|mkv|avi|mov|webm)$`,     // Videos
			`\.(mp3|flac|ogg|m4a|aac)$`,     // Audio
			`\.(zip|gz|bz2|xz|7z|rar|tar)$`, // Archives
			`\.(zst|lz4|br|sz|snappy)$`,     // Compressed
		},
	}
}

const mediaPattern = `\.(jpg|jpeg|png|gif|webp|mp4|mkv|avi|mov|mp3|flac|zip|gz|bz2|xz|7z|rar|zst|lz4|br|sz)$`

// NewWithRecommendedConfig creates a new seed filesystem with recommended settings
func NewWithRecommendedConfig(base absfs.Filer) (*FS, error) {
	return New(base, RecommendedConfig())
}

// NewWithFastestConfig creates a new seed filesystem optimized for speed
func NewWithFastestConfig(base absfs.Filer) (*FS, error) {
	return New(base, FastestConfig())
}

// GetCompressionRatio calculates the compression ratio for given original and stored sizes
// Lower is better: 0.5 means the stored size is 50% of the original
func GetCompressionRatio(originalSize, storedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(storedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the percentage of space saved (negative
// when the container is larger than the original)
func GetCompressionPercentage(originalSize, storedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(storedSize)/float64(originalSize)) * 100
}
