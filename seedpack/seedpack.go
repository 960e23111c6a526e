package seedpack

import "sync"

var (
	defaultOnce         sync.Once
	defaultCompressor   *Compressor
	defaultDecompressor *Decompressor
	defaultErr          error
)

func defaults() (*Compressor, *Decompressor, error) {
	defaultOnce.Do(func() {
		var r *Registry
		if r, defaultErr = DefaultRegistry(); defaultErr != nil {
			return
		}
		if defaultCompressor, defaultErr = NewCompressor(r); defaultErr != nil {
			return
		}
		defaultDecompressor, defaultErr = NewDecompressor(r)
	})
	return defaultCompressor, defaultDecompressor, defaultErr
}

// Compress encodes data with the default registry and returns the container
// bytes.
func Compress(data []byte) ([]byte, error) {
	c, _, err := defaults()
	if err != nil {
		return nil, err
	}
	return c.CompressBytes(data)
}

// Decompress parses and regenerates a container produced by Compress.
func Decompress(wire []byte) ([]byte, error) {
	_, d, err := defaults()
	if err != nil {
		return nil, err
	}
	return d.DecompressBytes(wire)
}

// Analyze reports the compressibility of data using the default registry.
func Analyze(data []byte) (*Report, error) {
	c, _, err := defaults()
	if err != nil {
		return nil, err
	}
	return c.Analyze(data)
}
