// Package config loads the YAML configuration of the seedfs command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/absfs/seedfs/seedpack"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Compressor CompressorConfig `yaml:"compressor"`
	Storage    StorageConfig    `yaml:"storage"`
}

// LogConfig configures the zap logger built by internal/logging.
type LogConfig struct {
	Level       string         `yaml:"level"`   // debug, info, warn, error
	Format      string         `yaml:"format"`  // console or json
	Outputs     []string       `yaml:"outputs"` // stdout, stderr or file paths
	Development bool           `yaml:"development"`
	Rotation    RotationConfig `yaml:"rotation"`
}

// RotationConfig applies to file outputs.
type RotationConfig struct {
	Enable     bool   `yaml:"enable"`
	Filename   string `yaml:"filename"` // overrides the output path when set
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// CompressorConfig mirrors seedpack.Config.
type CompressorConfig struct {
	Codecs          []string `yaml:"codecs"`
	Level           int      `yaml:"level"`
	MaxLSystemDepth int      `yaml:"max_lsystem_depth"`
	MaxInputSize    int      `yaml:"max_input_size"`
}

// StorageConfig holds the storage wrapper settings.
type StorageConfig struct {
	MinSize        int64    `yaml:"min_size"`
	SkipPatterns   []string `yaml:"skip_patterns"`
	AutoDetect     bool     `yaml:"auto_detect"`
	StripExtension bool     `yaml:"strip_extension"`
}

// Returns a Config struct with reasonable default values.
func DefaultConfig() *Config {
	engine := seedpack.DefaultConfig()
	codecs := make([]string, len(engine.Codecs))
	for i, c := range engine.Codecs {
		codecs[i] = c.String()
	}
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Compressor: CompressorConfig{
			Codecs:          codecs,
			Level:           engine.Level,
			MaxLSystemDepth: engine.MaxLSystemDepth,
			MaxInputSize:    engine.MaxInputSize,
		},
		Storage: StorageConfig{
			AutoDetect:     true,
			StripExtension: true,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty filename
// returns the defaults.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate reports every problem in c at once.
func (c *Config) Validate() error {
	var err error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format %q is not one of console, json", c.Log.Format))
	}
	if len(c.Log.Outputs) == 0 {
		err = multierr.Append(err, errors.New("log.outputs must not be empty"))
	}
	if r := c.Log.Rotation; r.MaxSizeMB < 0 || r.MaxBackups < 0 || r.MaxAgeDays < 0 {
		err = multierr.Append(err, errors.New("log.rotation limits must not be negative"))
	}

	if _, engineErr := c.Engine(); engineErr != nil {
		err = multierr.Append(err, engineErr)
	}

	if c.Storage.MinSize < 0 {
		err = multierr.Append(err, errors.New("storage.min_size must not be negative"))
	}
	for _, p := range c.Storage.SkipPatterns {
		if _, reErr := regexp.Compile(p); reErr != nil {
			err = multierr.Append(err, fmt.Errorf("storage.skip_patterns: %w", reErr))
		}
	}
	return err
}

// Engine converts the compressor section to a validated seedpack.Config.
func (c *Config) Engine() (*seedpack.Config, error) {
	var err error
	codecs := make([]seedpack.Codec, 0, len(c.Compressor.Codecs))
	for _, name := range c.Compressor.Codecs {
		codec, parseErr := seedpack.ParseCodec(name)
		if parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("compressor.codecs: %w", parseErr))
			continue
		}
		codecs = append(codecs, codec)
	}
	if err != nil {
		return nil, err
	}

	engine := &seedpack.Config{
		Codecs:          codecs,
		Level:           c.Compressor.Level,
		MaxLSystemDepth: c.Compressor.MaxLSystemDepth,
		MaxInputSize:    c.Compressor.MaxInputSize,
	}
	if err := engine.Validate(); err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}
	return engine, nil
}
