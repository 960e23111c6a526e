package seedfs

import (
	"bytes"
	"math"
	"testing"
)

func TestPresetConfigs(t *testing.T) {
	presets := map[string]*Config{
		"default":     DefaultConfig(),
		"recommended": RecommendedConfig(),
		"fastest":     FastestConfig(),
	}
	data := bytes.Repeat([]byte("preset "), 200)

	for name, config := range presets {
		t.Run(name, func(t *testing.T) {
			if err := config.Engine.Validate(); err != nil {
				t.Fatalf("engine config invalid: %v", err)
			}
			sfs, base := newTestFS(t, config)
			writeFile(t, sfs, "data.txt", data)
			if !exists(base, "data.txt"+Extension) {
				t.Error("container not stored")
			}
			if got := readFile(t, sfs, "data.txt"); !bytes.Equal(got, data) {
				t.Error("read data does not match")
			}
		})
	}
}

func TestNewWithPresets(t *testing.T) {
	if _, err := NewWithRecommendedConfig(NewMemFS()); err != nil {
		t.Errorf("NewWithRecommendedConfig: %v", err)
	}
	if _, err := NewWithFastestConfig(NewMemFS()); err != nil {
		t.Errorf("NewWithFastestConfig: %v", err)
	}

	sfs, base := newTestFS(t, RecommendedConfig())
	writeFile(t, sfs, "photo.jpg", bytes.Repeat([]byte{0xff}, 1000))
	writeFile(t, sfs, "tiny.txt", []byte("tiny"))
	if !exists(base, "photo.jpg") || !exists(base, "tiny.txt") {
		t.Error("recommended config stored skipped files as containers")
	}
}

func TestCompressionRatioHelpers(t *testing.T) {
	tests := []struct {
		original, stored int64
		ratio, percent   float64
	}{
		{0, 10, 0, 0},
		{100, 50, 0.5, 50},
		{1000, 10, 0.01, 99},
		{10, 20, 2, -100},
	}
	for _, tt := range tests {
		if got := GetCompressionRatio(tt.original, tt.stored); math.Abs(got-tt.ratio) > 1e-9 {
			t.Errorf("GetCompressionRatio(%d, %d) = %f, want %f", tt.original, tt.stored, got, tt.ratio)
		}
		if got := GetCompressionPercentage(tt.original, tt.stored); math.Abs(got-tt.percent) > 1e-9 {
			t.Errorf("GetCompressionPercentage(%d, %d) = %f, want %f", tt.original, tt.stored, got, tt.percent)
		}
	}
}
