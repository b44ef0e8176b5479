package detect

import (
	"testing"
)

func TestBitDepthDetectorFlagsPosterizedImage(t *testing.T) {
	d := &BitDepthDetector{}

	// 16 evenly spaced gray levels.
	posterized := graySource(t, 256, 256, func(x, y int) uint8 {
		return uint8((x / 16) * 17)
	})

	result, err := d.Run(posterized, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Flags["posterized"] {
		t.Fatal("Expected posterized flag for 16-level image")
	}
	bits := result.Extras["estimated_bits"].(int)
	if bits < 3 || bits > 5 {
		t.Errorf("Expected estimated bits in [3, 5], got %d", bits)
	}
	if unique := result.Extras["unique_colors"].(int); unique != 16 {
		t.Errorf("Expected 16 unique levels, got %d", unique)
	}
	if result.Score < 40 {
		t.Errorf("Expected high suspicion score for posterized image, got %f", result.Score)
	}
	checkScoreRange(t, "bitdepth", result.Score)
}

func TestBitDepthDetectorAcceptsFullDepthImage(t *testing.T) {
	d := &BitDepthDetector{}
	full := graySource(t, 256, 256, func(x, y int) uint8 { return uint8(x) })

	result, err := d.Run(full, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Flags["posterized"] {
		t.Error("Expected no posterization flag for full-depth gradient")
	}
	if result.Extras["estimated_bits"].(int) != 8 {
		t.Errorf("Expected 8 estimated bits, got %v", result.Extras["estimated_bits"])
	}
	checkScoreRange(t, "bitdepth", result.Score)
}
