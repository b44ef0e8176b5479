package detect

import (
	"testing"
)

func TestHistogramDetectorFlagsEqualizedImage(t *testing.T) {
	d := &HistogramDetector{}
	params := DefaultParams()

	// Every intensity occurs equally often, the signature a histogram
	// equalization pass leaves behind.
	equalized := graySource(t, 256, 256, func(x, y int) uint8 { return uint8(x) })
	// Control with its mass concentrated in a narrow band.
	control := graySource(t, 256, 256, func(x, y int) uint8 { return uint8(120 + (x+y)%16) })

	eqResult, err := d.Run(equalized, params)
	if err != nil {
		t.Fatalf("Run failed on equalized image: %v", err)
	}
	ctrlResult, err := d.Run(control, params)
	if err != nil {
		t.Fatalf("Run failed on control image: %v", err)
	}

	eqScore := eqResult.Extras[SubTestEqualization].(float64)
	ctrlScore := ctrlResult.Extras[SubTestEqualization].(float64)
	if eqScore <= ctrlScore {
		t.Errorf("Expected equalization sub-score higher for equalized image: %f vs %f", eqScore, ctrlScore)
	}

	if !eqResult.Flags["manipulated"] {
		t.Error("Expected equalized image flagged as manipulated")
	}
	if eqResult.Extras["type"] != SubTestEqualization {
		t.Errorf("Expected winning sub-test %q, got %v", SubTestEqualization, eqResult.Extras["type"])
	}
	checkScoreRange(t, "histogram", eqResult.Score)
	checkScoreRange(t, "histogram", ctrlResult.Score)
}

func TestHistogramDetectorClipping(t *testing.T) {
	d := &HistogramDetector{}

	// Heavy mass at both extremes with most middle bins empty.
	clipped := graySource(t, 128, 128, func(x, y int) uint8 {
		switch {
		case x < 48:
			return 0
		case x >= 80:
			return 255
		default:
			return uint8(64 + 4*(x-48))
		}
	})

	result, err := d.Run(clipped, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	clipScore := result.Extras[SubTestClipping].(float64)
	if clipScore < 40 {
		t.Errorf("Expected clipping sub-score above 40 for clipped image, got %f", clipScore)
	}
	checkScoreRange(t, "histogram", result.Score)
}

func TestHistogramDetectorScoreRangeOnNoise(t *testing.T) {
	d := &HistogramDetector{}
	result, err := d.Run(noisySource(t, 128, 128, 1), DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	checkScoreRange(t, "histogram", result.Score)
	for _, name := range []string{SubTestEqualization, SubTestClipping, SubTestContrastShift, SubTestPosterization} {
		if _, ok := result.Extras[name]; !ok {
			t.Errorf("Expected sub-score %q in extras", name)
		}
	}
}
