package detect

import (
	"testing"

	"go-image-forensics/internal/imaging"
)

func TestFrequencyDetectorFlagsPeriodicTexture(t *testing.T) {
	// Checkerboard with an 8 pixel period on a size that does not divide
	// evenly, as a resampling grid would present.
	src := graySource(t, 250, 250, func(x, y int) uint8 {
		if (x/4+y/4)%2 == 0 {
			return 255
		}
		return 0
	})

	d := &FrequencyDetector{}
	result, err := d.Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Flags["periodic"] {
		t.Errorf("Expected periodic flag for checkerboard, peak count %v", result.Extras["peak_count"])
	}
	if result.Maps["spectrum"] == nil {
		t.Error("Expected spectrum map")
	}
	checkScoreRange(t, "frequency", result.Score)
}

func TestFrequencyDetectorFlagsAlignedPeriodicTexture(t *testing.T) {
	// When the image size divides the period there is no spectral
	// leakage: the whole texture collapses into a handful of delta bins.
	// The flag must still fire on those few genuine peaks.
	for _, size := range []int{128, 256} {
		src := graySource(t, size, size, func(x, y int) uint8 {
			if (x/4+y/4)%2 == 0 {
				return 255
			}
			return 0
		})

		d := &FrequencyDetector{}
		result, err := d.Run(src, DefaultParams())
		if err != nil {
			t.Fatalf("Run failed at size %d: %v", size, err)
		}
		peaks, _ := result.Extras["peak_count"].(int)
		if peaks > 50 {
			t.Errorf("Expected concentrated spectrum at size %d, got %d peaks", size, peaks)
		}
		if !result.Flags["periodic"] {
			t.Errorf("Expected periodic flag at size %d, peak count %d", size, peaks)
		}
	}
}

func TestFrequencyDetectorIgnoresNoise(t *testing.T) {
	src := noisySource(t, 250, 250, 7)

	d := &FrequencyDetector{}
	result, err := d.Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Flags["periodic"] {
		t.Errorf("Expected no periodic flag for noise, peak count %v", result.Extras["peak_count"])
	}
	checkScoreRange(t, "frequency", result.Score)
}

func TestFrequencyDetectorDeterministic(t *testing.T) {
	src := noisySource(t, 128, 128, 3)
	d := &FrequencyDetector{}

	first, err := d.Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := d.Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if first.Score != second.Score {
		t.Errorf("Expected identical scores across runs, got %f and %f", first.Score, second.Score)
	}
	if first.Extras["peak_count"] != second.Extras["peak_count"] {
		t.Error("Expected identical peak counts across runs")
	}
}

func TestApplyNotchFilterRoundTrip(t *testing.T) {
	// A notch at a zero-magnitude location must leave the reconstruction
	// within rounding of the original.
	width, height := 64, 64
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = 100
	}
	buf, err := imaging.NewGray(width, height, pix)
	if err != nil {
		t.Fatalf("Failed to build buffer: %v", err)
	}

	restored, err := ApplyNotchFilter(buf, 5, 5, 3)
	if err != nil {
		t.Fatalf("ApplyNotchFilter failed: %v", err)
	}
	for i, v := range restored.Pix() {
		if v != 100 {
			t.Fatalf("Expected pixel %d unchanged at 100, got %d", i, v)
		}
	}
}

func TestApplyNotchFilterSuppressesPeriodicComponent(t *testing.T) {
	// Vertical stripes concentrate energy at one horizontal frequency
	// pair; notching it should flatten the stripes.
	width, height := 64, 64
	pix := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/4)%2 == 0 {
				pix[y*width+x] = 200
			} else {
				pix[y*width+x] = 56
			}
		}
	}
	buf, err := imaging.NewGray(width, height, pix)
	if err != nil {
		t.Fatalf("Failed to build buffer: %v", err)
	}

	// The fundamental of an 8px horizontal period sits 8 bins from the
	// center column in the shifted spectrum.
	restored, err := ApplyNotchFilter(buf, height/2, width/2+8, 2)
	if err != nil {
		t.Fatalf("ApplyNotchFilter failed: %v", err)
	}

	before := rowContrast(pix, width)
	after := rowContrast(restored.Pix(), width)
	if after >= before {
		t.Errorf("Expected notch to reduce stripe contrast: before %f, after %f", before, after)
	}
}

// rowContrast measures horizontal variation along the first row.
func rowContrast(pix []uint8, width int) float64 {
	row := make([]float64, width)
	for x := 0; x < width; x++ {
		row[x] = float64(pix[x])
	}
	return popStd(row)
}
