package detect

import (
	"testing"

	"go-image-forensics/internal/imaging"
)

// graySource builds a single-channel source with per-pixel values from
// fn.
func graySource(t *testing.T, width, height int, fn func(x, y int) uint8) *imaging.Source {
	t.Helper()
	pix := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = fn(x, y)
		}
	}
	buf, err := imaging.NewGray(width, height, pix)
	if err != nil {
		t.Fatalf("Failed to build buffer: %v", err)
	}
	src, err := imaging.NewSource(buf, nil)
	if err != nil {
		t.Fatalf("Failed to build source: %v", err)
	}
	return src
}

func uniformSource(t *testing.T, width, height int, value uint8) *imaging.Source {
	t.Helper()
	return graySource(t, width, height, func(x, y int) uint8 { return value })
}

// noisySource builds a deterministic pseudo-random image from a linear
// congruential generator, so runs are repeatable without seeding rand.
func noisySource(t *testing.T, width, height int, seed uint32) *imaging.Source {
	t.Helper()
	state := seed
	return graySource(t, width, height, func(x, y int) uint8 {
		state = state*1664525 + 1013904223
		return uint8(state >> 24)
	})
}

func checkScoreRange(t *testing.T, name string, score float64) {
	t.Helper()
	if score < 0 || score > 100 {
		t.Errorf("%s score out of range: %f", name, score)
	}
}
