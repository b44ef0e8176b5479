package visual

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-image-forensics/internal/imaging"
)

func grayBuffer(t *testing.T, width, height int, fn func(x, y int) uint8) *imaging.PixelBuffer {
	t.Helper()
	pix := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = fn(x, y)
		}
	}
	buf, err := imaging.NewGray(width, height, pix)
	require.NoError(t, err)
	return buf
}

func TestHeatmapJetEndpoints(t *testing.T) {
	buf := grayBuffer(t, 3, 1, func(x, y int) uint8 {
		return []uint8{0, 128, 255}[x]
	})
	img := Heatmap(buf)

	// Cold end is deep blue, hot end deep red, midpoint green-dominant.
	cold := img.RGBAAt(0, 0)
	assert.Zero(t, cold.R)
	assert.Zero(t, cold.G)
	assert.Equal(t, uint8(128), cold.B)

	mid := img.RGBAAt(1, 0)
	assert.Equal(t, uint8(255), mid.G)

	hot := img.RGBAAt(2, 0)
	assert.Equal(t, uint8(128), hot.R)
	assert.Zero(t, hot.G)
	assert.Zero(t, hot.B)
}

func TestOverlayBlending(t *testing.T) {
	base := grayBuffer(t, 2, 1, func(x, y int) uint8 { return 100 })
	mask := grayBuffer(t, 2, 1, func(x, y int) uint8 {
		if x == 0 {
			return 0
		}
		return 255
	})

	out, err := Overlay(base, mask, 1.0, color.RGBA{R: 255, A: 255})
	require.NoError(t, err)

	// Cold pixel untouched, hot pixel fully replaced by the highlight.
	assert.Equal(t, color.RGBA{R: 100, G: 100, B: 100, A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, out.RGBAAt(1, 0))
}

func TestOverlayRejectsMismatchedDimensions(t *testing.T) {
	base := grayBuffer(t, 4, 4, func(x, y int) uint8 { return 0 })
	mask := grayBuffer(t, 2, 2, func(x, y int) uint8 { return 0 })

	_, err := Overlay(base, mask, 0.5, color.RGBA{R: 255, A: 255})
	require.Error(t, err)
}

func TestScaleDimensions(t *testing.T) {
	buf := grayBuffer(t, 2, 2, func(x, y int) uint8 { return 50 })
	out := Scale(buf.GrayImage(), 8, 6)
	assert.Equal(t, 8, out.Bounds().Dx())
	assert.Equal(t, 6, out.Bounds().Dy())
}

func TestSavePNGCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "map.png")

	buf := grayBuffer(t, 4, 4, func(x, y int) uint8 { return uint8(64 * x) })
	require.NoError(t, SavePNG(path, Heatmap(buf)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
