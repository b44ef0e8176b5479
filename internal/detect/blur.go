package detect

import (
	"math"

	"go-image-forensics/internal/imaging"
)

// BlurDetector maps per-tile sharpness via the variance of the Laplacian
// response. A composite usually mixes sources with different focus, and
// selective blurring to hide a seam leaves a low-sharpness island.
type BlurDetector struct{}

func (d *BlurDetector) Name() string { return NameBlur }

func (d *BlurDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	buffer := src.Buffer
	width, height := buffer.Width(), buffer.Height()

	size := p.TileSize
	if size <= 0 {
		size = DefaultParams().TileSize
	}

	grid := blockGrid(buffer.LumaFloats(), width, height, size, tileSharpness)
	result := newResult()
	if grid.Empty() {
		return result, nil
	}

	cv := coefficientOfVariation(grid.Values)
	upsampled := grid.Upsample(width, height)

	// Flip the map so blurry regions read hot: high values mean low
	// sharpness.
	maxSharpness := math.Inf(-1)
	for _, v := range upsampled {
		maxSharpness = math.Max(maxSharpness, v)
	}
	inverted := make([]float64, len(upsampled))
	for i, v := range upsampled {
		inverted[i] = maxSharpness - v
	}

	result.Score = math.Min(100, cv*120)
	result.Grids["sharpness"] = grid
	result.Maps["blur_map"] = normalizeToMap(inverted, width, height)
	result.Flags["inconsistent"] = cv > 0.6
	result.Extras["cv"] = cv
	return result, nil
}

func tileSharpness(block []float64, size int) float64 {
	lap := laplacianInterior(block, size, size)
	if len(lap) == 0 {
		return 0
	}
	return popVariance(lap)
}
