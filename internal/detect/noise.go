package detect

import (
	"math"

	"go-image-forensics/internal/imaging"
)

// madScale converts a median absolute deviation into the standard
// deviation of an equivalent normal distribution.
const madScale = 1.4826

// NoiseDetector estimates sensor noise per tile with a robust MAD
// estimator over the Laplacian response. Spliced regions usually carry a
// different noise level than the rest of the frame, which shows up as
// dispersion across the tile grid.
type NoiseDetector struct{}

func (d *NoiseDetector) Name() string { return NameNoise }

func (d *NoiseDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	buffer := src.Buffer
	width, height := buffer.Width(), buffer.Height()
	luma := buffer.LumaFloats()

	size := p.TileSize
	if size <= 0 {
		size = DefaultParams().TileSize
	}

	grid := blockGrid(luma, width, height, size, estimateNoise)
	result := newResult()
	if grid.Empty() {
		return result, nil
	}

	gridMean := popMean(grid.Values)
	gridStd := popStd(grid.Values)

	upsampled := grid.Upsample(width, height)
	threshold := gridMean + p.NoiseZMultiplier*gridStd

	result.Score = math.Min(100, gridStd/(gridMean+epsilon)*200)
	result.Grids["noise"] = grid
	result.Maps["noise_map"] = normalizeToMap(upsampled, width, height)
	result.Maps["inconsistency_mask"] = binaryMap(upsampled, width, height, func(v float64) bool {
		return v > threshold
	})
	result.Flags["inconsistent"] = result.Score > 40
	result.Extras["grid_mean"] = gridMean
	result.Extras["grid_std"] = gridStd
	return result, nil
}

// estimateNoise is a robust per-tile noise estimator: the MAD of the
// Laplacian response scaled to a standard deviation. Resistant to edges
// and texture that would inflate a plain variance estimate.
func estimateNoise(block []float64, size int) float64 {
	lap := laplacianInterior(block, size, size)
	if len(lap) == 0 {
		return 0
	}
	med := median(lap)
	deviations := make([]float64, len(lap))
	for i, v := range lap {
		deviations[i] = math.Abs(v - med)
	}
	return madScale * median(deviations)
}
