package detect

import (
	"math"

	"go-image-forensics/internal/imaging"
)

// ContrastDetector measures local contrast tile by tile. Regions pasted
// from a differently graded source, or selectively enhanced after the
// fact, break the contrast uniformity of a single capture.
type ContrastDetector struct{}

func (d *ContrastDetector) Name() string { return NameContrast }

func (d *ContrastDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	buffer := src.Buffer
	width, height := buffer.Width(), buffer.Height()

	size := p.TileSize
	if size <= 0 {
		size = DefaultParams().TileSize
	}

	grid := blockGrid(buffer.LumaFloats(), width, height, size, func(block []float64, _ int) float64 {
		return popStd(block)
	})
	result := newResult()
	if grid.Empty() {
		return result, nil
	}

	cv := coefficientOfVariation(grid.Values)
	upsampled := grid.Upsample(width, height)

	result.Score = math.Min(100, cv*150)
	result.Grids["contrast"] = grid
	result.Maps["contrast_map"] = normalizeToMap(upsampled, width, height)
	result.Flags["inconsistent"] = cv > 0.5
	result.Extras["cv"] = cv
	return result, nil
}
