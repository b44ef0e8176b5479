package detect

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"go-image-forensics/internal/imaging"
)

// CloneMatch records one pair of distant tiles whose pixel content
// correlates above the clone threshold. Coordinates are the top-left
// corners of the two tiles.
type CloneMatch struct {
	X1          int     `json:"x1"`
	Y1          int     `json:"y1"`
	X2          int     `json:"x2"`
	Y2          int     `json:"y2"`
	Correlation float64 `json:"correlation"`
}

// BlockCloneDetector searches for copy-move forgeries by correlating
// overlapping tiles pairwise. The comparison is quadratic in the number
// of tiles, which is why the battery leaves it disabled by default.
type BlockCloneDetector struct{}

func (d *BlockCloneDetector) Name() string { return NameClone }

type cloneBlock struct {
	y, x int
	vals []float64
	flat bool
}

func (d *BlockCloneDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	buf := src.Buffer
	luma := buf.LumaFloats()
	width, height := buf.Width(), buf.Height()
	tile := p.CloneTileSize
	stride := tile / 2

	var blocks []cloneBlock
	for y := 0; y < height-tile; y += stride {
		for x := 0; x < width-tile; x += stride {
			vals := make([]float64, tile*tile)
			for r := 0; r < tile; r++ {
				copy(vals[r*tile:(r+1)*tile], luma[(y+r)*width+x:(y+r)*width+x+tile])
			}
			blocks = append(blocks, cloneBlock{y: y, x: x, vals: vals, flat: popStd(vals) < epsilon})
		}
	}

	// Matches closer than two tile edges are dominated by the overlap of
	// neighboring windows, not by cloning.
	minDist := float64(2 * tile)
	mask := make([]float64, width*height)
	var matches []CloneMatch
	for i := 0; i < len(blocks); i++ {
		if blocks[i].flat {
			continue
		}
		for j := i + 1; j < len(blocks); j++ {
			if blocks[j].flat {
				continue
			}
			dy := float64(blocks[i].y - blocks[j].y)
			dx := float64(blocks[i].x - blocks[j].x)
			if math.Sqrt(dy*dy+dx*dx) < minDist {
				continue
			}
			corr := stat.Correlation(blocks[i].vals, blocks[j].vals, nil)
			if math.IsNaN(corr) || corr <= p.CloneThreshold {
				continue
			}
			matches = append(matches, CloneMatch{
				X1: blocks[i].x, Y1: blocks[i].y,
				X2: blocks[j].x, Y2: blocks[j].y,
				Correlation: corr,
			})
			paintTile(mask, width, blocks[i].x, blocks[i].y, tile)
			paintTile(mask, width, blocks[j].x, blocks[j].y, tile)
		}
	}

	reported := matches
	if len(reported) > 10 {
		reported = reported[:10]
	}

	result := newResult()
	result.Score = clampScore(float64(len(matches)) * 20)
	result.Flags["cloned"] = len(matches) > 0
	result.Maps["clone_mask"] = binaryMap(mask, width, height, func(v float64) bool { return v > 0 })
	result.Extras["match_count"] = len(matches)
	result.Extras["matches"] = reported
	return result, nil
}

func paintTile(mask []float64, width, x, y, tile int) {
	for r := 0; r < tile; r++ {
		row := mask[(y+r)*width+x : (y+r)*width+x+tile]
		for i := range row {
			row[i] = 1
		}
	}
}
