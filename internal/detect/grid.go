package detect

import (
	"math"

	"go-image-forensics/internal/imaging"
)

// epsilon guards every denominator that can legitimately reach zero:
// constant images, empty grids, zero-range normalization.
const epsilon = 1e-8

// Grid is a coarse block grid of scalar values, one per non-overlapping
// tile carved from the top-left of an image. Remainder rows and columns
// that do not fill a whole tile are discarded.
type Grid struct {
	Rows, Cols int
	Values     []float64 // row-major
}

// At returns the value at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.Cols+col]
}

// Empty reports whether the grid has no cells (image smaller than one
// tile in either dimension).
func (g *Grid) Empty() bool {
	return g.Rows == 0 || g.Cols == 0
}

// blockGrid tiles the luma plane into size×size blocks and reduces each
// block with fn. The block slice passed to fn is reused between calls.
func blockGrid(luma []float64, width, height, size int, fn func(block []float64, size int) float64) *Grid {
	rows := height / size
	cols := width / size
	g := &Grid{Rows: rows, Cols: cols}
	if g.Empty() {
		return g
	}

	g.Values = make([]float64, rows*cols)
	block := make([]float64, size*size)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for y := 0; y < size; y++ {
				copy(block[y*size:(y+1)*size], luma[(r*size+y)*width+c*size:(r*size+y)*width+c*size+size])
			}
			g.Values[r*cols+c] = fn(block, size)
		}
	}
	return g
}

// Upsample stretches the grid to width×height with bilinear
// interpolation, pixel centers aligned the way cv2.resize aligns them.
func (g *Grid) Upsample(width, height int) []float64 {
	out := make([]float64, width*height)
	if g.Empty() {
		return out
	}

	scaleX := float64(g.Cols) / float64(width)
	scaleY := float64(g.Rows) / float64(height)
	for y := 0; y < height; y++ {
		sy := (float64(y)+0.5)*scaleY - 0.5
		y0 := int(math.Floor(sy))
		fy := sy - float64(y0)
		y1 := y0 + 1
		if y0 < 0 {
			y0, y1, fy = 0, 0, 0
		}
		if y1 >= g.Rows {
			y1 = g.Rows - 1
			if y0 > y1 {
				y0 = y1
			}
		}
		for x := 0; x < width; x++ {
			sx := (float64(x)+0.5)*scaleX - 0.5
			x0 := int(math.Floor(sx))
			fx := sx - float64(x0)
			x1 := x0 + 1
			if x0 < 0 {
				x0, x1, fx = 0, 0, 0
			}
			if x1 >= g.Cols {
				x1 = g.Cols - 1
				if x0 > x1 {
					x0 = x1
				}
			}
			top := g.At(y0, x0)*(1-fx) + g.At(y0, x1)*fx
			bottom := g.At(y1, x0)*(1-fx) + g.At(y1, x1)*fx
			out[y*width+x] = top*(1-fy) + bottom*fy
		}
	}
	return out
}

// normalizeToMap rescales arbitrary float values into a 0-255 grayscale
// buffer using (v-min)/(max-min+eps)*255. A constant input yields an
// all-zero map rather than dividing by zero.
func normalizeToMap(values []float64, width, height int) *imaging.PixelBuffer {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	pix := make([]uint8, len(values))
	if len(values) > 0 {
		scale := 255 / (max - min + epsilon)
		for i, v := range values {
			pix[i] = uint8((v - min) * scale)
		}
	}
	buf, _ := imaging.NewGray(width, height, pix)
	return buf
}

// binaryMap renders a threshold mask: 255 where pred holds, 0 elsewhere.
func binaryMap(values []float64, width, height int, pred func(v float64) bool) *imaging.PixelBuffer {
	pix := make([]uint8, len(values))
	for i, v := range values {
		if pred(v) {
			pix[i] = 255
		}
	}
	buf, _ := imaging.NewGray(width, height, pix)
	return buf
}

// coefficientOfVariation is the population standard deviation over the
// mean, the dispersion measure used to flag inconsistency across tiles.
func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := popMean(values)
	return popStd(values) / (mean + epsilon)
}
