package detect

import "math"

// laplacianInterior applies the 4-neighbor Laplacian kernel
// [0 1 0; 1 -4 1; 0 1 0] and returns the responses for interior pixels
// only, as a flat (width-2)*(height-2) slice. Images narrower than three
// pixels in either dimension yield an empty slice.
func laplacianInterior(data []float64, width, height int) []float64 {
	if width < 3 || height < 3 {
		return nil
	}
	out := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			center := data[y*width+x]
			lap := data[(y-1)*width+x] + data[(y+1)*width+x] +
				data[y*width+x-1] + data[y*width+x+1] - 4*center
			out = append(out, lap)
		}
	}
	return out
}

// reflect101 mirrors an out-of-range index about the edge without
// repeating the border sample (…cba|abc|cba…).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = ((i % period) + period) % period
	if i >= n {
		i = period - i
	}
	return i
}

// convolveSeparable runs a horizontal then a vertical 1-D convolution
// with reflected borders. Kernels are applied centered.
func convolveSeparable(data []float64, width, height int, kx, ky []float64) []float64 {
	halfX := len(kx) / 2
	tmp := make([]float64, len(data))
	for y := 0; y < height; y++ {
		row := data[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			var sum float64
			for k, w := range kx {
				sum += w * row[reflect101(x+k-halfX, width)]
			}
			tmp[y*width+x] = sum
		}
	}

	halfY := len(ky) / 2
	out := make([]float64, len(data))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k, w := range ky {
				sum += w * tmp[reflect101(y+k-halfY, height)*width+x]
			}
			out[y*width+x] = sum
		}
	}
	return out
}

// gaussianKernel builds a normalized 1-D Gaussian of the given odd size.
// A non-positive sigma derives one from the size the way OpenCV does.
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	kernel := make([]float64, size)
	center := float64(size / 2)
	var sum float64
	for i := range kernel {
		d := float64(i) - center
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlur applies a size×size Gaussian low-pass with reflected
// borders; this is the bias-field estimator used by the lighting
// detector.
func gaussianBlur(data []float64, width, height, size int) []float64 {
	kernel := gaussianKernel(size, 0)
	return convolveSeparable(data, width, height, kernel, kernel)
}

// Separable factors of the 5-tap Sobel derivative: a smoothing binomial
// in one axis and a central-difference derivative in the other.
var (
	sobelSmooth5 = []float64{1, 4, 6, 4, 1}
	sobelDeriv5  = []float64{-1, -2, 0, 2, 1}
)

// sobelGradient5 computes horizontal and vertical first derivatives with
// the 5-tap Sobel kernels.
func sobelGradient5(data []float64, width, height int) (gx, gy []float64) {
	gx = convolveSeparable(data, width, height, sobelDeriv5, sobelSmooth5)
	gy = convolveSeparable(data, width, height, sobelSmooth5, sobelDeriv5)
	return gx, gy
}
