package detect

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// popMean is the arithmetic mean; zero for an empty slice.
func popMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// popVariance is the population variance (divisor n, not n-1).
func popVariance(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(n)
}

// popStd is the population standard deviation.
func popStd(values []float64) float64 {
	return math.Sqrt(popVariance(values))
}

// median returns the middle value, averaging the two central values for
// even-length input.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile computes the p-th percentile (0-100) with linear
// interpolation between closest ranks.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// findPeaks returns the indices of local maxima: positions whose value
// strictly exceeds both neighbors and is at least minHeight. Fewer than
// the minimum peak count is a normal outcome for callers, never an error.
func findPeaks(data []float64, minHeight float64) []int {
	var peaks []int
	for i := 1; i < len(data)-1; i++ {
		if data[i] > data[i-1] && data[i] > data[i+1] && data[i] >= minHeight {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// peakSpacingRegularity measures how evenly spaced a peak sequence is:
// 1 - std(spacing)/mean(spacing). Returns the regularity and the mean
// spacing; ok is false when there are too few spacings or the mean
// spacing is zero.
func peakSpacingRegularity(peaks []int) (regularity, meanSpacing float64, ok bool) {
	if len(peaks) < 3 {
		return 0, 0, false
	}
	spacing := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		spacing[i-1] = float64(peaks[i] - peaks[i-1])
	}
	meanSpacing = popMean(spacing)
	if meanSpacing == 0 {
		return 0, 0, false
	}
	return 1 - popStd(spacing)/meanSpacing, meanSpacing, true
}

// savgolFilter smooths data with a Savitzky-Golay filter: a sliding
// least-squares polynomial fit of the given window and order. Window must
// be odd and larger than the order. Boundary samples are produced by
// evaluating the polynomial fitted to the first/last full window, so the
// output has the same length as the input.
func savgolFilter(data []float64, window, order int) []float64 {
	n := len(data)
	if n < window || window%2 == 0 || order >= window {
		out := make([]float64, n)
		copy(out, data)
		return out
	}
	half := window / 2

	// Design matrix over window offsets -half..half.
	design := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i - half)
		v := 1.0
		for j := 0; j <= order; j++ {
			design.Set(i, j, v)
			v *= t
		}
	}

	// Pseudoinverse (AᵀA)⁻¹Aᵀ: row j holds the convolution weights that
	// recover polynomial coefficient j from a window of samples.
	var ata mat.Dense
	ata.Mul(design.T(), design)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		out := make([]float64, n)
		copy(out, data)
		return out
	}
	var pinv mat.Dense
	pinv.Mul(&inv, design.T())

	out := make([]float64, n)

	// Interior: the smoothed value is the fitted polynomial at offset 0,
	// i.e. coefficient a0.
	weights := mat.Row(nil, 0, &pinv)
	for i := half; i < n-half; i++ {
		var sum float64
		for k, w := range weights {
			sum += w * data[i-half+k]
		}
		out[i] = sum
	}

	// Boundaries: fit the first and last windows once and evaluate the
	// polynomials inside them.
	head := fitWindowCoeffs(&pinv, data[:window], order)
	tail := fitWindowCoeffs(&pinv, data[n-window:], order)
	for i := 0; i < half; i++ {
		out[i] = evalPoly(head, float64(i-half))
		out[n-1-i] = evalPoly(tail, float64(half-i))
	}
	return out
}

func fitWindowCoeffs(pinv *mat.Dense, window []float64, order int) []float64 {
	coeffs := make([]float64, order+1)
	for j := 0; j <= order; j++ {
		row := mat.Row(nil, j, pinv)
		var sum float64
		for k, w := range row {
			sum += w * window[k]
		}
		coeffs[j] = sum
	}
	return coeffs
}

func evalPoly(coeffs []float64, t float64) float64 {
	var sum, v float64
	v = 1
	for _, c := range coeffs {
		sum += c * v
		v *= t
	}
	return sum
}
