package detect

import (
	"math"

	"go-image-forensics/internal/imaging"
)

// Sub-test names reported by the histogram detector.
const (
	SubTestEqualization  = "Histogram Equalization"
	SubTestClipping      = "Histogram Clipping"
	SubTestContrastShift = "Contrast Enhancement"
	SubTestPosterization = "Posterization"
)

// HistogramDetector looks for global tone manipulations in the intensity
// histogram: equalization flatness, clipping artifacts, contrast shifts
// and posterization banding. The sub-test with the highest score wins.
type HistogramDetector struct{}

func (d *HistogramDetector) Name() string { return NameHistogram }

func (d *HistogramDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	hist := intensityHistogram(src.Buffer.Luma())
	normalized := normalizeHistogram(hist)

	scores := []struct {
		name  string
		value float64
	}{
		{SubTestEqualization, equalizationScore(normalized)},
		{SubTestClipping, clippingScore(hist)},
		{SubTestContrastShift, contrastShiftScore(normalized)},
		{SubTestPosterization, posterizationScore(hist)},
	}

	winner := scores[0]
	for _, s := range scores[1:] {
		if s.value > winner.value {
			winner = s
		}
	}

	result := newResult()
	result.Score = clampScore(winner.value)
	result.Flags["manipulated"] = winner.value > 40
	result.Extras["type"] = winner.name
	for _, s := range scores {
		result.Extras[s.name] = s.value
	}
	return result, nil
}

// intensityHistogram counts luma occurrences into 256 bins.
func intensityHistogram(luma *imaging.PixelBuffer) []float64 {
	hist := make([]float64, 256)
	for _, v := range luma.Pix() {
		hist[v]++
	}
	return hist
}

func normalizeHistogram(hist []float64) []float64 {
	var total float64
	for _, v := range hist {
		total += v
	}
	normalized := make([]float64, len(hist))
	if total == 0 {
		return normalized
	}
	for i, v := range hist {
		normalized[i] = v / total
	}
	return normalized
}

// equalizationScore measures how close the histogram is to perfectly
// flat. A chi-square distance from the uniform distribution is mapped to
// a uniformity term and combined with a relative-spread term.
func equalizationScore(normalized []float64) float64 {
	uniform := 1 / float64(len(normalized))
	var chiSquare float64
	for _, v := range normalized {
		d := v - uniform
		chiSquare += d * d / (uniform + 1e-10)
	}
	uniformity := 1 / (1 + chiSquare/100)
	stdTerm := 1 - popStd(normalized)/popMean(normalized)
	return (uniformity*0.6 + stdTerm*0.4) * 100
}

// clippingScore detects contrast-stretch artifacts: mass piled at the
// intensity extremes and gaps punched into the middle of the histogram.
func clippingScore(hist []float64) float64 {
	var total float64
	for _, v := range hist {
		total += v
	}
	if total == 0 {
		return 0
	}

	blackPeak := hist[0] / total
	whitePeak := hist[255] / total
	extremeScore := (blackPeak + whitePeak) * 100

	middle := hist[5:250]
	var zeroBins float64
	for _, v := range middle {
		if v == 0 {
			zeroBins++
		}
	}
	gapScore := zeroBins / float64(len(middle)) * 100

	var nonZero float64
	for _, v := range hist {
		if v != 0 {
			nonZero++
		}
	}
	rangeUsage := nonZero / 256

	var score float64
	if rangeUsage < 0.7 && (blackPeak > 0.02 || whitePeak > 0.02) {
		score = math.Max(extremeScore, gapScore) * 1.5
	} else {
		score = (extremeScore + gapScore) / 2
	}
	return math.Min(100, score)
}

// contrastShiftScore detects stretched or compressed tone curves from
// the histogram's shape moments, plus a bimodality bonus from a smoothed
// copy (window 21, order 3).
func contrastShiftScore(normalized []float64) float64 {
	var mean float64
	for i, v := range normalized {
		mean += float64(i) * v
	}
	var variance float64
	for i, v := range normalized {
		d := float64(i) - mean
		variance += d * d * v
	}
	std := math.Sqrt(variance)

	var m3, m4 float64
	for i, v := range normalized {
		d := float64(i) - mean
		m3 += d * d * d * v
		m4 += d * d * d * d * v
	}
	skewness := m3 / (std*std*std + 1e-10)
	kurtosis := m4 / (std*std*std*std + 1e-10)

	smoothed := savgolFilter(normalized, 21, 3)
	var peak float64
	for _, v := range smoothed {
		peak = math.Max(peak, v)
	}
	var bimodal float64
	if len(findPeaks(smoothed, peak*0.1)) >= 2 {
		bimodal = 50
	}

	return math.Min(100, math.Abs(skewness)*20+math.Abs(kurtosis-3)*10+bimodal)
}

// posterizationScore detects the regular comb pattern left by bit-depth
// reduction, via peaks of a lightly smoothed histogram (window 11,
// order 2).
func posterizationScore(hist []float64) float64 {
	smoothed := savgolFilter(hist, 11, 2)
	var peak float64
	for _, v := range smoothed {
		peak = math.Max(peak, v)
	}
	peaks := findPeaks(smoothed, peak*0.05)
	if len(peaks) < 4 {
		return 0
	}
	regularity, _, ok := peakSpacingRegularity(peaks)
	if !ok {
		return 0
	}
	var score float64
	if regularity > 0.7 {
		score = regularity * float64(len(peaks)) * 10
	} else {
		score = regularity * 30
	}
	return math.Min(100, score)
}

func clampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}
