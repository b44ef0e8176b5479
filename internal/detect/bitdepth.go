package detect

import (
	"math"

	"go-image-forensics/internal/imaging"
)

// BitDepthDetector looks for bit-depth reduction: regularly spaced comb
// peaks in the raw histogram, or a suspiciously small set of distinct
// intensity values.
type BitDepthDetector struct{}

func (d *BitDepthDetector) Name() string { return NameBitDepth }

func (d *BitDepthDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	hist := intensityHistogram(src.Buffer.Luma())

	var histPeak float64
	for _, v := range hist {
		histPeak = math.Max(histPeak, v)
	}

	posterized := false
	estimatedBits := 8
	score := 0.0

	peaks := findPeaks(hist, histPeak*0.05)
	if len(peaks) >= 4 {
		if regularity, meanSpacing, ok := peakSpacingRegularity(peaks); ok && regularity > 0.7 {
			posterized = true
			estimatedBits = int(math.Floor(math.Log2(256 / meanSpacing)))
			score = regularity * 100
		}
	}

	distinct := 0
	for _, v := range hist {
		if v > 0 {
			distinct++
		}
	}
	if distinct < 128 {
		posterized = true
		score = math.Max(score, (1-float64(distinct)/256)*100)
	}

	result := newResult()
	result.Score = clampScore(score)
	result.Flags["posterized"] = posterized
	result.Extras["estimated_bits"] = estimatedBits
	result.Extras["unique_colors"] = distinct
	return result, nil
}
