package detect

import (
	"math"

	"go-image-forensics/internal/imaging"
)

// lightingBlurSize is the edge of the low-pass kernel used to estimate
// the illumination field. Large enough to erase texture and keep only
// the smooth lighting component.
const lightingBlurSize = 51

// LightingDetector estimates the bias field, the smooth illumination
// component of the scene, and inspects its gradient for abrupt
// transitions. Light in a single capture changes gradually; a pasted
// region lit from elsewhere breaks that.
type LightingDetector struct{}

func (d *LightingDetector) Name() string { return NameBiasField }

func (d *LightingDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	buffer := src.Buffer
	width, height := buffer.Width(), buffer.Height()

	field := gaussianBlur(buffer.LumaFloats(), width, height, lightingBlurSize)
	gx, gy := sobelGradient5(field, width, height)
	magnitude := make([]float64, len(field))
	for i := range magnitude {
		magnitude[i] = math.Hypot(gx[i], gy[i])
	}

	threshold := percentile(magnitude, 90)
	abrupt := 0
	for _, v := range magnitude {
		if v > threshold {
			abrupt++
		}
	}
	changeRatio := float64(abrupt) / float64(len(magnitude))

	result := newResult()
	result.Score = math.Min(100, changeRatio*1000)
	result.Flags["inconsistent"] = changeRatio > 0.05
	result.Maps["lighting_map"] = normalizeToMap(field, width, height)
	result.Maps["gradient_map"] = normalizeToMap(magnitude, width, height)
	result.Extras["change_ratio"] = changeRatio
	return result, nil
}
