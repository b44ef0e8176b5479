package detect

import (
	"math"
	"math/cmplx"

	"go-image-forensics/internal/imaging"
)

// FrequencyDetector transforms the luma plane into the frequency domain
// and counts isolated high-magnitude peaks away from the DC component.
// Periodic artifacts such as resampling grids, halftone screens or
// repeated textures concentrate spectral energy into such peaks, while
// natural content decays smoothly from the center.
type FrequencyDetector struct{}

// periodicPeakGate is the peak count above which the spectrum is flagged
// periodic. A single 2-D tone contributes a conjugate pair per harmonic;
// a checkerboard aligned to the image size lands around 16 delta bins.
const periodicPeakGate = 10

func (d *FrequencyDetector) Name() string { return NameFrequency }

func (d *FrequencyDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	buf := src.Buffer
	width, height := buf.Width(), buf.Height()
	luma := buf.LumaFloats()

	shifted := fftShift(fft2(luma, width, height), width, height)
	magnitude := make([]float64, len(shifted))
	logMagnitude := make([]float64, len(shifted))
	for i, c := range shifted {
		magnitude[i] = cmplx.Abs(c)
		logMagnitude[i] = math.Log1p(magnitude[i])
	}

	// The DC component and its immediate surroundings dwarf everything
	// else; zero a window around the center before hunting for peaks.
	masked := make([]float64, len(magnitude))
	copy(masked, magnitude)
	cy, cx := height/2, width/2
	half := p.DCWindow / 2
	for y := cy - half; y <= cy+half; y++ {
		if y < 0 || y >= height {
			continue
		}
		for x := cx - half; x <= cx+half; x++ {
			if x < 0 || x >= width {
				continue
			}
			masked[y*width+x] = 0
		}
	}

	// A bare percentile threshold counts a fixed fraction of coefficients
	// regardless of content, so require peaks to also stand well above
	// the mean magnitude before they count as periodic structure.
	threshold := percentile(masked, p.PeakPercentile)
	if floor := 10 * popMean(masked); floor > threshold {
		threshold = floor
	}
	peakCount := 0
	for _, v := range masked {
		if v > threshold {
			peakCount++
		}
	}

	// With the energy floor the surviving peaks are genuine outliers. A
	// clean periodic texture whose size divides the period concentrates
	// its energy into a few delta bins, so even a small peak count marks
	// periodic structure.
	result := newResult()
	result.Score = clampScore(float64(peakCount) / 5)
	result.Flags["periodic"] = peakCount > periodicPeakGate
	result.Maps["spectrum"] = normalizeToMap(logMagnitude, width, height)
	result.Extras["peak_count"] = peakCount
	result.Extras["threshold"] = threshold
	return result, nil
}

// ApplyNotchFilter suppresses the periodic component at spectrum
// coordinates (cy, cx) by zeroing a disk there and at the point-symmetric
// mirror position, then transforming back. Coordinates are in the
// shifted spectrum, the same frame as the detector's spectrum map.
func ApplyNotchFilter(buf *imaging.PixelBuffer, cy, cx, radius int) (*imaging.PixelBuffer, error) {
	width, height := buf.Width(), buf.Height()
	shifted := fftShift(fft2(buf.LumaFloats(), width, height), width, height)

	zeroDisk(shifted, width, height, cy, cx, radius)
	// Conjugate-symmetric partner, mirrored about the spectrum center.
	zeroDisk(shifted, width, height, 2*(height/2)-cy, 2*(width/2)-cx, radius)

	restored := ifft2(ifftShift(shifted, width, height), width, height)
	pix := make([]uint8, width*height)
	for i, c := range restored {
		v := math.Round(real(c))
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		pix[i] = uint8(v)
	}
	return imaging.NewGray(width, height, pix)
}

func zeroDisk(coeffs []complex128, width, height, cy, cx, radius int) {
	for y := cy - radius; y <= cy+radius; y++ {
		if y < 0 || y >= height {
			continue
		}
		for x := cx - radius; x <= cx+radius; x++ {
			if x < 0 || x >= width {
				continue
			}
			dy, dx := float64(y-cy), float64(x-cx)
			if dy*dy+dx*dx <= float64(radius*radius) {
				coeffs[y*width+x] = 0
			}
		}
	}
}
