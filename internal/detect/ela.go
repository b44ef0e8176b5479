package detect

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"

	apperrors "go-image-forensics/internal/errors"
	"go-image-forensics/internal/imaging"
)

// ErrorLevelDetector re-encodes the original bytes as JPEG at a fixed
// quality and measures the per-channel difference against the original
// decode. Regions with a different compression history stand out. This
// is the only detector that needs the encoded source bytes.
type ErrorLevelDetector struct{}

func (d *ErrorLevelDetector) Name() string { return NameELA }

func (d *ErrorLevelDetector) Run(src *imaging.Source, p Params) (*Result, error) {
	if !src.HasEncoded() {
		return nil, apperrors.NewUnsupportedError("error level analysis requires the original encoded bytes", nil)
	}

	original, _, err := image.Decode(bytes.NewReader(src.Encoded))
	if err != nil {
		return nil, apperrors.NewInputError("failed to decode source bytes", err)
	}
	originalBuf, err := imaging.FromImage(original)
	if err != nil {
		return nil, err
	}

	quality := p.ELAQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultParams().ELAQuality
	}
	var reencoded bytes.Buffer
	if err := jpeg.Encode(&reencoded, originalBuf.RGBImage(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, apperrors.NewProcessingError("jpeg re-encode failed", err)
	}
	compressed, err := jpeg.Decode(bytes.NewReader(reencoded.Bytes()))
	if err != nil {
		return nil, apperrors.NewProcessingError("jpeg re-decode failed", err)
	}
	compressedBuf, err := imaging.FromImage(compressed)
	if err != nil {
		return nil, err
	}

	diff, width, height := channelDifference(originalBuf, compressedBuf)
	if diff == nil {
		return nil, apperrors.NewProcessingError("re-encoded image dimensions diverged", nil)
	}

	maxDiff := 0.0
	for _, v := range diff {
		maxDiff = math.Max(maxDiff, v)
	}

	normalized := make([]uint8, len(diff))
	enhanced := make([]uint8, len(diff))
	for i, v := range diff {
		if maxDiff > 0 {
			normalized[i] = uint8(v * 255 / maxDiff)
		}
		enhanced[i] = uint8(math.Min(255, v*10))
	}
	elaMap, _ := imaging.NewRGB(width, height, normalized)
	elaEnhanced, _ := imaging.NewRGB(width, height, enhanced)

	result := newResult()
	result.Score = math.Min(100, popVariance(diff)/10)
	result.Maps["ela"] = elaMap
	result.Maps["ela_enhanced"] = elaEnhanced
	result.Extras["max_difference"] = maxDiff
	result.Extras["quality"] = quality
	return result, nil
}

// channelDifference returns |a-b| per RGB sample, or nil when the two
// buffers disagree on dimensions.
func channelDifference(a, b *imaging.PixelBuffer) (diff []float64, width, height int) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return nil, 0, 0
	}
	width, height = a.Width(), a.Height()
	ap := rgbSamples(a)
	bp := rgbSamples(b)
	diff = make([]float64, len(ap))
	for i := range ap {
		diff[i] = math.Abs(float64(ap[i]) - float64(bp[i]))
	}
	return diff, width, height
}

func rgbSamples(buf *imaging.PixelBuffer) []uint8 {
	if buf.Channels() == imaging.ColorChannels {
		return buf.Pix()
	}
	gray := buf.Pix()
	out := make([]uint8, len(gray)*imaging.ColorChannels)
	for i, v := range gray {
		out[i*3], out[i*3+1], out[i*3+2] = v, v, v
	}
	return out
}
