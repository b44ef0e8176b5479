package visual

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	apperrors "go-image-forensics/internal/errors"
	"go-image-forensics/internal/imaging"
)

// jetLUT holds the jet false-color lookup table, blue through green to
// red, indexed by intensity.
var jetLUT [256][3]uint8

func init() {
	for i := range jetLUT {
		v := float64(i) / 255
		jetLUT[i][0] = jetChannel(1.5 - abs(4*v-3))
		jetLUT[i][1] = jetChannel(1.5 - abs(4*v-2))
		jetLUT[i][2] = jetChannel(1.5 - abs(4*v-1))
	}
}

func jetChannel(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v*255 + 0.5)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Heatmap renders a detector map as a jet false-color image. Detector
// maps arrive already scaled to 0-255, so intensities index the lookup
// table directly; a multi-channel map is collapsed to luma first.
func Heatmap(buf *imaging.PixelBuffer) *image.RGBA {
	gray := buf.Luma()
	width, height := gray.Width(), gray.Height()
	pix := gray.Pix()

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := jetLUT[pix[y*width+x]]
			out.SetRGBA(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	return out
}

// Overlay alpha-blends a highlight color over base wherever mask is hot.
// Mask intensity modulates the blend, so a graded map fades smoothly
// while a binary mask produces hard regions. Mask and base must share
// dimensions.
func Overlay(base *imaging.PixelBuffer, mask *imaging.PixelBuffer, alpha float64, highlight color.RGBA) (*image.RGBA, error) {
	if base.Width() != mask.Width() || base.Height() != mask.Height() {
		return nil, apperrors.NewInputError("overlay mask dimensions do not match the image", nil)
	}

	width, height := base.Width(), base.Height()
	rgb := base.RGBImage()
	maskPix := mask.Luma().Pix()

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			blend := alpha * float64(maskPix[y*width+x]) / 255
			src := rgb.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: mix(src.R, highlight.R, blend),
				G: mix(src.G, highlight.G, blend),
				B: mix(src.B, highlight.B, blend),
				A: 255,
			})
		}
	}
	return out, nil
}

func mix(base, over uint8, blend float64) uint8 {
	return uint8(float64(base)*(1-blend) + float64(over)*blend)
}

// Scale resizes an image to width×height with bilinear filtering.
func Scale(img image.Image, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}

// SavePNG writes an image to path, creating parent directories as
// needed.
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewInternalError("failed to create output directory", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewInternalError("failed to create output file", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return apperrors.NewInternalError("failed to encode PNG", err)
	}
	return nil
}
